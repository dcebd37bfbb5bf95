// Package cli: describe.go implements the "gaussclass describe" command.
//
// The describe command builds the class registry and prints the fitted x and
// y normal parameters of every class, as a text table or JSON.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/gaussclass/internal/model"
	"github.com/shinji-kodama/gaussclass/internal/registry"
)

// NewDescribeCommand creates the "describe" cobra command.
func NewDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <observations>",
		Short: "Show the fitted distribution of every class",
		Long: `Fit the classes found in <observations> ("-" for stdin) and print
each class's point count and the mean and sample standard deviation of its
x and y coordinates.

Examples:
  gaussclass describe data.txt
  gaussclass describe --json data.txt
  gaussclass describe --on-short-line skip data.txt`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd, args[0])
			if err != nil {
				return err
			}
			summaries := summarize(reg)
			if IsJSONOutput() {
				return printDescribeJSON(cmd.OutOrStdout(), reg.Stats(), summaries)
			}
			printDescribeText(cmd.OutOrStdout(), reg.Stats(), summaries)
			return nil
		},
	}

	return cmd
}

// classSummary is the describe view of one class.
type classSummary struct {
	Class  model.ClassID           `json:"class"`
	Points int                     `json:"points"`
	Params *model.FittedParameters `json:"distribution"`
}

// summarize collects one summary per class in ascending id order.
func summarize(reg *registry.Registry) []classSummary {
	out := make([]classSummary, 0, reg.Len())
	for _, id := range reg.IDs() {
		c, err := reg.Lookup(id)
		if err != nil {
			continue
		}
		s := classSummary{Class: id, Points: c.Len()}
		if params, ok := c.Parameters(); ok {
			s.Params = &params
		}
		out = append(out, s)
	}
	return out
}

// printDescribeText outputs a table with aligned columns:
//
//	CLASS    POINTS   X MEAN       X STDDEV     Y MEAN       Y STDDEV
//	0        2        2            1.41421      2            1.41421
func printDescribeText(w io.Writer, stats registry.Stats, summaries []classSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No classes found.")
	} else {
		fmt.Fprintf(w, "%-8s %-8s %-12s %-12s %-12s %s\n",
			"CLASS", "POINTS", "X MEAN", "X STDDEV", "Y MEAN", "Y STDDEV")
		for _, s := range summaries {
			if s.Params == nil {
				fmt.Fprintf(w, "%-8s %-8d %s\n", s.Class, s.Points, "not fit")
				continue
			}
			fmt.Fprintf(w, "%-8s %-8d %-12.6g %-12.6g %-12.6g %.6g\n",
				s.Class, s.Points,
				s.Params.X.Mean, s.Params.X.StdDev,
				s.Params.Y.Mean, s.Params.Y.StdDev,
			)
		}
	}

	if stats.StoppedAt > 0 {
		fmt.Fprintf(w, "\nInput ended at line %d (fewer than 3 fields); later lines were ignored.\n", stats.StoppedAt)
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(w, "\nSkipped %d lines with fewer than 3 fields.\n", stats.Skipped)
	}
}

// printDescribeJSON outputs the class summaries and parse statistics.
func printDescribeJSON(w io.Writer, stats registry.Stats, summaries []classSummary) error {
	type resultJSON struct {
		Classes   []classSummary `json:"classes"`
		Lines     int            `json:"lines"`
		Skipped   int            `json:"skipped"`
		StoppedAt int            `json:"stoppedAt,omitempty"`
	}

	data, err := json.MarshalIndent(resultJSON{
		Classes:   summaries,
		Lines:     stats.Lines,
		Skipped:   stats.Skipped,
		StoppedAt: stats.StoppedAt,
	}, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to encode results", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
