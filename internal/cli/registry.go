// Package cli: registry.go loads the observation file and builds the
// class registry shared by every subcommand.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/gaussclass/internal/model"
	"github.com/shinji-kodama/gaussclass/internal/observation"
	"github.com/shinji-kodama/gaussclass/internal/registry"
)

// stdinPath is the positional argument that selects standard input.
const stdinPath = "-"

// loadRegistry opens the observation source, builds the registry with the
// global parser and fitting options, and translates failures into CLIErrors.
func loadRegistry(cmd *cobra.Command, path string) (*registry.Registry, error) {
	policy, err := observation.ParseShortLinePolicy(shortLines)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid --on-short-line value", err)
	}

	var r io.Reader
	if path == stdinPath {
		r = cmd.InOrStdin()
		VerboseLog("Reading observations from stdin")
	} else {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, model.WrapCLIError(model.ExitInputNotFound,
					fmt.Sprintf("observation file not found: %s", path), err)
			}
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to open observation file", err)
		}
		// The file is only read during Build.
		defer func() { _ = f.Close() }()
		r = f
		VerboseLog("Reading observations from %s", path)
	}

	reg, err := registry.Build(r,
		registry.WithShortLinePolicy(policy),
		registry.WithParallelFit(parallel),
	)
	if err != nil {
		return nil, buildError(err)
	}

	traceRegistry(reg)
	return reg, nil
}

// buildError maps a registry.Build failure to the matching exit code.
func buildError(err error) error {
	var parseErr *model.ParseError
	if errors.As(err, &parseErr) {
		return model.WrapCLIError(model.ExitParseError,
			"invalid observation data (expected whitespace-separated \"<id> <x> <y>\" lines)", err)
	}
	var distErr *model.DistributionError
	if errors.As(err, &distErr) {
		return model.WrapCLIError(model.ExitDistributionError,
			fmt.Sprintf("cannot fit a normal distribution for class %s", distErr.Class), err)
	}
	return model.WrapCLIError(model.ExitGeneralError, "failed to read observations", err)
}

// traceRegistry writes the diagnostic view of every class: its raw points,
// the derived coordinate lists and the fitted distributions.
func traceRegistry(reg *registry.Registry) {
	if !verbose {
		return
	}
	stats := reg.Stats()
	VerboseLog("Parsed %d observation lines into %d classes", stats.Lines, reg.Len())
	if stats.Skipped > 0 {
		VerboseLog("Skipped %d short lines", stats.Skipped)
	}
	if stats.StoppedAt > 0 {
		VerboseLog("Stopped reading at line %d (fewer than 3 fields)", stats.StoppedAt)
	}

	for _, id := range reg.IDs() {
		c, err := reg.Lookup(id)
		if err != nil {
			continue
		}
		VerboseLog("points: %v", c.Points())
		VerboseLog("x_data, y_data: %v, %v", c.XData(), c.YData())
		if params, ok := c.Parameters(); ok {
			VerboseLog("Distribution for class %s: %s", id, params)
		}
	}
}
