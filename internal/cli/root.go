// Package cli implements the cobra-based CLI commands for gaussclass.
//
// Each subcommand (score, describe) is defined in its own file within this
// package. This file defines the root command that serves as the parent for
// all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/gaussclass/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose enables the diagnostic trace of parsed points and fitted
	// distributions on stderr.
	verbose bool

	// shortLines is the raw --on-short-line value ("stop" or "skip").
	shortLines string

	// parallel is the number of classes fit concurrently.
	parallel int
)

// stderr is where errors and verbose output go. Tests replace it.
var stderr io.Writer = os.Stderr

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action; it only provides
// help text and global flags.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gaussclass",
		Short: "Per-class Gaussian models for labeled 2-D points",
		Long: `gaussclass fits an independent normal distribution to the x and y
coordinates of every class in a file of labeled points, and scores new points
against those models.

Input lines have the form "<id> <x> <y>". A line with fewer than three fields
ends the input unless --on-short-line=skip is given.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print parsed points and fitted distributions to stderr")
	rootCmd.PersistentFlags().StringVar(&shortLines, "on-short-line", "stop",
		"What to do with a line that has fewer than 3 fields: stop, skip")
	rootCmd.PersistentFlags().IntVar(&parallel, "parallel", 1, "Number of classes to fit concurrently")

	rootCmd.AddCommand(NewScoreCommand())
	rootCmd.AddCommand(NewDescribeCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError types carry their own exit codes; other errors default to
// exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// stdout is reserved for successful command output, so JSON errors
		// also go to stderr.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
