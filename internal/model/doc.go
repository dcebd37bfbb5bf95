// Package model defines the domain types and value objects for the
// gaussclass CLI.
//
// This package contains pure data structures with no external dependencies.
// Point, Normal and FittedParameters are plain values; the fitting and
// scoring logic that produces and consumes them lives in internal/classmodel.
//
// The package also defines the error taxonomy shared by every layer
// (ParseError, DistributionError, NotFoundError), exit codes (ExitCode)
// and a custom error type (CLIError) that carries exit codes for proper
// OS process exit handling.
package model
