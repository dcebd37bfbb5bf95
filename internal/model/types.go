// Package model defines the domain types for the gaussclass CLI.
//
// All values in this package are immutable once constructed. They are passed
// between the parser, the class models and the registry without any shared
// mutable state.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ClassID identifies a labeled class of observations. The value is taken
// verbatim from the first column of the input; it is never generated.
type ClassID int32

// String returns the decimal representation of the class id.
func (id ClassID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseClassID converts a decimal token into a ClassID.
// The token must be a signed integer that fits in 32 bits.
func ParseClassID(s string) (ClassID, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return ClassID(v), nil
}

// Point is a single 2-D observation. Both coordinates are finite.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// IsFinite reports whether both coordinates are finite real numbers.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// String returns a compact "(x, y)" representation used in diagnostics.
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Axis names one coordinate of a Point.
type Axis string

const (
	// AxisX is the first coordinate.
	AxisX Axis = "x"

	// AxisY is the second coordinate.
	AxisY Axis = "y"
)

// String returns the string representation of Axis.
func (a Axis) String() string {
	return string(a)
}

// Normal holds the parameters of a univariate normal distribution.
type Normal struct {
	// Mean is the location parameter (mu).
	Mean float64 `json:"mean"`

	// StdDev is the scale parameter (sigma). A valid distribution has a
	// strictly positive, finite StdDev.
	StdDev float64 `json:"stdDev"`
}

// Validate checks that the parameters describe a proper distribution.
// It returns a plain error describing the first violated constraint;
// callers attach class and axis context.
func (n Normal) Validate() error {
	if !isFinite(n.Mean) {
		return fmt.Errorf("mean %v is not finite", n.Mean)
	}
	if !isFinite(n.StdDev) || n.StdDev <= 0 {
		return fmt.Errorf("standard deviation %v is not a positive finite value", n.StdDev)
	}
	return nil
}

// String returns "Normal { mean: m, std_dev: s }" for diagnostics.
func (n Normal) String() string {
	return fmt.Sprintf("Normal { mean: %g, std_dev: %g }", n.Mean, n.StdDev)
}

// FittedParameters are the independent x and y marginals of one class.
// No covariance term is modeled.
type FittedParameters struct {
	X Normal `json:"x"`
	Y Normal `json:"y"`
}

// String returns a human-readable representation of both marginals.
func (f FittedParameters) String() string {
	var b strings.Builder
	b.WriteString("x: ")
	b.WriteString(f.X.String())
	b.WriteString(", y: ")
	b.WriteString(f.Y.String())
	return b.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ExitCode defines standard CLI exit codes.
// These codes allow scripts and CI systems to programmatically determine
// the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred, including
	// invalid flags and unreadable query files.
	ExitGeneralError ExitCode = 1

	// ExitInputNotFound indicates the observation file does not exist.
	ExitInputNotFound ExitCode = 2

	// ExitParseError indicates the observation stream contained a token
	// that is not a valid integer or real-number literal.
	ExitParseError ExitCode = 3

	// ExitDistributionError indicates a class could not be fit to a
	// proper normal distribution (for example, a class with one point).
	ExitDistributionError ExitCode = 4

	// ExitClassNotFound indicates a queried class id was never observed.
	ExitClassNotFound ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
