package model

import (
	"errors"
	"fmt"
)

// ErrNoPoints is wrapped by DistributionError when a class is fit without
// any observations.
var ErrNoPoints = errors.New("class has no points")

// ParseError reports a token in the observation stream that is not a valid
// literal for the field it occupies. It aborts the whole parse.
type ParseError struct {
	// Line is the 1-based line number of the offending line.
	Line int

	// Field names the column: "id", "x" or "y".
	Field string

	// Token is the raw text that failed to parse.
	Token string

	// Err is the underlying conversion error (usually *strconv.NumError).
	Err error
}

// Error satisfies the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Token, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// DistributionError reports that a class's observations do not yield a
// proper normal distribution on one axis.
type DistributionError struct {
	// Class is the class whose fit failed.
	Class ClassID

	// Axis is the coordinate that produced invalid parameters. Empty when
	// the failure is not axis specific (no points at all).
	Axis Axis

	// Points is the number of observations the fit was attempted with.
	Points int

	// Err describes the violated constraint.
	Err error
}

// Error satisfies the error interface.
func (e *DistributionError) Error() string {
	if e.Axis == "" {
		return fmt.Sprintf("class %s (%d points): %v", e.Class, e.Points, e.Err)
	}
	return fmt.Sprintf("class %s (%d points): %s axis: %v", e.Class, e.Points, e.Axis, e.Err)
}

// Unwrap returns the underlying constraint violation.
func (e *DistributionError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a lookup of a class id that was never observed.
type NotFoundError struct {
	Class ClassID
}

// Error satisfies the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("class %s not found", e.Class)
}
