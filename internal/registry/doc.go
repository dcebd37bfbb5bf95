// Package registry builds and serves the full set of fitted class models.
//
// Build runs the observation parser over a stream, fits every discovered
// class and returns a Registry only if all of them fit. A Registry is
// read-only after Build and may be shared between goroutines.
//
// Fitting is sequential by default. WithParallelFit fits classes
// concurrently using golang.org/x/sync/errgroup; each class model reads and
// writes only its own state, so the result is identical to a sequential
// build.
package registry
