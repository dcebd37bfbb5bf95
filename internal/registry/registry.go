package registry

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/shinji-kodama/gaussclass/internal/classmodel"
	"github.com/shinji-kodama/gaussclass/internal/model"
	"github.com/shinji-kodama/gaussclass/internal/observation"
)

// Registry owns one fitted ClassModel per observed class id.
type Registry struct {
	classes map[model.ClassID]*classmodel.ClassModel
	ids     []model.ClassID
	stats   Stats
}

// Stats summarizes the parse pass a Registry was built from.
type Stats struct {
	// Lines is the number of observation lines that contributed a point.
	Lines int

	// Skipped is the number of short lines ignored under the skip policy.
	Skipped int

	// StoppedAt is the 1-based line number of the short line that ended
	// input, or 0 if the stream was read to the end.
	StoppedAt int
}

// Option configures Build.
type Option func(*options)

type options struct {
	shortLines observation.ShortLinePolicy
	workers    int
}

// WithShortLinePolicy selects how the parser treats lines with fewer than
// three tokens. The default is observation.StopOnShortLine.
func WithShortLinePolicy(p observation.ShortLinePolicy) Option {
	return func(o *options) {
		o.shortLines = p
	}
}

// WithParallelFit fits up to n classes concurrently. n <= 1 keeps fitting
// sequential.
func WithParallelFit(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Build parses r, creates one model per class id and fits all of them.
//
// Build is atomic: it returns either a Registry in which every class is fit
// or a nil Registry and the first error. Parse failures are
// *model.ParseError; fitting failures are *model.DistributionError. When
// several classes fail to fit, the error for the lowest class id is returned
// regardless of the fitting mode.
func Build(r io.Reader, opts ...Option) (*Registry, error) {
	o := options{shortLines: observation.StopOnShortLine}
	for _, opt := range opts {
		opt(&o)
	}

	parser := &observation.Parser{ShortLines: o.shortLines}
	res, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse observations: %w", err)
	}

	reg := &Registry{
		classes: res.Classes,
		ids:     sortedIDs(res.Classes),
		stats: Stats{
			Lines:     res.Lines,
			Skipped:   res.Skipped,
			StoppedAt: res.StoppedAt,
		},
	}

	if err := reg.fitAll(o.workers); err != nil {
		return nil, fmt.Errorf("failed to fit class distributions: %w", err)
	}
	return reg, nil
}

// fitAll fits every class in ascending id order. In parallel mode all
// classes are attempted and the lowest failing id wins, so the reported
// error does not depend on scheduling.
func (r *Registry) fitAll(workers int) error {
	if workers <= 1 {
		for _, id := range r.ids {
			if err := r.classes[id].Fit(); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, len(r.ids))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, id := range r.ids {
		i := i
		c := r.classes[id]
		g.Go(func() error {
			errs[i] = c.Fit()
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func sortedIDs(classes map[model.ClassID]*classmodel.ClassModel) []model.ClassID {
	ids := make([]model.ClassID, 0, len(classes))
	for id := range classes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Lookup returns the model for id, or a *model.NotFoundError if the id was
// never observed.
func (r *Registry) Lookup(id model.ClassID) (*classmodel.ClassModel, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, &model.NotFoundError{Class: id}
	}
	return c, nil
}

// Score evaluates p against class id with the given prior.
//
// err is a *model.NotFoundError for an unknown id. ok is false when the
// model exists but has no fitted parameters, which cannot happen for a
// Registry returned by Build.
func (r *Registry) Score(id model.ClassID, prior float64, p model.Point) (score float64, ok bool, err error) {
	c, err := r.Lookup(id)
	if err != nil {
		return 0, false, err
	}
	score, ok = c.Likelihood(prior, p)
	return score, ok, nil
}

// IDs returns the class ids in ascending order.
func (r *Registry) IDs() []model.ClassID {
	return slices.Clone(r.ids)
}

// Len returns the number of classes.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Stats returns a summary of the parse pass.
func (r *Registry) Stats() Stats {
	return r.stats
}

// IsNotFound reports whether err is, or wraps, a *model.NotFoundError.
func IsNotFound(err error) bool {
	var nf *model.NotFoundError
	return errors.As(err, &nf)
}
