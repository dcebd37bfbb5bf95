package classmodel

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/shinji-kodama/gaussclass/internal/model"
)

// ClassModel holds one class's observations and its fitted marginals.
//
// The zero value is not usable; construct with New. A ClassModel is not safe
// for concurrent mutation, but distinct models share no state, so different
// models may be fit in parallel.
type ClassModel struct {
	id     model.ClassID
	points []model.Point

	// fitted is nil until Fit succeeds. Scoring is only defined when it is set.
	fitted *model.FittedParameters
}

// New creates an unfitted model for the given class, seeded with points.
func New(id model.ClassID, points ...model.Point) *ClassModel {
	c := &ClassModel{id: id}
	c.points = append(c.points, points...)
	return c
}

// ID returns the class identifier.
func (c *ClassModel) ID() model.ClassID {
	return c.id
}

// Add appends an observation. It does not touch previously fitted
// parameters; call Fit again to include the new point.
func (c *ClassModel) Add(p model.Point) {
	c.points = append(c.points, p)
}

// Len returns the number of observations.
func (c *ClassModel) Len() int {
	return len(c.points)
}

// Points returns a copy of the observations in insertion order.
func (c *ClassModel) Points() []model.Point {
	out := make([]model.Point, len(c.points))
	copy(out, c.points)
	return out
}

// XData returns the x coordinate of every observation.
func (c *ClassModel) XData() []float64 {
	return c.project(func(p model.Point) float64 { return p.X })
}

// YData returns the y coordinate of every observation.
func (c *ClassModel) YData() []float64 {
	return c.project(func(p model.Point) float64 { return p.Y })
}

func (c *ClassModel) project(f func(model.Point) float64) []float64 {
	out := make([]float64, len(c.points))
	for i, p := range c.points {
		out[i] = f(p)
	}
	return out
}

// Fit computes the mean and sample standard deviation of each coordinate and
// stores them as the model's parameters, replacing any earlier fit.
//
// It returns a *model.DistributionError when the class has no points or when
// either axis yields a standard deviation that is not strictly positive and
// finite (always the case for a single point). On error the previous
// parameters, if any, are left in place.
func (c *ClassModel) Fit() error {
	if len(c.points) == 0 {
		return &model.DistributionError{Class: c.id, Err: model.ErrNoPoints}
	}

	x, err := c.fitAxis(model.AxisX, c.XData())
	if err != nil {
		return err
	}
	y, err := c.fitAxis(model.AxisY, c.YData())
	if err != nil {
		return err
	}

	c.fitted = &model.FittedParameters{X: x, Y: y}
	return nil
}

func (c *ClassModel) fitAxis(axis model.Axis, data []float64) (model.Normal, error) {
	sample := stats.Sample{Xs: data}
	n := model.Normal{Mean: sample.Mean(), StdDev: sample.StdDev()}
	if err := n.Validate(); err != nil {
		return model.Normal{}, &model.DistributionError{
			Class:  c.id,
			Axis:   axis,
			Points: len(data),
			Err:    err,
		}
	}
	return n, nil
}

// Parameters returns the fitted marginals. The boolean is false until Fit
// has succeeded at least once.
func (c *ClassModel) Parameters() (model.FittedParameters, bool) {
	if c.fitted == nil {
		return model.FittedParameters{}, false
	}
	return *c.fitted, true
}

// IsFitted reports whether Fit has succeeded.
func (c *ClassModel) IsFitted() bool {
	return c.fitted != nil
}

// Likelihood returns ln(initial) + ln(CDFx(p.X)) + ln(CDFy(p.Y)).
//
// initial is the prior probability of the class and is expected to lie in
// (0, 1]; it is not validated here, so initial == 0 yields -Inf. The second
// result is false, with a zero score, when the model has not been fit.
func (c *ClassModel) Likelihood(initial float64, p model.Point) (float64, bool) {
	terms, ok := c.logTerms(initial, p)
	if !ok {
		return 0, false
	}
	return terms.prior + terms.x + terms.y, true
}

// scoreTerms are the three summands of a likelihood score.
type scoreTerms struct {
	prior, x, y float64
}

func (c *ClassModel) logTerms(initial float64, p model.Point) (scoreTerms, bool) {
	if c.fitted == nil {
		return scoreTerms{}, false
	}
	return scoreTerms{
		prior: math.Log(initial),
		x:     math.Log(cdf(c.fitted.X, p.X)),
		y:     math.Log(cdf(c.fitted.Y, p.Y)),
	}, true
}

func cdf(n model.Normal, v float64) float64 {
	return stats.NormalDist{Mu: n.Mean, Sigma: n.StdDev}.CDF(v)
}

// String returns a short description for diagnostics.
func (c *ClassModel) String() string {
	if c.fitted == nil {
		return fmt.Sprintf("class %s: %d points, not fit", c.id, len(c.points))
	}
	return fmt.Sprintf("class %s: %d points, %s", c.id, len(c.points), c.fitted)
}
