package classmodel

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/shinji-kodama/gaussclass/internal/model"
)

const tolerance = 1e-9

// samplePoints is a small asymmetric class used across tests.
var samplePoints = []model.Point{
	{X: 1.0, Y: 4.5},
	{X: 2.5, Y: -1.0},
	{X: 3.0, Y: 0.25},
	{X: 7.25, Y: 2.0},
	{X: -0.5, Y: 3.5},
}

func xs(points []model.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.X
	}
	return out
}

func ys(points []model.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Y
	}
	return out
}

// --- Fit tests ---

// TestFit_MatchesSampleStatistics verifies that the fitted parameters equal
// the arithmetic mean and the unbiased (N-1) standard deviation of each
// axis, computed independently with gonum.
func TestFit_MatchesSampleStatistics(t *testing.T) {
	c := New(1, samplePoints...)
	require.NoError(t, c.Fit())

	params, ok := c.Parameters()
	require.True(t, ok, "parameters should be present after a successful fit")

	assert.InDelta(t, stat.Mean(xs(samplePoints), nil), params.X.Mean, tolerance)
	assert.InDelta(t, stat.Mean(ys(samplePoints), nil), params.Y.Mean, tolerance)
	assert.InDelta(t, stat.StdDev(xs(samplePoints), nil), params.X.StdDev, tolerance)
	assert.InDelta(t, stat.StdDev(ys(samplePoints), nil), params.Y.StdDev, tolerance)
}

// TestFit_TwoPoints checks a hand-computed case: mean 2, variance 2.
func TestFit_TwoPoints(t *testing.T) {
	c := New(0, model.Point{X: 1, Y: 1}, model.Point{X: 3, Y: 3})
	require.NoError(t, c.Fit())

	params, ok := c.Parameters()
	require.True(t, ok)
	assert.InDelta(t, 2.0, params.X.Mean, tolerance)
	assert.InDelta(t, math.Sqrt2, params.X.StdDev, tolerance)
	assert.InDelta(t, 2.0, params.Y.Mean, tolerance)
	assert.InDelta(t, math.Sqrt2, params.Y.StdDev, tolerance)
}

// TestFit_SinglePoint verifies that one observation cannot produce a
// distribution, because its sample standard deviation is zero.
func TestFit_SinglePoint(t *testing.T) {
	c := New(4, model.Point{X: 1, Y: 2})
	err := c.Fit()
	require.Error(t, err)

	var distErr *model.DistributionError
	require.True(t, errors.As(err, &distErr), "error should be a *model.DistributionError")
	assert.Equal(t, model.ClassID(4), distErr.Class)
	assert.Equal(t, model.AxisX, distErr.Axis, "x is checked first")
	assert.Equal(t, 1, distErr.Points)

	assert.False(t, c.IsFitted(), "a failed fit must not leave parameters behind")
}

// TestFit_DegenerateAxis verifies that identical values on one axis fail
// even when the other axis varies.
func TestFit_DegenerateAxis(t *testing.T) {
	c := New(2,
		model.Point{X: 1, Y: 5},
		model.Point{X: 2, Y: 5},
		model.Point{X: 3, Y: 5},
	)
	err := c.Fit()

	var distErr *model.DistributionError
	require.True(t, errors.As(err, &distErr))
	assert.Equal(t, model.AxisY, distErr.Axis)
	assert.Equal(t, 3, distErr.Points)
}

// TestFit_NoPoints verifies the empty-class failure mode.
func TestFit_NoPoints(t *testing.T) {
	err := New(8).Fit()

	var distErr *model.DistributionError
	require.True(t, errors.As(err, &distErr))
	assert.True(t, errors.Is(err, model.ErrNoPoints))
}

// TestFit_Overflow verifies that values whose spread overflows float64
// are reported as a distribution failure rather than an infinite sigma.
func TestFit_Overflow(t *testing.T) {
	c := New(1,
		model.Point{X: -math.MaxFloat64, Y: 0},
		model.Point{X: math.MaxFloat64, Y: 1},
	)
	var distErr *model.DistributionError
	require.True(t, errors.As(c.Fit(), &distErr))
	assert.Equal(t, model.AxisX, distErr.Axis)
}

// TestFit_Refit verifies that fitting is a full recomputation: refitting
// the same point set is idempotent, and adding points changes the result
// only after the next Fit.
func TestFit_Refit(t *testing.T) {
	c := New(0, model.Point{X: 1, Y: 1}, model.Point{X: 3, Y: 3})
	require.NoError(t, c.Fit())
	first, _ := c.Parameters()

	require.NoError(t, c.Fit())
	second, _ := c.Parameters()
	assert.Equal(t, first, second)

	c.Add(model.Point{X: 8, Y: 8})
	stale, _ := c.Parameters()
	assert.Equal(t, first, stale, "Add must not update parameters by itself")

	require.NoError(t, c.Fit())
	third, _ := c.Parameters()
	assert.InDelta(t, 4.0, third.X.Mean, tolerance)
}

// TestFit_FailedRefitKeepsPrevious verifies that a failing refit leaves
// the previous parameters in place.
func TestFit_FailedRefitKeepsPrevious(t *testing.T) {
	c := New(0, model.Point{X: 1, Y: 1}, model.Point{X: 3, Y: 3})
	require.NoError(t, c.Fit())
	before, _ := c.Parameters()

	c.Add(model.Point{X: math.MaxFloat64, Y: 2})
	c.Add(model.Point{X: -math.MaxFloat64, Y: 2})
	require.Error(t, c.Fit())

	after, ok := c.Parameters()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

// --- Likelihood tests ---

// TestLikelihood_NotFit verifies that scoring an unfitted model is an
// absent result, not an error or a panic.
func TestLikelihood_NotFit(t *testing.T) {
	c := New(0, samplePoints...)
	score, ok := c.Likelihood(0.5, model.Point{X: 1, Y: 1})
	assert.False(t, ok)
	assert.Zero(t, score)
}

// TestLikelihood_UsesCDF verifies the exact scoring formula against an
// independent gonum computation. A density-based score would differ.
func TestLikelihood_UsesCDF(t *testing.T) {
	c := New(1, samplePoints...)
	require.NoError(t, c.Fit())
	params, _ := c.Parameters()

	query := model.Point{X: 6.98645, Y: -2.936}
	nx := distuv.Normal{Mu: params.X.Mean, Sigma: params.X.StdDev}
	ny := distuv.Normal{Mu: params.Y.Mean, Sigma: params.Y.StdDev}
	want := math.Log(0.5) + math.Log(nx.CDF(query.X)) + math.Log(ny.CDF(query.Y))

	got, ok := c.Likelihood(0.5, query)
	require.True(t, ok)
	assert.InDelta(t, want, got, tolerance)

	density := math.Log(0.5) + nx.LogProb(query.X) + ny.LogProb(query.Y)
	assert.Greater(t, math.Abs(got-density), 1e-3, "score must not be density based")
}

// TestLikelihood_AtMean verifies the closed form at the fitted means,
// where each CDF equals one half.
func TestLikelihood_AtMean(t *testing.T) {
	c := New(0, model.Point{X: 1, Y: 1}, model.Point{X: 3, Y: 3})
	require.NoError(t, c.Fit())

	got, ok := c.Likelihood(1, model.Point{X: 2, Y: 2})
	require.True(t, ok)
	assert.InDelta(t, 2*math.Log(0.5), got, tolerance)
}

// TestLikelihood_MonotonicInPrior verifies that a larger prior always
// yields a strictly larger score for a fixed class and point.
func TestLikelihood_MonotonicInPrior(t *testing.T) {
	c := New(1, samplePoints...)
	require.NoError(t, c.Fit())

	query := model.Point{X: 2, Y: 1}
	priors := []float64{1e-6, 0.01, 0.1, 0.25, 0.5, 0.75, 0.99, 1}

	prev := math.Inf(-1)
	for _, prior := range priors {
		score, ok := c.Likelihood(prior, query)
		require.True(t, ok)
		assert.Greater(t, score, prev, "prior %v", prior)
		prev = score
	}
}

// TestLikelihood_ZeroPrior verifies that a zero prior yields -Inf rather
// than an error.
func TestLikelihood_ZeroPrior(t *testing.T) {
	c := New(1, samplePoints...)
	require.NoError(t, c.Fit())

	score, ok := c.Likelihood(0, model.Point{X: 2, Y: 1})
	require.True(t, ok)
	assert.True(t, math.IsInf(score, -1))
}

// TestLikelihood_TermOrder verifies that summing the three terms in any
// order gives the same score within floating-point tolerance.
func TestLikelihood_TermOrder(t *testing.T) {
	c := New(1, samplePoints...)
	require.NoError(t, c.Fit())

	query := model.Point{X: 0.3, Y: 2.2}
	terms, ok := c.logTerms(0.3, query)
	require.True(t, ok)

	score, _ := c.Likelihood(0.3, query)
	orders := [][3]float64{
		{terms.prior, terms.x, terms.y},
		{terms.prior, terms.y, terms.x},
		{terms.x, terms.prior, terms.y},
		{terms.x, terms.y, terms.prior},
		{terms.y, terms.prior, terms.x},
		{terms.y, terms.x, terms.prior},
	}
	for _, o := range orders {
		assert.InDelta(t, score, o[0]+o[1]+o[2], 1e-12)
	}
}

// --- Accessor tests ---

// TestAccessors verifies the read-only views over a model's observations.
func TestAccessors(t *testing.T) {
	c := New(7, model.Point{X: 1, Y: 2})
	c.Add(model.Point{X: 3, Y: 4})

	assert.Equal(t, model.ClassID(7), c.ID())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []float64{1, 3}, c.XData())
	assert.Equal(t, []float64{2, 4}, c.YData())

	points := c.Points()
	points[0] = model.Point{X: 100, Y: 100}
	assert.Equal(t, model.Point{X: 1, Y: 2}, c.Points()[0], "Points must return a copy")

	assert.Equal(t, "class 7: 2 points, not fit", c.String())
}
