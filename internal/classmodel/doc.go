// Package classmodel implements the per-class statistical model.
//
// A ClassModel owns the observations of one class and, once fit, an
// independent normal distribution for each coordinate. The sample mean and
// the sample (N-1) standard deviation come from
// github.com/aclements/go-moremath/stats, which also supplies the normal
// CDF used for scoring.
//
// Scoring deliberately uses cumulative probabilities rather than densities:
//
//	score = ln(prior) + ln(CDFx(p.x)) + ln(CDFy(p.y))
//
// The result is comparable across classes for the same point and prior, but
// it is not a Gaussian log-density discriminant.
package classmodel
