// Package curves provides zero-coupon curve construction and interpolation:
// flat, linear and natural cubic spline variants plus a sequential
// bootstrapper over market deposit and swap quotes.
//
// Curves are immutable once built and safe to share without locking.
package curves

import (
	"fmt"
	"math"
	"sort"
)

// CurvePoint is one pillar of a zero curve: a tenor in years (ACT/365) and a
// continuously compounded zero rate.
type CurvePoint struct {
	Tenor    float64
	ZeroRate float64
}

// DiscountFactor returns e^(-r*t) for the pillar.
func (p CurvePoint) DiscountFactor() float64 {
	return math.Exp(-p.ZeroRate * p.Tenor)
}

// ZeroCurve is the read-only curve surface consumed by pricing callers.
type ZeroCurve interface {
	// ZeroRate returns the continuously compounded zero rate at tenor t.
	ZeroRate(t float64) float64
	// DiscountFactor returns e^(-ZeroRate(t)*t).
	DiscountFactor(t float64) float64
	// ForwardRate returns the continuously compounded forward rate between t1 and t2.
	ForwardRate(t1, t2 float64) float64
	// ValidRange reports the tenor interval covered by the curve's pillars.
	ValidRange() (min, max float64)
}

// ConstructionError reports a violated curve construction invariant: too few
// points, or tenors that are not strictly increasing.
type ConstructionError struct {
	Reason string
}

func (e *ConstructionError) Error() string {
	return "curves: " + e.Reason
}

func forwardRate(c ZeroCurve, t1, t2 float64) float64 {
	if t2 == t1 {
		return c.ZeroRate(t1)
	}
	return (c.ZeroRate(t2)*t2 - c.ZeroRate(t1)*t1) / (t2 - t1)
}

// checkPillars verifies strictly increasing, non-negative, finite tenors.
func checkPillars(points []CurvePoint) error {
	for i, p := range points {
		if math.IsNaN(p.Tenor) || p.Tenor < 0 {
			return &ConstructionError{Reason: fmt.Sprintf("pillar %d has invalid tenor %v", i, p.Tenor)}
		}
		if math.IsNaN(p.ZeroRate) || math.IsInf(p.ZeroRate, 0) {
			return &ConstructionError{Reason: fmt.Sprintf("pillar %d has invalid rate %v", i, p.ZeroRate)}
		}
		if i > 0 && p.Tenor <= points[i-1].Tenor {
			return &ConstructionError{Reason: fmt.Sprintf("pillar tenors must be strictly increasing (pillar %d: %v <= %v)", i, p.Tenor, points[i-1].Tenor)}
		}
	}
	return nil
}

// FlatCurve applies a single zero rate to every tenor.
type FlatCurve struct {
	Rate float64
}

func NewFlatCurve(rate float64) FlatCurve {
	return FlatCurve{Rate: rate}
}

func (c FlatCurve) ZeroRate(t float64) float64 {
	return c.Rate
}

func (c FlatCurve) DiscountFactor(t float64) float64 {
	return math.Exp(-c.Rate * t)
}

func (c FlatCurve) ForwardRate(t1, t2 float64) float64 {
	return c.Rate
}

func (c FlatCurve) ValidRange() (float64, float64) {
	return 0, math.Inf(1)
}

// LinearCurve interpolates zero rates linearly in tenor between pillars and
// extrapolates flat from the nearest endpoint outside them.
type LinearCurve struct {
	points []CurvePoint
	tenors []float64
}

// NewLinearCurve builds a linear curve from at least two pillars with
// strictly increasing tenors.
func NewLinearCurve(points []CurvePoint) (*LinearCurve, error) {
	if len(points) < 2 {
		return nil, &ConstructionError{Reason: fmt.Sprintf("linear curve needs at least 2 pillars, got %d", len(points))}
	}
	if err := checkPillars(points); err != nil {
		return nil, err
	}

	c := &LinearCurve{
		points: append([]CurvePoint(nil), points...),
		tenors: make([]float64, len(points)),
	}
	for i, p := range c.points {
		c.tenors[i] = p.Tenor
	}
	return c, nil
}

func (c *LinearCurve) ZeroRate(t float64) float64 {
	last := len(c.points) - 1
	if t <= c.tenors[0] {
		return c.points[0].ZeroRate
	}
	if t >= c.tenors[last] {
		return c.points[last].ZeroRate
	}

	// Index of the right bracket pillar.
	hi := sort.SearchFloat64s(c.tenors, t)
	if c.tenors[hi] == t {
		return c.points[hi].ZeroRate
	}
	lo := hi - 1

	w := (t - c.tenors[lo]) / (c.tenors[hi] - c.tenors[lo])
	return c.points[lo].ZeroRate + w*(c.points[hi].ZeroRate-c.points[lo].ZeroRate)
}

func (c *LinearCurve) DiscountFactor(t float64) float64 {
	return math.Exp(-c.ZeroRate(t) * t)
}

func (c *LinearCurve) ForwardRate(t1, t2 float64) float64 {
	return forwardRate(c, t1, t2)
}

func (c *LinearCurve) ValidRange() (float64, float64) {
	return c.tenors[0], c.tenors[len(c.tenors)-1]
}

// Points returns a copy of the curve's pillars.
func (c *LinearCurve) Points() []CurvePoint {
	return append([]CurvePoint(nil), c.points...)
}
