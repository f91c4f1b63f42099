package curves

import (
	"fmt"
	"math"
	"sort"
)

// CubicSplineCurve interpolates zero rates with a natural cubic spline
// (second derivative zero at both ends). Second derivatives are solved once
// at construction with the standard tridiagonal recurrence; queries evaluate
// the per-segment cubic from the two bracketing pillars. Outside the pillar
// range the curve extrapolates flat, matching the linear variant.
type CubicSplineCurve struct {
	points []CurvePoint
	tenors []float64
	second []float64
}

// NewCubicSplineCurve builds a natural spline over at least three pillars.
// Two pillars are accepted and degenerate to linear interpolation (all second
// derivatives zero).
func NewCubicSplineCurve(points []CurvePoint) (*CubicSplineCurve, error) {
	if len(points) < 2 {
		return nil, &ConstructionError{Reason: fmt.Sprintf("cubic spline curve needs at least 2 pillars, got %d", len(points))}
	}
	if err := checkPillars(points); err != nil {
		return nil, err
	}

	c := &CubicSplineCurve{
		points: append([]CurvePoint(nil), points...),
		tenors: make([]float64, len(points)),
	}
	for i, p := range c.points {
		c.tenors[i] = p.Tenor
	}
	c.second = solveNaturalSpline(c.points)
	return c, nil
}

// solveNaturalSpline runs the forward-elimination / back-substitution
// recurrence over the interior pillars. Natural boundary: y''(first) =
// y''(last) = 0, which also covers the 2-pillar degenerate case.
func solveNaturalSpline(points []CurvePoint) []float64 {
	n := len(points)
	second := make([]float64, n)
	if n < 3 {
		return second
	}

	u := make([]float64, n-1)
	for i := 1; i < n-1; i++ {
		x0, x1, x2 := points[i-1].Tenor, points[i].Tenor, points[i+1].Tenor
		y0, y1, y2 := points[i-1].ZeroRate, points[i].ZeroRate, points[i+1].ZeroRate

		sig := (x1 - x0) / (x2 - x0)
		p := sig*second[i-1] + 2
		second[i] = (sig - 1) / p

		du := (y2-y1)/(x2-x1) - (y1-y0)/(x1-x0)
		u[i] = (6*du/(x2-x0) - sig*u[i-1]) / p
	}

	for i := n - 2; i >= 1; i-- {
		second[i] = second[i]*second[i+1] + u[i]
	}
	return second
}

func (c *CubicSplineCurve) ZeroRate(t float64) float64 {
	last := len(c.points) - 1
	if t <= c.tenors[0] {
		return c.points[0].ZeroRate
	}
	if t >= c.tenors[last] {
		return c.points[last].ZeroRate
	}

	hi := sort.SearchFloat64s(c.tenors, t)
	if c.tenors[hi] == t {
		return c.points[hi].ZeroRate
	}
	lo := hi - 1

	h := c.tenors[hi] - c.tenors[lo]
	a := (c.tenors[hi] - t) / h
	b := (t - c.tenors[lo]) / h

	return a*c.points[lo].ZeroRate + b*c.points[hi].ZeroRate +
		((a*a*a-a)*c.second[lo]+(b*b*b-b)*c.second[hi])*h*h/6
}

func (c *CubicSplineCurve) DiscountFactor(t float64) float64 {
	return math.Exp(-c.ZeroRate(t) * t)
}

func (c *CubicSplineCurve) ForwardRate(t1, t2 float64) float64 {
	return forwardRate(c, t1, t2)
}

func (c *CubicSplineCurve) ValidRange() (float64, float64) {
	return c.tenors[0], c.tenors[len(c.tenors)-1]
}

// Points returns a copy of the curve's pillars.
func (c *CubicSplineCurve) Points() []CurvePoint {
	return append([]CurvePoint(nil), c.points...)
}
