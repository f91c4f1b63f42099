// Package vols provides volatility lookup by strike and tenor: a flat
// surface, a bilinear-interpolated grid surface and a delta-quoted smile.
// Surfaces are immutable after construction.
package vols

import (
	"fmt"
	"math"
	"sort"
)

// MaxVol bounds every quoted volatility, matching the pricer's input domain.
const MaxVol = 5.0

// Point is one quoted node of a volatility surface.
type Point struct {
	Strike float64
	Tenor  float64
	Vol    float64
	// Moneyness is optional metadata (strike over forward); zero when unset.
	Moneyness float64
}

// VolSurface is the lookup contract shared by every surface variant.
type VolSurface interface {
	// Volatility returns the volatility at the given strike and tenor.
	Volatility(strike, tenor float64) (float64, error)
	// ATMVolatility is Volatility evaluated at the spot.
	ATMVolatility(spot, tenor float64) (float64, error)
	// VolatilityByMoneyness resolves the strike as moneyness*spot.
	VolatilityByMoneyness(moneyness, spot, tenor float64) (float64, error)
	// ValidRange reports the strike and tenor intervals covered by the quotes.
	ValidRange() (minStrike, maxStrike, minTenor, maxTenor float64)
	// InRange reports whether the query lies inside ValidRange.
	InRange(strike, tenor float64) bool
}

// RangeError reports a non-positive or non-finite query input.
type RangeError struct {
	Param string
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("vols: %s out of range: %v", e.Param, e.Value)
}

// ConstructionError reports a violated surface construction invariant.
type ConstructionError struct {
	Reason string
}

func (e *ConstructionError) Error() string {
	return "vols: " + e.Reason
}

func checkQuery(strike, tenor float64) error {
	if math.IsNaN(strike) || math.IsInf(strike, 0) || strike <= 0 {
		return &RangeError{Param: "strike", Value: strike}
	}
	if math.IsNaN(tenor) || math.IsInf(tenor, 0) || tenor <= 0 {
		return &RangeError{Param: "tenor", Value: tenor}
	}
	return nil
}

// FlatSurface returns one volatility for every valid strike and tenor.
type FlatSurface struct {
	Vol float64
}

// NewFlatSurface validates the volatility against (0, MaxVol].
func NewFlatSurface(vol float64) (FlatSurface, error) {
	if math.IsNaN(vol) || vol <= 0 || vol > MaxVol {
		return FlatSurface{}, &ConstructionError{Reason: fmt.Sprintf("volatility out of range: %v", vol)}
	}
	return FlatSurface{Vol: vol}, nil
}

func (s FlatSurface) Volatility(strike, tenor float64) (float64, error) {
	if err := checkQuery(strike, tenor); err != nil {
		return 0, err
	}
	return s.Vol, nil
}

func (s FlatSurface) ATMVolatility(spot, tenor float64) (float64, error) {
	return s.Volatility(spot, tenor)
}

func (s FlatSurface) VolatilityByMoneyness(moneyness, spot, tenor float64) (float64, error) {
	return s.Volatility(moneyness*spot, tenor)
}

func (s FlatSurface) ValidRange() (float64, float64, float64, float64) {
	return 0, math.Inf(1), 0, math.Inf(1)
}

func (s FlatSurface) InRange(strike, tenor float64) bool {
	return strike > 0 && tenor > 0
}

// InterpolatedSurface interpolates bilinearly over a full rectangular grid of
// quotes: at least two distinct strikes by two distinct tenors, with a quote
// at every combination. Queries outside the grid clamp to its edge.
type InterpolatedSurface struct {
	strikes []float64
	tenors  []float64
	// grid[i][j] is the vol at strikes[i], tenors[j].
	grid [][]float64
}

// NewInterpolatedSurface builds the grid from an unordered point set.
// Construction fails on short axes, an incomplete rectangle, duplicate nodes
// or out-of-domain values; a query can then never miss a corner.
func NewInterpolatedSurface(points []Point) (*InterpolatedSurface, error) {
	if len(points) < 4 {
		return nil, &ConstructionError{Reason: fmt.Sprintf("interpolated surface needs at least 4 points, got %d", len(points))}
	}

	strikeSet := map[float64]bool{}
	tenorSet := map[float64]bool{}
	for i, p := range points {
		if math.IsNaN(p.Strike) || p.Strike <= 0 {
			return nil, &ConstructionError{Reason: fmt.Sprintf("point %d has invalid strike %v", i, p.Strike)}
		}
		if math.IsNaN(p.Tenor) || p.Tenor <= 0 {
			return nil, &ConstructionError{Reason: fmt.Sprintf("point %d has invalid tenor %v", i, p.Tenor)}
		}
		if math.IsNaN(p.Vol) || p.Vol <= 0 || p.Vol > MaxVol {
			return nil, &ConstructionError{Reason: fmt.Sprintf("point %d has invalid volatility %v", i, p.Vol)}
		}
		strikeSet[p.Strike] = true
		tenorSet[p.Tenor] = true
	}

	s := &InterpolatedSurface{
		strikes: sortedKeys(strikeSet),
		tenors:  sortedKeys(tenorSet),
	}
	if len(s.strikes) < 2 || len(s.tenors) < 2 {
		return nil, &ConstructionError{Reason: fmt.Sprintf("interpolated surface needs >=2 distinct strikes and tenors, got %dx%d", len(s.strikes), len(s.tenors))}
	}
	if len(points) != len(s.strikes)*len(s.tenors) {
		return nil, &ConstructionError{Reason: fmt.Sprintf("grid is not rectangular: %d points for a %dx%d grid", len(points), len(s.strikes), len(s.tenors))}
	}

	s.grid = make([][]float64, len(s.strikes))
	for i := range s.grid {
		s.grid[i] = make([]float64, len(s.tenors))
		for j := range s.grid[i] {
			s.grid[i][j] = math.NaN()
		}
	}
	for _, p := range points {
		i := sort.SearchFloat64s(s.strikes, p.Strike)
		j := sort.SearchFloat64s(s.tenors, p.Tenor)
		if !math.IsNaN(s.grid[i][j]) {
			return nil, &ConstructionError{Reason: fmt.Sprintf("duplicate point at strike %v tenor %v", p.Strike, p.Tenor)}
		}
		s.grid[i][j] = p.Vol
	}

	return s, nil
}

func sortedKeys(set map[float64]bool) []float64 {
	keys := make([]float64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

func (s *InterpolatedSurface) Volatility(strike, tenor float64) (float64, error) {
	if err := checkQuery(strike, tenor); err != nil {
		return 0, err
	}

	k := clamp(strike, s.strikes[0], s.strikes[len(s.strikes)-1])
	t := clamp(tenor, s.tenors[0], s.tenors[len(s.tenors)-1])

	i, wK := bracket(s.strikes, k)
	j, wT := bracket(s.tenors, t)

	v11 := s.grid[i][j]
	v21 := s.grid[i+1][j]
	v12 := s.grid[i][j+1]
	v22 := s.grid[i+1][j+1]

	return (1-wK)*(1-wT)*v11 + wK*(1-wT)*v21 + (1-wK)*wT*v12 + wK*wT*v22, nil
}

func (s *InterpolatedSurface) ATMVolatility(spot, tenor float64) (float64, error) {
	return s.Volatility(spot, tenor)
}

func (s *InterpolatedSurface) VolatilityByMoneyness(moneyness, spot, tenor float64) (float64, error) {
	return s.Volatility(moneyness*spot, tenor)
}

func (s *InterpolatedSurface) ValidRange() (float64, float64, float64, float64) {
	return s.strikes[0], s.strikes[len(s.strikes)-1], s.tenors[0], s.tenors[len(s.tenors)-1]
}

func (s *InterpolatedSurface) InRange(strike, tenor float64) bool {
	minK, maxK, minT, maxT := s.ValidRange()
	return strike >= minK && strike <= maxK && tenor >= minT && tenor <= maxT
}

// bracket returns the left index of the cell containing v and the weight of
// the right node. v must already be clamped into the axis range.
func bracket(axis []float64, v float64) (int, float64) {
	hi := sort.SearchFloat64s(axis, v)
	if hi <= 0 {
		return 0, 0
	}
	if hi >= len(axis) {
		return len(axis) - 2, 1
	}
	if axis[hi] == v {
		if hi == len(axis)-1 {
			return hi - 1, 1
		}
		return hi, 0
	}
	lo := hi - 1
	return lo, (v - axis[lo]) / (axis[hi] - axis[lo])
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
