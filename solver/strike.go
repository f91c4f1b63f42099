// Package solver finds the strike at which a caller-supplied objective (for
// example a strike-to-coupon function from the product layer) hits a target
// value, and samples strike ladders for presentation.
package solver

import (
	"fmt"
	"math"
)

// Objective maps a strike to the scalar the solver drives to its target.
// The function is treated as a black box.
type Objective func(strike float64) (float64, error)

const (
	maxIterations   = 50
	valueTolerance  = 1e-4
	strikeTolerance = 1e-4
	derivativeBump  = 0.01 // one pip either side for the central difference
	derivativeFloor = 1e-10
	maxStepRatio    = 0.10
	minStrikeRatio  = 0.80
	maxStrikeRatio  = 1.20
)

// ConvergenceError is the hard failure of a strike search. Callers need a
// specific strike to proceed and must not continue on a bad value, so the
// last iterate is reported rather than silently returned.
type ConvergenceError struct {
	Reason     string
	Iterations int
	LastStrike float64
	LastValue  float64
	Target     float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solver: %s after %d iterations (strike=%.6f value=%.6f target=%.6f)",
		e.Reason, e.Iterations, e.LastStrike, e.LastValue, e.Target)
}

// SolveStrike runs a bounded Newton-Raphson in strike space. Pass guess <= 0
// to start from spot. The search is clamped to [0.80, 1.20] of spot and each
// step to 10% of the current strike.
func SolveStrike(objective Objective, target, guess, spot float64) (float64, error) {
	if spot <= 0 || math.IsNaN(spot) {
		return 0, fmt.Errorf("solver: spot must be positive, got %v", spot)
	}
	if guess <= 0 || math.IsNaN(guess) {
		guess = spot
	}

	lo := spot * minStrikeRatio
	hi := spot * maxStrikeRatio
	strike := clamp(guess, lo, hi)

	value, err := objective(strike)
	if err != nil {
		return 0, fmt.Errorf("solver: objective at strike %v: %w", strike, err)
	}

	for i := 0; i < maxIterations; i++ {
		diff := value - target
		if math.Abs(diff) < valueTolerance {
			return strike, nil
		}

		up, err := objective(strike + derivativeBump)
		if err != nil {
			return 0, fmt.Errorf("solver: objective at strike %v: %w", strike+derivativeBump, err)
		}
		down, err := objective(strike - derivativeBump)
		if err != nil {
			return 0, fmt.Errorf("solver: objective at strike %v: %w", strike-derivativeBump, err)
		}

		derivative := (up - down) / (2 * derivativeBump)
		if math.Abs(derivative) < derivativeFloor {
			return 0, &ConvergenceError{
				Reason:     "objective derivative vanished",
				Iterations: i,
				LastStrike: strike,
				LastValue:  value,
				Target:     target,
			}
		}

		step := -diff / derivative
		maxStep := maxStepRatio * strike
		step = clamp(step, -maxStep, maxStep)

		next := clamp(strike+step, lo, hi)
		moved := math.Abs(next - strike)
		strike = next

		value, err = objective(strike)
		if err != nil {
			return 0, fmt.Errorf("solver: objective at strike %v: %w", strike, err)
		}

		if moved < strikeTolerance {
			if math.Abs(value-target) < valueTolerance {
				return strike, nil
			}
			return 0, &ConvergenceError{
				Reason:     "strike update stalled",
				Iterations: i + 1,
				LastStrike: strike,
				LastValue:  value,
				Target:     target,
			}
		}
	}

	return 0, &ConvergenceError{
		Reason:     "did not converge",
		Iterations: maxIterations,
		LastStrike: strike,
		LastValue:  value,
		Target:     target,
	}
}

// LadderRow is one sampled point of a strike ladder.
type LadderRow struct {
	Strike float64
	Value  float64
}

// StrikeLadder samples the objective at count evenly spaced strikes across
// [minRatio, maxRatio] of spot, endpoints included. No root finding is
// involved; the rows present the raw strike/value relationship.
func StrikeLadder(objective Objective, count int, minRatio, maxRatio, spot float64) ([]LadderRow, error) {
	if spot <= 0 || math.IsNaN(spot) {
		return nil, fmt.Errorf("solver: spot must be positive, got %v", spot)
	}
	if count < 2 {
		return nil, fmt.Errorf("solver: ladder needs at least 2 rows, got %d", count)
	}
	if !(minRatio > 0 && minRatio < maxRatio) {
		return nil, fmt.Errorf("solver: invalid ladder band [%v, %v]", minRatio, maxRatio)
	}

	rows := make([]LadderRow, 0, count)
	step := (maxRatio - minRatio) / float64(count-1)
	for i := 0; i < count; i++ {
		strike := spot * (minRatio + float64(i)*step)
		value, err := objective(strike)
		if err != nil {
			return nil, fmt.Errorf("solver: objective at strike %v: %w", strike, err)
		}
		rows = append(rows, LadderRow{Strike: strike, Value: value})
	}
	return rows, nil
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
