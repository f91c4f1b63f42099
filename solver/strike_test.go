package solver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxdesk/dciquant/solver"
)

func TestSolveStrikeQuadratic(t *testing.T) {
	objective := func(strike float64) (float64, error) {
		return strike * strike / 10000, nil
	}

	strike, err := solver.SolveStrike(objective, 1.1, 0, 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(11000), strike, 1e-2)

	value, err := objective(strike)
	require.NoError(t, err)
	assert.InDelta(t, 1.1, value, 1e-4)
}

func TestSolveStrikeStartsFromGuess(t *testing.T) {
	calls := 0
	objective := func(strike float64) (float64, error) {
		calls++
		return strike / 100, nil
	}

	strike, err := solver.SolveStrike(objective, 0.98, 98, 100)
	require.NoError(t, err)
	assert.InDelta(t, 98, strike, 1e-4)
	assert.Equal(t, 1, calls)
}

func TestSolveStrikeUnreachableTarget(t *testing.T) {
	objective := func(strike float64) (float64, error) {
		return strike / 100, nil
	}

	// The objective tops out at 1.2 on the clamped strike band, so a target
	// of 5 stalls against the upper bound.
	_, err := solver.SolveStrike(objective, 5, 0, 100)
	require.Error(t, err)

	var convErr *solver.ConvergenceError
	require.ErrorAs(t, err, &convErr)
	assert.InDelta(t, 120, convErr.LastStrike, 1e-9)
	assert.InDelta(t, 1.2, convErr.LastValue, 1e-9)
	assert.Equal(t, 5.0, convErr.Target)
	assert.NotEmpty(t, convErr.Error())
}

func TestSolveStrikeVanishingDerivative(t *testing.T) {
	objective := func(strike float64) (float64, error) {
		return 0.42, nil
	}

	_, err := solver.SolveStrike(objective, 1.0, 0, 100)
	require.Error(t, err)

	var convErr *solver.ConvergenceError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "objective derivative vanished", convErr.Reason)
}

func TestSolveStrikePropagatesObjectiveError(t *testing.T) {
	sentinel := errors.New("market data missing")
	objective := func(strike float64) (float64, error) {
		return 0, sentinel
	}

	_, err := solver.SolveStrike(objective, 1.0, 0, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestSolveStrikeRejectsBadSpot(t *testing.T) {
	objective := func(strike float64) (float64, error) { return strike, nil }

	_, err := solver.SolveStrike(objective, 1.0, 0, 0)
	require.Error(t, err)
	_, err = solver.SolveStrike(objective, 1.0, 0, math.NaN())
	require.Error(t, err)
}

func TestStrikeLadder(t *testing.T) {
	objective := func(strike float64) (float64, error) {
		return strike * 2, nil
	}

	rows, err := solver.StrikeLadder(objective, 11, 0.95, 1.00, 100)
	require.NoError(t, err)
	require.Len(t, rows, 11)

	assert.InDelta(t, 95, rows[0].Strike, 1e-12)
	assert.InDelta(t, 100, rows[10].Strike, 1e-12)

	for i, row := range rows {
		assert.InDelta(t, row.Strike*2, row.Value, 1e-12)
		if i > 0 {
			assert.Greater(t, row.Strike, rows[i-1].Strike)
		}
	}
}

func TestStrikeLadderValidation(t *testing.T) {
	objective := func(strike float64) (float64, error) { return strike, nil }

	_, err := solver.StrikeLadder(objective, 1, 0.95, 1.00, 100)
	require.Error(t, err)
	_, err = solver.StrikeLadder(objective, 5, 1.00, 0.95, 100)
	require.Error(t, err)
	_, err = solver.StrikeLadder(objective, 5, 0.95, 1.00, -1)
	require.Error(t, err)
}
