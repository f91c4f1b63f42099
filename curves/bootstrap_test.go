package curves_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxdesk/dciquant/curves"
)

var bootstrapStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func deposit(days int, rate float64) curves.Deposit {
	return curves.Deposit{
		Start:    bootstrapStart,
		Maturity: bootstrapStart.AddDate(0, 0, days),
		Rate:     rate,
	}
}

func swap(days int, rate float64, paymentsPerYear int) curves.Swap {
	return curves.Swap{
		Start:                bootstrapStart,
		Maturity:             bootstrapStart.AddDate(0, 0, days),
		Rate:                 rate,
		FixedPaymentsPerYear: paymentsPerYear,
	}
}

func TestBootstrapDepositsTermStructure(t *testing.T) {
	curve, err := curves.Bootstrap([]curves.Instrument{
		deposit(90, 0.015),
		deposit(182, 0.016),
		deposit(365, 0.017),
	}, curves.Linear)
	require.NoError(t, err)

	// Continuous zero rates sit just under the simple quotes.
	assert.InDelta(t, 0.015, curve.ZeroRate(90.0/365), 3e-4)
	assert.InDelta(t, 0.016, curve.ZeroRate(0.5), 3e-4)
	assert.InDelta(t, 0.017, curve.ZeroRate(1.0), 3e-4)

	// The upward term structure of the quotes survives bootstrapping.
	assert.GreaterOrEqual(t, curve.ZeroRate(0.5), curve.ZeroRate(90.0/365))
	assert.GreaterOrEqual(t, curve.ZeroRate(1.0), curve.ZeroRate(0.5))
}

func TestBootstrapDepositClosedForm(t *testing.T) {
	curve, err := curves.Bootstrap([]curves.Instrument{deposit(365, 0.02)}, curves.Flat)
	require.NoError(t, err)

	// DF = 1/(1+r*tau), zero rate = -ln(DF)/tau.
	tau := 1.0
	want := math.Log(1+0.02*tau) / tau
	assert.InDelta(t, want, curve.ZeroRate(tau), 1e-12)
}

func TestBootstrapSwapClosedForm(t *testing.T) {
	oneYear := swap(365, 0.020, 1)
	twoYear := swap(730, 0.022, 1)

	curve, err := curves.Bootstrap([]curves.Instrument{oneYear, twoYear}, curves.Linear)
	require.NoError(t, err)

	// Both pillars land on fixed payment dates, so the bootstrapped curve
	// must reprice the quotes exactly.
	assert.InDelta(t, 0, oneYear.PresentValue(curve), 1e-10)
	assert.InDelta(t, 0, twoYear.PresentValue(curve), 1e-10)

	// First pillar is the closed-form single-payment par condition.
	assert.InDelta(t, math.Log(1.020), curve.ZeroRate(1.0), 1e-12)
}

func TestBootstrapSwapNewtonFallback(t *testing.T) {
	// The semiannual swap pays at 0.5y, beyond the only solved pillar at
	// 0.25y, so the closed form cannot price it and the Newton fallback runs.
	shortDeposit := deposit(91, 0.015)
	semiannual := swap(365, 0.018, 2)

	curve, err := curves.Bootstrap([]curves.Instrument{shortDeposit, semiannual}, curves.Linear)
	require.NoError(t, err)

	assert.InDelta(t, 0, semiannual.PresentValue(curve), 1e-6)

	// The solved pillar stays in the neighborhood of the quote.
	assert.InDelta(t, 0.018, curve.ZeroRate(1.0), 2e-3)
}

func TestBootstrapMixedInstruments(t *testing.T) {
	instruments := []curves.Instrument{
		deposit(90, 0.015),
		deposit(182, 0.016),
		swap(365, 0.017, 1),
		swap(730, 0.018, 1),
		swap(1095, 0.019, 1),
	}

	for _, method := range []curves.Interpolation{curves.Linear, curves.CubicSpline} {
		curve, err := curves.Bootstrap(instruments, method)
		require.NoError(t, err)

		for _, inst := range instruments {
			assert.InDeltaf(t, 0, inst.PresentValue(curve), 1e-6,
				"%s curve does not reprice the %v-year instrument", method, inst.Tenor())
		}
	}
}

func TestBootstrapValidation(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		_, err := curves.Bootstrap(nil, curves.Linear)
		require.Error(t, err)
	})

	t.Run("unsorted tenors", func(t *testing.T) {
		_, err := curves.Bootstrap([]curves.Instrument{
			deposit(365, 0.02),
			deposit(90, 0.015),
		}, curves.Linear)
		require.Error(t, err)

		var consErr *curves.ConstructionError
		assert.ErrorAs(t, err, &consErr)
	})

	t.Run("duplicate tenor", func(t *testing.T) {
		_, err := curves.Bootstrap([]curves.Instrument{
			deposit(90, 0.015),
			deposit(90, 0.016),
		}, curves.Linear)
		require.Error(t, err)
	})

	t.Run("mixed start dates", func(t *testing.T) {
		other := curves.Deposit{
			Start:    bootstrapStart.AddDate(0, 0, 1),
			Maturity: bootstrapStart.AddDate(0, 0, 365),
			Rate:     0.02,
		}
		_, err := curves.Bootstrap([]curves.Instrument{deposit(90, 0.015), other}, curves.Linear)
		require.Error(t, err)
	})

	t.Run("flat with multiple pillars", func(t *testing.T) {
		_, err := curves.Bootstrap([]curves.Instrument{
			deposit(90, 0.015),
			deposit(365, 0.017),
		}, curves.Flat)
		require.Error(t, err)
	})
}

func TestInstrumentJacobianSign(t *testing.T) {
	curve := curves.NewFlatCurve(0.02)

	// Raising the discount rate lowers the value of the fixed cashflows, so
	// both instruments' par residuals fall as rates rise.
	dep := deposit(365, 0.02)
	assert.Negative(t, dep.Jacobian(curve, 1.0))

	sw := swap(730, 0.022, 1)
	assert.Negative(t, sw.Jacobian(curve, 2.0))
}
