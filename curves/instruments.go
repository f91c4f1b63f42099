package curves

import (
	"math"
	"time"
)

// daysPerYear is the ACT/365 basis used for the curve time axis.
const daysPerYear = 365.0

// jacobianBump is the absolute rate bump for the generic flat-proxy Jacobian.
const jacobianBump = 1e-6

// Instrument is a market quote the bootstrapper can turn into a curve pillar.
// Each variant knows its own present-value function against a trial curve, so
// new instrument types extend the bootstrapper without touching its dispatch.
type Instrument interface {
	StartDate() time.Time
	MaturityDate() time.Time
	// Quote returns the market rate of the instrument.
	Quote() float64
	// Tenor returns (maturity-start)/365 in years.
	Tenor() float64
	// PresentValue returns the par residual of the instrument on the given
	// curve; zero means the curve reprices the quote exactly.
	PresentValue(curve ZeroCurve) float64
	// Jacobian returns dPV/dr at the pillar via a finite-difference bump on a
	// flat-curve proxy at the pillar's rate.
	Jacobian(curve ZeroCurve, pillarTenor float64) float64
}

func yearFraction(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / daysPerYear
}

// flatProxyJacobian bumps a flat curve pinned at the pillar's current rate.
// Shared by every instrument variant.
func flatProxyJacobian(inst Instrument, curve ZeroCurve, pillarTenor float64) float64 {
	base := curve.ZeroRate(pillarTenor)
	pvBase := inst.PresentValue(FlatCurve{Rate: base})
	pvBumped := inst.PresentValue(FlatCurve{Rate: base + jacobianBump})
	return (pvBumped - pvBase) / jacobianBump
}

// Deposit is a money-market deposit quoted as a simple rate over its life.
type Deposit struct {
	Start    time.Time
	Maturity time.Time
	Rate     float64
}

func (d Deposit) StartDate() time.Time    { return d.Start }
func (d Deposit) MaturityDate() time.Time { return d.Maturity }
func (d Deposit) Quote() float64          { return d.Rate }

func (d Deposit) Tenor() float64 {
	return yearFraction(d.Start, d.Maturity)
}

// PresentValue is the par residual of a unit deposit: the curve-implied value
// of (1 + r*tau) paid at maturity, minus the unit invested today.
func (d Deposit) PresentValue(curve ZeroCurve) float64 {
	tau := d.Tenor()
	return curve.DiscountFactor(tau)*(1+d.Rate*tau) - 1
}

func (d Deposit) Jacobian(curve ZeroCurve, pillarTenor float64) float64 {
	return flatProxyJacobian(d, curve, pillarTenor)
}

// discountFactor returns the closed-form discount factor implied by the
// simple deposit rate.
func (d Deposit) discountFactor() float64 {
	tau := d.Tenor()
	return 1 / (1 + d.Rate*tau)
}

// Swap is a fixed-for-floating par swap quoted by its fixed rate. The fixed
// leg pays FixedPaymentsPerYear times a year; the floating leg is valued with
// the single-curve simplification DF(T0) - DF(Tn), which assumes the float
// leg resets exactly on the curve being built.
type Swap struct {
	Start    time.Time
	Maturity time.Time
	Rate     float64
	// FixedPaymentsPerYear defaults to annual when zero.
	FixedPaymentsPerYear int
}

func (s Swap) StartDate() time.Time    { return s.Start }
func (s Swap) MaturityDate() time.Time { return s.Maturity }
func (s Swap) Quote() float64          { return s.Rate }

func (s Swap) Tenor() float64 {
	return yearFraction(s.Start, s.Maturity)
}

func (s Swap) paymentsPerYear() int {
	if s.FixedPaymentsPerYear <= 0 {
		return 1
	}
	return s.FixedPaymentsPerYear
}

// schedule returns the fixed-leg payment times (years from start, last one
// exactly the swap tenor) and their accrual fractions.
func (s Swap) schedule() (times, accruals []float64) {
	tenor := s.Tenor()
	step := 1 / float64(s.paymentsPerYear())

	prev := 0.0
	for t := step; t < tenor-1e-9; t += step {
		times = append(times, t)
		accruals = append(accruals, t-prev)
		prev = t
	}
	times = append(times, tenor)
	accruals = append(accruals, tenor-prev)
	return times, accruals
}

// PresentValue is the par residual: fixed leg minus the simplified floating
// leg DF(T0) - DF(Tn). Zero when the curve reprices the quoted rate.
func (s Swap) PresentValue(curve ZeroCurve) float64 {
	times, accruals := s.schedule()

	fixed := 0.0
	for i, t := range times {
		fixed += s.Rate * accruals[i] * curve.DiscountFactor(t)
	}

	float := 1 - curve.DiscountFactor(times[len(times)-1])
	return fixed - float
}

func (s Swap) Jacobian(curve ZeroCurve, pillarTenor float64) float64 {
	return flatProxyJacobian(s, curve, pillarTenor)
}

// zeroRateFromDF converts a discount factor at tenor tau to a continuously
// compounded zero rate.
func zeroRateFromDF(df, tau float64) float64 {
	return -math.Log(df) / tau
}
