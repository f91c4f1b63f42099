package curves

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Interpolation selects the curve variant produced by Bootstrap.
type Interpolation int

const (
	Flat Interpolation = iota
	Linear
	CubicSpline
)

func (m Interpolation) String() string {
	switch m {
	case Flat:
		return "flat"
	case Linear:
		return "linear"
	case CubicSpline:
		return "cubic-spline"
	}
	return fmt.Sprintf("interpolation(%d)", int(m))
}

// Swap-pillar Newton fallback bounds.
const (
	swapPVTolerance   = 1e-8
	swapMaxIterations = 20
	swapRateBump      = 1e-8
	swapRateFloor     = -0.10
	swapRateCeiling   = 0.50
)

// Bootstrap builds a zero curve from market instruments ordered shortest to
// longest tenor and sharing one start date. Deposits resolve in closed form;
// swaps first try the closed-form par condition on the pillars bootstrapped so
// far, then fall back to a bounded Newton-Raphson on the new pillar's rate.
//
// The fallback never fails: an unconverged pillar keeps its best estimate and
// is logged, because a usable curve must be produced even from poor quotes.
func Bootstrap(instruments []Instrument, method Interpolation) (ZeroCurve, error) {
	if len(instruments) == 0 {
		return nil, &ConstructionError{Reason: "no instruments to bootstrap"}
	}

	start := instruments[0].StartDate()
	prevTenor := math.Inf(-1)
	for i, inst := range instruments {
		if !inst.StartDate().Equal(start) {
			return nil, &ConstructionError{Reason: fmt.Sprintf("instrument %d start date %s differs from %s", i, inst.StartDate().Format("2006-01-02"), start.Format("2006-01-02"))}
		}
		tenor := inst.Tenor()
		if tenor <= 0 {
			return nil, &ConstructionError{Reason: fmt.Sprintf("instrument %d has non-positive tenor %v", i, tenor)}
		}
		if tenor <= prevTenor {
			return nil, &ConstructionError{Reason: fmt.Sprintf("instruments must be sorted by strictly increasing tenor (instrument %d: %v <= %v)", i, tenor, prevTenor)}
		}
		prevTenor = tenor
	}

	points := make([]CurvePoint, 0, len(instruments))
	for _, inst := range instruments {
		var rate float64
		switch v := inst.(type) {
		case Deposit:
			rate = zeroRateFromDF(v.discountFactor(), v.Tenor())
		case *Deposit:
			rate = zeroRateFromDF(v.discountFactor(), v.Tenor())
		case Swap:
			rate = bootstrapSwap(points, v)
		case *Swap:
			rate = bootstrapSwap(points, *v)
		default:
			// Future instrument types carry their own PV; resolve generically.
			rate = newtonPillarRate(points, inst)
		}
		points = append(points, CurvePoint{Tenor: inst.Tenor(), ZeroRate: rate})
	}

	return curveFromPoints(points, method)
}

// curveFromPoints assembles the final curve for the requested interpolation.
// A single pillar always degrades to a flat curve at that pillar's rate.
func curveFromPoints(points []CurvePoint, method Interpolation) (ZeroCurve, error) {
	if len(points) == 1 {
		return FlatCurve{Rate: points[0].ZeroRate}, nil
	}

	switch method {
	case Flat:
		return nil, &ConstructionError{Reason: fmt.Sprintf("flat interpolation supports a single pillar, got %d", len(points))}
	case Linear:
		return NewLinearCurve(points)
	case CubicSpline:
		return NewCubicSplineCurve(points)
	}
	return nil, &ConstructionError{Reason: "unknown interpolation method " + method.String()}
}

// partialCurve views the pillars bootstrapped so far. Intermediate state is
// always linear regardless of the final interpolation; swaps only ever read
// already-solved pillars from it.
func partialCurve(points []CurvePoint) ZeroCurve {
	switch len(points) {
	case 0:
		return nil
	case 1:
		return FlatCurve{Rate: points[0].ZeroRate}
	}
	c, err := NewLinearCurve(points)
	if err != nil {
		// Pillars are produced strictly increasing by Bootstrap.
		panic(err)
	}
	return c
}

// bootstrapSwap resolves a swap pillar: closed form when every earlier fixed
// payment is covered by solved pillars, Newton otherwise.
func bootstrapSwap(points []CurvePoint, s Swap) float64 {
	if rate, ok := closedFormSwapRate(points, s); ok {
		return rate
	}
	return newtonPillarRate(points, s)
}

// closedFormSwapRate applies the par condition
//
//	DF(Tn) = (DF(T0) - rate*sum(accrual_i*DF(Ti), i<n)) / (1 + rate*accrual_n)
//
// using only already-bootstrapped pillars. It reports ok=false when an
// earlier payment falls beyond the solved range or the implied discount
// factor is not usable.
func closedFormSwapRate(points []CurvePoint, s Swap) (float64, bool) {
	times, accruals := s.schedule()
	last := len(times) - 1

	prior := partialCurve(points)
	maxSolved := 0.0
	if len(points) > 0 {
		maxSolved = points[len(points)-1].Tenor
	}

	annuity := 0.0
	for i := 0; i < last; i++ {
		if times[i] > maxSolved || prior == nil {
			return 0, false
		}
		annuity += accruals[i] * prior.DiscountFactor(times[i])
	}

	df := (1 - s.Rate*annuity) / (1 + s.Rate*accruals[last])
	if df <= 0 || math.IsNaN(df) {
		return 0, false
	}
	return zeroRateFromDF(df, times[last]), true
}

// newtonPillarRate solves the pillar's zero rate so the instrument's PV on
// the trial curve (solved pillars plus the trial pillar) is zero. Bounded
// iteration; the best estimate survives non-convergence.
func newtonPillarRate(points []CurvePoint, inst Instrument) float64 {
	tenor := inst.Tenor()
	rate := clampRate(inst.Quote())

	trial := func(r float64) float64 {
		pts := append(append([]CurvePoint(nil), points...), CurvePoint{Tenor: tenor, ZeroRate: r})
		return inst.PresentValue(partialCurve(pts))
	}

	pv := trial(rate)
	for i := 0; i < swapMaxIterations; i++ {
		if math.Abs(pv) < swapPVTolerance {
			return rate
		}

		jac := (trial(rate+swapRateBump) - pv) / swapRateBump
		if jac == 0 || math.IsNaN(jac) {
			break
		}

		rate = clampRate(rate - pv/jac)
		pv = trial(rate)
	}

	if math.Abs(pv) >= swapPVTolerance {
		logrus.WithFields(logrus.Fields{
			"tenor": tenor,
			"rate":  rate,
			"pv":    pv,
		}).Warn("curve bootstrap: pillar solver did not converge, keeping best estimate")
	}
	return rate
}

func clampRate(r float64) float64 {
	if r < swapRateFloor {
		return swapRateFloor
	}
	if r > swapRateCeiling {
		return swapRateCeiling
	}
	return r
}
