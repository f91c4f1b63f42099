// Package pricing implements closed-form FX option pricing under the
// Garman-Kohlhagen model: premium, Greeks and a Newton-Raphson implied
// volatility solver. All math is plain float64; callers that need fixed-point
// money values convert at the boundary (see package dci).
package pricing

import (
	"fmt"
	"math"
)

// OptionType selects the payoff direction.
type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	if t == Put {
		return "put"
	}
	return "call"
}

// Input domains. Violations are rejected with a RangeError, never clamped.
const (
	MinRate   = -0.20
	MaxRate   = 0.50
	MaxVol    = 5.0
	MaxExpiry = 100.0

	// Below these thresholds d1/d2 degenerate to 0/0 and the option is worth
	// its intrinsic value.
	timeEpsilon = 1e-6
	volEpsilon  = 1e-6

	// Beyond |d1| = 20 the normal CDF saturates in float64; evaluating the
	// closed form invites catastrophic cancellation.
	deepMoneynessBound = 20.0
)

// RangeError reports an input outside its documented domain.
type RangeError struct {
	Param string
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("pricing: %s out of range: %v", e.Param, e.Value)
}

func validate(spot, strike, domesticRate, foreignRate, vol, t float64) error {
	switch {
	case math.IsNaN(spot) || math.IsInf(spot, 0) || spot <= 0:
		return &RangeError{Param: "spot", Value: spot}
	case math.IsNaN(strike) || math.IsInf(strike, 0) || strike <= 0:
		return &RangeError{Param: "strike", Value: strike}
	case math.IsNaN(domesticRate) || domesticRate < MinRate || domesticRate > MaxRate:
		return &RangeError{Param: "domesticRate", Value: domesticRate}
	case math.IsNaN(foreignRate) || foreignRate < MinRate || foreignRate > MaxRate:
		return &RangeError{Param: "foreignRate", Value: foreignRate}
	case math.IsNaN(vol) || vol <= 0 || vol > MaxVol:
		return &RangeError{Param: "volatility", Value: vol}
	case math.IsNaN(t) || t <= 0 || t > MaxExpiry:
		return &RangeError{Param: "timeToMaturity", Value: t}
	}
	return nil
}

func intrinsic(spot, strike float64, optType OptionType) float64 {
	if optType == Call {
		return math.Max(0, spot-strike)
	}
	return math.Max(0, strike-spot)
}

// Price returns the Garman-Kohlhagen premium of an FX option. The domestic
// rate discounts the strike leg, the foreign rate discounts the spot leg.
func Price(spot, strike, domesticRate, foreignRate, vol, t float64, optType OptionType) (float64, error) {
	if err := validate(spot, strike, domesticRate, foreignRate, vol, t); err != nil {
		return 0, err
	}
	return price(spot, strike, domesticRate, foreignRate, vol, t, optType), nil
}

// PriceBS is the single-currency Black-Scholes variant: one risk-free rate,
// no foreign carry.
func PriceBS(spot, strike, rate, vol, t float64, optType OptionType) (float64, error) {
	if err := validate(spot, strike, rate, 0, vol, t); err != nil {
		return 0, err
	}
	return price(spot, strike, rate, 0, vol, t, optType), nil
}

// price assumes validated inputs.
func price(spot, strike, domesticRate, foreignRate, vol, t float64, optType OptionType) float64 {
	if t < timeEpsilon || vol < volEpsilon {
		return intrinsic(spot, strike, optType)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (domesticRate-foreignRate+0.5*vol*vol)*t) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT

	dfDom := math.Exp(-domesticRate * t)
	dfFor := math.Exp(-foreignRate * t)

	if d1 > deepMoneynessBound {
		// Phi saturates to 1: forward intrinsic for a call, worthless put.
		if optType == Call {
			return math.Max(0, spot*dfFor-strike*dfDom)
		}
		return 0
	}
	if d1 < -deepMoneynessBound {
		if optType == Put {
			return math.Max(0, strike*dfDom-spot*dfFor)
		}
		return 0
	}

	if optType == Call {
		return spot*dfFor*NormCDF(d1) - strike*dfDom*NormCDF(d2)
	}
	return strike*dfDom*NormCDF(-d2) - spot*dfFor*NormCDF(-d1)
}
