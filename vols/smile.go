package vols

import (
	"fmt"
	"math"
)

// SmileParameters is the FX market quote triple for one tenor: at-the-money
// volatility, 25-delta risk reversal and 25-delta butterfly.
type SmileParameters struct {
	ATM          float64
	RiskReversal float64
	Butterfly    float64
}

// NewSmileParameters validates that the derived wing volatilities stay in
// (0, MaxVol].
func NewSmileParameters(atm, riskReversal, butterfly float64) (SmileParameters, error) {
	s := SmileParameters{ATM: atm, RiskReversal: riskReversal, Butterfly: butterfly}
	for _, v := range []float64{atm, s.Call25(), s.Put25()} {
		if math.IsNaN(v) || v <= 0 || v > MaxVol {
			return SmileParameters{}, &ConstructionError{Reason: fmt.Sprintf("smile implies volatility out of range: %v", v)}
		}
	}
	return s, nil
}

// Call25 is the 25-delta call volatility: ATM + BF + RR/2.
func (s SmileParameters) Call25() float64 {
	return s.ATM + s.Butterfly + s.RiskReversal/2
}

// Put25 is the 25-delta put volatility: ATM + BF - RR/2.
func (s SmileParameters) Put25() float64 {
	return s.ATM + s.Butterfly - s.RiskReversal/2
}

// VolForDelta estimates the volatility at an option delta. Positive deltas
// are call deltas in (0, 1); a negative delta is treated as a put quote and
// mapped onto the equivalent call delta. Between the ATM point (delta 0.5)
// and the 25-delta anchors the smile is piecewise linear; beyond 25 delta it
// is flat at the anchor.
func (s SmileParameters) VolForDelta(delta float64) (float64, error) {
	if math.IsNaN(delta) || delta == 0 || delta <= -1 || delta >= 1 {
		return 0, &RangeError{Param: "delta", Value: delta}
	}

	d := delta
	if d < 0 {
		d = 1 + d // -0.25 put is the 0.75 call
	}

	switch {
	case d <= 0.25:
		return s.Call25(), nil
	case d < 0.5:
		w := (0.5 - d) / 0.25
		return s.ATM + w*(s.Call25()-s.ATM), nil
	case d == 0.5:
		return s.ATM, nil
	case d < 0.75:
		w := (d - 0.5) / 0.25
		return s.ATM + w*(s.Put25()-s.ATM), nil
	}
	return s.Put25(), nil
}
