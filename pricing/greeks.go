package pricing

import "math"

// GreeksResult carries the closed-form sensitivities of a Garman-Kohlhagen
// premium. Theta is quoted per calendar day, the rhos per unit rate move.
type GreeksResult struct {
	Delta       float64
	Gamma       float64
	Vega        float64
	Theta       float64
	RhoDomestic float64
	RhoForeign  float64
}

// Greeks computes the full sensitivity set for an FX option. Near-expiry and
// near-zero-volatility inputs collapse to the intrinsic delta with all other
// sensitivities at zero.
func Greeks(spot, strike, domesticRate, foreignRate, vol, t float64, optType OptionType) (GreeksResult, error) {
	if err := validate(spot, strike, domesticRate, foreignRate, vol, t); err != nil {
		return GreeksResult{}, err
	}

	if t < timeEpsilon || vol < volEpsilon {
		return GreeksResult{Delta: intrinsicDelta(spot, strike, optType)}, nil
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (domesticRate-foreignRate+0.5*vol*vol)*t) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT

	dfDom := math.Exp(-domesticRate * t)
	dfFor := math.Exp(-foreignRate * t)
	pdfD1 := NormPDF(d1)

	g := GreeksResult{
		Gamma: dfFor * pdfD1 / (spot * vol * sqrtT),
		Vega:  spot * dfFor * pdfD1 * sqrtT,
	}

	volDecay := -spot * dfFor * pdfD1 * vol / (2 * sqrtT)

	if optType == Call {
		g.Delta = dfFor * NormCDF(d1)
		g.Theta = (volDecay + foreignRate*spot*dfFor*NormCDF(d1) - domesticRate*strike*dfDom*NormCDF(d2)) / 365
		g.RhoDomestic = strike * t * dfDom * NormCDF(d2)
		g.RhoForeign = -spot * t * dfFor * NormCDF(d1)
	} else {
		g.Delta = dfFor * (NormCDF(d1) - 1)
		g.Theta = (volDecay - foreignRate*spot*dfFor*NormCDF(-d1) + domesticRate*strike*dfDom*NormCDF(-d2)) / 365
		g.RhoDomestic = -strike * t * dfDom * NormCDF(-d2)
		g.RhoForeign = spot * t * dfFor * NormCDF(-d1)
	}

	return g, nil
}

func intrinsicDelta(spot, strike float64, optType OptionType) float64 {
	if optType == Call {
		if spot > strike {
			return 1
		}
		return 0
	}
	if spot < strike {
		return -1
	}
	return 0
}

// vega is the raw sensitivity used by the implied-vol Newton iteration.
// Inputs are assumed validated by the caller.
func vega(spot, strike, domesticRate, foreignRate, vol, t float64) float64 {
	if t < timeEpsilon || vol < volEpsilon {
		return 0
	}
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (domesticRate-foreignRate+0.5*vol*vol)*t) / (vol * sqrtT)
	return spot * math.Exp(-foreignRate*t) * NormPDF(d1) * sqrtT
}
