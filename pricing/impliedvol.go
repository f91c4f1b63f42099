package pricing

import "math"

const (
	ivMaxIterations = 100
	ivTolerance     = 1e-4
	ivDefaultGuess  = 0.2
	ivFloor         = 0.001
	ivCeiling       = 3.0
	ivVegaFloor     = 1e-10
)

// ImpliedVolatility inverts the pricing formula for the volatility that
// reproduces marketPrice. Pass guess <= 0 to use the default seed.
//
// Inversion is best-effort: a non-positive market price, a collapsed Vega
// mid-iteration or running out of iterations all yield NaN rather than an
// error. Callers must check math.IsNaN on the result.
func ImpliedVolatility(marketPrice, spot, strike, domesticRate, foreignRate, t float64, optType OptionType, guess float64) float64 {
	if marketPrice <= 0 || math.IsNaN(marketPrice) {
		return math.NaN()
	}
	if guess <= 0 || math.IsNaN(guess) {
		guess = ivDefaultGuess
	}

	sigma := clampFloat(guess, ivFloor, ivCeiling)

	for i := 0; i < ivMaxIterations; i++ {
		modelPrice, err := Price(spot, strike, domesticRate, foreignRate, sigma, t, optType)
		if err != nil {
			return math.NaN()
		}

		diff := modelPrice - marketPrice
		if math.Abs(diff) < ivTolerance {
			return sigma
		}

		v := vega(spot, strike, domesticRate, foreignRate, sigma, t)
		if v < ivVegaFloor {
			return math.NaN()
		}

		step := diff / v
		// Keep each update within half the current level so a steep start
		// cannot throw the iteration out of the bracket.
		maxStep := 0.5 * sigma
		step = clampFloat(step, -maxStep, maxStep)

		sigma = clampFloat(sigma-step, ivFloor, ivCeiling)
	}

	return math.NaN()
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
