// Package dci assembles Dual Currency Investment quotes from the numerical
// core: the embedded FX put premium becomes a coupon enhancement over the
// deposit rate, and the knock-in payoff converts principal at the strike.
//
// Internal math is float64 throughout; monetary results cross back into
// fixed-point decimal at this boundary, rounded to 4 decimal places half away
// from zero. FX rates are quoted to 4 places, so this rounding is a hard
// reproducibility contract, not cosmetics.
package dci

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/fxdesk/dciquant/curves"
	"github.com/fxdesk/dciquant/pricing"
	"github.com/fxdesk/dciquant/solver"
	"github.com/fxdesk/dciquant/vols"
)

// QuotePlaces is the fixed-point precision of every monetary result.
const QuotePlaces = 4

const daysPerYear = 365.0

// Terms describes one Dual Currency Investment. The deposit currency is the
// foreign currency of the spot quote (domestic units per foreign unit); the
// alternate currency is the domestic one the principal converts into when the
// strike knocks in.
type Terms struct {
	Notional          decimal.Decimal
	DepositCurrency   string
	AlternateCurrency string
	Spot              float64
	Strike            float64
	TenorDays         int
	// MarginBps is the bank margin deducted from the gross coupon, in basis
	// points per annum.
	MarginBps float64
}

func (t Terms) tenorYears() float64 {
	return float64(t.TenorDays) / daysPerYear
}

func (t Terms) validate() error {
	switch {
	case t.Spot <= 0 || math.IsNaN(t.Spot):
		return fmt.Errorf("dci: spot must be positive, got %v", t.Spot)
	case t.Strike <= 0 || math.IsNaN(t.Strike):
		return fmt.Errorf("dci: strike must be positive, got %v", t.Strike)
	case t.TenorDays <= 0:
		return fmt.Errorf("dci: tenor must be positive, got %d days", t.TenorDays)
	case t.Notional.Sign() <= 0:
		return fmt.Errorf("dci: notional must be positive, got %s", t.Notional)
	}
	return nil
}

// Quote is a priced DCI. Coupon rates are per annum; decimal fields are
// rounded to QuotePlaces.
type Quote struct {
	Strike       decimal.Decimal
	PutPremium   decimal.Decimal // premium per unit of deposit notional, in deposit-currency yield terms
	DepositRate  decimal.Decimal // base deposit rate from the foreign curve
	GrossCoupon  decimal.Decimal // deposit rate plus annualized premium yield
	ClientCoupon decimal.Decimal // gross coupon net of margin
	Greeks       pricing.GreeksResult
}

// Price builds a DCI quote: the embedded put is priced on the two curves and
// the surface, its premium converted to an annualized yield on the deposit
// notional and stacked on the deposit rate.
func Price(terms Terms, domestic, foreign curves.ZeroCurve, surface vols.VolSurface) (Quote, error) {
	if err := terms.validate(); err != nil {
		return Quote{}, err
	}

	coupon, premium, greeks, err := couponAt(terms, terms.Strike, domestic, foreign, surface)
	if err != nil {
		return Quote{}, err
	}

	tau := terms.tenorYears()
	depositRate := foreign.ZeroRate(tau)
	gross := depositRate + premium/terms.Spot*(daysPerYear/float64(terms.TenorDays))

	return Quote{
		Strike:       round(terms.Strike),
		PutPremium:   round(premium),
		DepositRate:  round(depositRate),
		GrossCoupon:  round(gross),
		ClientCoupon: round(coupon),
		Greeks:       greeks,
	}, nil
}

// couponAt prices the embedded put at an arbitrary strike and returns the
// unrounded client coupon. Shared by Price and the solver objective.
func couponAt(terms Terms, strike float64, domestic, foreign curves.ZeroCurve, surface vols.VolSurface) (coupon, premium float64, greeks pricing.GreeksResult, err error) {
	tau := terms.tenorYears()
	domesticRate := domestic.ZeroRate(tau)
	foreignRate := foreign.ZeroRate(tau)

	vol, err := surface.Volatility(strike, tau)
	if err != nil {
		return 0, 0, pricing.GreeksResult{}, fmt.Errorf("dci: surface lookup: %w", err)
	}

	premium, err = pricing.Price(terms.Spot, strike, domesticRate, foreignRate, vol, tau, pricing.Put)
	if err != nil {
		return 0, 0, pricing.GreeksResult{}, fmt.Errorf("dci: put pricing: %w", err)
	}

	greeks, err = pricing.Greeks(terms.Spot, strike, domesticRate, foreignRate, vol, tau, pricing.Put)
	if err != nil {
		return 0, 0, pricing.GreeksResult{}, fmt.Errorf("dci: put greeks: %w", err)
	}

	gross := foreignRate + premium/terms.Spot*(daysPerYear/float64(terms.TenorDays))
	coupon = gross - terms.MarginBps/10000
	return coupon, premium, greeks, nil
}

// YieldObjective adapts the strike-to-coupon function for the strike solver:
// the returned objective maps a trial strike to the unrounded annualized
// client coupon.
func YieldObjective(terms Terms, domestic, foreign curves.ZeroCurve, surface vols.VolSurface) solver.Objective {
	return func(strike float64) (float64, error) {
		coupon, _, _, err := couponAt(terms, strike, domestic, foreign, surface)
		return coupon, err
	}
}

// SolveStrikeForYield finds the strike at which the client coupon equals the
// target annualized yield.
func SolveStrikeForYield(terms Terms, target float64, domestic, foreign curves.ZeroCurve, surface vols.VolSurface) (decimal.Decimal, error) {
	strike, err := solver.SolveStrike(YieldObjective(terms, domestic, foreign, surface), target, terms.Strike, terms.Spot)
	if err != nil {
		return decimal.Zero, err
	}
	return round(strike), nil
}

// Settlement is the maturity outcome of a DCI for one fixing.
type Settlement struct {
	Currency string
	Amount   decimal.Decimal
	// Converted reports whether the principal knocked in and was exchanged at
	// the strike.
	Converted bool
}

// Payoff settles the deposit at maturity. A fixing at or through the strike
// converts principal plus coupon into the alternate currency at the strike;
// otherwise the deposit pays out in its own currency.
func Payoff(terms Terms, clientCoupon, fixing decimal.Decimal) (Settlement, error) {
	if err := terms.validate(); err != nil {
		return Settlement{}, err
	}
	if fixing.Sign() <= 0 {
		return Settlement{}, fmt.Errorf("dci: fixing must be positive, got %s", fixing)
	}

	tau := decimal.NewFromInt(int64(terms.TenorDays)).Div(decimal.NewFromInt(int64(daysPerYear)))
	proceeds := terms.Notional.Mul(decimal.NewFromInt(1).Add(clientCoupon.Mul(tau)))

	strike := decimal.NewFromFloat(terms.Strike)
	if fixing.Cmp(strike) <= 0 {
		return Settlement{
			Currency:  terms.AlternateCurrency,
			Amount:    proceeds.Mul(strike).Round(QuotePlaces),
			Converted: true,
		}, nil
	}
	return Settlement{
		Currency: terms.DepositCurrency,
		Amount:   proceeds.Round(QuotePlaces),
	}, nil
}

// round converts a float result to the fixed-point boundary representation:
// 4 decimal places, ties away from zero.
func round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(QuotePlaces)
}
