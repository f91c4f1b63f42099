// Package marketdata loads market snapshots for the pricing library: spot,
// deposit and swap quotes, a volatility grid and an optional smile block,
// from a YAML file. A snapshot is read once per pricing run; there is no
// feed, cache or refresh machinery.
package marketdata

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fxdesk/dciquant/curves"
	"github.com/fxdesk/dciquant/vols"
)

// DepositQuote is a simple money-market rate for a tenor in days.
type DepositQuote struct {
	TenorDays int     `yaml:"tenor_days"`
	Rate      float64 `yaml:"rate"`
}

// SwapQuote is a par swap rate for a tenor in days.
type SwapQuote struct {
	TenorDays            int     `yaml:"tenor_days"`
	Rate                 float64 `yaml:"rate"`
	FixedPaymentsPerYear int     `yaml:"fixed_payments_per_year"`
}

// VolQuote is one node of the volatility grid.
type VolQuote struct {
	Strike float64 `yaml:"strike"`
	Tenor  float64 `yaml:"tenor"`
	Vol    float64 `yaml:"vol"`
}

// SmileQuote is the ATM / risk-reversal / butterfly triple for the snapshot.
type SmileQuote struct {
	ATM          float64 `yaml:"atm"`
	RiskReversal float64 `yaml:"risk_reversal"`
	Butterfly    float64 `yaml:"butterfly"`
}

// Snapshot is one market picture at a value date. Domestic quotes discount
// the money leg of the FX pair; foreign quotes are the deposit currency.
type Snapshot struct {
	Pair      string  `yaml:"pair"`
	ValueDate string  `yaml:"value_date"`
	Spot      float64 `yaml:"spot"`

	DomesticDeposits []DepositQuote `yaml:"domestic_deposits"`
	DomesticSwaps    []SwapQuote    `yaml:"domestic_swaps"`
	ForeignDeposits  []DepositQuote `yaml:"foreign_deposits"`
	ForeignSwaps     []SwapQuote    `yaml:"foreign_swaps"`

	VolGrid []VolQuote  `yaml:"vol_grid"`
	Smile   *SmileQuote `yaml:"smile"`

	valueDate time.Time
}

// Load reads and validates a snapshot file.
func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata: read snapshot: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates snapshot YAML.
func Parse(raw []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("marketdata: parse snapshot: %w", err)
	}

	if s.Spot <= 0 || math.IsNaN(s.Spot) {
		return nil, fmt.Errorf("marketdata: spot must be positive, got %v", s.Spot)
	}
	valueDate, err := time.Parse("2006-01-02", s.ValueDate)
	if err != nil {
		return nil, fmt.Errorf("marketdata: value_date: %w", err)
	}
	s.valueDate = valueDate

	for _, q := range append(append([]DepositQuote(nil), s.DomesticDeposits...), s.ForeignDeposits...) {
		if q.TenorDays <= 0 {
			return nil, fmt.Errorf("marketdata: deposit tenor must be positive, got %d days", q.TenorDays)
		}
	}
	for _, q := range append(append([]SwapQuote(nil), s.DomesticSwaps...), s.ForeignSwaps...) {
		if q.TenorDays <= 0 {
			return nil, fmt.Errorf("marketdata: swap tenor must be positive, got %d days", q.TenorDays)
		}
	}
	return &s, nil
}

// Date returns the parsed value date.
func (s *Snapshot) Date() time.Time {
	return s.valueDate
}

// DomesticInstruments converts the domestic quotes into bootstrap input,
// sorted by tenor.
func (s *Snapshot) DomesticInstruments() []curves.Instrument {
	return s.instruments(s.DomesticDeposits, s.DomesticSwaps)
}

// ForeignInstruments converts the foreign (deposit currency) quotes into
// bootstrap input, sorted by tenor.
func (s *Snapshot) ForeignInstruments() []curves.Instrument {
	return s.instruments(s.ForeignDeposits, s.ForeignSwaps)
}

func (s *Snapshot) instruments(deposits []DepositQuote, swaps []SwapQuote) []curves.Instrument {
	out := make([]curves.Instrument, 0, len(deposits)+len(swaps))
	for _, q := range deposits {
		out = append(out, curves.Deposit{
			Start:    s.valueDate,
			Maturity: s.valueDate.AddDate(0, 0, q.TenorDays),
			Rate:     q.Rate,
		})
	}
	for _, q := range swaps {
		out = append(out, curves.Swap{
			Start:                s.valueDate,
			Maturity:             s.valueDate.AddDate(0, 0, q.TenorDays),
			Rate:                 q.Rate,
			FixedPaymentsPerYear: q.FixedPaymentsPerYear,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tenor() < out[j].Tenor() })
	return out
}

// Surface builds the volatility surface: the interpolated grid when quoted,
// otherwise a flat surface at the smile's ATM volatility.
func (s *Snapshot) Surface() (vols.VolSurface, error) {
	if len(s.VolGrid) > 0 {
		points := make([]vols.Point, len(s.VolGrid))
		for i, q := range s.VolGrid {
			points[i] = vols.Point{Strike: q.Strike, Tenor: q.Tenor, Vol: q.Vol}
		}
		return vols.NewInterpolatedSurface(points)
	}
	if s.Smile != nil {
		return vols.NewFlatSurface(s.Smile.ATM)
	}
	return nil, fmt.Errorf("marketdata: snapshot has neither vol_grid nor smile")
}

// SmileParameters returns the snapshot's smile block, when present.
func (s *Snapshot) SmileParameters() (vols.SmileParameters, bool, error) {
	if s.Smile == nil {
		return vols.SmileParameters{}, false, nil
	}
	p, err := vols.NewSmileParameters(s.Smile.ATM, s.Smile.RiskReversal, s.Smile.Butterfly)
	if err != nil {
		return vols.SmileParameters{}, false, err
	}
	return p, true, nil
}
