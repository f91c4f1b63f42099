package marketdata_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxdesk/dciquant/curves"
	"github.com/fxdesk/dciquant/marketdata"
)

const snapshotYAML = `
pair: AUDUSD
value_date: 2026-08-25
spot: 30.5
domestic_deposits:
  - {tenor_days: 90, rate: 0.015}
domestic_swaps:
  - {tenor_days: 365, rate: 0.017, fixed_payments_per_year: 1}
foreign_deposits:
  - {tenor_days: 182, rate: 0.031}
  - {tenor_days: 90, rate: 0.030}
vol_grid:
  - {strike: 29, tenor: 0.25, vol: 0.12}
  - {strike: 32, tenor: 0.25, vol: 0.10}
  - {strike: 29, tenor: 1.0, vol: 0.13}
  - {strike: 32, tenor: 1.0, vol: 0.09}
smile:
  atm: 0.11
  risk_reversal: 0.02
  butterfly: 0.005
`

func TestParseSnapshot(t *testing.T) {
	s, err := marketdata.Parse([]byte(snapshotYAML))
	require.NoError(t, err)

	assert.Equal(t, "AUDUSD", s.Pair)
	assert.Equal(t, 30.5, s.Spot)
	assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), s.Date())
}

func TestSnapshotInstruments(t *testing.T) {
	s, err := marketdata.Parse([]byte(snapshotYAML))
	require.NoError(t, err)

	domestic := s.DomesticInstruments()
	require.Len(t, domestic, 2)
	foreign := s.ForeignInstruments()
	require.Len(t, foreign, 2)

	// Quotes arrive in file order but bootstrapping needs ascending tenors.
	assert.Less(t, foreign[0].Tenor(), foreign[1].Tenor())
	assert.InDelta(t, 90.0/365, foreign[0].Tenor(), 1e-12)

	_, isDeposit := domestic[0].(curves.Deposit)
	assert.True(t, isDeposit)
	_, isSwap := domestic[1].(curves.Swap)
	assert.True(t, isSwap)

	// The converted instruments are a valid bootstrap input as-is.
	curve, err := curves.Bootstrap(foreign, curves.Linear)
	require.NoError(t, err)
	assert.InDelta(t, 0.030, curve.ZeroRate(90.0/365), 3e-4)
}

func TestSnapshotSurfaceFromGrid(t *testing.T) {
	s, err := marketdata.Parse([]byte(snapshotYAML))
	require.NoError(t, err)

	surface, err := s.Surface()
	require.NoError(t, err)

	v, err := surface.Volatility(29, 0.25)
	require.NoError(t, err)
	assert.Equal(t, 0.12, v)
}

func TestSnapshotSurfaceFallsBackToSmile(t *testing.T) {
	s, err := marketdata.Parse([]byte(`
pair: AUDUSD
value_date: 2026-08-25
spot: 30.5
smile:
  atm: 0.11
  risk_reversal: 0.02
  butterfly: 0.005
`))
	require.NoError(t, err)

	surface, err := s.Surface()
	require.NoError(t, err)

	v, err := surface.Volatility(28, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 0.11, v)
}

func TestSnapshotSurfaceRequiresVolData(t *testing.T) {
	s, err := marketdata.Parse([]byte(`
pair: AUDUSD
value_date: 2026-08-25
spot: 30.5
`))
	require.NoError(t, err)

	_, err = s.Surface()
	require.Error(t, err)
}

func TestSnapshotSmileParameters(t *testing.T) {
	s, err := marketdata.Parse([]byte(snapshotYAML))
	require.NoError(t, err)

	smile, ok, err := s.SmileParameters()
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.125, smile.Call25(), 1e-12)

	bare, err := marketdata.Parse([]byte("pair: X\nvalue_date: 2026-08-25\nspot: 1.0\n"))
	require.NoError(t, err)
	_, ok, err = bare.SmileParameters()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseSnapshotValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "pair: [unterminated"},
		{"missing spot", "pair: X\nvalue_date: 2026-08-25\n"},
		{"bad value date", "pair: X\nvalue_date: yesterday\nspot: 1.0\n"},
		{"bad deposit tenor", "pair: X\nvalue_date: 2026-08-25\nspot: 1.0\ndomestic_deposits:\n  - {tenor_days: 0, rate: 0.01}\n"},
		{"bad swap tenor", "pair: X\nvalue_date: 2026-08-25\nspot: 1.0\nforeign_swaps:\n  - {tenor_days: -30, rate: 0.01}\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := marketdata.Parse([]byte(tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshotYAML), 0o644))

	s, err := marketdata.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AUDUSD", s.Pair)

	_, err = marketdata.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
