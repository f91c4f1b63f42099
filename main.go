package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xhhuango/json"

	"github.com/fxdesk/dciquant/curves"
	"github.com/fxdesk/dciquant/dci"
	"github.com/fxdesk/dciquant/marketdata"
	"github.com/fxdesk/dciquant/solver"
)

type report struct {
	Pair         string             `json:"pair"`
	ValueDate    string             `json:"value_date"`
	Spot         float64            `json:"spot"`
	Quote        dci.Quote          `json:"quote"`
	SolvedStrike *decimal.Decimal   `json:"solved_strike,omitempty"`
	Ladder       []solver.LadderRow `json:"ladder"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using process environment")
	}

	snapshotPath := envOr("DCI_SNAPSHOT", "snapshot.yaml")
	snapshot, err := marketdata.Load(snapshotPath)
	if err != nil {
		logrus.WithError(err).Fatal("load market snapshot")
	}

	log := logrus.WithFields(logrus.Fields{"pair": snapshot.Pair, "spot": snapshot.Spot})

	domestic, err := curves.Bootstrap(snapshot.DomesticInstruments(), curves.Linear)
	if err != nil {
		log.WithError(err).Fatal("bootstrap domestic curve")
	}
	foreign, err := curves.Bootstrap(snapshot.ForeignInstruments(), curves.Linear)
	if err != nil {
		log.WithError(err).Fatal("bootstrap foreign curve")
	}
	surface, err := snapshot.Surface()
	if err != nil {
		log.WithError(err).Fatal("build volatility surface")
	}

	terms := dci.Terms{
		Notional:          decimal.RequireFromString(envOr("DCI_NOTIONAL", "1000000")),
		DepositCurrency:   envOr("DCI_DEPOSIT_CCY", "USD"),
		AlternateCurrency: envOr("DCI_ALTERNATE_CCY", "TWD"),
		Spot:              snapshot.Spot,
		Strike:            envFloatOr("DCI_STRIKE", snapshot.Spot*0.98),
		TenorDays:         int(envFloatOr("DCI_TENOR_DAYS", 90)),
		MarginBps:         envFloatOr("DCI_MARGIN_BPS", 25),
	}

	quote, err := dci.Price(terms, domestic, foreign, surface)
	if err != nil {
		log.WithError(err).Fatal("price dci")
	}
	log.WithFields(logrus.Fields{
		"strike": quote.Strike,
		"coupon": quote.ClientCoupon,
	}).Info("priced dci")

	out := report{
		Pair:      snapshot.Pair,
		ValueDate: snapshot.ValueDate,
		Spot:      snapshot.Spot,
		Quote:     quote,
	}

	objective := dci.YieldObjective(terms, domestic, foreign, surface)

	if target := os.Getenv("DCI_TARGET_YIELD"); target != "" {
		targetYield, err := strconv.ParseFloat(target, 64)
		if err != nil {
			log.WithError(err).Fatal("parse DCI_TARGET_YIELD")
		}
		strike, err := dci.SolveStrikeForYield(terms, targetYield, domestic, foreign, surface)
		if err != nil {
			log.WithError(err).Fatal("solve strike for target yield")
		}
		out.SolvedStrike = &strike
		log.WithFields(logrus.Fields{"target": targetYield, "strike": strike}).Info("solved strike")
	}

	ladder, err := solver.StrikeLadder(objective, 11, 0.95, 1.00, snapshot.Spot)
	if err != nil {
		log.WithError(err).Fatal("generate strike ladder")
	}
	out.Ladder = ladder

	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.WithError(err).Fatal("marshal report")
	}

	if path := os.Getenv("DCI_REPORT"); path != "" {
		if err := os.WriteFile(path, payload, 0644); err != nil {
			log.WithError(err).Fatal("write report")
		}
		log.WithField("path", path).Info("wrote report")
		return
	}
	os.Stdout.Write(payload)
	os.Stdout.Write([]byte("\n"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Fatal("parse environment override")
	}
	return f
}
