package marketdata

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/errors"
	"github.com/meenmo/curvelib/instrument"
)

func TestQuoteToInstrument(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		quote    Quote
		kind     instrument.Kind
		maturity float64
		rate     float64
	}{
		{
			name:     "ois with explicit frequency",
			quote:    Quote{Kind: "OIS", Maturity: 2, Value: decimal.NewFromFloat(0.031), FixedFreq: 4},
			kind:     instrument.KindOIS,
			maturity: 2,
			rate:     0.031,
		},
		{
			name:     "irs defaults to annual fixed",
			quote:    Quote{Kind: "irs", Maturity: 5, Value: decimal.NewFromFloat(0.035)},
			kind:     instrument.KindIRS,
			maturity: 5,
			rate:     0.035,
		},
		{
			name:     "fra keyed by end date",
			quote:    Quote{Kind: "FRA", Start: 0.5, End: 0.75, Value: decimal.NewFromFloat(0.028)},
			kind:     instrument.KindFRA,
			maturity: 0.75,
			rate:     0.028,
		},
		{
			name:     "future price to implied rate",
			quote:    Quote{Kind: "FUTURE", Maturity: 0.25, Value: decimal.NewFromFloat(96.5), ConvexityAdj: decimal.NewFromFloat(0.0002)},
			kind:     instrument.KindFuture,
			maturity: 0.25,
			rate:     (100-96.5)/100 - 0.0002,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			inst, err := tc.quote.Instrument()
			if err != nil {
				t.Fatalf("Instrument: %v", err)
			}
			if inst.Kind() != tc.kind {
				t.Fatalf("kind = %s, want %s", inst.Kind(), tc.kind)
			}
			if inst.Maturity() != tc.maturity {
				t.Fatalf("maturity = %g, want %g", inst.Maturity(), tc.maturity)
			}
			if math.Abs(inst.Rate()-tc.rate) > 1e-12 {
				t.Fatalf("rate = %g, want %g", inst.Rate(), tc.rate)
			}
		})
	}

	if _, err := (Quote{Kind: "BOND", Maturity: 10}).Instrument(); !errors.IsType(err, errors.TypeMarketData) {
		t.Fatalf("unknown kind error = %v, want MARKET_DATA", err)
	}
}

func TestInstrumentsStopsAtBadQuote(t *testing.T) {
	t.Parallel()

	quotes := []Quote{
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 1, Value: decimal.NewFromFloat(0.03)},
		{CurveID: "usd-ois", Kind: "SWAPTION", Maturity: 2, Value: decimal.NewFromFloat(0.03)},
	}
	if _, err := Instruments(quotes); !errors.IsType(err, errors.TypeMarketData) {
		t.Fatalf("Instruments = %v, want MARKET_DATA error", err)
	}

	good, err := Instruments(quotes[:1])
	if err != nil {
		t.Fatalf("Instruments: %v", err)
	}
	if len(good) != 1 {
		t.Fatalf("len = %d, want 1", len(good))
	}
}

func TestStaticSource(t *testing.T) {
	t.Parallel()

	src := NewStaticSource([]Quote{
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 1, Value: decimal.NewFromFloat(0.030)},
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 2, Value: decimal.NewFromFloat(0.032)},
		{CurveID: "usd-3m", Kind: "IRS", Maturity: 2, Value: decimal.NewFromFloat(0.035)},
	})
	defer src.Close()

	ctx := context.Background()
	quotes, err := src.Quotes(ctx, "usd-ois", time.Now())
	if err != nil {
		t.Fatalf("Quotes: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("len = %d, want 2", len(quotes))
	}

	// Returned slices are copies.
	quotes[0].Maturity = 99
	again, err := src.Quotes(ctx, "usd-ois", time.Now())
	if err != nil {
		t.Fatalf("Quotes: %v", err)
	}
	if again[0].Maturity == 99 {
		t.Fatal("mutating a returned strip must not affect the source")
	}

	if _, err := src.Quotes(ctx, "eur-ois", time.Now()); !errors.IsType(err, errors.TypeNotFound) {
		t.Fatalf("missing curve = %v, want NOT_FOUND", err)
	}
}

func TestStaticSourceFeedsBootstrap(t *testing.T) {
	t.Parallel()

	src := NewStaticSource([]Quote{
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 1, Value: decimal.NewFromFloat(0.030)},
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 2, Value: decimal.NewFromFloat(0.032)},
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 3, Value: decimal.NewFromFloat(0.034)},
	})
	quotes, err := src.Quotes(context.Background(), "usd-ois", time.Now())
	if err != nil {
		t.Fatalf("Quotes: %v", err)
	}
	insts, err := Instruments(quotes)
	if err != nil {
		t.Fatalf("Instruments: %v", err)
	}
	res, err := bootstrap.Run(insts, bootstrap.DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Curve.PillarCount() != 3 {
		t.Fatalf("pillar count = %d, want 3", res.Curve.PillarCount())
	}
	df1, err := res.Curve.DiscountFactor(1)
	if err != nil {
		t.Fatalf("DiscountFactor: %v", err)
	}
	if want := 1.0 / 1.030; math.Abs(df1-want) > 1e-9 {
		t.Fatalf("df(1) = %.12f, want %.12f", df1, want)
	}
}
