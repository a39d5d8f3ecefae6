package pricing

import (
	"math"
	"testing"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/instrument"
)

// flatCurve builds a curve whose discount factors follow exp(-rate*t).
// Log-linear interpolation reproduces the exponential exactly between
// pillars, so forwards off this curve are exact too.
func flatCurve(t *testing.T, rate float64) *curve.Curve {
	t.Helper()
	times := []float64{0.5, 1, 2, 3, 5}
	dfs := make([]float64, len(times))
	for i, tt := range times {
		dfs[i] = math.Exp(-rate * tt)
	}
	c, err := curve.NewFromPillars(times, dfs, curve.LogLinear, true)
	if err != nil {
		t.Fatalf("NewFromPillars: %v", err)
	}
	return c
}

func flatCurveSet(t *testing.T, discRate, fwdRate float64) *curve.CurveSet {
	t.Helper()
	cs := curve.NewCurveSet(flatCurve(t, discRate))
	cs.Forwards[curve.Tenor3M] = flatCurve(t, fwdRate)
	return cs
}

func TestParRateRoundTripToZeroPV(t *testing.T) {
	t.Parallel()

	disc := []instrument.Instrument{
		instrument.NewOIS(1, 0.030, instrument.FreqAnnual),
		instrument.NewOIS(2, 0.032, instrument.FreqAnnual),
		instrument.NewOIS(3, 0.034, instrument.FreqAnnual),
	}
	fwd := []instrument.Instrument{
		instrument.NewIRS(1, 0.033, instrument.FreqAnnual, instrument.FreqQuarterly),
		instrument.NewIRS(2, 0.035, instrument.FreqAnnual, instrument.FreqQuarterly),
		instrument.NewIRS(3, 0.037, instrument.FreqAnnual, instrument.FreqQuarterly),
	}
	b := bootstrap.NewBuilder(bootstrap.DefaultConfig(), 0)
	cs, err := b.Build(disc, []bootstrap.TenorInstruments{{Tenor: curve.Tenor3M, Instruments: fwd}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	const notional = 1e6
	par, err := ParRate(cs, curve.Tenor3M, 2.5, instrument.FreqSemiAnnual)
	if err != nil {
		t.Fatalf("ParRate: %v", err)
	}
	res, err := SwapPV(cs, par, curve.Tenor3M, 2.5, instrument.FreqSemiAnnual, notional)
	if err != nil {
		t.Fatalf("SwapPV: %v", err)
	}
	if math.Abs(res.NetPV) > 1e-6*notional {
		t.Fatalf("swap at its par rate should have zero PV, got NetPV = %g (par = %g)", res.NetPV, par)
	}
}

func TestParRateRecoversSingleCurveQuote(t *testing.T) {
	t.Parallel()

	quotes := []float64{0.030, 0.032, 0.034}
	insts := []instrument.Instrument{
		instrument.NewIRS(1, quotes[0], instrument.FreqAnnual, instrument.FreqQuarterly),
		instrument.NewIRS(2, quotes[1], instrument.FreqAnnual, instrument.FreqQuarterly),
		instrument.NewIRS(3, quotes[2], instrument.FreqAnnual, instrument.FreqQuarterly),
	}
	res, err := bootstrap.Run(insts, bootstrap.DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	cs := curve.NewCurveSet(res.Curve)

	// Single-curve floating leg telescopes to 1 - df(T), so the par rate
	// at a pillar maturity must reproduce the bootstrapped quote.
	for i, maturity := range []float64{1, 2, 3} {
		par, err := ParRate(cs, curve.Tenor6M, maturity, instrument.FreqAnnual)
		if err != nil {
			t.Fatalf("ParRate(%g): %v", maturity, err)
		}
		if math.Abs(par-quotes[i]) > 1e-10 {
			t.Fatalf("par rate at %gy = %g, want quote %g", maturity, par, quotes[i])
		}
	}
}

func TestParRateDualCurveFlat(t *testing.T) {
	t.Parallel()

	cs := flatCurveSet(t, 0.02, 0.03)
	par, err := ParRate(cs, curve.Tenor3M, 3, instrument.FreqAnnual)
	if err != nil {
		t.Fatalf("ParRate: %v", err)
	}
	// Flat 3% forward curve gives the same simple forward every period,
	// so the par rate equals it regardless of the discount curve.
	want := math.Exp(0.03) - 1
	if math.Abs(par-want) > 1e-12 {
		t.Fatalf("dual-curve par rate = %.12f, want %.12f", par, want)
	}
}

func TestSwapPVSignConvention(t *testing.T) {
	t.Parallel()

	cs := flatCurveSet(t, 0.02, 0.03)
	const notional = 1e6
	par, err := ParRate(cs, curve.Tenor3M, 2, instrument.FreqSemiAnnual)
	if err != nil {
		t.Fatalf("ParRate: %v", err)
	}

	above, err := SwapPV(cs, par+0.01, curve.Tenor3M, 2, instrument.FreqSemiAnnual, notional)
	if err != nil {
		t.Fatalf("SwapPV: %v", err)
	}
	if above.NetPV >= 0 {
		t.Fatalf("paying above par must cost the fixed payer, got NetPV = %g", above.NetPV)
	}
	below, err := SwapPV(cs, par-0.01, curve.Tenor3M, 2, instrument.FreqSemiAnnual, notional)
	if err != nil {
		t.Fatalf("SwapPV: %v", err)
	}
	if below.NetPV <= 0 {
		t.Fatalf("paying below par must favor the fixed payer, got NetPV = %g", below.NetPV)
	}

	ann, err := Annuity(cs, 2, instrument.FreqSemiAnnual)
	if err != nil {
		t.Fatalf("Annuity: %v", err)
	}
	// A 1% shift in the fixed rate moves PV by annuity * 0.01 * notional.
	wantShift := ann * 0.01 * notional
	if got := above.NetPV - below.NetPV; math.Abs(got+2*wantShift) > 1e-4 {
		t.Fatalf("PV shift between +/-1%% fixed = %g, want %g", got, -2*wantShift)
	}
}

func TestForwardCurveFallback(t *testing.T) {
	t.Parallel()

	cs := flatCurveSet(t, 0.02, 0.03)
	// Tenor6M has no dedicated curve, so projection falls back to the
	// discount curve.
	par, err := ParRate(cs, curve.Tenor6M, 2, instrument.FreqAnnual)
	if err != nil {
		t.Fatalf("ParRate: %v", err)
	}
	single := curve.NewCurveSet(cs.Discount)
	want, err := ParRate(single, curve.Tenor6M, 2, instrument.FreqAnnual)
	if err != nil {
		t.Fatalf("ParRate: %v", err)
	}
	if par != want {
		t.Fatalf("fallback par rate = %g, want discount-curve par %g", par, want)
	}
}

func TestAnnuityFlatCurve(t *testing.T) {
	t.Parallel()

	cs := flatCurveSet(t, 0.02, 0.02)
	ann, err := Annuity(cs, 2, instrument.FreqAnnual)
	if err != nil {
		t.Fatalf("Annuity: %v", err)
	}
	want := math.Exp(-0.02*1) + math.Exp(-0.02*2)
	if math.Abs(ann-want) > 1e-12 {
		t.Fatalf("annuity = %.12f, want %.12f", ann, want)
	}
}

func TestPricingInputValidation(t *testing.T) {
	t.Parallel()

	cs := flatCurveSet(t, 0.02, 0.03)
	if _, err := ParRate(nil, curve.Tenor3M, 2, instrument.FreqAnnual); err == nil {
		t.Fatal("expected error for nil curve set")
	}
	if _, err := ParRate(cs, curve.Tenor3M, 0, instrument.FreqAnnual); err == nil {
		t.Fatal("expected error for zero maturity")
	}
	if _, err := ParRate(cs, curve.Tenor3M, -1, instrument.FreqAnnual); err == nil {
		t.Fatal("expected error for negative maturity")
	}
	if _, err := SwapPV(nil, 0.03, curve.Tenor3M, 2, instrument.FreqAnnual, 1e6); err == nil {
		t.Fatal("expected error for nil curve set")
	}
	if _, err := SwapPV(cs, 0.03, curve.Tenor3M, math.NaN(), instrument.FreqAnnual, 1e6); err == nil {
		t.Fatal("expected error for NaN maturity")
	}
}
