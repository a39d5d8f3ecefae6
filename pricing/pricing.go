// Package pricing values vanilla interest rate swaps on a bootstrapped
// curve set: forwards are projected off the tenor curve and cashflows are
// discounted off the discount curve of the same CurveSet.
package pricing

import (
	"math"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/errors"
	"github.com/meenmo/curvelib/instrument"
)

// stubMin is the smallest final accrual stub kept as its own period.
const stubMin = 1e-8

// Result contains leg present values from the fixed-rate payer's
// perspective.
type Result struct {
	FixedLegPV float64
	FloatLegPV float64
	// NetPV is FloatLegPV - FixedLegPV.
	NetPV float64
}

type period struct {
	start float64
	end   float64
}

// schedule splits [0, maturity] into accrual periods of length 1/freq,
// truncating the last period at maturity.
func schedule(maturity float64, freq instrument.Frequency) ([]period, error) {
	if maturity <= 0 || math.IsNaN(maturity) || math.IsInf(maturity, 0) {
		return nil, errors.Newf(errors.TypeInstrument, "swap maturity must be positive, got %g", maturity)
	}
	step := freq.PeriodYears()
	if step <= 0 {
		return nil, errors.Newf(errors.TypeInstrument, "invalid payment frequency %d", int(freq))
	}
	var periods []period
	start := 0.0
	for i := 1; ; i++ {
		end := float64(i) * step
		if end >= maturity-stubMin {
			break
		}
		periods = append(periods, period{start: start, end: end})
		start = end
	}
	periods = append(periods, period{start: start, end: maturity})
	return periods, nil
}

// ParRate computes the fixed rate that prices a vanilla swap to zero: the
// floating leg PV divided by the fixed-leg annuity. Forwards come from the
// tenor curve of cs (falling back to the discount curve when the tenor has
// no dedicated curve) and all cashflows discount off cs.Discount.
func ParRate(cs *curve.CurveSet, tenor curve.Tenor, maturity float64, freq instrument.Frequency) (float64, error) {
	if cs == nil || cs.Discount == nil {
		return 0, errors.New(errors.TypeCurve, "ParRate: curve set has no discount curve")
	}
	periods, err := schedule(maturity, freq)
	if err != nil {
		return 0, errors.Wrap(errors.TypeCurve, "ParRate", err)
	}
	fwdCurve := cs.ForwardCurve(tenor)

	var floatPV, annuity float64
	for _, p := range periods {
		alpha := p.end - p.start
		df, err := cs.Discount.DiscountFactor(p.end)
		if err != nil {
			return 0, errors.Wrapf(errors.TypeCurve, err, "ParRate: discount factor at %g", p.end)
		}
		fwd, err := fwdCurve.ForwardRate(p.start, p.end)
		if err != nil {
			return 0, errors.Wrapf(errors.TypeCurve, err, "ParRate: forward rate over [%g, %g]", p.start, p.end)
		}
		floatPV += fwd * alpha * df
		annuity += alpha * df
	}
	if annuity == 0 {
		return 0, errors.New(errors.TypeCurve, "ParRate: zero annuity")
	}
	return floatPV / annuity, nil
}

// SwapPV values a vanilla swap paying fixedRate against the tenor floating
// index. Both legs share the payment frequency and accrue on the same
// year-fraction schedule.
func SwapPV(cs *curve.CurveSet, fixedRate float64, tenor curve.Tenor, maturity float64, freq instrument.Frequency, notional float64) (*Result, error) {
	if cs == nil || cs.Discount == nil {
		return nil, errors.New(errors.TypeCurve, "SwapPV: curve set has no discount curve")
	}
	periods, err := schedule(maturity, freq)
	if err != nil {
		return nil, errors.Wrap(errors.TypeCurve, "SwapPV", err)
	}
	fwdCurve := cs.ForwardCurve(tenor)

	var fixedPV, floatPV float64
	for _, p := range periods {
		alpha := p.end - p.start
		df, err := cs.Discount.DiscountFactor(p.end)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeCurve, err, "SwapPV: discount factor at %g", p.end)
		}
		fwd, err := fwdCurve.ForwardRate(p.start, p.end)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeCurve, err, "SwapPV: forward rate over [%g, %g]", p.start, p.end)
		}
		fixedPV += fixedRate * alpha * df * notional
		floatPV += fwd * alpha * df * notional
	}
	return &Result{
		FixedLegPV: fixedPV,
		FloatLegPV: floatPV,
		NetPV:      floatPV - fixedPV,
	}, nil
}

// Annuity is the PV of a unit fixed coupon stream: sum of accrual * df over
// the payment schedule. One basis point of fixed rate moves the swap PV by
// Annuity * 1e-4 * notional.
func Annuity(cs *curve.CurveSet, maturity float64, freq instrument.Frequency) (float64, error) {
	if cs == nil || cs.Discount == nil {
		return 0, errors.New(errors.TypeCurve, "Annuity: curve set has no discount curve")
	}
	periods, err := schedule(maturity, freq)
	if err != nil {
		return 0, errors.Wrap(errors.TypeCurve, "Annuity", err)
	}
	var annuity float64
	for _, p := range periods {
		df, err := cs.Discount.DiscountFactor(p.end)
		if err != nil {
			return 0, errors.Wrapf(errors.TypeCurve, err, "Annuity: discount factor at %g", p.end)
		}
		annuity += (p.end - p.start) * df
	}
	return annuity, nil
}
