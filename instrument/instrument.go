// Package instrument models the market quotes a curve is bootstrapped from.
// Each instrument expresses "this discount factor is consistent with this
// quote" as a scalar residual equation solved by the bootstrap.
package instrument

import (
	"math"

	"github.com/meenmo/curvelib/errors"
)

// Kind distinguishes the supported instrument types.
type Kind string

const (
	KindOIS    Kind = "OIS"
	KindIRS    Kind = "IRS"
	KindFRA    Kind = "FRA"
	KindFuture Kind = "FUTURE"
)

// Frequency enumerates payment frequencies in payments per year.
type Frequency int

const (
	FreqAnnual     Frequency = 1
	FreqSemiAnnual Frequency = 2
	FreqQuarterly  Frequency = 4
	FreqMonthly    Frequency = 12
	FreqWeekly     Frequency = 52
	FreqDaily      Frequency = 365
)

// PeriodYears returns the accrual period length in years.
func (f Frequency) PeriodYears() float64 {
	return 1.0 / float64(f)
}

// DefaultMaxMaturity bounds instrument maturities during validation.
const DefaultMaxMaturity = 100.0

// Instrument is an immutable market quote. Construct one with NewOIS,
// NewIRS, NewFRA or NewFuture; the zero value is not usable.
type Instrument struct {
	kind         Kind
	maturity     float64
	rate         float64
	paymentFreq  Frequency // OIS fixed leg
	fixedFreq    Frequency // IRS fixed leg
	floatFreq    Frequency // IRS floating leg (quote metadata, not used in the par residual)
	start        float64   // FRA accrual start
	price        float64   // Future quoted price (100 - rate basis)
	convexityAdj float64   // Future convexity adjustment
}

// NewOIS creates an overnight-index swap quote. Single-period when the
// maturity fits inside one payment period, par-swap style otherwise.
func NewOIS(maturity, rate float64, paymentFreq Frequency) Instrument {
	return Instrument{
		kind:        KindOIS,
		maturity:    maturity,
		rate:        rate,
		paymentFreq: paymentFreq,
	}
}

// NewIRS creates a fixed-vs-floating swap quote. The fixed-leg frequency
// drives the par residual's period spacing.
func NewIRS(maturity, rate float64, fixedFreq, floatFreq Frequency) Instrument {
	return Instrument{
		kind:      KindIRS,
		maturity:  maturity,
		rate:      rate,
		fixedFreq: fixedFreq,
		floatFreq: floatFreq,
	}
}

// NewFRA creates a single-period forward rate agreement over [start, end].
// The curve pillar it determines sits at end.
func NewFRA(start, end, rate float64) Instrument {
	return Instrument{
		kind:     KindFRA,
		maturity: end,
		start:    start,
		rate:     rate,
	}
}

// NewFuture creates an exchange-traded future quoted as 100 - rate. The
// implied forward rate is (100-price)/100 less the convexity adjustment.
func NewFuture(maturity, price, convexityAdj float64) Instrument {
	return Instrument{
		kind:         KindFuture,
		maturity:     maturity,
		price:        price,
		convexityAdj: convexityAdj,
	}
}

// Kind returns the instrument type.
func (ins Instrument) Kind() Kind {
	return ins.kind
}

// Rate returns the market rate. For futures it is derived from the quoted
// price net of the convexity adjustment.
func (ins Instrument) Rate() float64 {
	if ins.kind == KindFuture {
		return (100.0-ins.price)/100.0 - ins.convexityAdj
	}
	return ins.rate
}

// Maturity returns the pillar time this instrument determines. A FRA pins
// the pillar at its accrual end.
func (ins Instrument) Maturity() float64 {
	return ins.maturity
}

// Start returns the FRA accrual start; zero for other kinds.
func (ins Instrument) Start() float64 {
	return ins.start
}

// Price returns the quoted futures price; zero for other kinds.
func (ins Instrument) Price() float64 {
	return ins.price
}

// ConvexityAdjustment returns the futures convexity adjustment.
func (ins Instrument) ConvexityAdjustment() float64 {
	return ins.convexityAdj
}

// FixedFrequency returns the frequency spacing the par residual uses.
func (ins Instrument) FixedFrequency() Frequency {
	switch ins.kind {
	case KindOIS:
		return ins.paymentFreq
	case KindIRS:
		return ins.fixedFreq
	}
	return 0
}

// FloatFrequency returns the IRS floating-leg frequency; zero otherwise.
func (ins Instrument) FloatFrequency() Frequency {
	return ins.floatFreq
}

// WithRate returns a copy quoting the given market rate. For futures the
// price is re-derived so Rate() reports the new level. Used by
// bump-and-revalue, which re-bootstraps from perturbed copies.
func (ins Instrument) WithRate(rate float64) Instrument {
	out := ins
	if ins.kind == KindFuture {
		out.price = 100.0 * (1.0 - (rate + ins.convexityAdj))
		return out
	}
	out.rate = rate
	return out
}

// Validate checks the quote is structurally usable for bootstrapping.
// maxMaturity <= 0 falls back to DefaultMaxMaturity.
func (ins Instrument) Validate(maxMaturity float64) error {
	if maxMaturity <= 0 {
		maxMaturity = DefaultMaxMaturity
	}
	if ins.maturity <= 0 {
		return errors.Instrumentf("%s maturity must be positive, got %g", ins.kind, ins.maturity).
			WithContext("maturity", ins.maturity)
	}
	if ins.maturity > maxMaturity {
		return errors.Instrumentf("%s maturity %g exceeds maximum %g", ins.kind, ins.maturity, maxMaturity).
			WithContext("maturity", ins.maturity).
			WithContext("max_maturity", maxMaturity)
	}
	switch ins.kind {
	case KindOIS:
		if ins.paymentFreq <= 0 {
			return errors.Instrumentf("OIS payment frequency must be positive, got %d", ins.paymentFreq)
		}
	case KindIRS:
		if ins.fixedFreq <= 0 {
			return errors.Instrumentf("IRS fixed frequency must be positive, got %d", ins.fixedFreq)
		}
		if ins.floatFreq <= 0 {
			return errors.Instrumentf("IRS float frequency must be positive, got %d", ins.floatFreq)
		}
	case KindFRA:
		if ins.start < 0 {
			return errors.Instrumentf("FRA start must be non-negative, got %g", ins.start).
				WithContext("start", ins.start)
		}
		if ins.start >= ins.maturity {
			return errors.Instrumentf("FRA start %g must precede end %g", ins.start, ins.maturity).
				WithContext("start", ins.start).
				WithContext("end", ins.maturity)
		}
	case KindFuture:
		if ins.price <= 0 || ins.price >= 200 {
			return errors.Instrumentf("future price %g outside (0, 200)", ins.price).
				WithContext("price", ins.price)
		}
	default:
		return errors.Instrumentf("unknown instrument kind %q", string(ins.kind))
	}
	if !isFinite(ins.Rate()) {
		return errors.Instrumentf("%s rate is not finite", ins.kind)
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
