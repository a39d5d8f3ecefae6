// Package marketdata sources par quotes for curve construction. A Source
// returns the quote strip for one curve on one date; Instruments converts
// the strip into bootstrap inputs.
package marketdata

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/curvelib/errors"
	"github.com/meenmo/curvelib/instrument"
)

// Quote is one market observation: a par rate for OIS/IRS/FRA or a price
// for futures. Value keeps the quoted figure exact until conversion.
type Quote struct {
	CurveID string    `json:"curve_id"`
	Kind    string    `json:"kind"`
	Tenor   string    `json:"tenor,omitempty"`
	AsOf    time.Time `json:"as_of"`

	// Maturity is in year fractions. Start/End are set for FRAs only.
	Maturity float64 `json:"maturity"`
	Start    float64 `json:"start,omitempty"`
	End      float64 `json:"end,omitempty"`

	Value        decimal.Decimal `json:"value"`
	ConvexityAdj decimal.Decimal `json:"convexity_adj,omitempty"`

	// FixedFreq and FloatFreq are payments per year. Zero means annual
	// fixed and quarterly floating.
	FixedFreq int `json:"fixed_freq,omitempty"`
	FloatFreq int `json:"float_freq,omitempty"`
}

func (q Quote) fixedFreq() instrument.Frequency {
	if q.FixedFreq == 0 {
		return instrument.FreqAnnual
	}
	return instrument.Frequency(q.FixedFreq)
}

func (q Quote) floatFreq() instrument.Frequency {
	if q.FloatFreq == 0 {
		return instrument.FreqQuarterly
	}
	return instrument.Frequency(q.FloatFreq)
}

// Instrument converts the quote into a bootstrap input.
func (q Quote) Instrument() (instrument.Instrument, error) {
	value := q.Value.InexactFloat64()
	switch instrument.Kind(strings.ToUpper(strings.TrimSpace(q.Kind))) {
	case instrument.KindOIS:
		return instrument.NewOIS(q.Maturity, value, q.fixedFreq()), nil
	case instrument.KindIRS:
		return instrument.NewIRS(q.Maturity, value, q.fixedFreq(), q.floatFreq()), nil
	case instrument.KindFRA:
		return instrument.NewFRA(q.Start, q.End, value), nil
	case instrument.KindFuture:
		return instrument.NewFuture(q.Maturity, value, q.ConvexityAdj.InexactFloat64()), nil
	default:
		return instrument.Instrument{}, errors.Newf(errors.TypeMarketData, "unknown instrument kind %q", q.Kind)
	}
}

// Instruments converts a quote strip in order. Conversion stops at the
// first quote that does not map to a known instrument kind.
func Instruments(quotes []Quote) ([]instrument.Instrument, error) {
	out := make([]instrument.Instrument, 0, len(quotes))
	for i, q := range quotes {
		inst, err := q.Instrument()
		if err != nil {
			return nil, errors.Wrapf(errors.TypeMarketData, err, "quote %d (curve %s)", i, q.CurveID)
		}
		out = append(out, inst)
	}
	return out, nil
}
