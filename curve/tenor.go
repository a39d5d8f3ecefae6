package curve

import "sort"

// Tenor identifies a floating-rate index tenor with its own forward curve.
type Tenor string

const (
	TenorON  Tenor = "ON"
	Tenor1M  Tenor = "1M"
	Tenor3M  Tenor = "3M"
	Tenor6M  Tenor = "6M"
	Tenor12M Tenor = "12M"
)

// CurveSet bundles one discount curve with tenor-specific forward curves.
// An empty forward map means single-curve (self-discounting) mode.
type CurveSet struct {
	Discount *Curve
	Forwards map[Tenor]*Curve
}

// NewCurveSet creates a curve set around the given discount curve.
func NewCurveSet(discount *Curve) *CurveSet {
	return &CurveSet{
		Discount: discount,
		Forwards: make(map[Tenor]*Curve),
	}
}

// ForwardCurve returns the forward curve for the tenor, falling back to the
// discount curve when the tenor has no dedicated curve.
func (cs *CurveSet) ForwardCurve(tenor Tenor) *Curve {
	if c, ok := cs.Forwards[tenor]; ok && c != nil {
		return c
	}
	return cs.Discount
}

// Tenors returns the tenors with dedicated forward curves, sorted.
func (cs *CurveSet) Tenors() []Tenor {
	out := make([]Tenor, 0, len(cs.Forwards))
	for t := range cs.Forwards {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
