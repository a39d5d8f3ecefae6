// Package store persists bootstrapped curve sets as snapshots. A snapshot
// carries the pillar vectors and interpolation method of every curve in a
// set, which is enough to rebuild the set exactly.
package store

import (
	"context"
	"time"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/errors"
)

// CurveRecord is the serialized form of a single curve.
type CurveRecord struct {
	Times       []float64 `json:"times"`
	DFs         []float64 `json:"discount_factors"`
	Method      string    `json:"interpolation"`
	Extrapolate bool      `json:"extrapolate"`
}

// Snapshot is the serialized form of a curve set at one curve date.
type Snapshot struct {
	ID        string                  `json:"id"`
	CurveDate time.Time               `json:"curve_date"`
	CreatedAt time.Time               `json:"created_at"`
	Discount  *CurveRecord            `json:"discount"`
	Forwards  map[string]*CurveRecord `json:"forwards,omitempty"`
}

// Store is the persistence interface for curve snapshots.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Options holds knobs shared by Store implementations.
type Options struct {
	DefaultTTL time.Duration
}

// DefaultOptions keeps snapshots for 24 hours in TTL-capable backends.
func DefaultOptions() *Options {
	return &Options{
		DefaultTTL: 24 * time.Hour,
	}
}

func recordCurve(c *curve.Curve) *CurveRecord {
	return &CurveRecord{
		Times:       c.Times(),
		DFs:         c.DiscountFactors(),
		Method:      string(c.Method()),
		Extrapolate: c.AllowsExtrapolation(),
	}
}

func (r *CurveRecord) restore() (*curve.Curve, error) {
	method, err := curve.ParseInterpolation(r.Method)
	if err != nil {
		return nil, err
	}
	return curve.NewFromPillars(r.Times, r.DFs, method, r.Extrapolate)
}

// SnapshotCurveSet captures a curve set under the given snapshot ID.
func SnapshotCurveSet(id string, curveDate time.Time, cs *curve.CurveSet) (*Snapshot, error) {
	if id == "" {
		return nil, errors.New(errors.TypeStore, "snapshot id must not be empty")
	}
	if cs == nil || cs.Discount == nil {
		return nil, errors.New(errors.TypeStore, "curve set has no discount curve")
	}
	snap := &Snapshot{
		ID:        id,
		CurveDate: curveDate,
		CreatedAt: time.Now().UTC(),
		Discount:  recordCurve(cs.Discount),
	}
	if len(cs.Forwards) > 0 {
		snap.Forwards = make(map[string]*CurveRecord, len(cs.Forwards))
		for tenor, c := range cs.Forwards {
			if c == nil {
				continue
			}
			snap.Forwards[string(tenor)] = recordCurve(c)
		}
	}
	return snap, nil
}

// RestoreCurveSet rebuilds the curve set the snapshot was taken from.
func (s *Snapshot) RestoreCurveSet() (*curve.CurveSet, error) {
	if s.Discount == nil {
		return nil, errors.Newf(errors.TypeStore, "snapshot %s has no discount curve", s.ID)
	}
	disc, err := s.Discount.restore()
	if err != nil {
		return nil, errors.Wrapf(errors.TypeStore, err, "snapshot %s: discount curve", s.ID)
	}
	cs := curve.NewCurveSet(disc)
	for tenor, rec := range s.Forwards {
		c, err := rec.restore()
		if err != nil {
			return nil, errors.Wrapf(errors.TypeStore, err, "snapshot %s: forward curve %s", s.ID, tenor)
		}
		cs.Forwards[curve.Tenor(tenor)] = c
	}
	return cs, nil
}

func (r *CurveRecord) clone() *CurveRecord {
	if r == nil {
		return nil
	}
	out := &CurveRecord{
		Times:       append([]float64(nil), r.Times...),
		DFs:         append([]float64(nil), r.DFs...),
		Method:      r.Method,
		Extrapolate: r.Extrapolate,
	}
	return out
}

func (s *Snapshot) clone() *Snapshot {
	out := &Snapshot{
		ID:        s.ID,
		CurveDate: s.CurveDate,
		CreatedAt: s.CreatedAt,
		Discount:  s.Discount.clone(),
	}
	if s.Forwards != nil {
		out.Forwards = make(map[string]*CurveRecord, len(s.Forwards))
		for k, v := range s.Forwards {
			out.Forwards[k] = v.clone()
		}
	}
	return out
}
