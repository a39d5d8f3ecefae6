package marketdata

import (
	"context"
	"time"

	"github.com/meenmo/curvelib/errors"
)

// Source supplies the quote strip for a curve on a given date.
type Source interface {
	Quotes(ctx context.Context, curveID string, asOf time.Time) ([]Quote, error)
	Close() error
}

// StaticSource is a map-backed Source for development and testing. Quotes
// are grouped by curve ID at construction; the asOf argument is ignored.
type StaticSource struct {
	quotes map[string][]Quote
}

// NewStaticSource groups the given quotes by curve ID.
func NewStaticSource(quotes []Quote) *StaticSource {
	byCurve := make(map[string][]Quote)
	for _, q := range quotes {
		byCurve[q.CurveID] = append(byCurve[q.CurveID], q)
	}
	return &StaticSource{quotes: byCurve}
}

func (s *StaticSource) Quotes(_ context.Context, curveID string, _ time.Time) ([]Quote, error) {
	quotes, ok := s.quotes[curveID]
	if !ok {
		return nil, errors.NotFound("quote strip", curveID)
	}
	out := make([]Quote, len(quotes))
	copy(out, quotes)
	return out, nil
}

func (s *StaticSource) Close() error {
	return nil
}
