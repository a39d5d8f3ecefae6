package marketdata

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/meenmo/curvelib/errors"
)

const chQuotesQuery = `
	SELECT ` + quoteColumns + `
	FROM curve_quotes
	WHERE curve_id = ?
	  AND quote_date = ?
	ORDER BY maturity
`

// ClickHouseSource reads quote strips from a curve_quotes table in
// ClickHouse, for setups that keep full quote history there.
type ClickHouseSource struct {
	db *sql.DB
}

// NewClickHouseSource opens a connection using a clickhouse-go DSN, e.g.
// "clickhouse://localhost:9000/marketdata".
func NewClickHouseSource(dsn string) (*ClickHouseSource, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, errors.MarketData("failed to open clickhouse connection", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.MarketData("failed to ping clickhouse", err)
	}
	return &ClickHouseSource{db: db}, nil
}

func (s *ClickHouseSource) Quotes(ctx context.Context, curveID string, asOf time.Time) ([]Quote, error) {
	rows, err := s.db.QueryContext(ctx, chQuotesQuery, curveID, asOf)
	if err != nil {
		return nil, errors.MarketData("quote query failed for curve "+curveID, err)
	}
	defer rows.Close()
	return scanQuotes(rows, curveID, asOf)
}

func (s *ClickHouseSource) Close() error {
	return s.db.Close()
}
