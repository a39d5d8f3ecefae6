package marketdata

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/curvelib/errors"
)

// quoteColumns is the column list both SQL sources select. The curve_quotes
// table uses NULLs for fields that do not apply to an instrument kind.
const quoteColumns = "kind, tenor, maturity, period_start, period_end, value, convexity_adj, fixed_freq, float_freq"

func scanQuotes(rows *sql.Rows, curveID string, asOf time.Time) ([]Quote, error) {
	quotes := make([]Quote, 0)
	for rows.Next() {
		var (
			q         Quote
			tenor     sql.NullString
			start     sql.NullFloat64
			end       sql.NullFloat64
			convexity decimal.NullDecimal
			fixedFreq sql.NullInt64
			floatFreq sql.NullInt64
		)
		if err := rows.Scan(&q.Kind, &tenor, &q.Maturity, &start, &end, &q.Value, &convexity, &fixedFreq, &floatFreq); err != nil {
			return nil, errors.MarketData("failed to scan quote row", err)
		}
		q.CurveID = curveID
		q.AsOf = asOf
		q.Tenor = tenor.String
		q.Start = start.Float64
		q.End = end.Float64
		if convexity.Valid {
			q.ConvexityAdj = convexity.Decimal
		}
		q.FixedFreq = int(fixedFreq.Int64)
		q.FloatFreq = int(floatFreq.Int64)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.MarketData("quote rows iteration failed", err)
	}
	return quotes, nil
}
