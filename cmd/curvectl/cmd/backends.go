// Package cmd - backend wiring shared by subcommands
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/instrument"
	"github.com/meenmo/curvelib/internal/config"
	"github.com/meenmo/curvelib/marketdata"
	"github.com/meenmo/curvelib/store"
)

// loadQuotesFile reads a JSON array of quotes.
func loadQuotesFile(path string) ([]marketdata.Quote, error) {
	if path == "" {
		return nil, fmt.Errorf("no quotes file configured (set --quotes or market_data.quotes_file)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var quotes []marketdata.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("failed to parse quotes file %s: %w", path, err)
	}
	return quotes, nil
}

// newSource builds the quote source selected by the configuration. A
// non-empty quotesFile overrides the configured backend with a static file.
func newSource(cfg *config.Config, quotesFile string) (marketdata.Source, error) {
	if quotesFile != "" {
		quotes, err := loadQuotesFile(quotesFile)
		if err != nil {
			return nil, err
		}
		return marketdata.NewStaticSource(quotes), nil
	}
	switch cfg.MarketData.Backend {
	case "", "static":
		quotes, err := loadQuotesFile(cfg.MarketData.QuotesFile)
		if err != nil {
			return nil, err
		}
		return marketdata.NewStaticSource(quotes), nil
	case "postgres":
		return marketdata.NewPostgresSource(cfg.MarketData.PostgresDSN)
	case "clickhouse":
		return marketdata.NewClickHouseSource(cfg.MarketData.ClickHouseDSN)
	default:
		return nil, fmt.Errorf("unknown market data backend %q", cfg.MarketData.Backend)
	}
}

// newStore builds the snapshot store selected by the configuration.
func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		opts := store.DefaultOptions()
		if cfg.Store.TTLSeconds > 0 {
			opts.DefaultTTL = time.Duration(cfg.Store.TTLSeconds) * time.Second
		}
		redisOpts := []store.RedisOption{store.WithOptions(opts)}
		if cfg.Store.KeyPrefix != "" {
			redisOpts = append(redisOpts, store.WithKeyPrefix(cfg.Store.KeyPrefix))
		}
		return store.NewRedisStore(cfg.Store.RedisAddr, redisOpts...)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// fetchStrip pulls one curve's quotes and converts them to instruments.
func fetchStrip(ctx context.Context, src marketdata.Source, curveID string, asOf time.Time) ([]instrument.Instrument, error) {
	quotes, err := src.Quotes(ctx, curveID, asOf)
	if err != nil {
		return nil, err
	}
	return marketdata.Instruments(quotes)
}

// printCurve writes one curve's pillar table to stdout.
func printCurve(label string, c *curve.Curve) {
	fmt.Printf("%s: %d pillars, %s\n", label, c.PillarCount(), c.Method())
	fmt.Printf("  %-10s %-14s %10s\n", "Maturity", "DF", "Zero")
	times := c.Times()
	dfs := c.DiscountFactors()
	for i, t := range times {
		zero, err := c.ZeroRate(t)
		if err != nil {
			continue
		}
		fmt.Printf("  %-10.4f %-14.10f %9.4f%%\n", t, dfs[i], zero*100)
	}
}
