// Package main is the curved read-API daemon: it builds curve sets from a
// market data source and serves snapshots over HTTP.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/internal/config"
	"github.com/meenmo/curvelib/internal/logging"
	"github.com/meenmo/curvelib/marketdata"
	"github.com/meenmo/curvelib/store"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
}

func main() {
	cfgPath := flag.String("config", os.Getenv("CURVED_CONFIG"), "config file path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	applyEnv(cfg)
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer logging.Sync()

	st, err := newStore(cfg)
	if err != nil {
		logging.Fatal("store backend failed", zap.Error(err))
	}
	defer st.Close()

	src, err := newSource(cfg)
	if err != nil {
		logging.Fatal("market data backend failed", zap.Error(err))
	}
	defer src.Close()

	solverCfg, err := cfg.Solver.BootstrapConfig()
	if err != nil {
		logging.Fatal("invalid solver config", zap.Error(err))
	}
	builder := bootstrap.NewBuilder(solverCfg, cfg.Solver.MaxWorkers)

	srv := newServer(st, src, builder)
	handler := zstdMiddleware(srv.routes())

	logging.Info("curved listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("store", cfg.Store.Backend),
		zap.String("market_data", cfg.MarketData.Backend))

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		logging.Fatal("server stopped", zap.Error(err))
	}
}

// applyEnv lets deployment environment variables override the file config.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv("CURVED_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CURVED_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("CURVED_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("CURVED_MARKETDATA_BACKEND"); v != "" {
		cfg.MarketData.Backend = v
	}
	if v := os.Getenv("CURVED_QUOTES_FILE"); v != "" {
		cfg.MarketData.QuotesFile = v
	}
	if v := os.Getenv("CURVED_POSTGRES_DSN"); v != "" {
		cfg.MarketData.PostgresDSN = v
	}
	if v := os.Getenv("CURVED_CLICKHOUSE_DSN"); v != "" {
		cfg.MarketData.ClickHouseDSN = v
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
		return nil, errInvalidBackend("store", cfg.Store.Backend)
	}
}

// newSource builds the quote source selected by the configuration.
func newSource(cfg *config.Config) (marketdata.Source, error) {
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
		return nil, errInvalidBackend("market data", cfg.MarketData.Backend)
	}
}

func errInvalidBackend(kind, backend string) error {
	return fmt.Errorf("unknown %s backend %q", kind, backend)
}

// loadQuotesFile reads a JSON array of quotes for the static backend.
func loadQuotesFile(path string) ([]marketdata.Quote, error) {
	if path == "" {
		return nil, fmt.Errorf("static market data backend needs a quotes file (CURVED_QUOTES_FILE)")
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
