// Package config provides configuration management for the curvelib tools.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/errors"
	"github.com/meenmo/curvelib/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Solver contains curve construction settings
	Solver SolverConfig `json:"solver"`

	// Store contains snapshot persistence settings
	Store StoreConfig `json:"store"`

	// MarketData contains quote sourcing settings
	MarketData MarketDataConfig `json:"market_data"`

	// Server contains the read-API daemon settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// SolverConfig contains curve construction settings
type SolverConfig struct {
	// Tolerance is the solver convergence tolerance on residuals
	Tolerance float64 `json:"tolerance"`

	// MaxIterations bounds the Newton iterations per pillar
	MaxIterations int `json:"max_iterations"`

	// Interpolation selects the curve interpolation method
	Interpolation string `json:"interpolation"`

	// AllowExtrapolation permits curve reads beyond the pillar range
	AllowExtrapolation bool `json:"allow_extrapolation"`

	// MaxMaturity is the largest accepted instrument maturity in years
	MaxMaturity float64 `json:"max_maturity"`

	// DampingFactor limits Newton step sizes relative to the guess
	DampingFactor float64 `json:"damping_factor"`

	// Bump is the rate shift used by bump-and-revalue sensitivities
	Bump float64 `json:"bump"`

	// MaxWorkers caps parallel curve builds, 0 means NumCPU
	MaxWorkers int `json:"max_workers"`
}

// StoreConfig contains snapshot persistence settings
type StoreConfig struct {
	// Backend selects the store, "memory" or "redis"
	Backend string `json:"backend"`

	// RedisAddr is the Redis address for the redis backend
	RedisAddr string `json:"redis_addr,omitempty"`

	// KeyPrefix namespaces snapshot keys in shared backends
	KeyPrefix string `json:"key_prefix,omitempty"`

	// TTLSeconds is how long snapshots live in TTL-capable backends
	TTLSeconds int `json:"ttl_seconds"`
}

// MarketDataConfig contains quote sourcing settings
type MarketDataConfig struct {
	// Backend selects the source, "static", "postgres" or "clickhouse"
	Backend string `json:"backend"`

	// QuotesFile is a JSON quote file for the static backend
	QuotesFile string `json:"quotes_file,omitempty"`

	// PostgresDSN is the lib/pq DSN for the postgres backend
	PostgresDSN string `json:"postgres_dsn,omitempty"`

	// ClickHouseDSN is the clickhouse-go DSN for the clickhouse backend
	ClickHouseDSN string `json:"clickhouse_dsn,omitempty"`
}

// ServerConfig contains the read-API daemon settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// ReadTimeoutSeconds bounds request reads
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds response writes
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Solver: SolverConfig{
			Tolerance:          1e-12,
			MaxIterations:      100,
			Interpolation:      string(curve.LogLinear),
			AllowExtrapolation: true,
			MaxMaturity:        100,
			DampingFactor:      0.5,
			Bump:               1e-4,
			MaxWorkers:         0,
		},
		Store: StoreConfig{
			Backend:    "memory",
			KeyPrefix:  "curvelib:snapshot:",
			TTLSeconds: 86400, // 24 hours
		},
		MarketData: MarketDataConfig{
			Backend: "static",
		},
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 30,
		},
		Logging: logging.DefaultConfig(),
	}
}

// BootstrapConfig converts the solver section into a bootstrap.Config.
func (sc SolverConfig) BootstrapConfig() (bootstrap.Config, error) {
	cfg := bootstrap.DefaultConfig()
	if sc.Tolerance > 0 {
		cfg.Tolerance = sc.Tolerance
	}
	if sc.MaxIterations > 0 {
		cfg.MaxIterations = sc.MaxIterations
	}
	if sc.Interpolation != "" {
		method, err := curve.ParseInterpolation(sc.Interpolation)
		if err != nil {
			return cfg, errors.Wrap(errors.TypeConfig, "solver.interpolation", err)
		}
		cfg.Interpolation = method
	}
	cfg.AllowExtrapolation = sc.AllowExtrapolation
	if sc.MaxMaturity > 0 {
		cfg.MaxMaturity = sc.MaxMaturity
	}
	if sc.DampingFactor > 0 {
		cfg.DampingFactor = sc.DampingFactor
	}
	if sc.Bump > 0 {
		cfg.Bump = sc.Bump
	}
	return cfg, nil
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to parse config file "+path, err)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
