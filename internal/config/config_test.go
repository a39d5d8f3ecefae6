package config

import (
	"path/filepath"
	"testing"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != "1.0" || cfg.Store.Backend != "memory" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if !cfg.Solver.AllowExtrapolation {
		t.Fatal("extrapolation should default to enabled")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "conf", "curvelib.json")
	cfg := Default()
	cfg.Solver.Interpolation = string(curve.MonotonicCubic)
	cfg.Solver.MaxIterations = 50
	cfg.Store.Backend = "redis"
	cfg.Store.RedisAddr = "tcp://localhost:6379"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Solver.Interpolation != string(curve.MonotonicCubic) {
		t.Fatalf("interpolation = %s", loaded.Solver.Interpolation)
	}
	if loaded.Solver.MaxIterations != 50 || loaded.Store.Backend != "redis" {
		t.Fatalf("round trip lost fields: %+v", loaded)
	}
	// Sections absent from the file keep their defaults.
	if loaded.Server.Addr != ":8080" {
		t.Fatalf("server addr = %s, want default", loaded.Server.Addr)
	}
}

func TestBootstrapConfigConversion(t *testing.T) {
	t.Parallel()

	sc := SolverConfig{
		Tolerance:          1e-10,
		MaxIterations:      42,
		Interpolation:      "monotonic-cubic",
		AllowExtrapolation: false,
		MaxMaturity:        60,
		DampingFactor:      0.25,
		Bump:               1e-5,
	}
	cfg, err := sc.BootstrapConfig()
	if err != nil {
		t.Fatalf("BootstrapConfig: %v", err)
	}
	if cfg.Tolerance != 1e-10 || cfg.MaxIterations != 42 {
		t.Fatalf("solver knobs lost: %+v", cfg)
	}
	if cfg.Interpolation != curve.MonotonicCubic {
		t.Fatalf("interpolation = %s", cfg.Interpolation)
	}
	if cfg.AllowExtrapolation {
		t.Fatal("extrapolation should be disabled")
	}
	if cfg.MaxMaturity != 60 || cfg.DampingFactor != 0.25 || cfg.Bump != 1e-5 {
		t.Fatalf("solver knobs lost: %+v", cfg)
	}

	if _, err := (SolverConfig{Interpolation: "bezier"}).BootstrapConfig(); !errors.IsType(err, errors.TypeConfig) {
		t.Fatalf("bad interpolation = %v, want CONFIG error", err)
	}
}
