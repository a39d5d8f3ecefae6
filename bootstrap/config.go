// Package bootstrap builds discount and forward curves from market
// instruments by solving one pillar discount factor per instrument, in
// maturity order, and computes the sensitivity of every solved pillar to
// every input rate.
package bootstrap

import "github.com/meenmo/curvelib/curve"

// Config holds solver and curve construction parameters. It is a plain
// value threaded through every call; callers that want different settings
// pass a different value rather than mutating shared state.
type Config struct {
	// Tolerance is the residual tolerance for Newton-Raphson convergence.
	Tolerance float64

	// MaxIterations is the maximum iterations per pillar solve.
	MaxIterations int

	// Interpolation selects the output curve's interpolation method. The
	// partial curve used during solving is always log-linear.
	Interpolation curve.Interpolation

	// AllowExtrapolation sets whether the output curve answers queries
	// beyond its pillar range.
	AllowExtrapolation bool

	// MaxMaturity bounds instrument maturities during validation.
	MaxMaturity float64

	// MinDiscountFactor is the floor for discount factors during solving
	// to prevent numerical instability (division by near-zero).
	MinDiscountFactor float64

	// DerivativeFloor is the minimum derivative magnitude. Below this,
	// Newton iteration stops to avoid division by near-zero.
	DerivativeFloor float64

	// DampingFactor limits Newton step size to prevent overshooting.
	// Delta is clamped to DampingFactor * currentGuess.
	DampingFactor float64

	// Bump is the rate perturbation for bump-and-revalue sensitivities.
	Bump float64
}

// DefaultConfig provides production-ready default values.
func DefaultConfig() Config {
	return Config{
		Tolerance:          1e-12,
		MaxIterations:      100,
		Interpolation:      curve.LogLinear,
		AllowExtrapolation: true,
		MaxMaturity:        100.0,
		MinDiscountFactor:  1e-9,
		DerivativeFloor:    1e-15,
		DampingFactor:      0.5,
		Bump:               1e-4,
	}
}

// withDefaults fills unset numeric fields so a zero Config behaves like
// DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Tolerance <= 0 {
		c.Tolerance = def.Tolerance
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = def.MaxIterations
	}
	if c.Interpolation == "" {
		c.Interpolation = def.Interpolation
	}
	if c.MaxMaturity <= 0 {
		c.MaxMaturity = def.MaxMaturity
	}
	if c.MinDiscountFactor <= 0 {
		c.MinDiscountFactor = def.MinDiscountFactor
	}
	if c.DerivativeFloor <= 0 {
		c.DerivativeFloor = def.DerivativeFloor
	}
	if c.DampingFactor <= 0 {
		c.DampingFactor = def.DampingFactor
	}
	if c.Bump <= 0 {
		c.Bump = def.Bump
	}
	return c
}
