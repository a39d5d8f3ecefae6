package bootstrap

import (
	"math"
	"sort"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/errors"
	"github.com/meenmo/curvelib/instrument"
)

// Result holds a completed bootstrap: the final curve plus parallel pillar
// vectors cached for O(1) indexed access during sensitivity computation.
// Instruments are in the solved (ascending maturity) order, pillar i
// corresponding to instrument i.
type Result struct {
	Curve       *curve.Curve
	Times       []float64
	DFs         []float64
	Instruments []instrument.Instrument
	Config      Config
}

// Run bootstraps a curve from the given instruments. Instruments are
// validated up front, sorted by maturity, and solved one pillar at a time
// against the partially built curve. Any validation failure, non-finite
// residual, or non-convergence aborts the whole bootstrap; no partial
// curve is ever returned.
func Run(instruments []instrument.Instrument, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	if len(instruments) == 0 {
		return nil, errors.Bootstrap("no instruments to bootstrap from")
	}

	for i, ins := range instruments {
		if err := ins.Validate(cfg.MaxMaturity); err != nil {
			return nil, errors.Wrapf(errors.TypeBootstrap, err, "instrument %d failed validation", i).
				WithContext("instrument_index", i)
		}
	}

	sorted := make([]instrument.Instrument, len(instruments))
	copy(sorted, instruments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Maturity() < sorted[j].Maturity()
	})

	times := make([]float64, 0, len(sorted))
	dfs := make([]float64, 0, len(sorted))
	partial := func(t float64) float64 {
		return partialDF(times, dfs, t)
	}

	c := curve.New(cfg.Interpolation, cfg.AllowExtrapolation)

	for i, ins := range sorted {
		guess := 1.0
		if len(dfs) > 0 {
			guess = dfs[len(dfs)-1]
		}

		df, err := solvePillar(ins, partial, guess, cfg)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return nil, e.WithContext("instrument_index", i)
			}
			return nil, err
		}

		if err := c.AddPillar(ins.Maturity(), df); err != nil {
			return nil, errors.Wrapf(errors.TypeBootstrap, err, "instrument %d pillar rejected", i).
				WithContext("instrument_index", i)
		}
		times = append(times, ins.Maturity())
		dfs = append(dfs, df)
	}

	return &Result{
		Curve:       c,
		Times:       times,
		DFs:         dfs,
		Instruments: sorted,
		Config:      cfg,
	}, nil
}

// solvePillar runs Newton-Raphson on the instrument's residual, treating
// the partial curve as fixed. The step is damped relative to the current
// guess and the guess is clamped positive, following the same safeguards
// as an iterative par solve.
func solvePillar(ins instrument.Instrument, partial instrument.DiscountFn, guess float64, cfg Config) (float64, error) {
	residual := 0.0
	for iter := 0; iter <= cfg.MaxIterations; iter++ {
		residual = ins.Residual(guess, partial)
		if math.IsNaN(residual) || math.IsInf(residual, 0) {
			return 0, errors.Bootstrap("residual is not finite").
				WithContext("guess", guess).
				WithContext("iteration", iter)
		}
		if math.Abs(residual) < cfg.Tolerance {
			return guess, nil
		}
		if iter == cfg.MaxIterations {
			break
		}

		derivative := ins.ResidualDerivative(guess, partial)
		if math.IsNaN(derivative) || math.IsInf(derivative, 0) || math.Abs(derivative) < cfg.DerivativeFloor {
			return 0, errors.Bootstrap("residual derivative vanished before convergence").
				WithContext("derivative", derivative).
				WithContext("last_residual", residual).
				WithContext("iteration", iter)
		}

		delta := residual / derivative
		if math.Abs(delta) > cfg.DampingFactor*guess {
			delta = cfg.DampingFactor * guess * (delta / math.Abs(delta))
		}
		guess -= delta

		if math.IsNaN(guess) || guess < cfg.MinDiscountFactor {
			guess = cfg.MinDiscountFactor
		}
	}
	return 0, errors.Bootstrapf("no convergence after %d iterations", cfg.MaxIterations).
		WithContext("last_residual", residual).
		WithContext("iterations", cfg.MaxIterations)
}

// partialDF looks up a discount factor on the solved pillar prefix:
// log-linear between pillars, flat continuously-compounded rate beyond the
// edges, 1.0 when nothing is solved yet. Always answers, never errors; it
// is an internal numerical device, not a user-facing query.
func partialDF(times, dfs []float64, t float64) float64 {
	n := len(times)
	if n == 0 || t <= 0 {
		return 1.0
	}
	if t <= times[0] {
		r := -math.Log(dfs[0]) / times[0]
		return math.Exp(-r * t)
	}
	if t >= times[n-1] {
		r := -math.Log(dfs[n-1]) / times[n-1]
		return math.Exp(-r * t)
	}

	idx := sort.Search(n, func(i int) bool { return times[i] >= t })
	t1, t2 := times[idx-1], times[idx]
	df1, df2 := dfs[idx-1], dfs[idx]
	forwardRate := math.Log(df1/df2) / (t2 - t1)
	return df1 * math.Exp(-forwardRate*(t-t1))
}
