package bootstrap

import (
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/errors"
	"github.com/meenmo/curvelib/instrument"
	"github.com/meenmo/curvelib/internal/logging"
)

// TenorInstruments pairs a tenor with the instruments quoting its forward
// curve.
type TenorInstruments struct {
	Tenor       curve.Tenor
	Instruments []instrument.Instrument
}

// BatchRequest is one independent curve-set construction, typically one
// scenario or valuation date. ID is assigned on submission when empty.
type BatchRequest struct {
	ID       string
	Discount []instrument.Instrument
	Tenors   []TenorInstruments
}

// BatchResult carries one batch element's outcome. Err is nil on success.
type BatchResult struct {
	ID       string
	CurveSet *curve.CurveSet
	Err      error
}

// Builder orchestrates one discount bootstrap plus any number of
// tenor-curve bootstraps into a CurveSet, sequentially or fanned out over
// a worker pool.
type Builder struct {
	cfg     Config
	workers int
	log     *zap.Logger
}

// NewBuilder creates a builder. maxWorkers <= 0 defaults to the number of
// CPUs.
func NewBuilder(cfg Config, maxWorkers int) *Builder {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &Builder{
		cfg:     cfg.withDefaults(),
		workers: maxWorkers,
		log:     logging.Named("bootstrap"),
	}
}

// Config returns the builder's solver configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build bootstraps the discount curve, then each tenor curve in turn.
// Tenors with no instruments are skipped; a duplicate tenor or any failed
// bootstrap fails the whole build.
func (b *Builder) Build(discount []instrument.Instrument, tenors []TenorInstruments) (*curve.CurveSet, error) {
	cs, active, err := b.discountAndActive(discount, tenors)
	if err != nil {
		return nil, err
	}

	for _, ti := range active {
		res, err := Run(ti.Instruments, b.cfg)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeBootstrap, err, "tenor curve %s", ti.Tenor)
		}
		cs.Forwards[ti.Tenor] = res.Curve
	}

	b.log.Debug("curve set built",
		zap.Int("discount_pillars", cs.Discount.PillarCount()),
		zap.Int("tenor_curves", len(cs.Forwards)))
	return cs, nil
}

// BuildParallel is Build with the tenor bootstraps fanned out over the
// worker pool. The discount curve still completes first; tenor curves
// share nothing, so the results are identical to the sequential path.
func (b *Builder) BuildParallel(discount []instrument.Instrument, tenors []TenorInstruments) (*curve.CurveSet, error) {
	cs, active, err := b.discountAndActive(discount, tenors)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(active))
	errs := make([]error, len(active))
	b.runTasks(len(active), func(i int) {
		res, err := Run(active[i].Instruments, b.cfg)
		if err != nil {
			errs[i] = errors.Wrapf(errors.TypeBootstrap, err, "tenor curve %s", active[i].Tenor)
			return
		}
		results[i] = res
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for i, ti := range active {
		cs.Forwards[ti.Tenor] = results[i].Curve
	}

	b.log.Debug("curve set built in parallel",
		zap.Int("discount_pillars", cs.Discount.PillarCount()),
		zap.Int("tenor_curves", len(cs.Forwards)),
		zap.Int("workers", b.workers))
	return cs, nil
}

// discountAndActive bootstraps the discount curve and filters the tenor
// lists every build path shares: empty lists are skipped, duplicates are
// rejected before any tenor work starts.
func (b *Builder) discountAndActive(discount []instrument.Instrument, tenors []TenorInstruments) (*curve.CurveSet, []TenorInstruments, error) {
	res, err := Run(discount, b.cfg)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.TypeBootstrap, err, "discount curve")
	}
	cs := curve.NewCurveSet(res.Curve)

	seen := make(map[curve.Tenor]bool, len(tenors))
	active := make([]TenorInstruments, 0, len(tenors))
	for _, ti := range tenors {
		if len(ti.Instruments) == 0 {
			continue
		}
		if seen[ti.Tenor] {
			return nil, nil, errors.Bootstrapf("tenor %s supplied twice", ti.Tenor)
		}
		seen[ti.Tenor] = true
		active = append(active, ti)
	}
	return cs, active, nil
}

// BuildBatch constructs many independent curve sets concurrently. Every
// element gets a result slot; failures are collected per element and
// combined into the returned error, so successful elements stay usable
// even when the batch as a whole reports failure.
func (b *Builder) BuildBatch(requests []BatchRequest) ([]BatchResult, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	results := make([]BatchResult, len(requests))
	for i := range requests {
		id := requests[i].ID
		if id == "" {
			id = uuid.NewString()
		}
		results[i].ID = id
	}

	b.runTasks(len(requests), func(i int) {
		cs, err := b.Build(requests[i].Discount, requests[i].Tenors)
		if err != nil {
			results[i].Err = errors.Wrapf(errors.TypeBootstrap, err, "batch element %s", results[i].ID)
			return
		}
		results[i].CurveSet = cs
	})

	var combined error
	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
			combined = multierr.Append(combined, results[i].Err)
		}
	}

	b.log.Info("batch complete",
		zap.Int("requests", len(requests)),
		zap.Int("failed", failed))
	return results, combined
}

// runTasks fans n index-addressed tasks out over the worker pool and
// joins. Tasks write only to their own result slots.
func (b *Builder) runTasks(n int, task func(i int)) {
	if n == 0 {
		return
	}
	workers := b.workers
	if n < workers {
		workers = n
	}

	work := make(chan int, n)
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				task(i)
			}
		}()
	}
	wg.Wait()
}
