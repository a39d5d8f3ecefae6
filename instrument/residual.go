package instrument

// DiscountFn looks up a discount factor on the partially built curve.
// During a bootstrap it covers the already-solved pillars; the discount
// factor being solved for is passed separately.
type DiscountFn func(t float64) float64

const (
	// fdStep is the central-difference step for residual derivatives
	// without a closed form.
	fdStep = 1e-8

	// stubMin is the smallest accrual stub kept as its own period.
	stubMin = 1e-8
)

type accrualPeriod struct {
	start float64
	end   float64
}

// fixedPeriods lays out the fixed-leg accrual schedule from time zero to
// maturity. The final period absorbs any stub shorter than one full step.
func (ins Instrument) fixedPeriods() []accrualPeriod {
	step := ins.FixedFrequency().PeriodYears()
	if step >= ins.maturity {
		return []accrualPeriod{{start: 0, end: ins.maturity}}
	}
	periods := make([]accrualPeriod, 0, int(ins.maturity/step)+1)
	prev := 0.0
	for i := 1; ; i++ {
		end := float64(i) * step
		if end >= ins.maturity-stubMin {
			break
		}
		periods = append(periods, accrualPeriod{start: prev, end: end})
		prev = end
	}
	return append(periods, accrualPeriod{start: prev, end: ins.maturity})
}

// Residual evaluates impliedRate(df) - marketRate at the candidate discount
// factor for this instrument's pillar. partial supplies discount factors at
// earlier times; the final period of a par-style schedule uses df itself.
func (ins Instrument) Residual(df float64, partial DiscountFn) float64 {
	switch ins.kind {
	case KindOIS, KindIRS:
		periods := ins.fixedPeriods()
		if len(periods) == 1 {
			// Single period: money-market style simple rate.
			return (1.0/df-1.0)/ins.maturity - ins.rate
		}
		annuity := 0.0
		for i, p := range periods {
			delta := p.end - p.start
			if i == len(periods)-1 {
				annuity += df * delta
			} else {
				annuity += partial(p.end) * delta
			}
		}
		return (1.0-df)/annuity - ins.rate
	case KindFRA:
		tau := ins.maturity - ins.start
		dfStart := partial(ins.start)
		return (dfStart/df-1.0)/tau - ins.rate
	case KindFuture:
		return (1.0/df-1.0)/ins.maturity - ins.Rate()
	}
	return 0
}

// ResidualDerivative evaluates d(Residual)/d(df). Closed forms cover the
// single-period and FRA cases; the multi-period par form falls back to a
// central finite difference.
func (ins Instrument) ResidualDerivative(df float64, partial DiscountFn) float64 {
	switch ins.kind {
	case KindOIS, KindIRS:
		if len(ins.fixedPeriods()) == 1 {
			return -1.0 / (df * df * ins.maturity)
		}
		up := ins.Residual(df+fdStep, partial)
		down := ins.Residual(df-fdStep, partial)
		return (up - down) / (2.0 * fdStep)
	case KindFRA:
		tau := ins.maturity - ins.start
		dfStart := partial(ins.start)
		return -dfStart / (df * df * tau)
	case KindFuture:
		return -1.0 / (df * df * ins.maturity)
	}
	return 0
}
