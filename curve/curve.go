// Package curve provides an interpolated discount curve over (maturity,
// discount factor) pillars, with a choice of interpolation schemes and
// optional flat-rate extrapolation beyond the pillar range.
package curve

import (
	"fmt"
	"math"
	"strings"

	"github.com/meenmo/curvelib/errors"
)

// Interpolation selects how discount factors are computed between pillars.
type Interpolation string

const (
	// LogLinear interpolates ln(DF) linearly. Mathematically identical to
	// FlatForward.
	LogLinear Interpolation = "LOG_LINEAR"

	// LinearZeroRate interpolates the continuously compounded zero rate
	// linearly.
	LinearZeroRate Interpolation = "LINEAR_ZERO_RATE"

	// FlatForward holds the instantaneous forward rate constant within each
	// segment.
	FlatForward Interpolation = "FLAT_FORWARD"

	// CubicSpline fits a natural cubic spline to zero rates.
	CubicSpline Interpolation = "CUBIC_SPLINE"

	// MonotonicCubic fits a Fritsch-Carlson monotone cubic to ln(DF), so the
	// interpolated discount factor can never increase with maturity.
	MonotonicCubic Interpolation = "MONOTONIC_CUBIC"
)

// ParseInterpolation converts a config/CLI string into an Interpolation.
// Accepts any case and either '-' or '_' separators.
func ParseInterpolation(s string) (Interpolation, error) {
	canon := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch Interpolation(canon) {
	case LogLinear, LinearZeroRate, FlatForward, CubicSpline, MonotonicCubic:
		return Interpolation(canon), nil
	}
	return "", errors.Config(fmt.Sprintf("unknown interpolation method %q", s))
}

// pillarTol is the tolerance for treating a query time as an exact pillar.
const pillarTol = 1e-12

// Curve maps non-negative times to discount factors. Pillars are appended
// strictly in increasing maturity order; once a curve is handed to a
// consumer it is treated as immutable and reads are safe to share.
type Curve struct {
	times  []float64
	dfs    []float64
	method Interpolation

	allowExtrapolation bool

	// Prebuilt fits for the cubic methods, refreshed on every pillar
	// append so queries stay read-only. nil means fall back to log-linear.
	spline *cubicSpline
	mono   *monotoneCubic
}

// New creates an empty curve ready for AddPillar.
func New(method Interpolation, allowExtrapolation bool) *Curve {
	if method == "" {
		method = LogLinear
	}
	return &Curve{
		method:             method,
		allowExtrapolation: allowExtrapolation,
	}
}

// NewFromPillars creates a curve from parallel maturity and discount factor
// slices. The slices must be equal length, strictly increasing in maturity,
// and strictly positive throughout.
func NewFromPillars(times, dfs []float64, method Interpolation, allowExtrapolation bool) (*Curve, error) {
	if len(times) != len(dfs) {
		return nil, errors.Curvef("mismatched pillar arrays: %d times vs %d discount factors", len(times), len(dfs))
	}
	if len(times) == 0 {
		return nil, errors.Curve("curve requires at least one pillar")
	}
	c := New(method, allowExtrapolation)
	for i := range times {
		if err := c.AddPillar(times[i], dfs[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddPillar appends one (maturity, discount factor) pillar. Maturities must
// be strictly increasing and both inputs strictly positive.
func (c *Curve) AddPillar(t, df float64) error {
	if t <= 0 {
		return errors.Curvef("pillar maturity must be positive, got %g", t).
			WithContext("maturity", t)
	}
	if df <= 0 {
		return errors.Curvef("discount factor must be positive, got %g at maturity %g", df, t).
			WithContext("maturity", t).
			WithContext("discount_factor", df)
	}
	if n := len(c.times); n > 0 && t <= c.times[n-1] {
		return errors.Curvef("pillar maturity %g not after previous pillar %g", t, c.times[n-1]).
			WithContext("maturity", t).
			WithContext("previous", c.times[n-1])
	}
	c.times = append(c.times, t)
	c.dfs = append(c.dfs, df)
	c.rebuildFit()
	return nil
}

// DiscountFactor returns the discount factor at time t. t=0 returns 1
// exactly; pillar times return the stored value; times between pillars are
// interpolated per the configured method; times beyond the pillar range are
// flat-rate extrapolated from the nearest edge when extrapolation is
// enabled, and error otherwise. Negative t always errors.
func (c *Curve) DiscountFactor(t float64) (float64, error) {
	if t < 0 {
		return 0, errors.Curvef("discount factor time must be non-negative, got %g", t).
			WithContext("t", t)
	}
	if t == 0 {
		return 1.0, nil
	}
	n := len(c.times)
	if n == 0 {
		return 0, errors.Curve("curve has no pillars")
	}

	// Exact pillar hit returns the stored value untouched.
	idx := searchTime(c.times, t)
	if idx < n && math.Abs(c.times[idx]-t) < pillarTol {
		return c.dfs[idx], nil
	}
	if idx > 0 && math.Abs(c.times[idx-1]-t) < pillarTol {
		return c.dfs[idx-1], nil
	}

	if t < c.times[0] || t > c.times[n-1] {
		if !c.allowExtrapolation {
			return 0, errors.OutOfBounds(t, c.times[0], c.times[n-1])
		}
		return c.extrapolate(t), nil
	}

	i1, i2, found := findBracket(c.times, t)
	if !found {
		// Single pillar inside range can only be an exact hit, handled above.
		return c.extrapolate(t), nil
	}
	return c.interpolate(t, i1, i2), nil
}

// extrapolate applies the flat continuously-compounded rate of the nearest
// edge pillar.
func (c *Curve) extrapolate(t float64) float64 {
	edge := 0
	if t > c.times[len(c.times)-1] {
		edge = len(c.times) - 1
	}
	r := -math.Log(c.dfs[edge]) / c.times[edge]
	return math.Exp(-r * t)
}

func (c *Curve) interpolate(t float64, i1, i2 int) float64 {
	switch c.method {
	case LinearZeroRate:
		return c.linearZeroRate(t, i1, i2)
	case FlatForward:
		return c.flatForward(t, i1, i2)
	case CubicSpline:
		if c.spline != nil {
			return math.Exp(-c.spline.eval(t) * t)
		}
	case MonotonicCubic:
		if c.mono != nil {
			return math.Exp(c.mono.eval(t))
		}
	}
	return c.logLinear(t, i1, i2)
}

// logLinear interpolates ln(DF) linearly between the bracketing pillars.
func (c *Curve) logLinear(t float64, i1, i2 int) float64 {
	t1, t2 := c.times[i1], c.times[i2]
	df1, df2 := c.dfs[i1], c.dfs[i2]
	if t2 == t1 {
		return df1
	}
	forwardRate := math.Log(df1/df2) / (t2 - t1)
	return df1 * math.Exp(-forwardRate*(t-t1))
}

// linearZeroRate interpolates the zero rate linearly, then converts back.
func (c *Curve) linearZeroRate(t float64, i1, i2 int) float64 {
	t1, t2 := c.times[i1], c.times[i2]
	if t2 == t1 {
		return c.dfs[i1]
	}
	r1 := -math.Log(c.dfs[i1]) / t1
	r2 := -math.Log(c.dfs[i2]) / t2
	r := r1 + (r2-r1)*(t-t1)/(t2-t1)
	return math.Exp(-r * t)
}

// flatForward holds the segment's instantaneous forward rate constant. The
// segment forward comes from the endpoint discount factors, which makes this
// method agree with logLinear to numerical precision.
func (c *Curve) flatForward(t float64, i1, i2 int) float64 {
	t1, t2 := c.times[i1], c.times[i2]
	if t2 == t1 {
		return c.dfs[i1]
	}
	fwd := (math.Log(c.dfs[i1]) - math.Log(c.dfs[i2])) / (t2 - t1)
	return c.dfs[i1] * math.Exp(-fwd*(t-t1))
}

// rebuildFit refreshes the cubic fit after a pillar append. Fits that
// cannot be constructed (fewer than three pillars) are left nil, which
// silently degrades the cubic methods to log-linear. That degradation is
// intentional.
func (c *Curve) rebuildFit() {
	c.spline = nil
	c.mono = nil
	switch c.method {
	case CubicSpline:
		if len(c.times) < 3 {
			return
		}
		zeros := make([]float64, len(c.times))
		for i, t := range c.times {
			zeros[i] = -math.Log(c.dfs[i]) / t
		}
		c.spline = newCubicSpline(c.times, zeros)
	case MonotonicCubic:
		if len(c.times) < 3 {
			return
		}
		lnDFs := make([]float64, len(c.times))
		for i := range c.times {
			lnDFs[i] = math.Log(c.dfs[i])
		}
		c.mono = newMonotoneCubic(c.times, lnDFs)
	}
}

// ZeroRate returns the continuously compounded zero rate at t. Requires
// t > 0 since the rate is -ln(DF)/t.
func (c *Curve) ZeroRate(t float64) (float64, error) {
	if t <= 0 {
		return 0, errors.Curvef("zero rate requires positive time, got %g", t).
			WithContext("t", t)
	}
	df, err := c.DiscountFactor(t)
	if err != nil {
		return 0, err
	}
	return -math.Log(df) / t, nil
}

// ForwardRate returns the simple forward rate over [t1, t2], matching the
// FRA quoting convention (df1/df2 - 1) / (t2 - t1).
func (c *Curve) ForwardRate(t1, t2 float64) (float64, error) {
	if t2 <= t1 {
		return 0, errors.Curvef("forward rate requires t2 > t1, got [%g, %g]", t1, t2).
			WithContext("t1", t1).
			WithContext("t2", t2)
	}
	df1, err := c.DiscountFactor(t1)
	if err != nil {
		return 0, err
	}
	df2, err := c.DiscountFactor(t2)
	if err != nil {
		return 0, err
	}
	return (df1/df2 - 1.0) / (t2 - t1), nil
}

// PillarCount returns the number of pillars.
func (c *Curve) PillarCount() int {
	return len(c.times)
}

// Domain returns the first and last pillar maturities, or (0, 0) when the
// curve is empty.
func (c *Curve) Domain() (float64, float64) {
	if len(c.times) == 0 {
		return 0, 0
	}
	return c.times[0], c.times[len(c.times)-1]
}

// Times returns a copy of the pillar maturities.
func (c *Curve) Times() []float64 {
	out := make([]float64, len(c.times))
	copy(out, c.times)
	return out
}

// DiscountFactors returns a copy of the pillar discount factors.
func (c *Curve) DiscountFactors() []float64 {
	out := make([]float64, len(c.dfs))
	copy(out, c.dfs)
	return out
}

// Method returns the configured interpolation method.
func (c *Curve) Method() Interpolation {
	return c.method
}

// AllowsExtrapolation reports whether queries beyond the pillar range are
// flat-rate extrapolated rather than rejected.
func (c *Curve) AllowsExtrapolation() bool {
	return c.allowExtrapolation
}
