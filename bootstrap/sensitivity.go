package bootstrap

import (
	"math"

	"github.com/meenmo/curvelib/errors"
	"github.com/meenmo/curvelib/instrument"
)

const (
	// couplingBump is the local nudge applied to an earlier pillar when
	// measuring how an instrument's residual depends on it.
	couplingBump = 1e-8

	// degenerateDerivative is the floor below which a residual derivative
	// is treated as numerically degenerate and the affected sensitivities
	// are left at zero instead of dividing by it.
	degenerateDerivative = 1e-30
)

// SensitivityMatrix is the dense Jacobian of pillar discount factors with
// respect to input market rates. Values[i][j] = dDF_i/dRate_j. With pillars
// and inputs both sorted by maturity the matrix is lower-triangular: a
// pillar can only depend on inputs at or before it.
type SensitivityMatrix struct {
	Maturities []float64
	Rates      []float64
	Values     [][]float64
}

// At returns dDF_i/dRate_j.
func (m *SensitivityMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Size returns (pillar count, input count).
func (m *SensitivityMatrix) Size() (int, int) {
	if len(m.Values) == 0 {
		return 0, 0
	}
	return len(m.Values), len(m.Values[0])
}

// VerificationReport compares the implicit-function-theorem sensitivities
// against bump-and-revalue over every matrix entry.
type VerificationReport struct {
	MaxAbsDiff      float64
	MaxRelDiff      float64
	WorstPillar     int
	WorstInput      int
	Entries         int
	Tolerance       float64
	WithinTolerance bool
}

// Sensitivities computes the full Jacobian via the implicit function
// theorem. Only the final solve step of each pillar is differentiated
// implicitly; coupling to earlier pillars is measured with one local
// finite-difference nudge per pair and chained, so the cost does not
// depend on how many Newton iterations each solve took.
func (r *Result) Sensitivities() (*SensitivityMatrix, error) {
	n := len(r.Instruments)
	m := newMatrix(r, n)

	for i := 0; i < n; i++ {
		ins := r.Instruments[i]
		prefixTimes := r.Times[:i]
		prefixDFs := r.DFs[:i]
		partial := func(t float64) float64 {
			return partialDF(prefixTimes, prefixDFs, t)
		}

		// Equilibrium condition: residual(DF_i, rate_i) = 0 with
		// dResidual/dRate_i = -1, so dDF_i/dRate_i = 1/(dResidual/dDF_i).
		denom := ins.ResidualDerivative(r.DFs[i], partial)
		if math.Abs(denom) < degenerateDerivative || math.IsNaN(denom) || math.IsInf(denom, 0) {
			continue
		}
		m.Values[i][i] = 1.0 / denom

		if i == 0 {
			continue
		}

		base := ins.Residual(r.DFs[i], partial)
		bumpedDFs := make([]float64, i)
		for k := i - 1; k >= 0; k-- {
			copy(bumpedDFs, prefixDFs)
			bumpedDFs[k] += couplingBump
			bumpedPartial := func(t float64) float64 {
				return partialDF(prefixTimes, bumpedDFs, t)
			}

			dResdDFk := (ins.Residual(r.DFs[i], bumpedPartial) - base) / couplingBump
			if dResdDFk == 0 || math.IsNaN(dResdDFk) || math.IsInf(dResdDFk, 0) {
				continue
			}

			// Chain the pillar-to-pillar coupling through the already
			// computed rows below it.
			dDFidDFk := -dResdDFk / denom
			for j := 0; j <= k; j++ {
				m.Values[i][j] += dDFidDFk * m.Values[k][j]
			}
		}
	}
	return m, nil
}

// BumpSensitivities computes the same Jacobian by re-running the entire
// bootstrap once per input with that input's rate bumped by Config.Bump.
// This is the ground truth the implicit path is verified against; it costs
// one full bootstrap per input.
func (r *Result) BumpSensitivities() (*SensitivityMatrix, error) {
	n := len(r.Instruments)
	m := newMatrix(r, n)
	bump := r.Config.Bump

	for j := 0; j < n; j++ {
		bumped := make([]instrument.Instrument, n)
		copy(bumped, r.Instruments)
		bumped[j] = bumped[j].WithRate(bumped[j].Rate() + bump)

		bres, err := Run(bumped, r.Config)
		if err != nil {
			return nil, errors.Sensitivity("bumped bootstrap failed", err).
				WithContext("input_index", j)
		}
		for i := 0; i < n; i++ {
			m.Values[i][j] = (bres.DFs[i] - r.DFs[i]) / bump
		}
	}
	return m, nil
}

// VerifySensitivities runs both sensitivity paths and compares them entry
// by entry. An entry fails only when its difference exceeds the tolerance
// in both absolute and relative terms, so large entries are judged
// relatively and near-zero entries absolutely.
func (r *Result) VerifySensitivities(tolerance float64) (*VerificationReport, error) {
	analytic, err := r.Sensitivities()
	if err != nil {
		return nil, err
	}
	numeric, err := r.BumpSensitivities()
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		Tolerance:       tolerance,
		WithinTolerance: true,
	}

	n := len(r.Instruments)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a := analytic.Values[i][j]
			b := numeric.Values[i][j]
			absDiff := math.Abs(a - b)
			scale := math.Max(math.Abs(a), math.Abs(b))

			report.Entries++
			if absDiff > report.MaxAbsDiff {
				report.MaxAbsDiff = absDiff
				report.WorstPillar = i
				report.WorstInput = j
			}
			if scale > 0 {
				if rel := absDiff / scale; rel > report.MaxRelDiff && absDiff > 1e-14 {
					report.MaxRelDiff = rel
				}
			}
			if absDiff > tolerance && scale > 0 && absDiff/scale > tolerance {
				report.WithinTolerance = false
			}
		}
	}
	return report, nil
}

func newMatrix(r *Result, n int) *SensitivityMatrix {
	m := &SensitivityMatrix{
		Maturities: make([]float64, n),
		Rates:      make([]float64, n),
		Values:     make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Maturities[i] = r.Times[i]
		m.Rates[i] = r.Instruments[i].Rate()
		m.Values[i] = make([]float64, n)
	}
	return m
}
