package curve

import "math"

// cubicSpline is a natural cubic spline through (x, y) knots. The curve
// uses it on zero rates; knots are copied so later pillar appends cannot
// alias a fit already handed out.
type cubicSpline struct {
	xs []float64
	ys []float64
	m2 []float64 // second derivatives at knots, natural boundary
}

// newCubicSpline fits a natural cubic spline. Returns nil when fewer than
// three knots are supplied.
func newCubicSpline(xs, ys []float64) *cubicSpline {
	n := len(xs)
	if n < 3 || len(ys) != n {
		return nil
	}

	s := &cubicSpline{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
		m2: make([]float64, n),
	}

	// Thomas algorithm on the interior tridiagonal system; natural
	// boundary keeps m2[0] = m2[n-1] = 0.
	diag := make([]float64, n)
	rhs := make([]float64, n)
	for i := 1; i < n-1; i++ {
		h0 := xs[i] - xs[i-1]
		h1 := xs[i+1] - xs[i]
		diag[i] = 2.0 * (h0 + h1)
		rhs[i] = 6.0 * ((ys[i+1]-ys[i])/h1 - (ys[i]-ys[i-1])/h0)
	}
	for i := 2; i < n-1; i++ {
		h0 := xs[i] - xs[i-1]
		w := h0 / diag[i-1]
		diag[i] -= w * h0
		rhs[i] -= w * rhs[i-1]
	}
	for i := n - 2; i >= 1; i-- {
		h1 := xs[i+1] - xs[i]
		s.m2[i] = (rhs[i] - h1*s.m2[i+1]) / diag[i]
	}
	return s
}

// eval returns the spline value at x, which must lie within the knot range.
func (s *cubicSpline) eval(x float64) float64 {
	i1, i2 := findBracketOrBoundary(s.xs, x)
	h := s.xs[i2] - s.xs[i1]
	a := (s.xs[i2] - x) / h
	b := (x - s.xs[i1]) / h
	return a*s.ys[i1] + b*s.ys[i2] +
		((a*a*a-a)*s.m2[i1]+(b*b*b-b)*s.m2[i2])*h*h/6.0
}

// monotoneCubic is a Fritsch-Carlson monotone cubic Hermite interpolant.
// Applied to ln(DF), which decreases with maturity, it guarantees the
// interpolated discount factor never increases between pillars.
type monotoneCubic struct {
	xs       []float64
	ys       []float64
	tangents []float64
}

// newMonotoneCubic fits the interpolant. Returns nil when fewer than three
// knots are supplied.
func newMonotoneCubic(xs, ys []float64) *monotoneCubic {
	n := len(xs)
	if n < 3 || len(ys) != n {
		return nil
	}

	m := &monotoneCubic{
		xs:       append([]float64(nil), xs...),
		ys:       append([]float64(nil), ys...),
		tangents: make([]float64, n),
	}

	// Secant slopes per interval.
	slopes := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		slopes[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}

	// Initial tangents: one-sided at the ends, averaged inside, zeroed
	// where adjacent secants change sign.
	m.tangents[0] = slopes[0]
	m.tangents[n-1] = slopes[n-2]
	for i := 1; i < n-1; i++ {
		if slopes[i-1]*slopes[i] <= 0 {
			m.tangents[i] = 0
		} else {
			m.tangents[i] = (slopes[i-1] + slopes[i]) / 2.0
		}
	}

	// Fritsch-Carlson limiter: clamp tangents so each interval's cubic
	// stays monotone.
	for i := 0; i < n-1; i++ {
		if slopes[i] == 0 {
			m.tangents[i] = 0
			m.tangents[i+1] = 0
			continue
		}
		alpha := m.tangents[i] / slopes[i]
		beta := m.tangents[i+1] / slopes[i]
		if alpha < 0 {
			m.tangents[i] = 0
			alpha = 0
		}
		if beta < 0 {
			m.tangents[i+1] = 0
			beta = 0
		}
		if sq := alpha*alpha + beta*beta; sq > 9.0 {
			tau := 3.0 / math.Sqrt(sq)
			m.tangents[i] = tau * alpha * slopes[i]
			m.tangents[i+1] = tau * beta * slopes[i]
		}
	}
	return m
}

// eval returns the interpolant value at x, which must lie within the knot
// range.
func (m *monotoneCubic) eval(x float64) float64 {
	i1, i2 := findBracketOrBoundary(m.xs, x)
	h := m.xs[i2] - m.xs[i1]
	s := (x - m.xs[i1]) / h

	h00 := 2*s*s*s - 3*s*s + 1
	h10 := s*s*s - 2*s*s + s
	h01 := -2*s*s*s + 3*s*s
	h11 := s*s*s - s*s

	return h00*m.ys[i1] + h10*h*m.tangents[i1] +
		h01*m.ys[i2] + h11*h*m.tangents[i2]
}
