package spline

import (
	"errors"
	"sort"
)

var (
	ErrTooFewKnots    = errors.New("spline: need at least two knots")
	ErrLengthMismatch = errors.New("spline: x and y must have the same length")
	ErrNotIncreasing  = errors.New("spline: knots must be strictly increasing")
)

// Spline is a cubic interpolant with not-a-knot boundary conditions.
//
// Outside the knot range the end segments are extended, so evaluation at any
// point is defined; accuracy degrades the further the point is from the knots.
type Spline struct {
	x              []float64
	c0, c1, c2, c3 []float64 // per-segment cubic coefficients
}

// New builds a cubic spline through the points (x[i], y[i]).
// The knots x must be strictly increasing.
func New(x, y []float64) (*Spline, error) {
	if err := checkKnots(x); err != nil {
		return nil, err
	}
	if len(y) != len(x) {
		return nil, ErrLengthMismatch
	}

	s := &Spline{x: append([]float64(nil), x...)}
	s.c0, s.c1, s.c2, s.c3 = segmentCoeffs(s.x, y, moments(s.x, y))

	return s, nil
}

// At evaluates the spline at xq.
func (s *Spline) At(xq float64) float64 {
	i := segment(s.x, xq)
	t := xq - s.x[i]

	return ((s.c3[i]*t+s.c2[i])*t+s.c1[i])*t + s.c0[i]
}

func checkKnots(x []float64) error {
	if len(x) < 2 {
		return ErrTooFewKnots
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return ErrNotIncreasing
		}
	}

	return nil
}

// segment returns the index of the cubic that evaluates xq.
// Points beyond the knot range map to the first or last segment.
func segment(x []float64, xq float64) int {
	i := sort.SearchFloat64s(x, xq) - 1
	if i < 0 {
		return 0
	}
	if i > len(x)-2 {
		return len(x) - 2
	}

	return i
}

// moments solves for the second derivatives of the spline at the knots.
//
// Interior knots give the standard continuity equations; the not-a-knot
// conditions (third derivative continuous at the second and second-to-last
// knots) close the system. Folding those conditions into the first and last
// interior rows keeps the system tridiagonal, solved by the Thomas algorithm.
func moments(x, y []float64) []float64 {
	n := len(x)
	m := make([]float64, n)

	switch n {
	case 2:
		return m // linear
	case 3:
		// single parabola through all three points
		h0, h1 := x[1]-x[0], x[2]-x[1]
		c := ((y[2]-y[1])/h1 - (y[1]-y[0])/h0) / (h0 + h1)
		m[0], m[1], m[2] = 2*c, 2*c, 2*c

		return m
	}

	k := n - 2 // unknowns m[1..n-2]
	sub := make([]float64, k)
	diag := make([]float64, k)
	sup := make([]float64, k)
	rhs := make([]float64, k)

	for i := 1; i <= n-2; i++ {
		j := i - 1
		hm := x[i] - x[i-1]
		hp := x[i+1] - x[i]
		sub[j] = hm
		diag[j] = 2 * (hm + hp)
		sup[j] = hp
		rhs[j] = 6 * ((y[i+1]-y[i])/hp - (y[i]-y[i-1])/hm)
	}

	// fold m[0] = m[1] + (h0/h1)(m[1]-m[2]) into the first row
	h0, h1 := x[1]-x[0], x[2]-x[1]
	diag[0] += h0 + h0*h0/h1
	sup[0] -= h0 * h0 / h1

	// and m[n-1] = m[n-2] + (hl/hp)(m[n-2]-m[n-3]) into the last row
	hl := x[n-1] - x[n-2]
	hp := x[n-2] - x[n-3]
	diag[k-1] += hl + hl*hl/hp
	sub[k-1] -= hl * hl / hp

	for j := 1; j < k; j++ {
		w := sub[j] / diag[j-1]
		diag[j] -= w * sup[j-1]
		rhs[j] -= w * rhs[j-1]
	}

	m[n-2] = rhs[k-1] / diag[k-1]
	for j := k - 2; j >= 0; j-- {
		m[j+1] = (rhs[j] - sup[j]*m[j+2]) / diag[j]
	}

	m[0] = m[1] + (h0/h1)*(m[1]-m[2])
	m[n-1] = m[n-2] + (hl/hp)*(m[n-2]-m[n-3])

	return m
}

// segmentCoeffs converts knot values and moments into per-segment cubic
// coefficients evaluated as ((c3·t+c2)·t+c1)·t+c0 with t = xq - x[i].
func segmentCoeffs(x, y, m []float64) (c0, c1, c2, c3 []float64) {
	n := len(x) - 1
	c0 = make([]float64, n)
	c1 = make([]float64, n)
	c2 = make([]float64, n)
	c3 = make([]float64, n)

	for i := 0; i < n; i++ {
		h := x[i+1] - x[i]
		c0[i] = y[i]
		c1[i] = (y[i+1]-y[i])/h - h*(2*m[i]+m[i+1])/6
		c2[i] = m[i] / 2
		c3[i] = (m[i+1] - m[i]) / (6 * h)
	}

	return c0, c1, c2, c3
}
