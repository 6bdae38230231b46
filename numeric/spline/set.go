package spline

// Set holds cubic splines for several columns sharing one knot grid.
//
// The interval search is done once per evaluation point regardless of the
// column count, which matters when interpolating wide sample matrices.
type Set struct {
	x              []float64
	cols           int
	c0, c1, c2, c3 []float64 // segment-major, column-minor
}

// NewSet builds one spline per column. Every cols[j] must have len(x) samples.
func NewSet(x []float64, cols [][]float64) (*Set, error) {
	if err := checkKnots(x); err != nil {
		return nil, err
	}
	for _, col := range cols {
		if len(col) != len(x) {
			return nil, ErrLengthMismatch
		}
	}

	nc := len(cols)
	nseg := len(x) - 1
	s := &Set{
		x:    append([]float64(nil), x...),
		cols: nc,
		c0:   make([]float64, nseg*nc),
		c1:   make([]float64, nseg*nc),
		c2:   make([]float64, nseg*nc),
		c3:   make([]float64, nseg*nc),
	}

	for j, col := range cols {
		c0, c1, c2, c3 := segmentCoeffs(s.x, col, moments(s.x, col))
		for i := 0; i < nseg; i++ {
			s.c0[i*nc+j] = c0[i]
			s.c1[i*nc+j] = c1[i]
			s.c2[i*nc+j] = c2[i]
			s.c3[i*nc+j] = c3[i]
		}
	}

	return s, nil
}

// Cols returns the number of columns.
func (s *Set) Cols() int { return s.cols }

// EvalInto evaluates every column at xq into dst, which must have at least
// Cols elements. dst is caller-owned, so concurrent evaluation is safe as
// long as each goroutine brings its own dst.
func (s *Set) EvalInto(dst []float64, xq float64) {
	i := segment(s.x, xq)
	t := xq - s.x[i]
	base := i * s.cols

	for j := 0; j < s.cols; j++ {
		k := base + j
		dst[j] = ((s.c3[k]*t+s.c2[k])*t+s.c1[k])*t + s.c0[k]
	}
}
