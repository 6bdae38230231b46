// Package quad provides trapezoidal quadrature on sampled functions.
//
// The integrand is given by its samples; no closed form is assumed. Grids may
// be non-uniform as long as they are ordered.
package quad

// Trapezoid integrates y over the grid x using the composite trapezoidal rule.
//
// The grid may be non-uniform. If the slices differ in length, the shorter
// length is used. Fewer than two samples integrate to 0.
func Trapezoid(y, x []float64) float64 {
	n := len(y)
	if len(x) < n {
		n = len(x)
	}

	var sum float64
	for i := 1; i < n; i++ {
		sum += 0.5 * (x[i] - x[i-1]) * (y[i] + y[i-1])
	}

	return sum
}

// Uniform integrates y sampled with constant step h.
func Uniform(y []float64, h float64) float64 {
	n := len(y)
	if n < 2 {
		return 0
	}

	var interior float64
	for _, v := range y[1 : n-1] {
		interior += v
	}

	return h * (interior + 0.5*(y[0]+y[n-1]))
}
