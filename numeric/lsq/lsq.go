// Package lsq solves small box-bounded nonlinear least-squares problems.
//
// The solver is a damped Gauss-Newton (Levenberg-Marquardt) iteration with a
// forward-difference Jacobian. Trial steps are projected onto the bound box,
// which is robust for the low-dimensional problems this module cares about,
// where the optimum normally sits in the interior.
//
// Non-convergence is not an error: the best iterate found is always returned,
// with Converged reporting whether a tolerance was met. Callers needing strict
// guarantees must inspect the result.
package lsq

import (
	"errors"
	"math"
)

var (
	ErrDimension   = errors.New("lsq: parameter and bound lengths must match")
	ErrBounds      = errors.New("lsq: lower bound exceeds upper bound")
	ErrNoResiduals = errors.New("lsq: need at least one residual")
)

// Func evaluates the residual vector at parameters x, writing it into r.
// The solver minimizes half the sum of squared residuals.
type Func func(x, r []float64)

// Result reports the solver outcome. X holds the best iterate found, whether
// or not a tolerance was met.
type Result struct {
	X          []float64
	Cost       float64 // 0.5 * sum of squared residuals at X
	Iterations int
	Converged  bool
}

type config struct {
	maxIterations int
	ftol          float64
	xtol          float64
	gtol          float64
	diffStep      float64
}

// Option mutates the solver configuration.
type Option func(*config)

// WithMaxIterations caps the number of outer iterations.
func WithMaxIterations(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxIterations = n
		}
	}
}

// WithTolerances sets the relative cost-reduction and step-size tolerances.
func WithTolerances(ftol, xtol float64) Option {
	return func(cfg *config) {
		if ftol > 0 {
			cfg.ftol = ftol
		}
		if xtol > 0 {
			cfg.xtol = xtol
		}
	}
}

func defaultConfig() config {
	return config{
		maxIterations: 100,
		ftol:          1e-10,
		xtol:          1e-10,
		gtol:          1e-12,
		diffStep:      1.5e-8, // ~sqrt(machine epsilon)
	}
}

// Solve minimizes half the squared norm of the m-vector produced by f over the
// box [lower, upper], starting from x0. x0 is clamped into the box first.
func Solve(f Func, x0, lower, upper []float64, m int, opts ...Option) (Result, error) {
	n := len(x0)
	if n == 0 || len(lower) != n || len(upper) != n {
		return Result{}, ErrDimension
	}
	if m < 1 {
		return Result{}, ErrNoResiduals
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return Result{}, ErrBounds
		}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = clamp(x0[i], lower[i], upper[i])
	}

	r := make([]float64, m)
	rTrial := make([]float64, m)
	f(x, r)
	cost := 0.5 * dot(r, r)

	jac := make([][]float64, n) // column-major
	for j := range jac {
		jac[j] = make([]float64, m)
	}
	grad := make([]float64, n)
	normal := make([]float64, n*n)
	damped := make([]float64, n*n)
	step := make([]float64, n)
	xTrial := make([]float64, n)

	res := Result{X: x, Cost: cost}
	lambda := 1e-3

	for iter := 1; iter <= cfg.maxIterations; iter++ {
		res.Iterations = iter

		// forward-difference Jacobian; the step direction flips at the
		// upper bound so evaluations stay inside the box
		for j := 0; j < n; j++ {
			h := cfg.diffStep * math.Max(1, math.Abs(x[j]))
			if x[j]+h > upper[j] {
				h = -h
			}
			xj := x[j]
			x[j] = xj + h
			f(x, rTrial)
			x[j] = xj

			col := jac[j]
			for i := 0; i < m; i++ {
				col[i] = (rTrial[i] - r[i]) / h
			}
		}

		gradNorm := 0.0
		for j := 0; j < n; j++ {
			grad[j] = dot(jac[j], r)
			if a := math.Abs(grad[j]); a > gradNorm {
				gradNorm = a
			}
		}
		if gradNorm < cfg.gtol {
			res.Converged = true
			break
		}

		for a := 0; a < n; a++ {
			for b := a; b < n; b++ {
				v := dot(jac[a], jac[b])
				normal[a*n+b] = v
				normal[b*n+a] = v
			}
		}

		improved := false
		for attempt := 0; attempt < 16 && lambda <= 1e12; attempt++ {
			copy(damped, normal)
			for d := 0; d < n; d++ {
				damped[d*n+d] = normal[d*n+d] + lambda*math.Max(normal[d*n+d], 1e-12)
			}
			for j := range step {
				step[j] = -grad[j]
			}
			if !solveLinear(damped, step, n) {
				lambda *= 10
				continue
			}

			for j := range xTrial {
				xTrial[j] = clamp(x[j]+step[j], lower[j], upper[j])
			}
			f(xTrial, rTrial)
			costTrial := 0.5 * dot(rTrial, rTrial)

			if costTrial < cost {
				dcost := cost - costTrial

				var dx, xnorm float64
				for j := range x {
					d := xTrial[j] - x[j]
					dx += d * d
					xnorm += x[j] * x[j]
				}
				dx = math.Sqrt(dx)
				xnorm = math.Sqrt(xnorm)

				copy(x, xTrial)
				copy(r, rTrial)
				cost = costTrial
				lambda = math.Max(lambda*0.3, 1e-12)
				improved = true

				if dcost <= cfg.ftol*math.Max(cost, math.SmallestNonzeroFloat64) ||
					dx <= cfg.xtol*(cfg.xtol+xnorm) {
					res.Converged = true
				}

				break
			}
			lambda *= 10
		}

		if !improved {
			// no damping level improves the cost: the iterate is a minimum
			// to finite-difference precision
			res.Converged = true
			break
		}
		if res.Converged {
			break
		}
	}

	res.X = x
	res.Cost = cost

	return res, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}

// solveLinear solves the n×n system a·x = b in place (b holds the solution)
// using Gaussian elimination with partial pivoting. Returns false for a
// singular system.
func solveLinear(a, b []float64, n int) bool {
	for col := 0; col < n; col++ {
		p := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row*n+col]) > math.Abs(a[p*n+col]) {
				p = row
			}
		}
		if a[p*n+col] == 0 {
			return false
		}
		if p != col {
			for k := col; k < n; k++ {
				a[p*n+k], a[col*n+k] = a[col*n+k], a[p*n+k]
			}
			b[p], b[col] = b[col], b[p]
		}

		for row := col + 1; row < n; row++ {
			w := a[row*n+col] / a[col*n+col]
			for k := col; k < n; k++ {
				a[row*n+k] -= w * a[col*n+k]
			}
			b[row] -= w * b[col]
		}
	}

	for row := n - 1; row >= 0; row-- {
		v := b[row]
		for k := row + 1; k < n; k++ {
			v -= a[row*n+k] * b[k]
		}
		b[row] = v / a[row*n+row]
	}

	return true
}
