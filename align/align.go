package align

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-waveform/numeric/lsq"
	"github.com/cwbudde/algo-waveform/numeric/quad"
	"github.com/cwbudde/algo-waveform/numeric/spline"
	"github.com/cwbudde/algo-waveform/waveform"
)

// ErrInvalidWindow reports a comparison window that is out of order or not
// contained in a waveform's sampled time range. It is returned before any
// numerical work starts.
var ErrInvalidWindow = errors.New("align: invalid window")

// Time finds the time offset dt that minimizes the normalized mismatch of
// the two waveforms' norm curves over the window (t1, t2):
//
//	∫ [ norm_a(t) − norm_b(t+dt) ]² dt  /  ∫ norm_a(t)² dt
//
// integrated over wa's samples inside the window. Neither waveform is
// modified; apply the result with wb.ShiftTime(-dt).
//
// The admissible offsets are bounded so the shifted window stays inside wb's
// sampled range, which also requires the inputs to be roughly pre-aligned
// (see EstimateTimeShift). The cost is scanned on a coarse offset grid first
// and the best candidate is refined with a bounded least-squares solve.
func Time(wa, wb *waveform.Modes, t1, t2 float64, opts ...Option) (float64, error) {
	cfg := applyOptions(opts...)
	if err := validateWindow(wa, wb, t1, t2); err != nil {
		return 0, err
	}

	dtLower := math.Max(t1-t2, wb.TMin()-t1)
	dtUpper := math.Min(t2-t1, wb.TMax()-t2)

	ta := wa.Times()
	lo, hi := windowBounds(ta, t1, t2)
	tRef := ta[lo:hi]
	normA := wa.Norm()[lo:hi]

	normB, err := spline.New(wb.Times(), wb.Norm())
	if err != nil {
		return 0, err
	}

	sq := make([]float64, len(tRef))
	for i, v := range normA {
		sq[i] = v * v
	}
	normalization := quad.Trapezoid(sq, tRef)

	diff := make([]float64, len(tRef))
	cost := func(dt float64) float64 {
		for i, t := range tRef {
			d := normA[i] - normB.At(t+dt)
			diff[i] = d * d
		}

		return math.Sqrt(quad.Trapezoid(diff, tRef) / normalization)
	}

	// refinement residual weights: sum of squared weighted per-sample
	// residuals = cost²
	sw := residualWeights(tRef, normalization)

	n := cfg.bruteForceN
	if n <= 0 {
		bLo, bHi := windowBounds(wb.Times(), t1, t2)
		n = hi - lo
		if bHi-bLo > n {
			n = bHi - bLo
		}
	}

	seed := dtLower
	bestCost := math.Inf(1)
	for k := 0; k < n; k++ {
		dt := gridPoint(dtLower, dtUpper, k, n)
		if c := cost(dt); c < bestCost {
			bestCost = c
			seed = dt
		}
	}

	res, err := lsq.Solve(func(x, r []float64) {
		for i, t := range tRef {
			r[i] = sw[i] * (normA[i] - normB.At(t+x[0]))
		}
	}, []float64{seed}, []float64{dtLower}, []float64{dtUpper}, len(tRef))
	if err != nil {
		return 0, err
	}

	return res.X[0], nil
}

func validateWindow(wa, wb *waveform.Modes, t1, t2 float64) error {
	if t2 <= t1 {
		return fmt.Errorf("%w: (t1,t2)=(%g, %g) is out of order", ErrInvalidWindow, t1, t2)
	}
	if wa.TMin() > t1 || wa.TMax() < t2 {
		return fmt.Errorf("%w: (t1,t2)=(%g, %g) not contained in wa.t, which spans (%g, %g)",
			ErrInvalidWindow, t1, t2, wa.TMin(), wa.TMax())
	}
	if wb.TMin() > t1 || wb.TMax() < t2 {
		return fmt.Errorf("%w: (t1,t2)=(%g, %g) not contained in wb.t, which spans (%g, %g)",
			ErrInvalidWindow, t1, t2, wb.TMin(), wb.TMax())
	}

	return nil
}

// windowBounds returns the half-open index range of samples with
// t1 <= t[i] <= t2.
func windowBounds(t []float64, t1, t2 float64) (lo, hi int) {
	lo = sort.SearchFloat64s(t, t1)
	hi = sort.Search(len(t), func(i int) bool { return t[i] > t2 })

	return lo, hi
}

// gridPoint returns the k-th of n evenly spaced values in [lo, hi],
// endpoints included.
func gridPoint(lo, hi float64, k, n int) float64 {
	if n <= 1 {
		return lo
	}

	return lo + (hi-lo)*float64(k)/float64(n-1)
}

// residualWeights returns sqrt(w_i/z) per sample, where w_i is the
// trapezoidal quadrature weight of t[i]. Scaling per-sample residuals by
// these weights makes their squared sum equal the normalized mismatch
// integral.
func residualWeights(t []float64, z float64) []float64 {
	w := make([]float64, len(t))
	for i := 1; i < len(t); i++ {
		half := 0.5 * (t[i] - t[i-1])
		w[i-1] += half
		w[i] += half
	}
	for i := range w {
		w[i] = math.Sqrt(w[i] / z)
	}

	return w
}

// nearestIndex returns the index of the sample time closest to x.
func nearestIndex(t []float64, x float64) int {
	i := sort.SearchFloat64s(t, x)
	if i == 0 {
		return 0
	}
	if i == len(t) {
		return len(t) - 1
	}
	if x-t[i-1] <= t[i]-x {
		return i - 1
	}

	return i
}
