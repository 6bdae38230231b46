package align

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-waveform/numeric/spline"
	"github.com/cwbudde/algo-waveform/waveform"
)

// ErrTooShort reports a waveform with too few samples to correlate.
var ErrTooShort = errors.New("align: waveform too short to correlate")

// EstimateTimeShift estimates the time offset between two waveforms from the
// cross-correlation of their norm curves, with no window and no refinement.
//
// The result follows the same convention as Time: apply it with
// wb.ShiftTime(-dt). Use it to pre-align waveforms whose offset exceeds what
// a window-based alignment can absorb, then refine with Time or TimePhase.
//
// Both norms are resampled onto a common uniform grid and correlated via
// FFT; the peak lag is refined to sub-sample precision with a parabolic fit.
func EstimateTimeShift(wa, wb *waveform.Modes) (float64, error) {
	if wa.NTimes() < 2 || wb.NTimes() < 2 {
		return 0, ErrTooShort
	}

	ha := (wa.TMax() - wa.TMin()) / float64(wa.NTimes()-1)
	hb := (wb.TMax() - wb.TMin()) / float64(wb.NTimes()-1)
	h := math.Min(ha, hb)

	na, err := uniformNorm(wa, h)
	if err != nil {
		return 0, err
	}
	nb, err := uniformNorm(wb, h)
	if err != nil {
		return 0, err
	}

	// remove the DC component so slow amplitude trends do not swamp the
	// correlation peak
	demean(na)
	demean(nb)

	size := nextPowerOf2(len(na) + len(nb) - 1)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return 0, fmt.Errorf("align: failed to create FFT plan: %w", err)
	}

	fa := make([]complex128, size)
	for i, v := range na {
		fa[i] = complex(v, 0)
	}
	fb := make([]complex128, size)
	for i, v := range nb {
		fb[i] = complex(v, 0)
	}

	specA := make([]complex128, size)
	if err := plan.Forward(specA, fa); err != nil {
		return 0, fmt.Errorf("align: forward FFT failed: %w", err)
	}
	specB := make([]complex128, size)
	if err := plan.Forward(specB, fb); err != nil {
		return 0, fmt.Errorf("align: forward FFT failed: %w", err)
	}

	cross := make([]complex128, size)
	for k := range cross {
		cross[k] = specA[k] * cmplx.Conj(specB[k])
	}

	corr := make([]complex128, size)
	if err := plan.Inverse(corr, cross); err != nil {
		return 0, fmt.Errorf("align: inverse FFT failed: %w", err)
	}

	// corr[lag] = Σ_i na[i+lag]·nb[i], negative lags wrapped
	at := func(lag int) float64 {
		if lag < 0 {
			lag += size
		}

		return real(corr[lag])
	}

	bestLag := 0
	bestVal := math.Inf(-1)
	for lag := -(len(nb) - 1); lag <= len(na)-1; lag++ {
		if v := at(lag); v > bestVal {
			bestVal = v
			bestLag = lag
		}
	}

	// parabolic sub-sample refinement around the peak
	lag := float64(bestLag)
	ym, yp := at(bestLag-1), at(bestLag+1)
	if den := ym - 2*bestVal + yp; den < 0 {
		lag += 0.5 * (ym - yp) / den
	}

	// a peak at this lag matches na's sample i+lag with nb's sample i, i.e.
	// wa's time waTMin+(i+lag)·h with wb's time wbTMin+i·h
	return wb.TMin() - wa.TMin() - lag*h, nil
}

func uniformNorm(w *waveform.Modes, h float64) ([]float64, error) {
	s, err := spline.New(w.Times(), w.Norm())
	if err != nil {
		return nil, err
	}

	n := int((w.TMax()-w.TMin())/h) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = s.At(w.TMin() + float64(i)*h)
	}

	return out, nil
}

func demean(x []float64) {
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	for i := range x {
		x[i] -= mean
	}
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}

	return p
}
