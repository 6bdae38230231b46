package waveform

import (
	"github.com/cwbudde/algo-waveform/numeric/spline"
)

// Sampler evaluates a waveform's mode content at arbitrary times through
// cubic splines, one per real and imaginary channel, sharing a single
// interval search per evaluation.
type Sampler struct {
	set    *spline.Set
	nModes int
}

// Sampler builds a spline sampler over the waveform's time grid.
// At least two time samples are required.
func (w *Modes) Sampler() (*Sampler, error) {
	cols := make([][]float64, 2*w.nModes)
	for j := range cols {
		cols[j] = make([]float64, len(w.t))
	}
	for i := 0; i < len(w.t); i++ {
		row := w.data[i*w.nModes : (i+1)*w.nModes]
		for j, c := range row {
			cols[2*j][i] = real(c)
			cols[2*j+1][i] = imag(c)
		}
	}

	set, err := spline.NewSet(w.t, cols)
	if err != nil {
		return nil, err
	}

	return &Sampler{set: set, nModes: w.nModes}, nil
}

// NModes returns the number of modes the sampler evaluates.
func (s *Sampler) NModes() int { return s.nModes }

// ScratchLen returns the length of the scratch slice SampleInto needs.
func (s *Sampler) ScratchLen() int { return 2 * s.nModes }

// SampleInto evaluates every mode at time tq into dst (len >= NModes).
// scratch must have at least ScratchLen elements. Both slices are
// caller-owned, so concurrent sampling is safe with per-goroutine buffers.
func (s *Sampler) SampleInto(dst []complex128, scratch []float64, tq float64) {
	s.set.EvalInto(scratch, tq)
	for j := 0; j < s.nModes; j++ {
		dst[j] = complex(scratch[2*j], scratch[2*j+1])
	}
}

// Interpolate resamples the waveform onto a new strictly increasing time
// grid using cubic splines per mode channel. Times outside the original grid
// extrapolate with the end segments.
func (w *Modes) Interpolate(times []float64) (*Modes, error) {
	if len(times) == 0 {
		return nil, ErrNoSamples
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, ErrTimesNotIncreasing
		}
	}

	s, err := w.Sampler()
	if err != nil {
		return nil, err
	}

	data := make([]complex128, len(times)*w.nModes)
	scratch := make([]float64, s.ScratchLen())
	for i, tq := range times {
		s.SampleInto(data[i*w.nModes:(i+1)*w.nModes], scratch, tq)
	}

	return &Modes{
		t:      append([]float64(nil), times...),
		data:   data,
		ellMin: w.ellMin,
		ellMax: w.ellMax,
		nModes: w.nModes,
	}, nil
}
