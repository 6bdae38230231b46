package waveform

import (
	"errors"
	"fmt"
	"math/cmplx"
)

var (
	ErrNoSamples          = errors.New("waveform: need at least one time sample")
	ErrTimesNotIncreasing = errors.New("waveform: time samples must be strictly increasing")
	ErrDataSize           = errors.New("waveform: data size does not match times and modes")
	ErrEllRange           = errors.New("waveform: invalid ell range")
)

// Mode identifies a spin-weighted spherical-harmonic mode by its angular
// indices.
type Mode struct {
	Ell int
	M   int
}

// ModeCount returns the number of (ell, m) pairs with ellMin <= ell <= ellMax.
func ModeCount(ellMin, ellMax int) int {
	return (ellMax+1)*(ellMax+1) - ellMin*ellMin
}

// Modes is a waveform sampled on a shared time grid: one complex coefficient
// per stored mode per sample, in canonical mode order.
type Modes struct {
	t      []float64
	data   []complex128 // row-major, time × mode
	ellMin int
	ellMax int
	nModes int
}

// New builds a waveform from a strictly increasing time grid and a row-major
// (time × mode) coefficient buffer covering ellMin <= ell <= ellMax.
// Both slices are copied.
func New(t []float64, data []complex128, ellMin, ellMax int) (*Modes, error) {
	if len(t) == 0 {
		return nil, ErrNoSamples
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return nil, ErrTimesNotIncreasing
		}
	}
	if ellMin < 0 || ellMax < ellMin {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrEllRange, ellMin, ellMax)
	}

	n := ModeCount(ellMin, ellMax)
	if len(data) != len(t)*n {
		return nil, fmt.Errorf("%w: have %d values, want %d (%d times × %d modes)",
			ErrDataSize, len(data), len(t)*n, len(t), n)
	}

	return &Modes{
		t:      append([]float64(nil), t...),
		data:   append([]complex128(nil), data...),
		ellMin: ellMin,
		ellMax: ellMax,
		nModes: n,
	}, nil
}

// NTimes returns the number of time samples.
func (w *Modes) NTimes() int { return len(w.t) }

// NModes returns the number of stored modes.
func (w *Modes) NModes() int { return w.nModes }

// EllMin returns the smallest stored ell.
func (w *Modes) EllMin() int { return w.ellMin }

// EllMax returns the largest stored ell.
func (w *Modes) EllMax() int { return w.ellMax }

// Times returns the time grid. The slice is shared with the waveform and must
// not be modified.
func (w *Modes) Times() []float64 { return w.t }

// TMin returns the first sample time.
func (w *Modes) TMin() float64 { return w.t[0] }

// TMax returns the last sample time.
func (w *Modes) TMax() float64 { return w.t[len(w.t)-1] }

// Index returns the column of mode (ell, m) in canonical order, or -1 when
// the mode lies outside the stored range.
func (w *Modes) Index(ell, m int) int {
	if ell < w.ellMin || ell > w.ellMax || m < -ell || m > ell {
		return -1
	}

	return ell*(ell+1) + m - w.ellMin*w.ellMin
}

// At returns the coefficient of mode (ell, m) at time sample i.
// The mode must lie in the stored range.
func (w *Modes) At(i, ell, m int) complex128 {
	return w.data[i*w.nModes+w.Index(ell, m)]
}

// Row returns the mode coefficients at time sample i, in canonical order.
// The slice is shared with the waveform and must not be modified.
func (w *Modes) Row(i int) []complex128 {
	return w.data[i*w.nModes : (i+1)*w.nModes]
}

// MValues returns the azimuthal index of every stored mode in canonical
// order. This is the integer exponent array of the phase group action: a
// rotation by dphi about the symmetry axis multiplies each column by
// exp(i·m·dphi).
func (w *Modes) MValues() []int {
	ms := make([]int, 0, w.nModes)
	for ell := w.ellMin; ell <= w.ellMax; ell++ {
		for m := -ell; m <= ell; m++ {
			ms = append(ms, m)
		}
	}

	return ms
}

// Copy returns an independent deep copy.
func (w *Modes) Copy() *Modes {
	return &Modes{
		t:      append([]float64(nil), w.t...),
		data:   append([]complex128(nil), w.data...),
		ellMin: w.ellMin,
		ellMax: w.ellMax,
		nModes: w.nModes,
	}
}

// ZeroMode clears the column of mode (ell, m) at every time sample.
// Modes outside the stored range are ignored.
func (w *Modes) ZeroMode(ell, m int) {
	j := w.Index(ell, m)
	if j < 0 {
		return
	}
	for i := 0; i < len(w.t); i++ {
		w.data[i*w.nModes+j] = 0
	}
}

// RotateZ rotates the waveform about the symmetry axis in place, multiplying
// each mode (ell, m) by exp(i·m·dphi).
func (w *Modes) RotateZ(dphi float64) {
	factors := make([]complex128, w.nModes)
	for j, m := range w.MValues() {
		factors[j] = cmplx.Exp(complex(0, float64(m)*dphi))
	}

	for i := 0; i < len(w.t); i++ {
		row := w.data[i*w.nModes : (i+1)*w.nModes]
		for j := range row {
			row[j] *= factors[j]
		}
	}
}

// ShiftTime adds dt to every sample time in place. Mode data is untouched;
// this is the usual way to apply an alignment offset to a waveform.
func (w *Modes) ShiftTime(dt float64) {
	for i := range w.t {
		w.t[i] += dt
	}
}

// SelectEll returns a copy restricted to modes with lo <= ell <= hi. The
// requested range must lie inside the stored range.
func (w *Modes) SelectEll(lo, hi int) (*Modes, error) {
	if lo < w.ellMin || hi > w.ellMax || lo > hi {
		return nil, fmt.Errorf("%w: requested [%d, %d], stored [%d, %d]",
			ErrEllRange, lo, hi, w.ellMin, w.ellMax)
	}

	n := ModeCount(lo, hi)
	first := w.Index(lo, -lo)
	data := make([]complex128, len(w.t)*n)
	for i := 0; i < len(w.t); i++ {
		copy(data[i*n:(i+1)*n], w.data[i*w.nModes+first:i*w.nModes+first+n])
	}

	return &Modes{
		t:      append([]float64(nil), w.t...),
		data:   data,
		ellMin: lo,
		ellMax: hi,
		nModes: n,
	}, nil
}
