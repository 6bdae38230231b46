package waveform

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im, pw []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 3 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}

	return buf.data[:n], buf.data[n : 2*n], buf.data[2*n : need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Norm returns the total instantaneous power at every time sample: the sum
// over stored modes of the squared coefficient magnitude.
func (w *Modes) Norm() []float64 {
	out := make([]float64, len(w.t))
	re, im, pw, buf := getScratch(w.nModes)
	defer putScratch(buf)

	for i := range w.t {
		row := w.data[i*w.nModes : (i+1)*w.nModes]
		for j, c := range row {
			re[j] = real(c)
			im[j] = imag(c)
		}
		vecmath.Power(pw, re, im)

		var sum float64
		for _, v := range pw {
			sum += v
		}
		out[i] = sum
	}

	return out
}

// MaxNormTime returns the sample time at which the total power peaks.
// Aligning the peaks of two waveforms is the usual coarse pre-alignment
// before calling the window-based aligners.
func (w *Modes) MaxNormTime() float64 {
	norm := w.Norm()
	best := 0
	for i, v := range norm {
		if v > norm[best] {
			best = i
		}
	}

	return w.t[best]
}
