package waveform_test

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-waveform/waveform"
)

func ExampleNew() {
	// Two samples of a waveform holding the ell = 2 mode family,
	// so five mode columns per time sample.
	times := []float64{0, 1}
	nm := waveform.ModeCount(2, 2)
	data := make([]complex128, 2*nm)
	data[0*nm+4] = complex(1, 0)
	data[1*nm+4] = complex(0, 1)

	w, _ := waveform.New(times, data, 2, 2)

	fmt.Printf("samples: %d\n", w.NTimes())
	fmt.Printf("modes:   %d\n", w.NModes())
	fmt.Printf("span:    [%.0f, %.0f]\n", w.TMin(), w.TMax())

	// Output:
	// samples: 2
	// modes:   5
	// span:    [0, 1]
}

func ExampleModes_Norm() {
	times := []float64{0, 1, 2}
	nm := waveform.ModeCount(2, 2)
	data := make([]complex128, 3*nm)
	for i := 0; i < 3; i++ {
		data[i*nm+4] = complex(float64(i+1), 0)
	}

	w, _ := waveform.New(times, data, 2, 2)

	for i, v := range w.Norm() {
		fmt.Printf("norm[%d] = %.0f\n", i, v)
	}

	// Output:
	// norm[0] = 1
	// norm[1] = 4
	// norm[2] = 9
}

func ExampleModes_RotateZ() {
	times := []float64{0}
	nm := waveform.ModeCount(2, 2)
	data := make([]complex128, nm)
	data[4] = complex(1, 0) // the (2, 2) mode

	w, _ := waveform.New(times, data, 2, 2)
	w.RotateZ(math.Pi / 4)

	v := w.At(0, 2, 2)
	fmt.Printf("|v| = %.0f, arg = %.2f\n", cmplx.Abs(v), cmplx.Phase(v))

	// Output:
	// |v| = 1, arg = 1.57
}
