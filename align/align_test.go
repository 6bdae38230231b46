package align

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-waveform/waveform"
	"github.com/cwbudde/algo-waveform/waveform/gen"
)

// normWaveform builds a single-mode waveform whose total power equals f(t),
// which must be positive on the span.
func normWaveform(tb testing.TB, t0, t1, dt float64, f func(float64) float64) *waveform.Modes {
	tb.Helper()

	n := int(math.Floor((t1-t0)/dt+1e-9)) + 1
	times := make([]float64, n)
	nm := waveform.ModeCount(2, 2)
	data := make([]complex128, n*nm)
	for i := range times {
		times[i] = t0 + float64(i)*dt
		data[i*nm+4] = complex(math.Sqrt(f(times[i])), 0) // the (2,2) column
	}

	w, err := waveform.New(times, data, 2, 2)
	if err != nil {
		tb.Fatal(err)
	}

	return w
}

// timeShifted rebuilds w with dt added to its time axis, data unchanged.
func timeShifted(tb testing.TB, w *waveform.Modes, dt float64) *waveform.Modes {
	tb.Helper()

	times := make([]float64, w.NTimes())
	data := make([]complex128, w.NTimes()*w.NModes())
	for i, v := range w.Times() {
		times[i] = v + dt
		copy(data[i*w.NModes():(i+1)*w.NModes()], w.Row(i))
	}

	s, err := waveform.New(times, data, w.EllMin(), w.EllMax())
	if err != nil {
		tb.Fatal(err)
	}

	return s
}

func TestTimeWindowValidation(t *testing.T) {
	wa := normWaveform(t, 0, 20, 0.1, func(x float64) float64 { return 2 + math.Sin(x) })
	wb := normWaveform(t, 2, 18, 0.1, func(x float64) float64 { return 2 + math.Sin(x) })

	tests := []struct {
		name   string
		t1, t2 float64
	}{
		{"out of order", 15, 5},
		{"equal endpoints", 5, 5},
		{"before wb", 1, 15},
		{"after wb", 5, 19},
		{"outside both", -5, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Time(wa, wb, tt.t1, tt.t2); !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("Time() error = %v, want %v", err, ErrInvalidWindow)
			}
		})
	}
}

func TestTimeIdentity(t *testing.T) {
	w := normWaveform(t, 0, 20, 0.01, func(x float64) float64 { return 2 + math.Sin(x) })

	dt, err := Time(w, w, 5, 15)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dt) > 1e-6 {
		t.Errorf("dt = %g, want ~0", dt)
	}
}

func TestTimeRecoversKnownShift(t *testing.T) {
	f := func(x float64) float64 { return 2 + math.Sin(x) }
	wa := normWaveform(t, 0, 20, 0.01, f)
	wb := timeShifted(t, wa, 0.37)

	dt, err := Time(wa, wb, 5, 15)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dt-0.37) > 1e-5 {
		t.Errorf("dt = %g, want 0.37", dt)
	}

	// the offset must be recovered regardless of the brute-force resolution,
	// as long as the grid is fine enough to land in the right basin
	dt, err = Time(wa, wb, 5, 15, WithBruteForceN(200))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dt-0.37) > 1e-5 {
		t.Errorf("dt (n=200) = %g, want 0.37", dt)
	}
}

func TestTimeChirpShift(t *testing.T) {
	wa, err := gen.Chirp(0, 40, 0.02)
	if err != nil {
		t.Fatal(err)
	}
	wb := timeShifted(t, wa, -1.25)

	dt, err := Time(wa, wb, 10, 30)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dt+1.25) > 1e-4 {
		t.Errorf("dt = %g, want -1.25", dt)
	}
}

func TestTimeDoesNotMutateInputs(t *testing.T) {
	wa := normWaveform(t, 0, 20, 0.05, func(x float64) float64 { return 2 + math.Sin(x) })
	wb := timeShifted(t, wa, 0.2)

	beforeA := wa.At(10, 2, 2)
	beforeB := wb.At(10, 2, 2)
	beforeT := wb.TMin()

	if _, err := Time(wa, wb, 5, 15); err != nil {
		t.Fatal(err)
	}

	if wa.At(10, 2, 2) != beforeA || wb.At(10, 2, 2) != beforeB || wb.TMin() != beforeT {
		t.Error("Time mutated an input waveform")
	}
}

func TestGridHelpers(t *testing.T) {
	ts := []float64{0, 1, 2, 3, 4}

	lo, hi := windowBounds(ts, 1, 3)
	if lo != 1 || hi != 4 {
		t.Errorf("windowBounds = (%d,%d), want (1,4)", lo, hi)
	}
	lo, hi = windowBounds(ts, 0.5, 3.5)
	if lo != 1 || hi != 4 {
		t.Errorf("windowBounds inset = (%d,%d), want (1,4)", lo, hi)
	}

	if got := nearestIndex(ts, 1.4); got != 1 {
		t.Errorf("nearestIndex(1.4) = %d, want 1", got)
	}
	if got := nearestIndex(ts, 1.6); got != 2 {
		t.Errorf("nearestIndex(1.6) = %d, want 2", got)
	}
	if got := nearestIndex(ts, -3); got != 0 {
		t.Errorf("nearestIndex(-3) = %d, want 0", got)
	}
	if got := nearestIndex(ts, 9); got != 4 {
		t.Errorf("nearestIndex(9) = %d, want 4", got)
	}

	if got := gridPoint(-1, 1, 0, 5); got != -1 {
		t.Errorf("gridPoint first = %g, want -1", got)
	}
	if got := gridPoint(-1, 1, 4, 5); got != 1 {
		t.Errorf("gridPoint last = %g, want 1", got)
	}
	if got := gridPoint(-1, 1, 0, 1); got != -1 {
		t.Errorf("gridPoint single = %g, want -1", got)
	}
}
