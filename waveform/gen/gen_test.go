package gen

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestChirpValidation(t *testing.T) {
	if _, err := Chirp(1, 1, 0.1); err != ErrInvalidSpan {
		t.Errorf("equal span error = %v, want %v", err, ErrInvalidSpan)
	}
	if _, err := Chirp(0, 1, 0); err != ErrInvalidStep {
		t.Errorf("zero step error = %v, want %v", err, ErrInvalidStep)
	}
}

func TestChirpShape(t *testing.T) {
	w, err := Chirp(0, 10, 0.1, WithEllMax(4))
	if err != nil {
		t.Fatal(err)
	}

	if w.NTimes() != 101 {
		t.Errorf("NTimes = %d, want 101", w.NTimes())
	}
	if w.EllMin() != 2 || w.EllMax() != 4 {
		t.Errorf("ell range [%d,%d], want [2,4]", w.EllMin(), w.EllMax())
	}
	if w.TMin() != 0 || math.Abs(w.TMax()-10) > 1e-9 {
		t.Errorf("span [%g,%g], want [0,10]", w.TMin(), w.TMax())
	}
}

func TestChirpModePhases(t *testing.T) {
	// mode (ell, m) must carry phase m·Φ(t): the (2,2) and (2,-2) modes are
	// complex conjugates for a real amplitude
	w, err := Chirp(0, 5, 0.05)
	if err != nil {
		t.Fatal(err)
	}

	for _, i := range []int{0, 31, 100} {
		p := w.At(i, 2, 2)
		n := w.At(i, 2, -2)
		if cmplx.Abs(p-cmplx.Conj(n)) > 1e-12 {
			t.Errorf("sample %d: (2,2)=%v not conjugate of (2,-2)=%v", i, p, n)
		}
	}
}

func TestChirpNormGrows(t *testing.T) {
	w, err := Chirp(0, 20, 0.1, WithAmplitudeGrowth(0.05))
	if err != nil {
		t.Fatal(err)
	}

	norm := w.Norm()
	if norm[len(norm)-1] <= norm[0] {
		t.Errorf("norm did not grow: first %g, last %g", norm[0], norm[len(norm)-1])
	}
	if got := w.MaxNormTime(); math.Abs(got-w.TMax()) > 1e-9 {
		t.Errorf("MaxNormTime = %g, want %g", got, w.TMax())
	}
}

func TestChirpDeterministic(t *testing.T) {
	a, err := Chirp(0, 5, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Chirp(0, 5, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < a.NTimes(); i++ {
		ra, rb := a.Row(i), b.Row(i)
		for j := range ra {
			if ra[j] != rb[j] {
				t.Fatalf("sample %d mode %d differs", i, j)
			}
		}
	}
}
