package align

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-waveform/waveform/gen"
)

func BenchmarkTime(b *testing.B) {
	f := func(x float64) float64 { return 2 + math.Sin(x) }
	wa := normWaveform(b, 0, 40, 0.05, f)
	wb := timeShifted(b, wa, 0.37)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Time(wa, wb, 10, 30, WithBruteForceN(100)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTimePhase(b *testing.B) {
	wa, err := gen.Chirp(0, 30, 0.1)
	if err != nil {
		b.Fatal(err)
	}
	wb := timeShifted(b, wa, -0.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := TimePhase(wa, wb, 10, 20, WithBruteForceN(50)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEstimateTimeShift(b *testing.B) {
	f := func(x float64) float64 { return 2 + math.Sin(x) }
	wa := normWaveform(b, 0, 40, 0.05, f)
	wb := timeShifted(b, wa, 2.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EstimateTimeShift(wa, wb); err != nil {
			b.Fatal(err)
		}
	}
}
