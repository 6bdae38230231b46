// Package gen synthesizes model waveforms for tests, examples and benchmarks.
//
// The model is a quadrupole-dominated chirp: every mode (ell, m) carries the
// phase m·Φ(t) of a common orbital phase Φ with linearly growing frequency,
// with amplitudes halving per unit of ell above 2. It is not a physical
// waveform, but it has the structure the aligners care about: a smooth norm
// and mode phases that transform correctly under time and phase offsets.
package gen

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-waveform/waveform"
)

var (
	ErrInvalidSpan = errors.New("gen: end time must exceed start time")
	ErrInvalidStep = errors.New("gen: time step must be positive")
)

type config struct {
	ellMax    int
	amplitude float64
	frequency float64
	chirpRate float64
	growth    float64
}

// Option configures the chirp model.
type Option func(*config)

// WithEllMax sets the largest generated ell (at least 2).
func WithEllMax(ell int) Option {
	return func(cfg *config) {
		if ell >= 2 {
			cfg.ellMax = ell
		}
	}
}

// WithAmplitude sets the (2, m) mode amplitude at the start time.
func WithAmplitude(a float64) Option {
	return func(cfg *config) {
		if a > 0 {
			cfg.amplitude = a
		}
	}
}

// WithFrequency sets the orbital angular frequency at the start time.
func WithFrequency(omega float64) Option {
	return func(cfg *config) {
		if omega > 0 {
			cfg.frequency = omega
		}
	}
}

// WithChirpRate sets the linear growth rate of the orbital frequency.
func WithChirpRate(k float64) Option {
	return func(cfg *config) {
		if k >= 0 {
			cfg.chirpRate = k
		}
	}
}

// WithAmplitudeGrowth sets the relative amplitude growth per unit time.
func WithAmplitudeGrowth(g float64) Option {
	return func(cfg *config) {
		if g >= 0 {
			cfg.growth = g
		}
	}
}

func defaultConfig() config {
	return config{
		ellMax:    3,
		amplitude: 1,
		frequency: 0.5,
		chirpRate: 0.01,
		growth:    0.02,
	}
}

// Chirp generates the model waveform sampled from t0 to t1 (inclusive when
// the span is a multiple of dt) with step dt, covering ell in [2, ellMax].
func Chirp(t0, t1, dt float64, opts ...Option) (*waveform.Modes, error) {
	if t1 <= t0 {
		return nil, ErrInvalidSpan
	}
	if dt <= 0 {
		return nil, ErrInvalidStep
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	nT := int(math.Floor((t1-t0)/dt+1e-9)) + 1
	times := make([]float64, nT)
	for i := range times {
		times[i] = t0 + float64(i)*dt
	}

	nModes := waveform.ModeCount(2, cfg.ellMax)
	data := make([]complex128, nT*nModes)

	for i, t := range times {
		u := t - t0
		phase := cfg.frequency*u + 0.5*cfg.chirpRate*u*u
		amp := cfg.amplitude * (1 + cfg.growth*u)

		j := 0
		for ell := 2; ell <= cfg.ellMax; ell++ {
			ampEll := amp / math.Pow(2, float64(ell-2))
			for m := -ell; m <= ell; m++ {
				data[i*nModes+j] = complex(ampEll, 0) * cmplx.Exp(complex(0, float64(m)*phase))
				j++
			}
		}
	}

	return waveform.New(times, data, 2, cfg.ellMax)
}
