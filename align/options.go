package align

import "github.com/cwbudde/algo-waveform/waveform"

const defaultPhaseGridN = 5

type config struct {
	bruteForceN   int // 0 derives the count from the window sample counts
	phaseGridN    int
	fullPhaseGrid bool
	includeModes  []waveform.Mode
}

// Option mutates the aligner configuration.
type Option func(*config)

// WithBruteForceN sets the number of evenly spaced time offsets evaluated in
// the coarse search. The default is the larger of the two waveforms' sample
// counts inside the window; too few points risk seeding the refinement in the
// wrong local minimum.
func WithBruteForceN(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.bruteForceN = n
		}
	}
}

// WithPhaseGridN sets the number of evenly spaced phase offsets in [0, 2π)
// evaluated in the coarse search. Only TimePhase uses it.
func WithPhaseGridN(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.phaseGridN = n
		}
	}
}

// WithFullPhaseGrid requests 2·ellMax+1 phase offsets, the formally complete
// count for the compared mode content. ellMax here is the smaller of the two
// waveforms' ranges, since modes above it never enter the mismatch. It is
// much slower than the default and normally finds the same optimum.
func WithFullPhaseGrid() Option {
	return func(cfg *config) {
		cfg.fullPhaseGrid = true
	}
}

// WithModes restricts the TimePhase mismatch to the given modes; every other
// mode inside the compared ell range contributes nothing to the cost. The
// returned transformed waveform always carries the full mode content.
func WithModes(modes ...waveform.Mode) Option {
	return func(cfg *config) {
		cfg.includeModes = modes
	}
}

func applyOptions(opts ...Option) config {
	cfg := config{phaseGridN: defaultPhaseGridN}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
