// Package waveform holds spherical-harmonic-mode time series.
//
// A [Modes] value couples a strictly increasing time grid with one complex
// coefficient per (ell, m) mode per sample. Modes are stored in a fixed
// canonical order (ell ascending, m ascending within ell), so a mode maps to
// a column of a flat row-major buffer via [Modes.Index].
//
// The derived scalar [Modes.Norm] is the total instantaneous power, the sum
// of squared magnitudes across modes; it is the amplitude-only signal used
// for 1-D alignment.
package waveform
