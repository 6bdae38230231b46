// Package align finds time and phase offsets between two mode waveforms by
// minimizing a normalized mismatch over a time window.
//
// Two routines form the core:
//
//   - [Time]:      1-D offset of the scalar norm curves
//   - [TimePhase]: joint time and phase offset of the full mode content
//
// Both share the same strategy: a brute-force scan over evenly spaced
// candidate offsets seeds a bounded least-squares refinement. The coarse scan
// is what makes the search reliable; the mismatch surface of oscillatory
// signals has many local minima, and a local solver seeded arbitrarily will
// happily converge to the wrong one.
//
// The window (t1, t2) must be contained in both waveforms and should be wide
// enough that the norm changes significantly across it; neither endpoint
// should sit close to the edge of either waveform, so the offset search has
// room to move. [EstimateTimeShift] gives a cheap correlation-based guess to
// pre-align waveforms that start far apart.
package align
