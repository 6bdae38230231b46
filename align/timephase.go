package align

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/cwbudde/algo-waveform/numeric/lsq"
	"github.com/cwbudde/algo-waveform/numeric/quad"
	"github.com/cwbudde/algo-waveform/waveform"
)

// Result reports the outcome of a time-phase alignment. It is diagnostic:
// the offsets are always best-effort, and callers needing strict guarantees
// must check Converged.
type Result struct {
	Dt         float64
	Dphi       float64
	Cost       float64 // mismatch value at (Dt, Dphi)
	Iterations int
	Converged  bool
}

// TimePhase finds the time and phase offsets (dt, dphi) that minimize the
// normalized mismatch of the full mode content over the window (t1, t2):
//
//	∫ Σ_modes | A(t+dt)·exp(i·m·dphi) − B(t) |² dt  /  ∫ norm_b(t) dt
//
// where A is wa's mode content, B is wb's, and the sum runs over modes with
// 2 <= ell <= min(wa.EllMax, wb.EllMax). The phase acts on each mode through
// its azimuthal index m, the transformation of spherical-harmonic modes
// under a rotation about the symmetry axis.
//
// Unlike Time, the offset is applied to wa: the second return value is wa
// resampled at wa.t+dt, phase-rotated by dphi, restricted to ell in
// [2, ellMax]. The inputs are never modified; mode filtering via WithModes
// happens on private copies, and the transformed waveform is built from the
// full, unfiltered content.
func TimePhase(wa, wb *waveform.Modes, t1, t2 float64, opts ...Option) (Result, *waveform.Modes, error) {
	cfg := applyOptions(opts...)
	if err := validateWindow(wa, wb, t1, t2); err != nil {
		return Result{}, nil, err
	}

	ellMax := wa.EllMax()
	if wb.EllMax() < ellMax {
		ellMax = wb.EllMax()
	}

	waCopy := wa.Copy()
	wbCopy := wb.Copy()

	if len(cfg.includeModes) > 0 {
		keep := make(map[waveform.Mode]bool, len(cfg.includeModes))
		for _, mode := range cfg.includeModes {
			keep[mode] = true
		}
		for ell := 2; ell <= ellMax; ell++ {
			for m := -ell; m <= ell; m++ {
				if !keep[waveform.Mode{Ell: ell, M: m}] {
					waCopy.ZeroMode(ell, m)
					wbCopy.ZeroMode(ell, m)
				}
			}
		}
	}

	wa2, err := waCopy.SelectEll(2, ellMax)
	if err != nil {
		return Result{}, nil, fmt.Errorf("align: wa: %w", err)
	}
	wb2, err := wbCopy.SelectEll(2, ellMax)
	if err != nil {
		return Result{}, nil, fmt.Errorf("align: wb: %w", err)
	}

	// offsets are applied to wa here, so the admissible range is measured
	// against wa's span
	dtLower := math.Max(t1-t2, wa.TMin()-t1)
	dtUpper := math.Min(t2-t1, wa.TMax()-t2)

	ta := waCopy.Times()
	lo := nearestIndex(ta, t1)
	hi := nearestIndex(ta, t2)
	tRef := ta[lo : hi+1]

	sampA, err := wa2.Sampler()
	if err != nil {
		return Result{}, nil, err
	}

	// wb is held fixed: evaluate it once on the reference grid
	wbRef, err := wb2.Interpolate(tRef)
	if err != nil {
		return Result{}, nil, err
	}
	nm := wb2.NModes()
	modesB := make([]complex128, len(tRef)*nm)
	for i := range tRef {
		copy(modesB[i*nm:(i+1)*nm], wbRef.Row(i))
	}

	normalization := quad.Trapezoid(wbRef.Norm(), tRef)
	ev := &costEval{
		sampA:         sampA,
		modesB:        modesB,
		tRef:          tRef,
		mvals:         wa2.MValues(),
		normalization: normalization,
		weights:       residualWeights(tRef, normalization),
		rowA:          make([]complex128, nm),
		scratch:       make([]float64, sampA.ScratchLen()),
		phase:         make([]complex128, nm),
		diff:          make([]float64, len(tRef)),
	}

	nDt := cfg.bruteForceN
	if nDt <= 0 {
		aLo, aHi := windowBounds(ta, t1, t2)
		bLo, bHi := windowBounds(wb.Times(), t1, t2)
		nDt = aHi - aLo
		if bHi-bLo > nDt {
			nDt = bHi - bLo
		}
	}
	nPhi := cfg.phaseGridN
	if cfg.fullPhaseGrid {
		nPhi = 2*ellMax + 1
	}

	seedDt, seedPhi := ev.coarseScan(dtLower, dtUpper, nDt, nPhi)

	// refine on the weighted per-sample residual vector, not the scalar
	// cost: the full-rank Jacobian lets the solver follow the valley where
	// a time offset trades against a phase offset
	res, err := lsq.Solve(func(x, r []float64) { ev.residuals(x[0], x[1], r) },
		[]float64{seedDt, seedPhi},
		[]float64{dtLower, 0},
		[]float64{dtUpper, 2 * math.Pi}, 2*len(tRef)*nm)
	if err != nil {
		return Result{}, nil, err
	}
	dtOpt, dphiOpt := res.X[0], res.X[1]

	// the transformed waveform comes from the original, unfiltered wa
	full, err := wa.SelectEll(2, ellMax)
	if err != nil {
		return Result{}, nil, fmt.Errorf("align: wa: %w", err)
	}
	shifted := make([]float64, wa.NTimes())
	for i, v := range wa.Times() {
		shifted[i] = v + dtOpt
	}
	waPrime, err := full.Interpolate(shifted)
	if err != nil {
		return Result{}, nil, err
	}
	waPrime.RotateZ(dphiOpt)

	out := Result{
		Dt:         dtOpt,
		Dphi:       dphiOpt,
		Cost:       ev.cost(dtOpt, dphiOpt),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}

	return out, waPrime, nil
}

// costEval evaluates the time-phase mismatch. The first block of fields is
// shared and read-only; the buffers below it belong to a single goroutine.
type costEval struct {
	sampA         *waveform.Sampler
	modesB        []complex128 // wb on the reference grid, row-major
	tRef          []float64
	mvals         []int
	normalization float64
	weights       []float64 // sqrt of trapezoid weight over normalization

	rowA    []complex128
	scratch []float64
	phase   []complex128
	diff    []float64
}

func (e *costEval) clone() *costEval {
	c := *e
	c.rowA = make([]complex128, len(e.rowA))
	c.scratch = make([]float64, len(e.scratch))
	c.phase = make([]complex128, len(e.phase))
	c.diff = make([]float64, len(e.diff))

	return &c
}

func (e *costEval) cost(dt, dphi float64) float64 {
	for j, m := range e.mvals {
		e.phase[j] = cmplx.Exp(complex(0, float64(m)*dphi))
	}

	nm := len(e.mvals)
	for i, t := range e.tRef {
		e.sampA.SampleInto(e.rowA, e.scratch, t+dt)
		rowB := e.modesB[i*nm : (i+1)*nm]

		var sum float64
		for j, a := range e.rowA {
			d := a*e.phase[j] - rowB[j]
			sum += real(d)*real(d) + imag(d)*imag(d)
		}
		e.diff[i] = sum
	}

	return math.Sqrt(quad.Trapezoid(e.diff, e.tRef) / e.normalization)
}

// residuals writes the weighted real and imaginary mode differences at
// (dt, dphi) into r, which must have 2·len(tRef)·len(mvals) elements.
// The squared sum of the entries equals cost(dt, dphi)².
func (e *costEval) residuals(dt, dphi float64, r []float64) {
	for j, m := range e.mvals {
		e.phase[j] = cmplx.Exp(complex(0, float64(m)*dphi))
	}

	nm := len(e.mvals)
	for i, t := range e.tRef {
		e.sampA.SampleInto(e.rowA, e.scratch, t+dt)
		rowB := e.modesB[i*nm : (i+1)*nm]

		w := e.weights[i]
		base := 2 * i * nm
		for j, a := range e.rowA {
			d := a*e.phase[j] - rowB[j]
			r[base+2*j] = w * real(d)
			r[base+2*j+1] = w * imag(d)
		}
	}
}

// coarseScan evaluates the cost on the full (dt, dphi) product grid and
// returns the cheapest candidate. Rows of dt are scanned in parallel; each
// worker clones the evaluator for its scratch buffers and the reduction
// tie-breaks on grid order, so the result is deterministic.
func (e *costEval) coarseScan(dtLower, dtUpper float64, nDt, nPhi int) (float64, float64) {
	type candidate struct {
		cost float64
		k    int
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > nDt {
		workers = nDt
	}
	if workers < 1 {
		workers = 1
	}

	partial := make([]candidate, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()

			ev := e.clone()
			best := candidate{cost: math.Inf(1), k: -1}
			for kt := w; kt < nDt; kt += workers {
				dt := gridPoint(dtLower, dtUpper, kt, nDt)
				for kp := 0; kp < nPhi; kp++ {
					dphi := 2 * math.Pi * float64(kp) / float64(nPhi)
					k := kt*nPhi + kp
					if c := ev.cost(dt, dphi); c < best.cost || (c == best.cost && k < best.k) {
						best = candidate{cost: c, k: k}
					}
				}
			}
			partial[w] = best
		}(w)
	}
	wg.Wait()

	best := candidate{cost: math.Inf(1), k: -1}
	for _, c := range partial {
		if c.k < 0 {
			continue
		}
		if c.cost < best.cost || (c.cost == best.cost && c.k < best.k) {
			best = c
		}
	}
	if best.k < 0 {
		// every candidate was NaN (e.g. zero normalization); seed at the
		// lower corner and let the degeneracy propagate
		return dtLower, 0
	}

	return gridPoint(dtLower, dtUpper, best.k/nPhi, nDt), 2 * math.Pi * float64(best.k%nPhi) / float64(nPhi)
}
