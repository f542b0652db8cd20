// Public domain.

package acsolver

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/integrate"

	"github.com/skysurvey/abscal/atmos"
	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/param"
)

// parallelThreshold is the active-set size below which Evaluate stays
// serial; goroutine fan-out costs more than it saves on small sets.
const parallelThreshold = 64

// Evaluator computes the scalar calibration cost and per-star residuals
// for an active subset of calibrators against the current parameter
// table.
//
// Evaluate is a pure function of (active, tbl): identical inputs produce
// bit-identical outputs regardless of call order, cache state, or
// worker count.
type Evaluator struct {
	Model *atmos.Model
	Set   *calib.Set

	// FieldCorr selects whether the field-correction delta is added to
	// predicted magnitudes.  With all field coefficients at their zero
	// defaults both settings produce identical cost.
	FieldCorr bool

	// Workers bounds the per-calibrator fan-out.  Zero or one evaluates
	// serially.
	Workers int
}

// Evaluate returns the sum of squared magnitude residuals over the
// active calibrators and the per-star residuals aligned with active.
//
// A calibrator whose prediction is non-finite (catalog flux <= 0, or
// transmission collapsed to zero) is degenerate: its residual is NaN
// and it contributes nothing to the cost.  Degeneracy never aborts the
// evaluation.  nDegen reports how many stars were excluded this way.
func (e *Evaluator) Evaluate(active []int, tbl *param.Table) (cost float64, res []float64, nDegen int) {
	// one transmission curve serves the whole set: calibrators share
	// exposure metadata, so only the spectrum integral is per-star
	trans := e.Model.Transmission(tbl, e.Set.Exposure)

	res = make([]float64, len(active))
	work := func(i int) {
		res[i] = e.starResidual(active[i], trans, tbl)
	}
	if e.Workers > 1 && len(active) >= parallelThreshold {
		var g errgroup.Group
		n := e.Workers
		if procs := runtime.GOMAXPROCS(0); n > procs {
			n = procs
		}
		g.SetLimit(n)
		for i := range active {
			g.Go(func() error { work(i); return nil })
		}
		g.Wait() // workers return no errors
	} else {
		for i := range active {
			work(i)
		}
	}

	for _, r := range res {
		if math.IsNaN(r) {
			nDegen++
			continue
		}
		cost += r * r
	}
	return cost, res, nDegen
}

// starResidual computes predicted minus catalog magnitude for one star.
// NaN marks a degenerate prediction.
func (e *Evaluator) starResidual(star int, trans []float64, tbl *param.Table) float64 {
	c := &e.Set.Stars[star]
	if c.Flux <= 0 {
		return math.NaN()
	}
	prod := make([]float64, len(trans))
	for j, t := range trans {
		prod[j] = t * c.Spectrum[j]
	}
	flux := integrate.Trapezoidal(e.Set.Grid, prod)
	if flux <= 0 || math.IsInf(flux, 0) {
		return math.NaN()
	}
	pred := -2.5 * math.Log10(flux)
	if e.FieldCorr {
		pred += fieldDelta(c.X, c.Y, tbl, e.Set.Geometry)
	}
	r := pred - c.Mag
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return math.NaN()
	}
	return r
}
