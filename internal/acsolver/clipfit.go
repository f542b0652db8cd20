// Public domain.

package acsolver

import (
	"math"
	"sort"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/skysurvey/abscal/param"
)

// lm settings for one inner fit.  lmIterations is a variable so tests
// can exhaust the budget.
var lmIterations = 200

const lmObjectiveTol = 1e-16

// sigmaFloor is the residual scatter, in magnitudes, below which a
// clipping pass is skipped.
const sigmaFloor = 1e-12

// FitSpec configures one sigma-clipped fit.
type FitSpec struct {
	Free           []param.ID
	SigmaClip      bool
	SigmaThreshold float64
	MaxClipIter    int
}

// FitResult is the outcome of one sigma-clipped fit.
type FitResult struct {
	Cost       float64
	Surviving  []int     // calibrator indices surviving clipping
	Residuals  []float64 // aligned with Surviving; NaN marks degenerate
	Converged  bool      // inner minimizer converged on the final pass
	ClipPasses int       // clipping passes that removed at least one star
	Degenerate int       // stars excluded from the final cost as degenerate
}

// fitWithClipping runs the fit state machine: a nonlinear least-squares
// pass over the free parameters, then a clipping pass removing
// calibrators whose residual deviates from the median by more than
// SigmaThreshold times the residual standard deviation, repeating until
// no star is removed or MaxClipIter is exhausted.  The index set is fixed for the duration of each inner
// fit.  Fitted values are written back into tbl; fixed parameters are
// untouched.
//
// A clipping pass that would remove every remaining star is skipped.
// Inner non-convergence is not an error: the best-found parameters are
// kept and the result is marked not converged.
func fitWithClipping(ev *Evaluator, tbl *param.Table, active []int, spec FitSpec) (FitResult, error) {
	if len(active) == 0 {
		return FitResult{}, ErrEmptyActiveSet
	}
	cur := append([]int(nil), active...)
	var r FitResult
	for iter := 0; ; iter++ {
		cost, res, nDegen, converged := fitOnce(ev, tbl, cur, spec.Free)
		r = FitResult{
			Cost:       cost,
			Surviving:  cur,
			Residuals:  res,
			Converged:  converged,
			ClipPasses: r.ClipPasses,
			Degenerate: nDegen,
		}
		if !spec.SigmaClip || iter >= spec.MaxClipIter {
			return r, nil
		}
		kept := clipPass(cur, res, spec.SigmaThreshold)
		if len(kept) == len(cur) {
			return r, nil // nothing removed: converged
		}
		r.ClipPasses++
		cur = kept
	}
}

// clipPass returns the indices surviving one sigma-clipping pass.
// Deviations are measured about the median residual: a single gross
// outlier shifts the fitted zero-point toward itself, so a mean-centered
// test can leave it marginally inside the threshold.  If clipping would
// empty the set, the pass is skipped and the input is returned
// unchanged.  Degenerate (NaN) residuals are never clipped; they are
// already excluded from the cost.
func clipPass(active []int, res []float64, threshold float64) []int {
	valid := make([]float64, 0, len(res))
	for _, r := range res {
		if !math.IsNaN(r) {
			valid = append(valid, r)
		}
	}
	if len(valid) < 2 {
		return active
	}
	sigma := stat.StdDev(valid, nil)
	if sigma < sigmaFloor {
		// scatter at numerical noise level means a perfect fit;
		// there is nothing meaningful to clip
		return active
	}
	sort.Float64s(valid)
	med := stat.Quantile(0.5, stat.Empirical, valid, nil)
	kept := active[:0:0]
	for i, r := range res {
		if math.IsNaN(r) || math.Abs(r-med) <= threshold*sigma {
			kept = append(kept, active[i])
		}
	}
	if len(kept) == 0 {
		return active // never allow an empty active set
	}
	return kept
}

// fitOnce runs a single Levenberg-Marquardt fit of the free parameters
// over a fixed calibrator index set and writes the fitted values into
// tbl.  Bounds are enforced exactly through the sine transform between
// the minimizer's unbounded internal space and each parameter's
// [lower, upper] interval.
func fitOnce(ev *Evaluator, tbl *param.Table, active []int, free []param.ID) (cost float64, res []float64, nDegen int, converged bool) {
	scratch := tbl.Clone()
	f := func(dst, u []float64) {
		for k, id := range free {
			scratch.Set(id, fromUnbounded(u[k], id))
		}
		_, r, _ := ev.Evaluate(active, scratch)
		for i, v := range r {
			if math.IsNaN(v) {
				v = 0 // degenerate stars contribute nothing
			}
			dst[i] = v
		}
	}

	u0 := make([]float64, len(free))
	for k, id := range free {
		u0[k] = toUnbounded(tbl.Get(id), id)
	}

	jac := lm.NumJac{Func: f}
	prob := lm.LMProblem{
		Dim:        len(free),
		Size:       len(active),
		Func:       f,
		Jac:        jac.Jac,
		InitParams: u0,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}
	results, err := lm.LM(prob, &lm.Settings{
		Iterations:   lmIterations,
		ObjectiveTol: lmObjectiveTol,
	})

	// lm reports iteration exhaustion through Status, never through the
	// error return
	best := u0
	converged = err == nil && results != nil &&
		results.Status != optimize.IterationLimit
	if results != nil && len(results.X) == len(free) {
		best = results.X
	}
	for k, id := range free {
		tbl.Set(id, fromUnbounded(best[k], id))
	}
	cost, res, nDegen = ev.Evaluate(active, tbl)
	return cost, res, nDegen, converged
}

// The minimizer has no box constraints, so bounded parameters are
// optimized through x = lo + (hi-lo)*(sin u + 1)/2, which maps the whole
// real line onto [lo, hi].
func fromUnbounded(u float64, id param.ID) float64 {
	lo, hi := param.Bounds(id)
	return lo + (hi-lo)*(math.Sin(u)+1)/2
}

func toUnbounded(x float64, id param.ID) float64 {
	lo, hi := param.Bounds(id)
	t := 2*(x-lo)/(hi-lo) - 1
	if t < -1 {
		t = -1
	} else if t > 1 {
		t = 1
	}
	return math.Asin(t)
}
