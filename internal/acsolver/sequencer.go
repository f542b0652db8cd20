// Public domain.

// Package acsolver implements the staged photometric-calibration
// optimizer: the cost evaluator over a calibrator set, the
// sigma-clipping fitter around the Levenberg-Marquardt minimizer, and
// the stage sequencer that frees a growing parameter subset stage by
// stage while carrying fitted values forward.
package acsolver

import (
	"log/slog"

	"go.trai.ch/zerr"

	"github.com/skysurvey/abscal/atmos"
	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/param"
)

// StageSpec describes one stage of the calibration sequence.
// Parameters not in Free are held fixed at the table's current value,
// carried over from prior stages or left at their defaults.
type StageSpec struct {
	Name           string
	Free           []param.ID
	SigmaClip      bool
	SigmaThreshold float64
	MaxClipIter    int
	FieldCorr      bool
}

// StageResult records the outcome of one completed stage.
type StageResult struct {
	Name       string
	Cost       float64
	Surviving  []int
	Residuals  []float64
	Converged  bool
	ClipPasses int
}

// State is the output of RunSequence: the final parameter table plus the
// per-stage history.  It is never rolled back; a stage that only
// partially converges is marked in its history entry.
type State struct {
	Table   *param.Table
	History []StageResult
}

// Sequencer runs calibration sequences over one calibrator set.
type Sequencer struct {
	Model   *atmos.Model
	Set     *calib.Set
	Workers int
	Log     *slog.Logger
}

// validate checks every stage before any fitting work begins.
// Configuration errors here are caller bugs and are fatal.
func validate(stages []StageSpec) error {
	if len(stages) == 0 {
		return zerr.Wrap(ErrInvalidStageSpec, "no stages")
	}
	for si, st := range stages {
		if len(st.Free) == 0 {
			return zerr.With(zerr.With(zerr.Wrap(ErrInvalidStageSpec, "no free parameters"),
				"stage", st.Name), "index", si)
		}
		seen := make(map[param.ID]bool, len(st.Free))
		for _, id := range st.Free {
			if !id.Valid() {
				return zerr.With(zerr.With(zerr.Wrap(ErrInvalidStageSpec, "unknown parameter"),
					"stage", st.Name), "param", int(id))
			}
			if seen[id] {
				return zerr.With(zerr.With(zerr.Wrap(ErrInvalidStageSpec, "duplicate free parameter"),
					"stage", st.Name), "param", id.String())
			}
			seen[id] = true
		}
		if st.SigmaClip && (st.SigmaThreshold <= 0 || st.MaxClipIter <= 0) {
			return zerr.With(zerr.With(zerr.With(zerr.Wrap(ErrInvalidStageSpec, "bad clipping settings"),
				"stage", st.Name),
				"threshold", st.SigmaThreshold), "maxIter", st.MaxClipIter)
		}
	}
	return nil
}

// RunSequence executes the stages in order against tbl, mutating only
// each stage's free parameters and appending to the history.  The
// surviving calibrator subset of each stage is the starting active set
// of the next.  RunSequence returns a complete State for every stage it
// attempts; only pre-flight configuration errors fail the whole run.
func (s *Sequencer) RunSequence(stages []StageSpec, tbl *param.Table) (*State, error) {
	if err := validate(stages); err != nil {
		return nil, err
	}
	if err := s.Set.Validate(); err != nil {
		return nil, err
	}
	log := s.Log
	if log == nil {
		log = slog.Default()
	}

	state := &State{Table: tbl}
	active := make([]int, len(s.Set.Stars))
	for i := range active {
		active[i] = i
	}

	for _, st := range stages {
		ev := &Evaluator{
			Model:     s.Model,
			Set:       s.Set,
			FieldCorr: st.FieldCorr,
			Workers:   s.Workers,
		}
		res, err := fitWithClipping(ev, tbl, active, FitSpec{
			Free:           st.Free,
			SigmaClip:      st.SigmaClip,
			SigmaThreshold: st.SigmaThreshold,
			MaxClipIter:    st.MaxClipIter,
		})
		if err != nil {
			// only an empty starting set reaches here; clipping never
			// empties the active set on its own
			return state, zerr.With(err, "stage", st.Name)
		}
		if !res.Converged {
			log.Warn("stage did not converge, keeping best-found parameters",
				"stage", st.Name, "cost", res.Cost,
				"err", ErrFitDidNotConverge)
		}
		if res.Degenerate > 0 {
			log.Warn("degenerate calibrators excluded from cost",
				"stage", st.Name, "count", res.Degenerate,
				"err", ErrModelDegenerate)
		}
		log.Info("stage complete",
			"stage", st.Name,
			"cost", res.Cost,
			"surviving", len(res.Surviving),
			"clipPasses", res.ClipPasses)

		state.History = append(state.History, StageResult{
			Name:       st.Name,
			Cost:       res.Cost,
			Surviving:  res.Surviving,
			Residuals:  res.Residuals,
			Converged:  res.Converged,
			ClipPasses: res.ClipPasses,
		})
		active = res.Surviving
	}
	return state, nil
}
