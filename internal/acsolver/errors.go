// Public domain.

package acsolver

import "go.trai.ch/zerr"

var (
	// ErrInvalidStageSpec is returned when a stage references an unknown
	// or duplicated free parameter, or carries inconsistent clipping
	// settings.  It is fatal and raised before any fitting work begins.
	ErrInvalidStageSpec = zerr.New("invalid stage spec")

	// ErrModelDegenerate marks a calibrator whose predicted magnitude is
	// non-finite.  It is recovered locally: the star is excluded from the
	// cost sum for the remainder of the current fit.
	ErrModelDegenerate = zerr.New("model degenerate for calibrator")

	// ErrEmptyActiveSet would mean sigma clipping removed every
	// calibrator.  The fitter prevents it by skipping such a pass, so it
	// only surfaces if a caller passes an empty index set.
	ErrEmptyActiveSet = zerr.New("empty active calibrator set")

	// ErrFitDidNotConverge reports that the inner minimizer exhausted its
	// budget.  The accompanying result still carries the best-found
	// parameters; callers may keep or discard the stage.
	ErrFitDidNotConverge = zerr.New("fit did not converge")
)
