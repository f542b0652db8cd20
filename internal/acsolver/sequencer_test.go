// Public domain.

package acsolver

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysurvey/abscal/atmos"
	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/param"
)

func quietSequencer(set *calib.Set) *Sequencer {
	return &Sequencer{
		Model: atmos.New(set.Grid, nil),
		Set:   set,
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestValidateRejectsBadStages(t *testing.T) {
	cases := []struct {
		name   string
		stages []StageSpec
	}{
		{"no stages", nil},
		{"no free params", []StageSpec{{Name: "a"}}},
		{"unknown param", []StageSpec{
			{Name: "a", Free: []param.ID{param.NumParams}},
		}},
		{"duplicate param", []StageSpec{
			{Name: "a", Free: []param.ID{param.Norm, param.Norm}},
		}},
		{"zero threshold", []StageSpec{{
			Name: "a", Free: []param.ID{param.Norm},
			SigmaClip: true, SigmaThreshold: 0, MaxClipIter: 3,
		}}},
		{"zero clip iters", []StageSpec{{
			Name: "a", Free: []param.ID{param.Norm},
			SigmaClip: true, SigmaThreshold: 3, MaxClipIter: 0,
		}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.ErrorIs(t, validate(c.stages), ErrInvalidStageSpec)
		})
	}
}

func TestRunSequenceRejectsBadSet(t *testing.T) {
	set := synthSet(10, truthNorm(0.8), 0)
	set.Stars = nil
	_, err := quietSequencer(set).RunSequence(
		[]StageSpec{{Name: "a", Free: []param.ID{param.Norm}}},
		param.NewTable())
	assert.ErrorIs(t, err, calib.ErrEmptySet)
}

// Fitted values from one stage are the fixed values of the next: the
// table is shared across stages and only each stage's free parameters
// move.
func TestStageCarryOver(t *testing.T) {
	set := synthSet(10, truthNorm(0.8), 0)
	tbl := param.NewTable()
	st, err := quietSequencer(set).RunSequence([]StageSpec{
		{Name: "norm", Free: []param.ID{param.Norm}},
		{Name: "shape", Free: []param.ID{param.Center, param.Width}},
	}, tbl)
	require.NoError(t, err)
	require.Len(t, st.History, 2)
	assert.Same(t, tbl, st.Table)

	// stage 2 never freed Norm, so the stage-1 fit survives in the table
	assert.InDelta(t, 0.8, tbl.Get(param.Norm), 0.008)
	// parameters no stage freed stay at their defaults
	assert.Equal(t, param.Default(param.AOD), tbl.Get(param.AOD))
	assert.Equal(t, param.Default(param.PWV), tbl.Get(param.PWV))
}

// Switching the field term on at a stage boundary must not move the
// cost: the field coefficients default to zero, so the first evaluation
// of the field stage reproduces the previous stage's final cost
// bit for bit.
func TestSequenceCostContinuity(t *testing.T) {
	set := synthSet(10, truthNorm(0.8), 0)
	seq := quietSequencer(set)
	tbl := param.NewTable()

	st, err := seq.RunSequence([]StageSpec{
		{Name: "norm", Free: []param.ID{param.Norm}},
	}, tbl)
	require.NoError(t, err)
	final := st.History[0]

	withField := &Evaluator{Model: seq.Model, Set: set, FieldCorr: true}
	cost, _, _ := withField.Evaluate(final.Surviving, tbl)
	assert.Equal(t, final.Cost, cost)

	// running the field stage for real starts from that same cost, so
	// freeing the coefficients can only hold or improve it
	st2, err := seq.RunSequence([]StageSpec{{
		Name: "field",
		Free: []param.ID{
			param.FieldX0, param.FieldX1, param.FieldX2,
			param.FieldX3, param.FieldX4,
			param.FieldY1, param.FieldY2, param.FieldY3,
			param.FieldY4, param.FieldXY,
		},
		FieldCorr: true,
	}}, tbl)
	require.NoError(t, err)
	assert.LessOrEqual(t, st2.History[0].Cost, final.Cost+1e-12)
	assert.InDelta(t, 0.8, tbl.Get(param.Norm), 0.008,
		"field stage must not touch the fixed normalization")
}

func TestSurvivorsCarryForward(t *testing.T) {
	set := synthSet(12, truthNorm(0.8), 10)
	st, err := quietSequencer(set).RunSequence([]StageSpec{
		{
			Name: "clip", Free: []param.ID{param.Norm},
			SigmaClip: true, SigmaThreshold: 3, MaxClipIter: 3,
		},
		{Name: "after", Free: []param.ID{param.Norm}},
	}, param.NewTable())
	require.NoError(t, err)
	require.Len(t, st.History, 2)
	require.Len(t, st.History[0].Surviving, 11, "outlier clipped in stage 1")
	// stage 2 starts from stage 1's survivors and, without clipping,
	// keeps exactly that set
	assert.Equal(t, st.History[0].Surviving, st.History[1].Surviving)
	assert.NotContains(t, st.History[1].Surviving, 0)
}

// The two-stage scenario from end to end: recover an injected
// normalization, then refine instrumental shape, with an outlier
// removed along the way.
func TestRunSequenceEndToEnd(t *testing.T) {
	set := synthSet(12, truthNorm(0.8), 10)
	tbl := param.NewTable()
	st, err := quietSequencer(set).RunSequence([]StageSpec{
		{
			Name: "normalization", Free: []param.ID{param.Norm},
			SigmaClip: true, SigmaThreshold: 3, MaxClipIter: 3,
		},
		{
			Name:      "instrumental",
			Free:      []param.ID{param.Norm, param.Center, param.Width},
			SigmaClip: true, SigmaThreshold: 3, MaxClipIter: 3,
		},
	}, tbl)
	require.NoError(t, err)
	require.Len(t, st.History, 2)
	assert.InDelta(t, 0.8, tbl.Get(param.Norm), 0.008)
	assert.Less(t, st.History[1].Cost, 1e-10)
	for _, h := range st.History {
		assert.True(t, h.Converged, "stage %s", h.Name)
	}
}
