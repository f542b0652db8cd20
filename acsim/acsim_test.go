// Public domain.

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysurvey/abscal/calib"
)

func TestGenerate(t *testing.T) {
	set := Generate(20, 1, 30, 0.8, 0.01, 0)
	require.NoError(t, set.Validate())
	assert.Len(t, set.Stars, 20)
	for _, c := range set.Stars {
		assert.Positive(t, c.Flux, c.ID)
		assert.Len(t, c.Spectrum, len(set.Grid), c.ID)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(10, 7, 30, 0.8, 0.01, 0)
	b := Generate(10, 7, 30, 0.8, 0.01, 0)
	assert.Equal(t, a, b)
}

func TestGenerateOutlier(t *testing.T) {
	clean := Generate(10, 7, 30, 0.8, 0, 0)
	dirty := Generate(10, 7, 30, 0.8, 0, 10)
	assert.InDelta(t, clean.Stars[0].Mag+10, dirty.Stars[0].Mag, 1e-12)
	for i := 1; i < 10; i++ {
		assert.Equal(t, clean.Stars[i].Mag, dirty.Stars[i].Mag)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	set := Generate(5, 3, 45, 0.9, 0.02, 0)
	fn := filepath.Join(t.TempDir(), "sim.gob")
	require.NoError(t, set.WriteFile(fn))
	got, err := calib.ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, set, got)
}
