// Public domain.

package acsolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/param"
)

var fcGeom = calib.Geometry{Width: 2048, Height: 2048}

func TestFieldDeltaZeroAtDefaults(t *testing.T) {
	tbl := param.NewTable()
	for _, p := range [][2]float64{{0, 0}, {1024, 1024}, {2048, 2048}, {17, 1900}} {
		assert.Zero(t, fieldDelta(p[0], p[1], tbl, fcGeom))
	}
}

func TestFieldDeltaCenterIsConstantTerm(t *testing.T) {
	tbl := param.NewTable()
	tbl.Set(param.FieldX0, 0.05)
	tbl.Set(param.FieldX1, 0.2)
	tbl.Set(param.FieldY1, -0.3)
	tbl.Set(param.FieldXY, 0.7)
	// detector center maps to (0, 0), where every nonconstant term
	// vanishes
	assert.Equal(t, 0.05, fieldDelta(1024, 1024, tbl, fcGeom))
}

func TestFieldDeltaPolynomial(t *testing.T) {
	tbl := param.NewTable()
	tbl.Set(param.FieldX0, 0.01)
	tbl.Set(param.FieldX1, 0.02)
	tbl.Set(param.FieldX2, 0.03)
	tbl.Set(param.FieldX3, 0.04)
	tbl.Set(param.FieldX4, 0.05)
	tbl.Set(param.FieldY1, 0.06)
	tbl.Set(param.FieldY2, 0.07)
	tbl.Set(param.FieldY3, 0.08)
	tbl.Set(param.FieldY4, 0.09)
	tbl.Set(param.FieldXY, 0.10)

	// corner (2048, 2048): nx = ny = 1, so the delta is the plain
	// coefficient sum
	want := 0.01 + 0.02 + 0.03 + 0.04 + 0.05 +
		0.06 + 0.07 + 0.08 + 0.09 + 0.10
	assert.InDelta(t, want, fieldDelta(2048, 2048, tbl, fcGeom), 1e-15)

	// corner (0, 0): nx = ny = -1, odd terms flip sign
	want = 0.01 - 0.02 + 0.03 - 0.04 + 0.05 -
		0.06 + 0.07 - 0.08 + 0.09 + 0.10
	assert.InDelta(t, want, fieldDelta(0, 0, tbl, fcGeom), 1e-15)

	// interior point, against a direct power-basis evaluation
	nx, ny := 2*300.0/2048-1, 2*1700.0/2048-1
	want = 0.01 + 0.02*nx + 0.03*nx*nx + 0.04*nx*nx*nx + 0.05*nx*nx*nx*nx +
		0.06*ny + 0.07*ny*ny + 0.08*ny*ny*ny + 0.09*ny*ny*ny*ny +
		0.10*nx*ny
	assert.InDelta(t, want, fieldDelta(300, 1700, tbl, fcGeom), 1e-14)
}

func TestFieldDeltaGeometryRescaling(t *testing.T) {
	tbl := param.NewTable()
	tbl.Set(param.FieldX1, 0.5)
	// the same physical fraction of two different detectors gives the
	// same delta
	a := fieldDelta(512, 0, tbl, calib.Geometry{Width: 2048, Height: 2048})
	b := fieldDelta(1024, 0, tbl, calib.Geometry{Width: 4096, Height: 4096})
	assert.Equal(t, a, b)
}
