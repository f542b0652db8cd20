// Public domain.

package acsolver

import (
	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/param"
)

// fieldDelta evaluates the 2-D polynomial field correction at detector
// pixel (x, y), in magnitudes.  Coordinates are rescaled into [-1, 1]
// over the detector's physical extent.  The correction is a degree-4
// polynomial in X plus a degree-4 polynomial in Y plus one cross term.
// The Y constant term does not exist: it would be degenerate with the X
// constant, which itself is degenerate with the global zero-point and is
// freed only in field-correction stages.
//
// All coefficients live in the parameter table with zero defaults, so
// the delta is exactly zero until a field stage frees them.  That is
// what keeps the cost continuous across the stage boundary where the
// field term is first switched on.
func fieldDelta(x, y float64, tbl *param.Table, geom calib.Geometry) float64 {
	nx := 2*x/geom.Width - 1
	ny := 2*y/geom.Height - 1

	// Horner in each axis
	dx := ((tbl.Get(param.FieldX4)*nx+tbl.Get(param.FieldX3))*nx+
		tbl.Get(param.FieldX2))*nx*nx + tbl.Get(param.FieldX1)*nx +
		tbl.Get(param.FieldX0)
	dy := (((tbl.Get(param.FieldY4)*ny+tbl.Get(param.FieldY3))*ny+
		tbl.Get(param.FieldY2))*ny + tbl.Get(param.FieldY1)) * ny
	return dx + dy + tbl.Get(param.FieldXY)*nx*ny
}
