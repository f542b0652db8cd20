// Public domain.

package atmos

import (
	"math"

	"github.com/skysurvey/abscal/memo"
	"github.com/soniakeys/meeus/v3/refraction"
	"github.com/soniakeys/unit"
)

// Optical path length through the atmosphere differs by constituent
// because each is distributed in a different vertical layer.  The
// coefficients below parametrize the constituent airmass as
//
//	m = 1 / (cos z + a·z^b·(c − z)^−d)
//
// with z the apparent zenith angle in degrees.
type amCoef struct{ a, b, c, d float64 }

// Constituent names accepted by Airmass.
const (
	Rayleigh = "rayleigh"
	Aerosol  = "aerosol"
	OzoneGas = "ozone"
	Water    = "water"
	MixedGas = "mixedgas"
)

var amCoefs = map[string]amCoef{
	Rayleigh: {0.48353, 0.095846, 96.741, 1.754},
	Aerosol:  {0.16851, 0.18198, 95.318, 1.9542},
	OzoneGas: {1.0651, 0.6379, 101.8, 2.2694},
	Water:    {0.10648, 0.11423, 93.781, 1.9203},
	MixedGas: {0.65779, 0.064713, 96.974, 1.8084},
}

// apparentZenith corrects a true zenith angle for atmospheric refraction.
func apparentZenith(trueZenithDeg float64) float64 {
	h := unit.AngleFromDeg(90 - trueZenithDeg) // true altitude
	r := refraction.Saemundsson(h)
	return 90 - (h + r).Deg()
}

// airmass computes the constituent airmass for a true zenith angle in
// degrees.  Results are undefined past 90 degrees; Set validation
// rejects such exposures before fitting begins.
func airmass(constituent string, trueZenithDeg float64) float64 {
	c, ok := amCoefs[constituent]
	if !ok {
		panic("atmos: unknown constituent " + constituent)
	}
	z := apparentZenith(trueZenithDeg)
	zr := unit.AngleFromDeg(z).Rad()
	return 1 / (math.Cos(zr) + c.a*math.Pow(z, c.b)*math.Pow(c.c-z, -c.d))
}

// Airmass returns the constituent airmass for a true zenith angle,
// memoized through the model's cache under the airmass scope.  The same
// cached value serves every calibrator sharing exposure metadata.
func (m *Model) Airmass(constituent string, trueZenithDeg float64) float64 {
	if m.cache == nil {
		return airmass(constituent, trueZenithDeg)
	}
	fn := "airmass." + constituent
	if v, ok := m.cache.Get(memo.ScopeAirmass, fn, trueZenithDeg); ok {
		return v
	}
	v := airmass(constituent, trueZenithDeg)
	m.cache.Put(memo.ScopeAirmass, fn, []float64{trueZenithDeg}, v)
	return v
}
