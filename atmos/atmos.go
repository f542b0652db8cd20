// Public domain.

// Package atmos models the wavelength-dependent transmission of the
// atmosphere and the instrument for a wide-field photometric survey.
//
// The total transmission is the product of five atmospheric components
// (Rayleigh scattering, aerosol extinction, ozone, water vapor and the
// uniformly mixed gases) and the instrumental throughput.  Every
// component is a deterministic, side-effect-free function of the
// wavelength grid, the relevant calibration parameters and the exposure
// metadata, so results may be memoized through a memo.Cache without
// changing any output.
package atmos

import (
	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/memo"
	"github.com/skysurvey/abscal/param"
)

const stdPressureHPa = 1013.25

// Grid default: 300 to 1100 nm.
const (
	GridLoNm    = 300
	GridHiNm    = 1100
	GridSamples = 401
	gridStepNm  = float64(GridHiNm-GridLoNm) / (GridSamples - 1)
)

// MakeGrid returns the default working wavelength grid in nm.
func MakeGrid() []float64 {
	g := make([]float64, GridSamples)
	for i := range g {
		g[i] = GridLoNm + gridStepNm*float64(i)
	}
	return g
}

// Model evaluates transmission curves on a fixed wavelength grid,
// optionally memoizing component curves through a cache.
type Model struct {
	grid  []float64
	cache *memo.Cache
}

// New returns a model on grid.  cache may be nil to disable memoization;
// outputs are identical either way.
func New(grid []float64, cache *memo.Cache) *Model {
	return &Model{grid: grid, cache: cache}
}

// Grid returns the model's wavelength grid.
func (m *Model) Grid() []float64 { return m.grid }

// curve memoizes fill(dst) under (scope, fnID, args).
func (m *Model) curve(scope, fnID string, args []float64, fill func(dst []float64)) []float64 {
	if m.cache != nil {
		if v, ok := m.cache.GetVec(scope, fnID, args...); ok {
			return v
		}
	}
	dst := make([]float64, len(m.grid))
	fill(dst)
	if m.cache != nil {
		m.cache.PutVec(scope, fnID, args, dst)
	}
	return dst
}

// Transmission evaluates the total atmosphere-plus-instrument
// transmission for the current parameter table and exposure metadata.
// The returned slice is owned by the caller.
func (m *Model) Transmission(tbl *param.Table, meta calib.Exposure) []float64 {
	z := meta.ZenithDeg

	ray := m.curve(memo.ScopeAtmosphere, "rayleigh",
		[]float64{z, meta.PressureHPa},
		func(dst []float64) {
			rayleighTrans(dst, m.grid, m.Airmass(Rayleigh, z), meta.PressureHPa)
		})
	aer := m.curve(memo.ScopeAtmosphere, "aerosol",
		[]float64{z, tbl.Get(param.AOD), tbl.Get(param.Alpha)},
		func(dst []float64) {
			aerosolTrans(dst, m.grid, m.Airmass(Aerosol, z),
				tbl.Get(param.AOD), tbl.Get(param.Alpha))
		})
	oz := m.curve(memo.ScopeAtmosphere, "ozone",
		[]float64{z, tbl.Get(param.Ozone)},
		func(dst []float64) {
			ozoneTrans(dst, m.grid, m.Airmass(OzoneGas, z), tbl.Get(param.Ozone))
		})
	wat := m.curve(memo.ScopeAtmosphere, "water",
		[]float64{z, tbl.Get(param.PWV)},
		func(dst []float64) {
			waterTrans(dst, m.grid, m.Airmass(Water, z), tbl.Get(param.PWV))
		})
	gas := m.curve(memo.ScopeAtmosphere, "gas",
		[]float64{z, meta.PressureHPa, meta.TempC},
		func(dst []float64) {
			gasTrans(dst, m.grid, m.Airmass(MixedGas, z),
				meta.PressureHPa, meta.TempC)
		})
	inst := m.curve(memo.ScopeInstrumental, "instrument",
		[]float64{tbl.Get(param.Norm), tbl.Get(param.Center), tbl.Get(param.Width)},
		func(dst []float64) {
			instrumentTrans(dst, m.grid, tbl.Get(param.Norm),
				tbl.Get(param.Center), tbl.Get(param.Width))
		})

	total := make([]float64, len(m.grid))
	for i := range total {
		total[i] = ray[i] * aer[i] * oz[i] * wat[i] * gas[i] * inst[i]
	}
	return total
}
