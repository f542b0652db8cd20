// Public domain.

package atmos

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// rayleighTau computes Rayleigh scattering optical depth at wavelength
// um (micrometers) for surface pressure pHPa, from the SMARTS
// parametrization of the molecular scattering cross section.
func rayleighTau(um, pHPa float64) float64 {
	pr := pHPa / stdPressureHPa
	return pr / (117.3405*math.Pow(um, 4) - 1.5107*um*um +
		0.017535 - 0.00087743/(um*um))
}

// rayleighTrans fills dst with Rayleigh transmission over grid (nm) for
// airmass m and pressure pHPa.
func rayleighTrans(dst, grid []float64, m, pHPa float64) {
	for i, nm := range grid {
		dst[i] = math.Exp(-m * rayleighTau(nm*1e-3, pHPa))
	}
}

// aerosolTrans fills dst with aerosol transmission from the Angstrom law
// tau(lambda) = aod500 * (lambda/500nm)^-alpha.
func aerosolTrans(dst, grid []float64, m, aod500, alpha float64) {
	for i, nm := range grid {
		dst[i] = math.Exp(-m * aod500 * math.Pow(nm/500, -alpha))
	}
}

// Band-model absorption coefficient tables, sampled coarsely on
// wavelength (nm) and interpolated onto the working grid.  Tables span
// 250..1250 nm so any working grid inside that range interpolates
// without extrapolation.

// ozone absorption coefficient, cm^-1 per atm-cm: Hartley/Huggins UV
// edge plus the broad Chappuis band around 600 nm.
var ozoneK = bandTable{
	x: []float64{250, 290, 300, 305, 310, 315, 320, 325, 330, 335, 340,
		345, 350, 360, 380, 400, 450, 500, 550, 570, 590, 610, 630, 650,
		670, 690, 710, 730, 750, 800, 850, 900, 1000, 1250},
	y: []float64{120, 21, 10, 4.8, 2.7, 1.35, 0.8, 0.38, 0.16, 0.075,
		0.04, 0.019, 0.01, 0.002, 0, 0, 0.003, 0.034, 0.095, 0.12, 0.125,
		0.115, 0.095, 0.075, 0.055, 0.035, 0.023, 0.015, 0.008, 0.002,
		0.001, 0, 0, 0},
}

// water vapor absorption coefficient for the band model, per cm of
// precipitable water.  Dominated by the rho-sigma-tau (720 nm), mu
// (820 nm) and nu (940 nm) bands.
var waterK = bandTable{
	x: []float64{250, 650, 680, 690, 700, 710, 715, 720, 725, 730, 740,
		750, 760, 780, 790, 800, 810, 815, 820, 825, 830, 840, 850, 870,
		880, 890, 900, 910, 920, 930, 940, 950, 960, 970, 980, 990, 1000,
		1020, 1050, 1100, 1150, 1250},
	y: []float64{0, 0, 0.016, 0.024, 0.0125, 0.36, 0.75, 1.0, 0.87, 0.38,
		0.061, 0.001, 1e-05, 6e-04, 0.0175, 0.036, 0.33, 0.88, 1.53, 1.1,
		0.66, 0.155, 0.003, 2.6e-05, 6.3e-04, 0.0146, 0.155, 1.88, 3.85,
		12.0, 26.0, 18.0, 7.5, 2.2, 0.45, 0.06, 0.013, 0.002, 0.01, 0.4,
		0.8, 0.2},
}

// uniformly mixed gas absorption coefficient: O2 B band (687 nm), the
// saturated O2 A band (760 nm), and weak O2/CO2 structure near 1 um.
var gasK = bandTable{
	x: []float64{250, 620, 625, 630, 640, 680, 685, 687, 690, 695, 755,
		758, 760, 763, 767, 770, 1060, 1080, 1100, 1130, 1250},
	y: []float64{0, 0, 0.0025, 0.001, 0, 0, 0.12, 0.15, 0.09, 0, 0, 1.2,
		3.0, 2.4, 0.4, 0, 0, 0.002, 0.004, 0.001, 0},
}

// bandTable is a coarse absorption-coefficient table interpolated with a
// fitted piecewise-linear predictor.  Tables are fitted at init so reads
// are safe under the evaluator's worker parallelism.
type bandTable struct {
	x, y []float64
	pl   interp.PiecewiseLinear
}

func init() {
	for _, b := range []*bandTable{&ozoneK, &waterK, &gasK} {
		if err := b.pl.Fit(b.x, b.y); err != nil {
			panic("atmos: bad band table: " + err.Error())
		}
	}
}

func (b *bandTable) at(nm float64) float64 {
	// clamp to the tabulated range; curves are flat zero at both ends
	if nm < b.x[0] {
		nm = b.x[0]
	} else if nm > b.x[len(b.x)-1] {
		nm = b.x[len(b.x)-1]
	}
	return b.pl.Predict(nm)
}

// ozoneTrans fills dst with ozone transmission by the Beer law.
// duColumn is the ozone column in Dobson units; 1000 DU = 1 atm-cm.
func ozoneTrans(dst, grid []float64, m, duColumn float64) {
	l := duColumn / 1000
	for i, nm := range grid {
		dst[i] = math.Exp(-ozoneK.at(nm) * l * m)
	}
}

// waterTrans fills dst with water vapor transmission from the band model
//
//	T = exp(-0.2385 k w m / (1 + 20.07 k w m)^0.45)
//
// with w the precipitable water column in cm.
func waterTrans(dst, grid []float64, m, pwvCm float64) {
	for i, nm := range grid {
		kwm := waterK.at(nm) * pwvCm * m
		dst[i] = math.Exp(-0.2385 * kwm / math.Pow(1+20.07*kwm, 0.45))
	}
}

// gasTrans fills dst with the uniformly-mixed-gas transmission
//
//	T = exp(-1.41 k m' / (1 + 118.3 k m')^0.45)
//
// where m' is the airmass scaled to the exposure's air density.
func gasTrans(dst, grid []float64, m, pHPa, tempC float64) {
	meff := m * (pHPa / stdPressureHPa) * (288.15 / (273.15 + tempC))
	for i, nm := range grid {
		km := gasK.at(nm) * meff
		dst[i] = math.Exp(-1.41 * km / math.Pow(1+118.3*km, 0.45))
	}
}
