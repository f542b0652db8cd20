// Public domain.

package atmos

// Instrumental throughput: detector quantum efficiency folded with the
// telescope's mirror and corrector reflectance, tabulated at the nominal
// operating temperature.  The fit perturbs this baseline with three
// scalars: an overall normalization, a wavelength shift of the curve,
// and a width scale about the response pivot.

// qePivotNm is the wavelength the width scale stretches about.
const qePivotNm = 550

var qeBase = bandTable{
	x: []float64{250, 300, 320, 350, 380, 400, 430, 450, 480, 500, 520,
		550, 580, 600, 630, 650, 680, 700, 730, 750, 780, 800, 830, 850,
		880, 900, 930, 950, 980, 1000, 1030, 1050, 1080, 1100, 1150, 1250},
	y: []float64{0, 0.03, 0.08, 0.33, 0.52, 0.61, 0.69, 0.73, 0.76, 0.77,
		0.775, 0.76, 0.74, 0.72, 0.69, 0.66, 0.62, 0.59, 0.54, 0.50, 0.44,
		0.40, 0.33, 0.29, 0.23, 0.19, 0.14, 0.11, 0.075, 0.055, 0.035,
		0.025, 0.015, 0.01, 0.003, 0},
}

func init() {
	if err := qeBase.pl.Fit(qeBase.x, qeBase.y); err != nil {
		panic("atmos: bad QE table: " + err.Error())
	}
}

// instrumentTrans fills dst with the instrumental throughput for the
// given normalization, center shift (nm) and width scale.  The baseline
// is sampled at pivot + (lambda - center - pivot)/width so center slides
// the curve and width stretches it about the pivot.
func instrumentTrans(dst, grid []float64, norm, center, width float64) {
	for i, nm := range grid {
		s := qePivotNm + (nm-center-qePivotNm)/width
		dst[i] = norm * qeBase.at(s)
	}
}
