// Public domain.

package acsolver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/skysurvey/abscal/atmos"
	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/param"
)

// synthSet builds a deterministic calibrator set whose catalog
// magnitudes are synthesized through the transmission model with truth
// injected, so fits against it have a known answer and zero-noise
// residuals at the optimum.  If outlierMag is nonzero, star 0's catalog
// magnitude is offset by that much.
func synthSet(n int, truth *param.Table, outlierMag float64) *calib.Set {
	grid := atmos.MakeGrid()
	set := &calib.Set{
		Grid: grid,
		Exposure: calib.Exposure{
			ZenithDeg:   30,
			TempC:       15,
			PressureHPa: 1013.25,
		},
		Geometry: calib.Geometry{Width: 2048, Height: 2048},
	}
	trans := atmos.New(grid, nil).Transmission(truth, set.Exposure)

	prod := make([]float64, len(grid))
	for i := 0; i < n; i++ {
		spec := synthSpectrum(grid, 4000+630*float64(i%9))
		for j := range grid {
			prod[j] = trans[j] * spec[j]
		}
		flux := integrate.Trapezoidal(grid, prod)
		mag := -2.5 * math.Log10(flux)
		if i == 0 {
			mag += outlierMag
		}
		set.Stars = append(set.Stars, calib.Calibrator{
			ID:       fmt.Sprintf("T%03d", i),
			X:        float64((i*521)%2048) + 0.5,
			Y:        float64((i*937)%2048) + 0.5,
			Mag:      mag,
			Flux:     flux,
			Spectrum: spec,
		})
	}
	return set
}

// synthSpectrum is a Planck curve on grid, normalized to unit mean.
func synthSpectrum(grid []float64, tempK float64) []float64 {
	const hckb = 1.43877688e7 // hc/kB in nm K
	s := make([]float64, len(grid))
	var sum float64
	for i, nm := range grid {
		s[i] = 1 / (math.Pow(nm/1000, 5) * (math.Exp(hckb/(nm*tempK)) - 1))
		sum += s[i]
	}
	for i := range s {
		s[i] *= float64(len(s)) / sum
	}
	return s
}

// truthNorm returns a default table with the given normalization.
func truthNorm(n float64) *param.Table {
	t := param.NewTable()
	t.Set(param.Norm, n)
	return t
}

func allIndices(n int) []int {
	ix := make([]int, n)
	for i := range ix {
		ix[i] = i
	}
	return ix
}
