// Public domain.

package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	xrand "golang.org/x/exp/rand"

	"github.com/soniakeys/unit"

	"github.com/skysurvey/abscal/atmos"
	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/param"
)

const versionString = "acsim version 0.3 Go source."
const copyrightString = "Public domain."

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage:
  acsim [options] -o <calibset>   Generate a synthetic calibrator set.
  acsim -v                        Display version and copyright.

Options:
  -n <stars>       number of calibrators (default 50)
  -seed <s>        random seed (default 1)
  -zenith <deg>    true zenith angle of the exposure (default 30)
  -norm <f>        injected throughput normalization (default 0.8)
  -noise <mag>     catalog magnitude scatter (default 0.01)
  -outlier <mag>   offset one star's catalog magnitude by this much
  -o <file>        output file (required)

Catalog magnitudes are synthesized through the same transmission model
abscal fits, with the injected normalization as ground truth, so a fit
of the written set should recover -norm.
`)
	}
	n := flag.Int("n", 50, "")
	seed := flag.Uint64("seed", 1, "")
	zenith := flag.Float64("zenith", 30, "")
	norm := flag.Float64("norm", 0.8, "")
	noise := flag.Float64("noise", 0.01, "")
	outlier := flag.Float64("outlier", 0, "")
	out := flag.String("o", "", "")
	vers := flag.Bool("v", false, "")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		return
	}
	if *out == "" || *n < 1 {
		flag.Usage()
		os.Exit(1)
	}

	set := Generate(*n, *seed, *zenith, *norm, *noise, *outlier)
	if err := set.WriteFile(*out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%d calibrators written to %s\n", len(set.Stars), *out)
}

// Generate builds a synthetic calibrator set.  Spectra are blackbody
// curves at temperatures between 4000 and 9000 K; catalog fluxes come
// from the transmission model evaluated with truthNorm injected, plus
// Gaussian magnitude scatter.  If outlierMag is nonzero the first star's
// catalog magnitude is offset by that much.
func Generate(n int, seed uint64, zenithDeg, truthNorm, noiseMag, outlierMag float64) *calib.Set {
	rnd := xrand.New(xrand.NewSource(seed))

	grid := atmos.MakeGrid()
	set := &calib.Set{
		Grid: grid,
		Exposure: calib.Exposure{
			ZenithDeg:   zenithDeg,
			TempC:       15,
			PressureHPa: 1013.25,
		},
		Geometry: calib.Geometry{Width: 9600, Height: 6422},
	}

	truth := param.NewTable()
	truth.Set(param.Norm, truthNorm)
	model := atmos.New(grid, nil)
	trans := model.Transmission(truth, set.Exposure)

	prod := make([]float64, len(grid))
	for i := 0; i < n; i++ {
		tempK := 4000 + 5000*rnd.Float64()
		spec := blackbody(grid, tempK)

		// integrate transmission x spectrum by the same trapezoid rule
		// the evaluator uses
		for j := range grid {
			prod[j] = trans[j] * spec[j]
		}
		flux := trapz(grid, prod)

		mag := -2.5*math.Log10(flux) + noiseMag*rnd.NormFloat64()
		if i == 0 && outlierMag != 0 {
			mag += outlierMag
		}
		set.Stars = append(set.Stars, calib.Calibrator{
			ID:       fmt.Sprintf("SIM%04d", i),
			RA:       randRA(rnd),
			Dec:      randDec(rnd),
			X:        rnd.Float64() * set.Geometry.Width,
			Y:        rnd.Float64() * set.Geometry.Height,
			Mag:      mag,
			Flux:     flux,
			Spectrum: spec,
		})
	}
	return set
}

// blackbody returns a Planck spectrum on grid (nm), normalized to unit
// mean so synthetic fluxes stay in a convenient range.
func blackbody(grid []float64, tempK float64) []float64 {
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

func randRA(rnd *xrand.Rand) unit.RA {
	return unit.RAFromDeg(rnd.Float64() * 360)
}

// declinations within a plausible field near the celestial equator
func randDec(rnd *xrand.Rand) unit.Angle {
	return unit.AngleFromDeg(-30 + 60*rnd.Float64())
}

func trapz(x, y []float64) float64 {
	var s float64
	for i := 1; i < len(x); i++ {
		s += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	return s
}
