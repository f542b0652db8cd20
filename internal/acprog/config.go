// Public domain.

package acprog

import (
	"os"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/skysurvey/abscal/internal/acsolver"
	"github.com/skysurvey/abscal/param"
)

// ErrBadSequence is returned for sequence files that do not parse or
// reference unknown parameter names.
var ErrBadSequence = zerr.New("bad sequence file")

type stageConfig struct {
	Name           string   `yaml:"name"`
	Free           []string `yaml:"free"`
	SigmaClip      bool     `yaml:"sigma_clip"`
	SigmaThreshold float64  `yaml:"sigma_threshold"`
	MaxClipIter    int      `yaml:"max_clip_iter"`
	FieldCorr      bool     `yaml:"field_corr"`
}

type seqConfig struct {
	Stages []stageConfig `yaml:"stages"`
}

// readSequence loads a YAML sequence file into stage specs.  Parameter
// names are resolved against the closed parameter set; an unknown name
// is a configuration error and fatal before any fitting begins.
func readSequence(fn string) ([]acsolver.StageSpec, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, zerr.Wrap(err, "read sequence file")
	}
	var cfg seqConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "parse sequence file"), "file", fn)
	}
	return toSpecs(cfg)
}

func toSpecs(cfg seqConfig) ([]acsolver.StageSpec, error) {
	specs := make([]acsolver.StageSpec, 0, len(cfg.Stages))
	for _, sc := range cfg.Stages {
		st := acsolver.StageSpec{
			Name:           sc.Name,
			SigmaClip:      sc.SigmaClip,
			SigmaThreshold: sc.SigmaThreshold,
			MaxClipIter:    sc.MaxClipIter,
			FieldCorr:      sc.FieldCorr,
		}
		for _, name := range sc.Free {
			id, ok := param.IDByName(name)
			if !ok {
				return nil, zerr.With(zerr.With(
					zerr.Wrap(ErrBadSequence, "unknown parameter name"),
					"stage", sc.Name), "param", name)
			}
			st.Free = append(st.Free, id)
		}
		specs = append(specs, st)
	}
	return specs, nil
}

// defaultStages is the built-in four-stage sequence used when no
// sequence file is given: normalization first, then the instrumental
// curve shape, then the atmospheric scalars, and finally the
// field-correction polynomial.  Field coefficients default to zero, so
// the cost at the start of the field stage equals the previous stage's
// final cost.
func defaultStages() []acsolver.StageSpec {
	return []acsolver.StageSpec{
		{
			Name:           "normalization",
			Free:           []param.ID{param.Norm},
			SigmaClip:      true,
			SigmaThreshold: 3,
			MaxClipIter:    3,
		},
		{
			Name: "instrumental",
			Free: []param.ID{
				param.Norm, param.Center, param.Width,
			},
			SigmaClip:      true,
			SigmaThreshold: 3,
			MaxClipIter:    3,
		},
		{
			Name: "atmosphere",
			Free: []param.ID{
				param.Norm, param.Center, param.Width,
				param.AOD, param.Alpha, param.PWV, param.Ozone,
			},
			SigmaClip:      true,
			SigmaThreshold: 3,
			MaxClipIter:    3,
		},
		{
			Name: "field",
			Free: []param.ID{
				param.FieldX0, param.FieldX1, param.FieldX2,
				param.FieldX3, param.FieldX4,
				param.FieldY1, param.FieldY2, param.FieldY3,
				param.FieldY4, param.FieldXY,
			},
			SigmaClip:      true,
			SigmaThreshold: 3,
			MaxClipIter:    3,
			FieldCorr:      true,
		},
	}
}
