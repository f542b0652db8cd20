// Public domain.

// Package calib defines the calibrator-star data model consumed by the
// fitting pipeline, and the gob file format used to move sets between
// the acsim generator and the abscal command.
//
// A Set is immutable once loaded.  The number of stars and their order
// never change across fitting stages; stages only select subsets of
// indices into Stars.
package calib

import (
	"encoding/gob"
	"math"
	"os"

	"github.com/soniakeys/unit"
	"go.trai.ch/zerr"
)

var (
	// ErrEmptySet is returned when a set contains no calibrators.
	ErrEmptySet = zerr.New("calibrator set is empty")

	// ErrGridMismatch is returned when a star's spectrum is not sampled
	// on the set's wavelength grid.
	ErrGridMismatch = zerr.New("spectrum length does not match wavelength grid")

	// ErrBadGeometry is returned when the detector extent is not positive.
	ErrBadGeometry = zerr.New("detector geometry has non-positive extent")

	// ErrBadExposure is returned when exposure metadata is outside the
	// range the transmission model is defined on.
	ErrBadExposure = zerr.New("exposure metadata out of range")
)

// Exposure holds per-exposure metadata shared by every calibrator in a set.
type Exposure struct {
	ZenithDeg   float64 // true zenith angle of the field center, degrees
	TempC       float64 // air temperature, Celsius
	PressureHPa float64 // barometric pressure, hPa
}

// Geometry describes the detector's physical pixel extent.  Field
// correction rescales pixel coordinates into [-1,1] over this range.
type Geometry struct {
	Width, Height float64 // pixels
}

// Calibrator is one reference star.
type Calibrator struct {
	ID       string
	RA       unit.RA
	Dec      unit.Angle
	X, Y     float64 // detector pixel coordinates
	Mag      float64 // catalog magnitude
	Flux     float64 // catalog instrumental flux
	Spectrum []float64
}

// Set is an ordered collection of calibrators with their shared
// wavelength grid, exposure metadata and detector geometry.
type Set struct {
	Grid     []float64 // wavelength grid, nm
	Exposure Exposure
	Geometry Geometry
	Stars    []Calibrator
}

// Validate checks set consistency.  It is called once before any fitting
// work begins; failures here are caller configuration bugs.
func (s *Set) Validate() error {
	if len(s.Stars) == 0 {
		return ErrEmptySet
	}
	if s.Geometry.Width <= 0 || s.Geometry.Height <= 0 {
		return zerr.With(zerr.With(zerr.Wrap(ErrBadGeometry, ""),
			"width", s.Geometry.Width), "height", s.Geometry.Height)
	}
	// the constituent airmass parametrization is defined below the
	// horizon limit only
	if z := s.Exposure.ZenithDeg; math.IsNaN(z) || z < 0 || z >= 90 {
		return zerr.With(zerr.Wrap(ErrBadExposure, ""), "zenithDeg", z)
	}
	for i, c := range s.Stars {
		if len(c.Spectrum) != len(s.Grid) {
			return zerr.With(zerr.With(zerr.With(zerr.With(zerr.Wrap(ErrGridMismatch, ""),
				"star", c.ID), "index", i),
				"spectrum", len(c.Spectrum)), "grid", len(s.Grid))
		}
	}
	return nil
}

// ReadFile reads a calibrator set written by WriteFile.
func ReadFile(fn string) (*Set, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, zerr.Wrap(err, "open calibrator set")
	}
	defer f.Close()
	var s Set
	if err = gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "decode calibrator set"), "file", fn)
	}
	if err = s.Validate(); err != nil {
		return nil, zerr.With(err, "file", fn)
	}
	return &s, nil
}

// WriteFile writes the set for later consumption by ReadFile.
func (s *Set) WriteFile(fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return zerr.Wrap(err, "create calibrator set")
	}
	if err = gob.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		return zerr.With(zerr.Wrap(err, "encode calibrator set"), "file", fn)
	}
	return f.Close()
}
