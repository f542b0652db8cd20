// Public domain.

// Package param defines the closed set of calibration parameters and the
// table of their current values, defaults and bounds.
//
// The table is the single mutable piece of optimizer state.  Every ID is
// always present with a well-defined default, so any consumer can evaluate
// the transmission and field-correction models even for parameters no fit
// has touched yet.
package param

// ID identifies one calibration parameter.
type ID int

const (
	// instrumental family
	Norm   ID = iota // throughput normalization
	Center           // wavelength shift of the instrumental curve, nm
	Width            // width scale of the instrumental curve

	// atmospheric family
	AOD   // aerosol optical depth at 500 nm
	Alpha // Angstrom exponent
	PWV   // precipitable water vapor, cm
	Ozone // ozone column, Dobson units

	// field-correction family.  FieldX0 is the only constant term; the
	// Y-axis constant would be degenerate with it and does not exist.
	FieldX0
	FieldX1
	FieldX2
	FieldX3
	FieldX4
	FieldY1
	FieldY2
	FieldY3
	FieldY4
	FieldXY

	NumParams
)

// Valid reports whether id is a defined parameter.
func (id ID) Valid() bool { return id >= 0 && id < NumParams }

// IsField reports whether id belongs to the field-correction family.
func (id ID) IsField() bool { return id >= FieldX0 && id <= FieldXY }

var names = [NumParams]string{
	Norm:    "norm",
	Center:  "center",
	Width:   "width",
	AOD:     "aod",
	Alpha:   "alpha",
	PWV:     "pwv",
	Ozone:   "ozone",
	FieldX0: "field_x0",
	FieldX1: "field_x1",
	FieldX2: "field_x2",
	FieldX3: "field_x3",
	FieldX4: "field_x4",
	FieldY1: "field_y1",
	FieldY2: "field_y2",
	FieldY3: "field_y3",
	FieldY4: "field_y4",
	FieldXY: "field_xy",
}

func (id ID) String() string {
	if !id.Valid() {
		return "param(invalid)"
	}
	return names[id]
}

var byName = func() map[string]ID {
	m := make(map[string]ID, NumParams)
	for id := ID(0); id < NumParams; id++ {
		m[names[id]] = id
	}
	return m
}()

// IDByName resolves a configuration name to an ID.
func IDByName(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// Names returns all parameter names in ID order.
func Names() []string {
	s := make([]string, NumParams)
	copy(s, names[:])
	return s
}

type bound struct{ lo, def, hi float64 }

// Defaults follow the operating conditions of the reference site model:
// AOD 0.084 at 500 nm with Angstrom exponent 0.6, 1 cm of precipitable
// water, a 300 DU ozone column.  Field-correction coefficients default to
// zero so that the field term is an exact no-op until its stage frees it.
var bounds = [NumParams]bound{
	Norm:    {0.1, 1, 10},
	Center:  {-50, 0, 50},
	Width:   {0.5, 1, 2},
	AOD:     {0, 0.084, 2},
	Alpha:   {-1, 0.6, 4},
	PWV:     {0, 1, 10},
	Ozone:   {100, 300, 600},
	FieldX0: {-1, 0, 1},
	FieldX1: {-1, 0, 1},
	FieldX2: {-1, 0, 1},
	FieldX3: {-1, 0, 1},
	FieldX4: {-1, 0, 1},
	FieldY1: {-1, 0, 1},
	FieldY2: {-1, 0, 1},
	FieldY3: {-1, 0, 1},
	FieldY4: {-1, 0, 1},
	FieldXY: {-1, 0, 1},
}

// Default returns the default value for id.
func Default(id ID) float64 { return bounds[id].def }

// Bounds returns the configured lower and upper bounds for id.
func Bounds(id ID) (lo, hi float64) { return bounds[id].lo, bounds[id].hi }

// Table holds the current value of every parameter.
type Table struct {
	v [NumParams]float64
}

// NewTable returns a table with every parameter at its default.
func NewTable() *Table {
	var t Table
	for id := ID(0); id < NumParams; id++ {
		t.v[id] = bounds[id].def
	}
	return &t
}

// Get returns the current value of id.
func (t *Table) Get(id ID) float64 { return t.v[id] }

// Set stores v as the current value of id.
func (t *Table) Set(id ID, v float64) { t.v[id] = v }

// Reset restores id to its default value.
func (t *Table) Reset(id ID) { t.v[id] = bounds[id].def }

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := *t
	return &c
}
