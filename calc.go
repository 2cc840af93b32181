/*
Copyright © 2024 the wcboutflow authors.
This file is part of wcboutflow.

wcboutflow is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

wcboutflow is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with wcboutflow.  If not, see <http://www.gnu.org/licenses/>.
*/

package wcboutflow

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownQuantity is returned when a requested diagnostic name
// matches no derivation rule and no stored field.
var ErrUnknownQuantity = errors.New("wcboutflow: unknown diagnostic quantity")

// FieldSet is a collection of named circuit-integral series for one
// outflow volume (mass, area and the circulation variants).
type FieldSet []*ScalarField

// Extract returns the field with exactly the given name.
func (fs FieldSet) Extract(name string) (*ScalarField, error) {
	for _, f := range fs {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: no field named %q", ErrUnknownQuantity, name)
}

// QuantityKind tags the derivation rule a quantity request resolves to.
type QuantityKind int

const (
	// Direct returns a stored field unchanged.
	Direct QuantityKind = iota
	// DensityKind is mass per unit area.
	DensityKind
	// VorticityKind is circulation per unit area.
	VorticityKind
	// PotentialVorticityKind is circulation per unit mass.
	PotentialVorticityKind
	// MassAreaRatioKind is the ratio of the fractional changes of mass
	// and area.
	MassAreaRatioKind
)

// QuantityRequest is a parsed diagnostic request. Circulation holds the
// prefix naming which circulation variant to use for the vorticity and
// potential-vorticity families ("" for the plain circulation).
type QuantityRequest struct {
	Kind        QuantityKind
	Circulation string
	Name        string
}

// ParseQuantity resolves a diagnostic name to its derivation rule:
// "density" and "mass area anomaly ratio" are fixed names, a trailing
// "vorticity" selects circulation/area with the rest of the name naming
// the circulation variant, a trailing "PV" selects circulation/mass, and
// anything else is a direct field lookup.
func ParseQuantity(name string) QuantityRequest {
	switch {
	case name == "density":
		return QuantityRequest{Kind: DensityKind, Name: name}
	case name == "mass area anomaly ratio":
		return QuantityRequest{Kind: MassAreaRatioKind, Name: name}
	case strings.HasSuffix(name, "vorticity"):
		return QuantityRequest{
			Kind:        VorticityKind,
			Circulation: strings.TrimSuffix(name, "vorticity"),
			Name:        name,
		}
	case strings.HasSuffix(name, "PV"):
		return QuantityRequest{
			Kind:        PotentialVorticityKind,
			Circulation: strings.TrimSuffix(name, "PV"),
			Name:        name,
		}
	default:
		return QuantityRequest{Kind: Direct, Name: name}
	}
}

// Quantity computes the requested diagnostic from the stored series.
func (fs FieldSet) Quantity(name string) (*ScalarField, error) {
	req := ParseQuantity(name)
	switch req.Kind {
	case DensityKind:
		return fs.Density()
	case VorticityKind:
		return fs.Vorticity(req.Circulation)
	case PotentialVorticityKind:
		return fs.PotentialVorticity(req.Circulation)
	case MassAreaRatioKind:
		return fs.MassAreaRatio()
	default:
		return fs.Extract(req.Name)
	}
}

// Density is the mass of the outflow volume divided by its area. The
// two series are assumed to already share a time coordinate.
func (fs FieldSet) Density() (*ScalarField, error) {
	mass, err := fs.Extract("mass")
	if err != nil {
		return nil, err
	}
	area, err := fs.Extract("area")
	if err != nil {
		return nil, err
	}
	return divideFields("density", mass, area), nil
}

// Vorticity is the named circulation divided by the area enclosed by
// the circuit, after restricting both series to their common times.
func (fs FieldSet) Vorticity(circulationName string) (*ScalarField, error) {
	area, err := fs.Extract("area")
	if err != nil {
		return nil, err
	}
	circulation, err := fs.Extract(circulationName + "circulation")
	if err != nil {
		return nil, err
	}
	area, circulation = AlignTimes(area, circulation)
	return divideFields(circulationName+"vorticity", circulation, area), nil
}

// PotentialVorticity is the named circulation divided by the mass of
// the outflow volume, after restricting both series to their common
// times.
func (fs FieldSet) PotentialVorticity(circulationName string) (*ScalarField, error) {
	mass, err := fs.Extract("mass")
	if err != nil {
		return nil, err
	}
	circulation, err := fs.Extract(circulationName + "circulation")
	if err != nil {
		return nil, err
	}
	mass, circulation = AlignTimes(mass, circulation)
	return divideFields(circulationName+"PV", circulation, mass), nil
}

// MassAreaRatio is the fractional change of mass divided by the
// fractional change of area, each taken relative to its own first valid
// value on its own time coordinate.
func (fs FieldSet) MassAreaRatio() (*ScalarField, error) {
	mass, err := fs.Extract("mass")
	if err != nil {
		return nil, err
	}
	area, err := fs.Extract("area")
	if err != nil {
		return nil, err
	}
	alpha := FractionalChange(mass, -1)
	epsilon := FractionalChange(area, -1)
	return divideFields("mass area anomaly ratio", alpha, epsilon), nil
}

// AlignTimes restricts two series to their common time coordinate.
// a is restricted to ref's timestamps, then ref to the restricted a's
// timestamps. The first return value carries ref's restricted time axis
// but a's name, units and restricted data; the second is ref restricted.
// This asymmetric construction mirrors the reference implementation,
// which reuses the restricted reference series as a template; callers
// depend on the exact renaming behavior, so do not symmetrize it.
func AlignTimes(a, ref *ScalarField) (*ScalarField, *ScalarField) {
	aSub := a.SelectTimes(ref.Time)
	refSub := ref.SelectTimes(aSub.Time)

	out := refSub.Copy()
	out.Name = aSub.Name
	out.Units = aSub.Units
	out.Data = aSub.Data.Copy()
	return out, refSub
}

// FractionalChange returns (f − ref) / ref where ref is the value at
// refIdx, or, when refIdx is negative, the first non-NaN value of the
// series (falling back to the literal first value when every value is
// NaN, in which case the result is NaN throughout). Division by a zero
// or NaN reference is deliberately not guarded; the resulting
// infinities and NaNs surface in the diagnostic output.
func FractionalChange(f *ScalarField, refIdx int) *ScalarField {
	if refIdx < 0 {
		refIdx = firstValidIndex(f.Data)
		if refIdx < 0 {
			refIdx = 0
		}
	}
	ref := f.Data.Elements[refIdx]

	o := f.Copy()
	o.Name = f.Name + " fractional change"
	o.Units = ""
	for i, v := range f.Data.Elements {
		o.Data.Elements[i] = (v - ref) / ref
	}
	return o
}

// LeadTimes converts a series' time coordinate to hours since the case
// start, and returns the case's outflow lead time in whole hours as the
// reference offset on that axis.
func LeadTimes(f *ScalarField, c *CaseStudy) (times []float64, outflowHour float64) {
	times = make([]float64, len(f.Time))
	for i, t := range f.Time {
		times[i] = t.Sub(c.StartTime).Hours()
	}
	outflowHour = math.Floor(c.OutflowLeadTime().Seconds() / 3600)
	return times, outflowHour
}
