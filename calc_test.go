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
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

var seriesStart = time.Date(2016, 9, 22, 12, 0, 0, 0, time.UTC)

// series builds a time series field with timestamps at the given hours
// after seriesStart.
func series(name string, hours []int, values []float64) *ScalarField {
	times := make([]time.Time, len(hours))
	for i, h := range hours {
		times[i] = seriesStart.Add(time.Duration(h) * time.Hour)
	}
	data := sparse.ZerosDense(len(values))
	copy(data.Elements, values)
	return &ScalarField{Name: name, Units: "1", Data: data, Time: times}
}

func sameHours(t *testing.T, f *ScalarField, hours []int) {
	t.Helper()
	if len(f.Time) != len(hours) {
		t.Fatalf("%s: %d timestamps, want %d", f.Name, len(f.Time), len(hours))
	}
	for i, h := range hours {
		want := seriesStart.Add(time.Duration(h) * time.Hour)
		if !f.Time[i].Equal(want) {
			t.Errorf("%s: time[%d] = %v, want %v", f.Name, i, f.Time[i], want)
		}
	}
}

func TestAlignTimes(t *testing.T) {
	a := series("a", []int{0, 1, 2, 3}, []float64{1, 2, 3, 4})
	b := series("b", []int{1, 2, 4}, []float64{10, 20, 40})

	out, ref := AlignTimes(a, b)

	sameHours(t, out, []int{1, 2})
	sameHours(t, ref, []int{1, 2})

	// The first output carries a's identity and data on the common
	// time axis, the second is b restricted.
	if out.Name != "a" {
		t.Errorf("first output named %q, want %q", out.Name, "a")
	}
	for i, want := range []float64{2, 3} {
		if got := out.Data.Elements[i]; got != want {
			t.Errorf("out[%d] = %g, want %g", i, got, want)
		}
	}
	for i, want := range []float64{10, 20} {
		if got := ref.Data.Elements[i]; got != want {
			t.Errorf("ref[%d] = %g, want %g", i, got, want)
		}
	}

	// The inputs are untouched.
	if len(a.Time) != 4 || len(b.Time) != 3 {
		t.Error("AlignTimes modified its inputs")
	}
}

func TestFractionalChange(t *testing.T) {
	f := series("mass", []int{0, 1, 2}, []float64{2, 3, 4})

	// Explicit reference index: zero at that index.
	got := FractionalChange(f, 1)
	want := []float64{(2. - 3) / 3, 0, (4. - 3) / 3}
	for i := range want {
		if got.Data.Elements[i] != want[i] {
			t.Errorf("element %d = %g, want %g", i, got.Data.Elements[i], want[i])
		}
	}

	// Default reference: the first valid value, skipping leading NaNs.
	f = series("mass", []int{0, 1, 2}, []float64{math.NaN(), 2, 3})
	got = FractionalChange(f, -1)
	if !math.IsNaN(got.Data.Elements[0]) {
		t.Error("NaN input should stay NaN")
	}
	if got.Data.Elements[1] != 0 || got.Data.Elements[2] != 0.5 {
		t.Errorf("got [%g %g], want [0 0.5]", got.Data.Elements[1], got.Data.Elements[2])
	}

	// All-NaN series: the literal first value is used and the result
	// is NaN throughout; this propagation is deliberate.
	f = series("mass", []int{0, 1}, []float64{math.NaN(), math.NaN()})
	got = FractionalChange(f, -1)
	for i, v := range got.Data.Elements {
		if !math.IsNaN(v) {
			t.Errorf("element %d = %g, want NaN", i, v)
		}
	}
}

func TestDensity(t *testing.T) {
	area := series("area", []int{0, 6, 12}, []float64{3, 5, 7})
	mass := series("mass", []int{0, 6, 12}, []float64{6, 10, 14})
	fs := FieldSet{mass, area}

	density, err := fs.Quantity("density")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range density.Data.Elements {
		if v != 2 {
			t.Errorf("density[%d] = %g, want 2", i, v)
		}
	}
}

func TestVorticity(t *testing.T) {
	area := series("area", []int{0, 6, 12, 18}, []float64{1, 2, 4, 8})
	circ := series("relative circulation", []int{6, 12, 24}, []float64{10, 20, 40})
	fs := FieldSet{area, circ}

	vort, err := fs.Quantity("relative vorticity")
	if err != nil {
		t.Fatal(err)
	}
	sameHours(t, vort, []int{6, 12})
	if vort.Name != "relative vorticity" {
		t.Errorf("name = %q, want %q", vort.Name, "relative vorticity")
	}
	for i, want := range []float64{10. / 2, 20. / 4} {
		if got := vort.Data.Elements[i]; got != want {
			t.Errorf("vorticity[%d] = %g, want %g", i, got, want)
		}
	}
}

func TestPotentialVorticity(t *testing.T) {
	mass := series("mass", []int{0, 6, 12}, []float64{5, 10, 20})
	circ := series("circulation", []int{6, 12}, []float64{30, 40})
	fs := FieldSet{mass, circ}

	pv, err := fs.Quantity("PV")
	if err != nil {
		t.Fatal(err)
	}
	sameHours(t, pv, []int{6, 12})
	for i, want := range []float64{30. / 10, 40. / 20} {
		if got := pv.Data.Elements[i]; got != want {
			t.Errorf("PV[%d] = %g, want %g", i, got, want)
		}
	}
}

func TestMassAreaRatio(t *testing.T) {
	mass := series("mass", []int{0, 6, 12}, []float64{1, 2, 3})
	area := series("area", []int{0, 6, 12}, []float64{1, 3, 5})
	fs := FieldSet{mass, area}

	ratio, err := fs.Quantity("mass area anomaly ratio")
	if err != nil {
		t.Fatal(err)
	}
	// Both fractional changes are zero at the first time, so the first
	// ratio is 0/0; the NaN is deliberately not guarded.
	if !math.IsNaN(ratio.Data.Elements[0]) {
		t.Errorf("ratio[0] = %g, want NaN", ratio.Data.Elements[0])
	}
	for i, want := range []float64{0.5, 0.5} {
		if got := ratio.Data.Elements[i+1]; got != want {
			t.Errorf("ratio[%d] = %g, want %g", i+1, got, want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name string
		want QuantityRequest
	}{
		{"density", QuantityRequest{Kind: DensityKind, Name: "density"}},
		{"mass area anomaly ratio", QuantityRequest{Kind: MassAreaRatioKind, Name: "mass area anomaly ratio"}},
		{"vorticity", QuantityRequest{Kind: VorticityKind, Circulation: "", Name: "vorticity"}},
		{"relative vorticity", QuantityRequest{Kind: VorticityKind, Circulation: "relative ", Name: "relative vorticity"}},
		{"PV", QuantityRequest{Kind: PotentialVorticityKind, Circulation: "", Name: "PV"}},
		{"planetary PV", QuantityRequest{Kind: PotentialVorticityKind, Circulation: "planetary ", Name: "planetary PV"}},
		{"mass", QuantityRequest{Kind: Direct, Name: "mass"}},
	}
	for _, test := range tests {
		if got := ParseQuantity(test.name); got != test.want {
			t.Errorf("ParseQuantity(%q) = %+v, want %+v", test.name, got, test.want)
		}
	}
}

func TestQuantityUnknown(t *testing.T) {
	fs := FieldSet{series("mass", []int{0}, []float64{1})}
	_, err := fs.Quantity("no such thing")
	if !errors.Is(err, ErrUnknownQuantity) {
		t.Errorf("got %v, want ErrUnknownQuantity", err)
	}
}

func TestLeadTimes(t *testing.T) {
	c := &CaseStudy{
		Name:        "test",
		StartTime:   seriesStart,
		OutflowTime: seriesStart.Add(24 * time.Hour),
	}
	f := series("mass", []int{6, 12, 18}, []float64{1, 2, 3})

	times, outflowHour := LeadTimes(f, c)
	for i, want := range []float64{6, 12, 18} {
		if times[i] != want {
			t.Errorf("times[%d] = %g, want %g", i, times[i], want)
		}
	}
	if outflowHour != 24 {
		t.Errorf("outflow lead time = %g h, want 24", outflowHour)
	}
}
