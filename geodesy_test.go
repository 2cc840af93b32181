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
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func TestDistance(t *testing.T) {
	const testTolerance = 1.e-10

	points := []geom.Point{
		{X: 0, Y: 0},
		{X: -40, Y: 55},
		{X: 350, Y: -30},
		{X: 120.5, Y: 89},
	}
	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %g, want 0", p, p, d)
		}
	}
	for _, p1 := range points {
		for _, p2 := range points {
			d12 := Distance(p1, p2)
			d21 := Distance(p2, p1)
			if math.Abs(d12-d21) > testTolerance {
				t.Errorf("Distance not symmetric: %g != %g", d12, d21)
			}
		}
	}

	// One degree of latitude along a meridian.
	want := 2 * math.Pi * earthRadius / 360
	if d := Distance(geom.Point{X: 0, Y: 0}, geom.Point{X: 0, Y: 1}); math.Abs(d-want) > 1.e-9 {
		t.Errorf("one degree of latitude = %g km, want %g", d, want)
	}
}

func TestIsClosed(t *testing.T) {
	// A unit square with the first point repeated at the end.
	square := geom.LineString{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0},
	}
	if !IsClosed(square, 1.e-3) {
		t.Error("coincident endpoints should be closed at any positive threshold")
	}

	// An open polyline with endpoints about 1000 km apart (9 degrees
	// of latitude).
	open := geom.LineString{{X: 0, Y: 0}, {X: 0, Y: 4.5}, {X: 0, Y: 9}}
	if IsClosed(open, 100) {
		t.Error("endpoints 1000 km apart should not be closed at 100 km")
	}
}

func TestContourLength(t *testing.T) {
	const testTolerance = 1.e-9

	// A 1°×1° square at the equator: the meridional sides are exactly
	// one degree of latitude; the zonal sides slightly less than one
	// degree of arc at latitude 1.
	square := geom.LineString{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
	got := ContourLength(square)
	want := Distance(square[0], square[1]) + Distance(square[1], square[2]) +
		Distance(square[2], square[3]) + Distance(square[3], square[0])
	if math.Abs(got-want) > testTolerance {
		t.Errorf("ContourLength = %g, want %g", got, want)
	}
	if got <= 3*Distance(square[0], square[1]) {
		t.Error("closed-loop length must include the wraparound segment")
	}
}
