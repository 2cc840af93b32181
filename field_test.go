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
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

func TestSubset(t *testing.T) {
	f := diskField("disk", 1, 5)

	sub, err := f.Subset(&geom.Bounds{
		Min: geom.Point{X: -3, Y: -2},
		Max: geom.Point{X: 4, Y: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Strict bounds: longitudes -2..3, latitudes -1..2.
	if len(sub.Lon) != 6 || len(sub.Lat) != 4 {
		t.Fatalf("subset grid is %dx%d, want 4x6", len(sub.Lat), len(sub.Lon))
	}
	if sub.Lon[0] != -2 || sub.Lon[5] != 3 || sub.Lat[0] != -1 || sub.Lat[3] != 2 {
		t.Errorf("subset coordinates [%g..%g, %g..%g], want [-2..3, -1..2]",
			sub.Lon[0], sub.Lon[5], sub.Lat[0], sub.Lat[3])
	}
	// Values follow their coordinates.
	for i, lat := range sub.Lat {
		for j, lon := range sub.Lon {
			want := 25 - (lon*lon + lat*lat)
			if got := sub.Data.Get(i, j); got != want {
				t.Fatalf("value at (%g, %g) = %g, want %g", lon, lat, got, want)
			}
		}
	}

	if _, err := f.Subset(&geom.Bounds{
		Min: geom.Point{X: 100, Y: 100},
		Max: geom.Point{X: 101, Y: 101},
	}); err == nil {
		t.Error("expected an error for an empty subset")
	}
}

func TestMedianFilter(t *testing.T) {
	f := &ScalarField{
		Name: "flat",
		Data: sparse.ZerosDense(5, 5),
		Lon:  []float64{0, 1, 2, 3, 4},
		Lat:  []float64{0, 1, 2, 3, 4},
	}
	for i := range f.Data.Elements {
		f.Data.Elements[i] = 1
	}
	// A single spike is removed by a 3x3 median.
	f.Data.Set(100, 2, 2)

	o := f.MedianFilter(3)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if got := o.Data.Get(i, j); got != 1 {
				t.Errorf("filtered value at (%d,%d) = %g, want 1", i, j, got)
			}
		}
	}
	// The input is untouched.
	if f.Data.Get(2, 2) != 100 {
		t.Error("MedianFilter modified its receiver")
	}

	// Size 1 is the identity.
	o = f.MedianFilter(1)
	if o.Data.Get(2, 2) != 100 {
		t.Error("size-1 filter should not change the field")
	}
}
