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

// Package wcboutflow identifies the outflow regions of warm conveyor belt
// airstreams on isentropic surfaces and computes circulation-based
// diagnostics on the identified volumes.
package wcboutflow

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Version gives the version number.
const Version = "0.1.0"

// ScalarField is a named physical quantity sampled on a structured grid.
// Spatial fields are laid out as (latitude, longitude); circuit-integral
// series are laid out as (time). Missing values are NaN.
type ScalarField struct {
	Name  string
	Units string

	// Data holds the field values. For spatial fields the shape is
	// [len(Lat), len(Lon)]; for time series it is [len(Time)].
	Data *sparse.DenseArray

	// Lon and Lat are the grid coordinates in degrees. They must be
	// monotonic.
	Lon, Lat []float64

	// Time is the time coordinate, if any. It must be ordered and
	// contain no duplicates.
	Time []time.Time
}

// Copy returns a deep copy of f.
func (f *ScalarField) Copy() *ScalarField {
	o := &ScalarField{
		Name:  f.Name,
		Units: f.Units,
		Data:  f.Data.Copy(),
		Lon:   append([]float64{}, f.Lon...),
		Lat:   append([]float64{}, f.Lat...),
	}
	if f.Time != nil {
		o.Time = append([]time.Time{}, f.Time...)
	}
	return o
}

// Subset returns a new field restricted to the grid points whose
// coordinates lie strictly within b (longitude in b.Min.X–b.Max.X,
// latitude in b.Min.Y–b.Max.Y).
func (f *ScalarField) Subset(b *geom.Bounds) (*ScalarField, error) {
	if len(f.Data.Shape) != 2 {
		return nil, fmt.Errorf("wcboutflow: subset of %d-d field %s", len(f.Data.Shape), f.Name)
	}
	i0, i1 := coordRange(f.Lat, b.Min.Y, b.Max.Y)
	j0, j1 := coordRange(f.Lon, b.Min.X, b.Max.X)
	if i0 == i1 || j0 == j1 {
		return nil, fmt.Errorf("wcboutflow: empty subset of field %s", f.Name)
	}
	data := sparse.ZerosDense(i1-i0, j1-j0)
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			data.Set(f.Data.Get(i, j), i-i0, j-j0)
		}
	}
	o := &ScalarField{
		Name:  f.Name,
		Units: f.Units,
		Data:  data,
		Lon:   append([]float64{}, f.Lon[j0:j1]...),
		Lat:   append([]float64{}, f.Lat[i0:i1]...),
	}
	return o, nil
}

// coordRange returns the half-open index range [i0,i1) of coordinate
// values x satisfying min < x < max.
func coordRange(x []float64, min, max float64) (i0, i1 int) {
	i0 = len(x)
	for i, v := range x {
		if v > min && v < max {
			if i < i0 {
				i0 = i
			}
			i1 = i + 1
		}
	}
	if i0 > i1 {
		return 0, 0
	}
	return i0, i1
}

// MedianFilter returns a smoothed copy of f where each value is replaced
// by the median of the window centered on it. Even sizes are rounded up
// to the next odd number so the window stays centered; the window is
// clamped at the grid edges. The receiver is not modified.
func (f *ScalarField) MedianFilter(size int) *ScalarField {
	o := f.Copy()
	if size <= 1 {
		return o
	}
	ny, nx := f.Data.Shape[0], f.Data.Shape[1]
	half := size / 2
	window := make([]float64, 0, size*size)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			window = window[:0]
			for ii := i - half; ii <= i+half; ii++ {
				for jj := j - half; jj <= j+half; jj++ {
					iw, jw := clamp(ii, ny), clamp(jj, nx)
					window = append(window, f.Data.Get(iw, jw))
				}
			}
			sort.Float64s(window)
			o.Data.Set(window[len(window)/2], i, j)
		}
	}
	return o
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// SelectTimes returns a new field restricted to the timestamps that are
// also present in keep, preserving order.
func (f *ScalarField) SelectTimes(keep []time.Time) *ScalarField {
	in := make(map[time.Time]bool, len(keep))
	for _, t := range keep {
		in[t] = true
	}
	var idx []int
	var times []time.Time
	for i, t := range f.Time {
		if in[t] {
			idx = append(idx, i)
			times = append(times, t)
		}
	}
	data := sparse.ZerosDense(len(idx))
	for i, j := range idx {
		data.Elements[i] = f.Data.Elements[j]
	}
	return &ScalarField{
		Name:  f.Name,
		Units: f.Units,
		Data:  data,
		Time:  times,
	}
}

// divideFields performs elementwise division of two fields that are
// already on the same grid and time coordinate.
func divideFields(name string, a, b *ScalarField) *ScalarField {
	o := a.Copy()
	o.Name = name
	o.Units = quotientUnits(a.Units, b.Units)
	for i, v := range b.Data.Elements {
		o.Data.Elements[i] = a.Data.Elements[i] / v
	}
	return o
}

func quotientUnits(a, b string) string {
	if a == "" && b == "" {
		return ""
	}
	return fmt.Sprintf("(%s)/(%s)", a, b)
}

// firstValidIndex returns the index of the first non-NaN element, or -1
// if every element is NaN.
func firstValidIndex(d *sparse.DenseArray) int {
	for i, v := range d.Elements {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}
