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

	"github.com/ctessum/geom"
)

// joinEps is the coordinate tolerance [degrees] for connecting level-set
// segments that share an endpoint.
const joinEps = 1.e-9

// LevelSet extracts the contours of f at the given threshold using
// marching squares with linear interpolation of the crossing positions.
// Each returned polyline is one connected component of the level set, in
// (longitude, latitude) degrees.
func LevelSet(f *ScalarField, threshold float64) []geom.LineString {
	s := &segmentSet{}
	ny, nx := f.Data.Shape[0], f.Data.Shape[1]
	for i := 0; i < ny-1; i++ {
		y0, y1 := f.Lat[i], f.Lat[i+1]
		for j := 0; j < nx-1; j++ {
			x0, x1 := f.Lon[j], f.Lon[j+1]
			a := f.Data.Get(i, j)
			b := f.Data.Get(i, j+1)
			c := f.Data.Get(i+1, j)
			d := f.Data.Get(i+1, j+1)
			marchCell(threshold, a, b, c, d, x0, x1, y0, y1, s)
		}
	}
	return s.lines
}

// midlerp linearly interpolates the position between x0 and x1 where the
// values s0 and s1 cross t.
func midlerp(x0, x1, s0, s1, t float64) float64 {
	return x0 + (x1-x0)*(t-s0)/(s1-s0)
}

// marchCell classifies one grid cell against the threshold and emits the
// crossing segment(s). Corner values are a=(x0,y0), b=(x1,y0), c=(x0,y1),
// d=(x1,y1).
func marchCell(t, a, b, c, d, x0, x1, y0, y1 float64, s *segmentSet) {
	var at, bt, ct, dt int
	if a > t {
		at = 1
	}
	if b > t {
		bt = 1
	}
	if c > t {
		ct = 1
	}
	if d > t {
		dt = 1
	}

	switch at<<0 | bt<<1 | ct<<2 | dt<<3 {
	case 0x1:
		s.push(geom.Point{X: x0, Y: midlerp(y0, y1, a, c, t)}, geom.Point{X: midlerp(x0, x1, a, b, t), Y: y0})
	case 0x2:
		s.push(geom.Point{X: midlerp(x0, x1, a, b, t), Y: y0}, geom.Point{X: x1, Y: midlerp(y0, y1, b, d, t)})
	case 0x3:
		s.push(geom.Point{X: x0, Y: midlerp(y0, y1, a, c, t)}, geom.Point{X: x1, Y: midlerp(y0, y1, b, d, t)})
	case 0x4:
		s.push(geom.Point{X: midlerp(x0, x1, c, d, t), Y: y1}, geom.Point{X: x0, Y: midlerp(y0, y1, a, c, t)})
	case 0x5:
		s.push(geom.Point{X: midlerp(x0, x1, c, d, t), Y: y1}, geom.Point{X: midlerp(x0, x1, a, b, t), Y: y0})
	case 0x6:
		s.push(geom.Point{X: midlerp(x0, x1, a, b, t), Y: y0}, geom.Point{X: x1, Y: midlerp(y0, y1, b, d, t)})
		s.push(geom.Point{X: midlerp(x0, x1, c, d, t), Y: y1}, geom.Point{X: x0, Y: midlerp(y0, y1, a, c, t)})
	case 0x7:
		s.push(geom.Point{X: midlerp(x0, x1, c, d, t), Y: y1}, geom.Point{X: x1, Y: midlerp(y0, y1, b, d, t)})
	case 0x8:
		s.push(geom.Point{X: x1, Y: midlerp(y0, y1, b, d, t)}, geom.Point{X: midlerp(x0, x1, c, d, t), Y: y1})
	case 0x9:
		s.push(geom.Point{X: x0, Y: midlerp(y0, y1, a, c, t)}, geom.Point{X: midlerp(x0, x1, a, b, t), Y: y0})
		s.push(geom.Point{X: x1, Y: midlerp(y0, y1, b, d, t)}, geom.Point{X: midlerp(x0, x1, c, d, t), Y: y1})
	case 0xA:
		s.push(geom.Point{X: midlerp(x0, x1, a, b, t), Y: y0}, geom.Point{X: midlerp(x0, x1, c, d, t), Y: y1})
	case 0xB:
		s.push(geom.Point{X: x0, Y: midlerp(y0, y1, a, c, t)}, geom.Point{X: midlerp(x0, x1, c, d, t), Y: y1})
	case 0xC:
		s.push(geom.Point{X: x1, Y: midlerp(y0, y1, b, d, t)}, geom.Point{X: x0, Y: midlerp(y0, y1, a, c, t)})
	case 0xD:
		s.push(geom.Point{X: x1, Y: midlerp(y0, y1, b, d, t)}, geom.Point{X: midlerp(x0, x1, a, b, t), Y: y0})
	case 0xE:
		s.push(geom.Point{X: midlerp(x0, x1, a, b, t), Y: y0}, geom.Point{X: x0, Y: midlerp(y0, y1, a, c, t)})
	}
}

// segmentSet joins the segments emitted by marchCell into polylines by
// matching shared endpoints.
type segmentSet struct {
	lines []geom.LineString
}

func samePoint(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < joinEps && math.Abs(a.Y-b.Y) < joinEps
}

func (s *segmentSet) push(v0, v1 geom.Point) {
	if samePoint(v0, v1) {
		return
	}
	before, after := -1, -1
	for i, line := range s.lines {
		if samePoint(line[len(line)-1], v0) {
			before = i
		}
		if samePoint(line[0], v1) {
			after = i
		}
	}

	switch {
	case before >= 0 && after >= 0:
		if before == after {
			// The segment closes the loop.
			s.lines[before] = append(s.lines[before], v1)
			return
		}
		joined := append(s.lines[before], s.lines[after]...)
		s.lines[before] = joined
		s.lines = append(s.lines[:after], s.lines[after+1:]...)
	case before >= 0:
		s.lines[before] = append(s.lines[before], v1)
	case after >= 0:
		s.lines[after] = append(geom.LineString{v0}, s.lines[after]...)
	default:
		s.lines = append(s.lines, geom.LineString{v0, v1})
	}
}
