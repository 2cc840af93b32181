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

// earthRadius is the mean Earth radius [km].
const earthRadius = 6371.

// DefaultClosedThresholdKM is the maximum great-circle separation [km]
// between the endpoints of a contour that is still considered closed.
const DefaultClosedThresholdKM = 100.

// Distance returns the great-circle distance [km] between two
// (longitude, latitude) points given in degrees, using the haversine
// formula. Longitudes separated by a multiple of 360° are treated as
// distinct points.
func Distance(p1, p2 geom.Point) float64 {
	lon1, lat1 := deg2rad(p1.X), deg2rad(p1.Y)
	lon2, lat2 := deg2rad(p2.X), deg2rad(p2.Y)

	dlon := lon2 - lon1
	dlat := lat2 - lat1
	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))
	return c * earthRadius
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

// IsClosed reports whether the first and last points of a contour are
// within thresholdKM of each other.
func IsClosed(contour geom.LineString, thresholdKM float64) bool {
	return Distance(contour[0], contour[len(contour)-1]) < thresholdKM
}

// ContourLength returns the total length [km] of a contour, treating it
// as a closed loop (the segment from the last point back to the first is
// included).
func ContourLength(contour geom.LineString) float64 {
	length := Distance(contour[len(contour)-1], contour[0])
	for n := 0; n < len(contour)-1; n++ {
		length += Distance(contour[n], contour[n+1])
	}
	return length
}
