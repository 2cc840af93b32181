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

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

// ErrNoClosedContour is returned when every candidate contour fails the
// closed-loop test.
var ErrNoClosedContour = errors.New("wcboutflow: no closed contours found")

// SelectLongestClosed returns the longest contour that passes the
// closed-loop test at the given endpoint threshold. When more than one
// closed contour has the maximum length the first one wins.
func SelectLongestClosed(contours []geom.LineString, thresholdKM float64) (geom.LineString, error) {
	if len(contours) == 0 {
		return nil, ErrNoClosedContour
	}
	lengths := make([]float64, len(contours))
	for i, c := range contours {
		if IsClosed(c, thresholdKM) {
			lengths[i] = ContourLength(c)
		}
	}
	imax := floats.MaxIdx(lengths)
	if lengths[imax] == 0 {
		return nil, ErrNoClosedContour
	}
	return contours[imax], nil
}

// Resample adds points around a closed circuit so that no two
// consecutive points (including the wraparound from the last point back
// to the first) are further apart than spacingKM. New points are placed
// on the straight line between the original points in lon/lat space, at
// exactly spacingKM along the segment; a single long edge may receive
// several inserted points. The input is not modified.
func Resample(contour geom.LineString, spacingKM float64) geom.LineString {
	points := make(geom.LineString, len(contour))
	copy(points, contour)

	n := 0
	for n < len(points) {
		next := points[0]
		if n+1 < len(points) {
			next = points[n+1]
		}

		d := Distance(points[n], next)
		if d > spacingKM {
			dlon := next.X - points[n].X
			dlat := next.Y - points[n].Y
			p := geom.Point{
				X: points[n].X + (spacingKM/d)*dlon,
				Y: points[n].Y + (spacingKM/d)*dlat,
			}
			// Insert after the current point. On the wraparound edge
			// this appends past the old last point, so the scan keeps
			// walking the remainder of the gap back to the first point.
			points = append(points, geom.Point{})
			copy(points[n+2:], points[n+1:])
			points[n+1] = p
		}
		// Advance to either the inserted point or the next original
		// point that is already within the spacing.
		n++
	}
	return points
}
