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
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// ContourAroundPoints builds a closed contour enclosing a scattered
// point set (typically trajectory endpoints). The points are binned into
// a 2-D histogram on the grid of ref, the histogram is median-filtered
// with the same window as the outflow search, and the longest closed
// 0.5-contour of the result is returned. Returns ErrNoClosedContour when
// the point cloud has no closed boundary.
func ContourAroundPoints(x, y []float64, ref *ScalarField, filterSize int) (geom.LineString, error) {
	hist := ref.Copy()
	hist.Name = "point_density"
	hist.Units = ""
	hist.Data = histogram2d(x, y, binEdges(ref.Lon), binEdges(ref.Lat))
	hist = hist.MedianFilter(filterSize)

	contours := LevelSet(hist, 0.5)
	return SelectLongestClosed(contours, DefaultClosedThresholdKM)
}

// binEdges returns len(x)+1 bin edges placed at the midpoints between
// consecutive grid coordinates, extended by half a mean grid step at
// each end.
func binEdges(x []float64) []float64 {
	edges := make([]float64, len(x)+1)
	dx := (x[len(x)-1] - x[0]) / float64(len(x)-1)
	edges[0] = x[0] - dx/2
	for i := 1; i < len(x); i++ {
		edges[i] = (x[i-1] + x[i]) / 2
	}
	edges[len(x)] = x[len(x)-1] + dx/2
	return edges
}

// histogram2d counts the points falling in each grid cell. The returned
// array has shape [len(yEdges)-1, len(xEdges)-1], matching the spatial
// field layout. Points outside the outermost edges are dropped.
func histogram2d(x, y, xEdges, yEdges []float64) *sparse.DenseArray {
	counts := sparse.ZerosDense(len(yEdges)-1, len(xEdges)-1)
	for k := range x {
		i := binIndex(y[k], yEdges)
		j := binIndex(x[k], xEdges)
		if i < 0 || j < 0 {
			continue
		}
		counts.AddVal(1, i, j)
	}
	return counts
}

func binIndex(v float64, edges []float64) int {
	for i := 0; i < len(edges)-1; i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	// The last bin includes its upper edge.
	if v == edges[len(edges)-1] {
		return len(edges) - 2
	}
	return -1
}
