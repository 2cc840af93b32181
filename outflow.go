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
	"log"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Field names expected in the isentropic model output.
const (
	VarTendency = "total_minus_adv_only_theta"
	VarPV       = "ertel_potential_vorticity"
	VarAltitude = "altitude"
)

// OutflowOptions controls the outflow-contour search.
type OutflowOptions struct {
	// Bounds restricts the search region. Longitudes run 0–720 by
	// default so that grids with unwrapped coordinates are covered.
	Bounds *geom.Bounds

	// FilterSizeTendency and FilterSizePV are the median-filter window
	// sizes [grid points] applied to the theta tendency and PV fields
	// before contouring.
	FilterSizeTendency, FilterSizePV int

	// ResolutionKM is the target spacing [km] between outflow boundary
	// points.
	ResolutionKM float64

	// ClosedThresholdKM is the endpoint separation below which a
	// contour counts as closed.
	ClosedThresholdKM float64
}

// DefaultOutflowOptions returns the search settings used for the NAWDEX
// case studies.
func DefaultOutflowOptions() *OutflowOptions {
	return &OutflowOptions{
		Bounds: &geom.Bounds{
			Min: geom.Point{X: 0, Y: -90},
			Max: geom.Point{X: 720, Y: 90},
		},
		FilterSizeTendency: 30,
		FilterSizePV:       30,
		ResolutionKM:       5,
		ClosedThresholdKM:  DefaultClosedThresholdKM,
	}
}

// OutflowRegion finds the closed contour bounding the WCB outflow in a
// single isentropic level. dtheta is the diabatic theta tendency, pv the
// potential vorticity and z the altitude field, all on the same
// lon/lat grid. The outflow region is where pv < 2 and dtheta > 0 after
// smoothing; its boundary is the longest closed 0.5-contour of that
// mask, resampled to o.ResolutionKM. The second return value holds one
// row (lon, lat, altitude) for every grid point inside the boundary.
// Returns ErrNoClosedContour when the mask has no closed boundary.
func OutflowRegion(dtheta, pv, z *ScalarField, o *OutflowOptions) (geom.LineString, *sparse.DenseArray, error) {
	dthetaSub, err := dtheta.Subset(o.Bounds)
	if err != nil {
		return nil, nil, err
	}
	pvSub, err := pv.Subset(o.Bounds)
	if err != nil {
		return nil, nil, err
	}
	zSub, err := z.Subset(o.Bounds)
	if err != nil {
		return nil, nil, err
	}

	// Smooth the restricted subsets, not the full fields, so that
	// values outside the search box cannot bleed into the mask.
	dthetaSub = dthetaSub.MedianFilter(o.FilterSizeTendency)
	pvSmooth := pvSub.MedianFilter(o.FilterSizePV)

	mask := pvSmooth.Copy()
	mask.Name = "outflow_criteria"
	mask.Units = ""
	for i := range mask.Data.Elements {
		if pvSmooth.Data.Elements[i] < 2 && dthetaSub.Data.Elements[i] > 0 {
			mask.Data.Elements[i] = 1
		} else {
			mask.Data.Elements[i] = 0
		}
	}

	contours := LevelSet(mask, 0.5)
	loop, err := SelectLongestClosed(contours, o.ClosedThresholdKM)
	if err != nil {
		return nil, nil, err
	}
	boundary := Resample(loop, o.ResolutionKM)

	points := interiorPoints(boundary, dthetaSub, zSub)
	return boundary, points, nil
}

// interiorPoints classifies every grid point of the (unsmoothed) field
// grid against the boundary polygon and returns the (lon, lat, altitude)
// rows of the points inside.
func interiorPoints(boundary geom.LineString, grid, z *ScalarField) *sparse.DenseArray {
	poly := geom.Polygon{[]geom.Point(boundary)}
	var rows [][]float64
	for i, lat := range grid.Lat {
		for j, lon := range grid.Lon {
			pt := geom.Point{X: lon, Y: lat}
			if pt.Within(poly) != geom.Outside {
				rows = append(rows, []float64{lon, lat, z.Data.Get(i, j)})
			}
		}
	}
	return rowsToDense(rows, 3)
}

// rowsToDense packs rows of equal width into an N×width array.
func rowsToDense(rows [][]float64, width int) *sparse.DenseArray {
	d := sparse.ZerosDense(len(rows), width)
	for i, row := range rows {
		for j := 0; j < width; j++ {
			d.Set(row[j], i, j)
		}
	}
	return d
}

// OutflowResult is the accumulated outflow geometry for one case study:
// the layered boundary surface as rows of (lon, lat, theta) and the
// interior volume as rows of (lon, lat, altitude, theta).
type OutflowResult struct {
	Boundaries *sparse.DenseArray
	Volume     *sparse.DenseArray
}

// IdentifyOutflow runs the outflow-contour search for every requested
// isentropic level at the case's outflow time, accumulating the 3-D
// boundary surface and interior volume. Levels where no closed contour
// exists are logged and skipped. When save is true the results are also
// written to the case data directory.
func IdentifyOutflow(c *CaseStudy, thetaLevels []float64, o *OutflowOptions, save bool) (*OutflowResult, error) {
	var boundaryRows, volumeRows [][]float64
	for _, theta := range thetaLevels {
		fields, err := LoadFields(c.FilenameTheta(c.OutflowTime),
			[]string{VarTendency, VarPV, VarAltitude}, theta)
		if err != nil {
			return nil, fmt.Errorf("wcboutflow: case %s, level %g K: %w", c.Name, theta, err)
		}
		boundary, points, err := OutflowRegion(
			fields[VarTendency], fields[VarPV], fields[VarAltitude], o)
		if errors.Is(err, ErrNoClosedContour) {
			log.Printf("wcboutflow: case %s: no closed contours found at %g K", c.Name, theta)
			continue
		} else if err != nil {
			return nil, err
		}

		for _, p := range boundary {
			boundaryRows = append(boundaryRows, []float64{p.X, p.Y, theta})
		}
		for i := 0; i < points.Shape[0]; i++ {
			volumeRows = append(volumeRows,
				[]float64{points.Get(i, 0), points.Get(i, 1), points.Get(i, 2), theta})
		}
	}

	result := &OutflowResult{
		Boundaries: rowsToDense(boundaryRows, 3),
		Volume:     rowsToDense(volumeRows, 4),
	}
	if save {
		if err := WriteArray(filepath.Join(c.DataDir, "outflow_boundaries.nc"),
			"outflow_boundaries", result.Boundaries); err != nil {
			return nil, err
		}
		if err := WriteArray(filepath.Join(c.DataDir, "outflow_volume.nc"),
			"outflow_volume", result.Volume); err != nil {
			return nil, err
		}
	}
	return result, nil
}
