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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"
)

// TrajectoryEnsemble holds a set of Lagrangian trajectories sampled at
// common times: positions and any number of named scalar series, each
// with shape (trajectory, time).
type TrajectoryEnsemble struct {
	Times []time.Time

	// X and Y are longitude and latitude [degrees].
	X, Y *sparse.DenseArray

	// Fields holds scalars traced along the trajectories, keyed by
	// name (e.g. "air_potential_temperature").
	Fields map[string]*sparse.DenseArray
}

// Len returns the number of trajectories.
func (tr *TrajectoryEnsemble) Len() int {
	return tr.X.Shape[0]
}

// timeIndex resolves a possibly negative time index (counting from the
// end, -1 being the final time).
func (tr *TrajectoryEnsemble) timeIndex(i int) int {
	if i < 0 {
		return len(tr.Times) + i
	}
	return i
}

// Select returns the sub-ensemble of trajectories whose value of the
// named series at time index atIndex (negative counts from the end)
// satisfies the comparison op ("==", "<", "<=", ">", ">="). It panics on
// an unknown series or operator: both indicate a caller bug, not a data
// condition.
func (tr *TrajectoryEnsemble) Select(name, op string, value float64, atIndex int) *TrajectoryEnsemble {
	series, ok := tr.Fields[name]
	if !ok {
		panic(fmt.Sprintf("wcboutflow: no trajectory series %q", name))
	}
	j := tr.timeIndex(atIndex)

	var keep []int
	for i := 0; i < tr.Len(); i++ {
		v := series.Get(i, j)
		var ok bool
		switch op {
		case "==":
			ok = v == value
		case "<":
			ok = v < value
		case "<=":
			ok = v <= value
		case ">":
			ok = v > value
		case ">=":
			ok = v >= value
		default:
			panic(fmt.Sprintf("wcboutflow: unknown comparison %q", op))
		}
		if ok {
			keep = append(keep, i)
		}
	}

	o := &TrajectoryEnsemble{
		Times:  tr.Times,
		X:      takeRows(tr.X, keep),
		Y:      takeRows(tr.Y, keep),
		Fields: make(map[string]*sparse.DenseArray, len(tr.Fields)),
	}
	for n, f := range tr.Fields {
		o.Fields[n] = takeRows(f, keep)
	}
	return o
}

func takeRows(d *sparse.DenseArray, rows []int) *sparse.DenseArray {
	nt := d.Shape[1]
	o := sparse.ZerosDense(len(rows), nt)
	for i, r := range rows {
		for j := 0; j < nt; j++ {
			o.Set(d.Get(r, j), i, j)
		}
	}
	return o
}

// Endpoints returns the trajectory positions at time index i (negative
// counts from the end), as separate longitude and latitude slices.
func (tr *TrajectoryEnsemble) Endpoints(i int) (x, y []float64) {
	j := tr.timeIndex(i)
	x = make([]float64, tr.Len())
	y = make([]float64, tr.Len())
	for k := 0; k < tr.Len(); k++ {
		x[k] = tr.X.Get(k, j)
		y[k] = tr.Y.Get(k, j)
	}
	return x, y
}

// EnsembleStats summarizes the spread of one traced scalar across the
// ensemble at each time: the mean, and the 0/5/25/50/75/95/100
// percentiles.
type EnsembleStats struct {
	Mean, Median                []float64
	P0, P5, P25, P75, P95, P100 []float64
}

// Stats computes the per-time ensemble statistics of the named series.
func (tr *TrajectoryEnsemble) Stats(name string) (*EnsembleStats, error) {
	series, ok := tr.Fields[name]
	if !ok {
		return nil, fmt.Errorf("wcboutflow: no trajectory series %q", name)
	}
	if tr.Len() == 0 {
		return nil, fmt.Errorf("wcboutflow: no trajectories to summarize")
	}
	nt := len(tr.Times)
	s := &EnsembleStats{
		Mean: make([]float64, nt), Median: make([]float64, nt),
		P0: make([]float64, nt), P5: make([]float64, nt),
		P25: make([]float64, nt), P75: make([]float64, nt),
		P95: make([]float64, nt), P100: make([]float64, nt),
	}
	sample := make([]float64, tr.Len())
	for j := 0; j < nt; j++ {
		for i := 0; i < tr.Len(); i++ {
			sample[i] = series.Get(i, j)
		}
		s.Mean[j] = stat.Mean(sample, nil)
		sort.Float64s(sample)
		s.P0[j] = sample[0]
		s.P100[j] = sample[len(sample)-1]
		s.P5[j] = stat.Quantile(0.05, stat.LinInterp, sample, nil)
		s.P25[j] = stat.Quantile(0.25, stat.LinInterp, sample, nil)
		s.Median[j] = stat.Quantile(0.5, stat.LinInterp, sample, nil)
		s.P75[j] = stat.Quantile(0.75, stat.LinInterp, sample, nil)
		s.P95[j] = stat.Quantile(0.95, stat.LinInterp, sample, nil)
	}
	return s, nil
}

// LoadTrajectories reads a trajectory ensemble dump: variables
// "longitude" and "latitude" plus any traced scalars, each with
// dimensions (trajectory, time), and a "time" coordinate in seconds
// since the Unix epoch.
func LoadTrajectories(path string) (*TrajectoryEnsemble, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wcboutflow: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("wcboutflow: reading %s: %v", path, err)
	}

	times, err := readTimes(f)
	if err != nil {
		return nil, fmt.Errorf("wcboutflow: %s: %v", path, err)
	}

	tr := &TrajectoryEnsemble{
		Times:  times,
		Fields: make(map[string]*sparse.DenseArray),
	}
	for _, name := range f.Header.Variables() {
		if name == coordTime {
			continue
		}
		dims := f.Header.Lengths(name)
		if len(dims) != 2 {
			return nil, fmt.Errorf("wcboutflow: %s: trajectory variable %s has %d dimensions, want 2",
				path, name, len(dims))
		}
		vals, err := readAll(f, name)
		if err != nil {
			return nil, fmt.Errorf("wcboutflow: %s: %v", path, err)
		}
		d := sparse.ZerosDense(dims...)
		copy(d.Elements, vals)
		switch name {
		case coordLon:
			tr.X = d
		case coordLat:
			tr.Y = d
		default:
			tr.Fields[name] = d
		}
	}
	if tr.X == nil || tr.Y == nil {
		return nil, fmt.Errorf("wcboutflow: %s: missing trajectory position variables", path)
	}
	return tr, nil
}

// InflowContours builds, for each outflow theta level of the case, a
// closed contour around the positions at the final trajectory time of
// the ensemble members on that level, using ref as the histogram grid.
// The loops are written per level to the case data directory and
// returned keyed by level. Unlike the per-level outflow search, a
// missing closed contour here is an error for the caller to handle.
func InflowContours(c *CaseStudy, tr *TrajectoryEnsemble, ref *ScalarField, filterSize int) (map[float64]*sparse.DenseArray, error) {
	loops := make(map[float64]*sparse.DenseArray, len(c.OutflowTheta))
	for _, theta := range c.OutflowTheta {
		trTheta := tr.Select(coordTheta, "==", theta, 0)
		x, y := trTheta.Endpoints(-1)
		loop, err := ContourAroundPoints(x, y, ref, filterSize)
		if err != nil {
			return nil, fmt.Errorf("wcboutflow: case %s, level %g K: %w", c.Name, theta, err)
		}

		rows := make([][]float64, len(loop))
		for i, p := range loop {
			rows[i] = []float64{p.X, p.Y}
		}
		arr := rowsToDense(rows, 2)
		path := filepath.Join(c.DataDir,
			fmt.Sprintf("outflow_boundaries_at_inflow_time_%gK.nc", theta))
		if err := WriteArray(path, "inflow_boundary", arr); err != nil {
			return nil, err
		}
		loops[theta] = arr
	}
	return loops, nil
}
