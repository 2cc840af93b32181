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
	"math"
	"os"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Coordinate variable names in the model output files.
const (
	coordLon   = "longitude"
	coordLat   = "latitude"
	coordTheta = "air_potential_temperature"
	coordTime  = "time"
)

// LoadFields reads the named variables from a NetCDF file of fields on
// isentropic levels, restricted to the given theta level. Variables are
// expected on (air_potential_temperature, latitude, longitude) grids
// with matching coordinate variables.
func LoadFields(path string, names []string, thetaLevel float64) (map[string]*ScalarField, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wcboutflow: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("wcboutflow: reading %s: %v", path, err)
	}

	lon, err := readCoord(f, coordLon)
	if err != nil {
		return nil, err
	}
	lat, err := readCoord(f, coordLat)
	if err != nil {
		return nil, err
	}
	theta, err := readCoord(f, coordTheta)
	if err != nil {
		return nil, err
	}
	k := -1
	for i, v := range theta {
		if math.Abs(v-thetaLevel) < 1.e-6 {
			k = i
			break
		}
	}
	if k < 0 {
		return nil, fmt.Errorf("wcboutflow: %s: no theta level %g K", path, thetaLevel)
	}

	fields := make(map[string]*ScalarField, len(names))
	for _, name := range names {
		data, err := readLevel(f, name, k, len(lat), len(lon))
		if err != nil {
			return nil, fmt.Errorf("wcboutflow: %s: %v", path, err)
		}
		fields[name] = &ScalarField{
			Name:  name,
			Units: unitsAttribute(f, name),
			Data:  data,
			Lon:   lon,
			Lat:   lat,
		}
	}
	return fields, nil
}

// readLevel reads one theta-level slab of a (theta, lat, lon) variable.
func readLevel(f *cdf.File, name string, k, nlat, nlon int) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(name)
	if len(dims) != 3 {
		return nil, fmt.Errorf("read netcdf: variable %s has %d dimensions, want 3", name, len(dims))
	}
	start, end := make([]int, 3), make([]int, 3)
	start[0], end[0] = k, k+1
	r := f.Reader(name, start, end)
	buf := r.Zero(nlat * nlon)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("read netcdf variable %s: %v", name, err)
	}
	data := sparse.ZerosDense(nlat, nlon)
	if err := fillElements(data.Elements, buf); err != nil {
		return nil, fmt.Errorf("read netcdf variable %s: %v", name, err)
	}
	return data, nil
}

// LoadCircuitSeries reads every non-coordinate variable of a circuit
// dump file as a time series. The file carries a "time" coordinate in
// seconds since the Unix epoch.
func LoadCircuitSeries(path string) (FieldSet, error) {
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

	var fields FieldSet
	for _, name := range f.Header.Variables() {
		if name == coordTime {
			continue
		}
		vals, err := readAll(f, name)
		if err != nil {
			return nil, fmt.Errorf("wcboutflow: %s: %v", path, err)
		}
		data := sparse.ZerosDense(len(vals))
		copy(data.Elements, vals)
		fields = append(fields, &ScalarField{
			Name:  name,
			Units: unitsAttribute(f, name),
			Data:  data,
			Time:  times,
		})
	}
	return fields, nil
}

// WriteArray dumps a 2-D array as a single NetCDF variable with
// dimensions (point, component): (lon, lat, theta) rows for boundary
// surfaces, (lon, lat, altitude, theta) rows for interior volumes and
// (lon, lat) rows for single contours.
func WriteArray(path, name string, data *sparse.DenseArray) error {
	h := cdf.NewHeader([]string{"point", "component"}, data.Shape)
	h.AddVariable(name, []string{"point", "component"}, []float32{0})
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wcboutflow: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("wcboutflow: writing %s: %v", path, err)
	}

	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data32); err != nil {
		return fmt.Errorf("wcboutflow: writing %s: %v", path, err)
	}
	return nil
}

// readCoord reads a 1-D coordinate variable as float64.
func readCoord(f *cdf.File, name string) ([]float64, error) {
	vals, err := readAll(f, name)
	if err != nil {
		return nil, fmt.Errorf("wcboutflow: coordinate %s: %v", name, err)
	}
	return vals, nil
}

// readAll reads the full extent of a variable as float64.
func readAll(f *cdf.File, name string) ([]float64, error) {
	dims := f.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("read netcdf: variable %s not in file", name)
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("read netcdf variable %s: %v", name, err)
	}
	vals := make([]float64, n)
	if err := fillElements(vals, buf); err != nil {
		return nil, fmt.Errorf("read netcdf variable %s: %v", name, err)
	}
	return vals, nil
}

// readTimes reads the time coordinate, stored as seconds since the Unix
// epoch.
func readTimes(f *cdf.File) ([]time.Time, error) {
	vals, err := readAll(f, coordTime)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, len(vals))
	for i, v := range vals {
		times[i] = time.Unix(int64(v), 0).UTC()
	}
	return times, nil
}

// fillElements converts a typed buffer returned by the NetCDF reader
// into float64 elements.
func fillElements(dst []float64, buf interface{}) error {
	switch b := buf.(type) {
	case []float32:
		for i, v := range b {
			dst[i] = float64(v)
		}
	case []float64:
		copy(dst, b)
	case []int32:
		for i, v := range b {
			dst[i] = float64(v)
		}
	default:
		return fmt.Errorf("unsupported netcdf data type %T", buf)
	}
	return nil
}

func unitsAttribute(f *cdf.File, name string) string {
	if u, ok := f.Header.GetAttribute(name, "units").(string); ok {
		return u
	}
	return ""
}
