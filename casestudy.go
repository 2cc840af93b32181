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
	"path/filepath"
	"strings"
	"time"
)

// CaseStudy describes one WCB case: the analysis period, the isentropic
// levels spanned by the outflow, and where the model output lives. Case
// studies are plain values passed to the analysis functions; nothing in
// this package keeps case state between calls.
type CaseStudy struct {
	Name string

	// StartTime is the beginning of the analysis period and the zero
	// point of the lead-time axis.
	StartTime time.Time

	// OutflowTime is the validity time at which the outflow contours
	// are identified.
	OutflowTime time.Time

	// OutflowTheta lists the isentropic levels [K] spanned by the
	// outflow at OutflowTime.
	OutflowTheta []float64

	// DataDir holds the model output and receives the saved contours.
	DataDir string

	// FileTemplate is the name of the per-validity-time file of fields
	// on theta levels, with [DATE] standing in for the timestamp.
	FileTemplate string
}

// timeFormat is the timestamp layout used in data file names.
const timeFormat = "20060102_15"

// FilenameTheta returns the path of the file holding fields on
// isentropic levels at validity time t.
func (c *CaseStudy) FilenameTheta(t time.Time) string {
	name := strings.Replace(c.FileTemplate, "[DATE]", t.Format(timeFormat), -1)
	return filepath.Join(c.DataDir, name)
}

// OutflowLeadTime is the time from the analysis start to outflow
// identification.
func (c *CaseStudy) OutflowLeadTime() time.Duration {
	return c.OutflowTime.Sub(c.StartTime)
}

// NewCaseStudy fills in a case study with the standard file template,
// validating that the outflow time does not precede the start time.
func NewCaseStudy(name string, start, outflow time.Time, theta []float64, dataDir string) (*CaseStudy, error) {
	if outflow.Before(start) {
		return nil, fmt.Errorf("wcboutflow: case %s: outflow time %v before start time %v",
			name, outflow, start)
	}
	return &CaseStudy{
		Name:         name,
		StartTime:    start,
		OutflowTime:  outflow,
		OutflowTheta: theta,
		DataDir:      dataDir,
		FileTemplate: "theta_levels_[DATE].nc",
	}, nil
}

// NAWDEXCases returns the four North Atlantic Waveguide and Downstream
// Impact Experiment case studies, rooted at the given data directory.
func NAWDEXCases(root string) map[string]*CaseStudy {
	mk := func(name string, start, outflow time.Time, theta []float64) *CaseStudy {
		c, err := NewCaseStudy(name, start, outflow, theta, filepath.Join(root, name))
		if err != nil {
			panic(err) // times are compile-time constants
		}
		return c
	}
	return map[string]*CaseStudy{
		"IOP3": mk("IOP3",
			time.Date(2016, 9, 22, 12, 0, 0, 0, time.UTC),
			time.Date(2016, 9, 23, 12, 0, 0, 0, time.UTC),
			[]float64{320, 325, 330}),
		"IOP5": mk("IOP5",
			time.Date(2016, 9, 26, 12, 0, 0, 0, time.UTC),
			time.Date(2016, 9, 27, 12, 0, 0, 0, time.UTC),
			[]float64{325, 330, 335}),
		"IOP6": mk("IOP6",
			time.Date(2016, 9, 30, 0, 0, 0, 0, time.UTC),
			time.Date(2016, 10, 1, 0, 0, 0, 0, time.UTC),
			[]float64{310, 315, 320}),
		"IOP7": mk("IOP7",
			time.Date(2016, 10, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2016, 10, 4, 0, 0, 0, 0, time.UTC),
			[]float64{310, 315, 320}),
	}
}
