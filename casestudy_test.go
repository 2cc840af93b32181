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
	"path/filepath"
	"testing"
	"time"
)

func TestNewCaseStudy(t *testing.T) {
	start := time.Date(2016, 9, 22, 12, 0, 0, 0, time.UTC)

	c, err := NewCaseStudy("test", start, start.Add(24*time.Hour),
		[]float64{320, 325}, "/data/test")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.OutflowLeadTime(); got != 24*time.Hour {
		t.Errorf("outflow lead time = %v, want 24h", got)
	}
	want := filepath.Join("/data/test", "theta_levels_20160923_12.nc")
	if got := c.FilenameTheta(c.OutflowTime); got != want {
		t.Errorf("FilenameTheta = %q, want %q", got, want)
	}

	if _, err := NewCaseStudy("bad", start, start.Add(-time.Hour), nil, ""); err == nil {
		t.Error("expected an error for an outflow time before the start time")
	}
}

func TestNAWDEXCases(t *testing.T) {
	cases := NAWDEXCases("/data")
	for _, name := range []string{"IOP3", "IOP5", "IOP6", "IOP7"} {
		c, ok := cases[name]
		if !ok {
			t.Fatalf("missing case study %s", name)
		}
		if c.OutflowLeadTime() != 24*time.Hour {
			t.Errorf("%s: outflow lead time = %v, want 24h", name, c.OutflowLeadTime())
		}
		if len(c.OutflowTheta) != 3 {
			t.Errorf("%s: %d theta levels, want 3", name, len(c.OutflowTheta))
		}
		if c.DataDir != filepath.Join("/data", name) {
			t.Errorf("%s: data dir %q", name, c.DataDir)
		}
	}

	if got := cases["IOP3"].OutflowTheta[0]; got != 320 {
		t.Errorf("IOP3 lowest outflow level = %g K, want 320", got)
	}
}
