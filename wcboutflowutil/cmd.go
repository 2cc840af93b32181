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

// Package wcboutflowutil holds the command-line interface for the
// wcboutflow analysis.
package wcboutflowutil

import (
	"fmt"
	"log"

	"github.com/atmosmodel/wcboutflow"
	"github.com/ctessum/geom"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the
	// analysis commands.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "case",
			usage: `
              case selects the case study to analyze (IOP3, IOP5, IOP6 or IOP7).`,
			shorthand:  "c",
			defaultVal: "IOP3",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "dataRoot",
			usage: `
              dataRoot is the directory holding the per-case model output
              directories.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "thetaLevels",
			usage: `
              thetaLevels lists the isentropic levels [K] to search for outflow
              contours. When empty, the case study's own outflow levels are used.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{outflowCmd.Flags()},
		},
		{
			name: "lonBounds",
			usage: `
              lonBounds is the minimum and maximum longitude [degrees] of the
              outflow search region. The default covers unwrapped grids twice
              around the globe.`,
			defaultVal: []int{0, 720},
			flagsets:   []*pflag.FlagSet{outflowCmd.Flags()},
		},
		{
			name: "latBounds",
			usage: `
              latBounds is the minimum and maximum latitude [degrees] of the
              outflow search region.`,
			defaultVal: []int{-90, 90},
			flagsets:   []*pflag.FlagSet{outflowCmd.Flags()},
		},
		{
			name: "filterSizeTendency",
			usage: `
              filterSizeTendency is the median filter window [grid points]
              applied to the theta tendency field before contouring.`,
			defaultVal: 30,
			flagsets:   []*pflag.FlagSet{outflowCmd.Flags(), inflowCmd.Flags()},
		},
		{
			name: "filterSizePV",
			usage: `
              filterSizePV is the median filter window [grid points] applied to
              the potential vorticity field before the PV < 2 criterion.`,
			defaultVal: 30,
			flagsets:   []*pflag.FlagSet{outflowCmd.Flags()},
		},
		{
			name: "resolution",
			usage: `
              resolution is the target spacing [km] between points of the
              outflow boundary.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{outflowCmd.Flags()},
		},
		{
			name: "save",
			usage: `
              save writes the identified boundaries and interior volume to the
              case data directory.`,
			shorthand:  "s",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{outflowCmd.Flags()},
		},
		{
			name: "trajectories",
			usage: `
              trajectories is the path of the isentropic trajectory ensemble
              dump used to build the inflow contours.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{inflowCmd.Flags()},
		},
		{
			name: "circuits",
			usage: `
              circuits is the path of the circuit-integral series dump to
              compute diagnostics from.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "quantity",
			usage: `
              quantity names the diagnostic to compute: density,
              mass area anomaly ratio, a stored series name, or a name ending
              in "vorticity" or "PV" selecting a circulation variant.`,
			shorthand:  "q",
			defaultVal: "density",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("WCBOUTFLOW")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(outflowCmd)
	Root.AddCommand(inflowCmd)
	Root.AddCommand(diagnoseCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("wcboutflow: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// selectedCase resolves the case study named by the configuration.
func selectedCase() (*wcboutflow.CaseStudy, error) {
	cases := wcboutflow.NAWDEXCases(Cfg.GetString("dataRoot"))
	c, ok := cases[Cfg.GetString("case")]
	if !ok {
		return nil, fmt.Errorf("wcboutflow: unknown case study %q", Cfg.GetString("case"))
	}
	return c, nil
}

func outflowOptions() (*wcboutflow.OutflowOptions, error) {
	o := wcboutflow.DefaultOutflowOptions()
	lon, err := cast.ToIntSliceE(Cfg.Get("lonBounds"))
	if err != nil {
		return nil, fmt.Errorf("wcboutflow: lonBounds: %v", err)
	}
	lat, err := cast.ToIntSliceE(Cfg.Get("latBounds"))
	if err != nil {
		return nil, fmt.Errorf("wcboutflow: latBounds: %v", err)
	}
	if len(lon) != 2 || len(lat) != 2 {
		return nil, fmt.Errorf("wcboutflow: lonBounds and latBounds need 2 values, got %d and %d",
			len(lon), len(lat))
	}
	o.Bounds = &geom.Bounds{
		Min: geom.Point{X: float64(lon[0]), Y: float64(lat[0])},
		Max: geom.Point{X: float64(lon[1]), Y: float64(lat[1])},
	}
	o.FilterSizeTendency = Cfg.GetInt("filterSizeTendency")
	o.FilterSizePV = Cfg.GetInt("filterSizePV")
	o.ResolutionKM = Cfg.GetFloat64("resolution")
	return o, nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "wcboutflow",
	Short: "Warm conveyor belt outflow identification.",
	Long: `wcboutflow identifies the outflow regions of warm conveyor belt
airstreams on isentropic surfaces and derives circulation-based diagnostics
on the identified volumes.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format
'WCBOUTFLOW_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("wcboutflow v%s\n", wcboutflow.Version)
	},
	DisableAutoGenTag: true,
}

// outflowCmd identifies the outflow contours for one case study.
var outflowCmd = &cobra.Command{
	Use:   "outflow",
	Short: "Identify the outflow boundary and volume at the outflow time.",
	Long: `outflow extracts the closed contour bounding the WCB outflow on each
requested isentropic level at the case study's outflow time, and accumulates
the multi-level boundary surface and interior volume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := selectedCase()
		if err != nil {
			return err
		}
		levels := c.OutflowTheta
		req, err := cast.ToIntSliceE(Cfg.Get("thetaLevels"))
		if err != nil {
			return fmt.Errorf("wcboutflow: thetaLevels: %v", err)
		}
		if len(req) > 0 {
			levels = make([]float64, len(req))
			for i, l := range req {
				levels[i] = float64(l)
			}
		}
		o, err := outflowOptions()
		if err != nil {
			return err
		}
		result, err := wcboutflow.IdentifyOutflow(c, levels, o, Cfg.GetBool("save"))
		if err != nil {
			return err
		}
		log.Printf("wcboutflow: case %s: %d boundary points, %d volume points",
			c.Name, result.Boundaries.Shape[0], result.Volume.Shape[0])
		return nil
	},
	DisableAutoGenTag: true,
}

// inflowCmd builds contours around the trajectory positions at the
// start of the case study.
var inflowCmd = &cobra.Command{
	Use:   "inflow",
	Short: "Contour the trajectory endpoints at the inflow time.",
	Long: `inflow loads the isentropic trajectory ensemble started from the
outflow volume and, for each outflow theta level, builds a closed contour
around the trajectory positions at the start of the case study.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := selectedCase()
		if err != nil {
			return err
		}
		tr, err := wcboutflow.LoadTrajectories(Cfg.GetString("trajectories"))
		if err != nil {
			return err
		}
		fields, err := wcboutflow.LoadFields(c.FilenameTheta(c.StartTime),
			[]string{wcboutflow.VarPV}, c.OutflowTheta[0])
		if err != nil {
			return err
		}
		loops, err := wcboutflow.InflowContours(c, tr, fields[wcboutflow.VarPV],
			Cfg.GetInt("filterSizeTendency"))
		if err != nil {
			return err
		}
		for theta, loop := range loops {
			log.Printf("wcboutflow: case %s: %g K inflow contour with %d points",
				c.Name, theta, loop.Shape[0])
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// diagnoseCmd computes one circuit-integral diagnostic.
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Compute a circuit-integral diagnostic series.",
	Long: `diagnose loads the circuit-integral series (mass, area and the
circulation variants) for a case study and computes the requested derived
quantity, printing it against lead time in hours since the case start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := selectedCase()
		if err != nil {
			return err
		}
		fields, err := wcboutflow.LoadCircuitSeries(Cfg.GetString("circuits"))
		if err != nil {
			return err
		}
		q, err := fields.Quantity(Cfg.GetString("quantity"))
		if err != nil {
			return err
		}
		times, outflowHour := wcboutflow.LeadTimes(q, c)
		cmd.Printf("# %s [%s], outflow at %g h\n", q.Name, q.Units, outflowHour)
		for i, t := range times {
			cmd.Printf("%g\t%g\n", t, q.Data.Elements[i])
		}
		return nil
	},
	DisableAutoGenTag: true,
}
