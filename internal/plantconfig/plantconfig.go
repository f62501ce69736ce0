// Package plantconfig loads named initial-condition presets and constant
// overrides from YAML, grounded on internal/script/profile's filename-derived
// ID + yaml.v3 loading pattern.
package plantconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fourloop/pwrcore/internal/plantconst"
	"gopkg.in/yaml.v3"
)

// InitialConditions describes a named starting state for a scenario,
// spec.md §8 "seed scenarios" (ColdShutdownSolid, HotStandby, HotFullPower).
type InitialConditions struct {
	Name string `yaml:"-"`

	RCSPressurePsia float64 `yaml:"rcs_pressure_psia"`
	RCSTAvgF        float64 `yaml:"rcs_t_avg_f"`
	RegimeSolid     bool    `yaml:"regime_solid"`

	PZRWaterMassLb float64 `yaml:"pzr_water_mass_lb"`
	PZRSteamMassLb float64 `yaml:"pzr_steam_mass_lb"`
	PZRWallTempF   float64 `yaml:"pzr_wall_temp_f"`

	PowerFrac   float64 `yaml:"power_frac"`
	BoronPPM    float64 `yaml:"boron_ppm"`
	RodStartSteps float64 `yaml:"rod_start_steps"`

	SGSecondaryTempF     float64 `yaml:"sg_secondary_temp_f"`
	SGSecondaryPressurePsia float64 `yaml:"sg_secondary_pressure_psia"`

	VCTLevelGal float64 `yaml:"vct_level_gal"`

	RCPCountRunning int `yaml:"rcp_count_running"`

	// Overrides lets a preset tweak individual plant constants without
	// redefining the whole plantconst.Plant struct, spec.md §9.
	Overrides map[string]float64 `yaml:"overrides,omitempty"`
}

// Load reads and parses a single preset YAML file. The preset's Name is
// derived from the filename with its extension stripped, as in
// profile.LoadProfile.
func Load(path string) (*InitialConditions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset %s: %w", path, err)
	}

	var ic InitialConditions
	if err := yaml.Unmarshal(data, &ic); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", path, err)
	}

	base := filepath.Base(path)
	ic.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return &ic, nil
}

// LoadAll walks dir for .yaml/.yml preset files, returning them sorted by
// name for deterministic ordering.
func LoadAll(dir string) ([]*InitialConditions, error) {
	var out []*InitialConditions
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		ic, err := Load(path)
		if err != nil {
			return err
		}
		out = append(out, ic)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading presets from %s: %w", dir, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ApplyOverrides returns a copy of base with any named constant overrides
// from ic applied. Supported override keys name a leaf field under
// plantconst.Plant using "Section.Field" (e.g. "PZR.HeaterTauSec");
// unknown keys are ignored.
func ApplyOverrides(base plantconst.Plant, ic *InitialConditions) plantconst.Plant {
	p := base
	for key, v := range ic.Overrides {
		switch key {
		case "PZR.HeaterTauSec":
			p.PZR.HeaterTauSec = v
		case "PZR.SprayEfficiency":
			p.PZR.SprayEfficiency = v
		case "RCS.NominalPressure":
			p.RCS.NominalPressure = v
		case "RCS.NominalTAvg":
			p.RCS.NominalTAvg = v
		case "Kinetics.BetaEff":
			p.Kinetics.BetaEff = v
		case "CVCS.BoronTransportTauMin":
			p.CVCS.BoronTransportTauMin = v
		}
	}
	return p
}

// BuiltinPresets returns the three spec.md §8 seed presets hardcoded, for
// use when no preset directory is configured.
func BuiltinPresets() map[string]InitialConditions {
	return map[string]InitialConditions{
		"ColdShutdownSolid": {
			Name:            "ColdShutdownSolid",
			RCSPressurePsia: 350,
			RCSTAvgF:        130,
			RegimeSolid:     true,
			PZRWaterMassLb:  95000,
			PZRWallTempF:    130,
			PowerFrac:       0,
			BoronPPM:        1800,
			RodStartSteps:   0,
			SGSecondaryTempF:        130,
			SGSecondaryPressurePsia: 14.7,
			VCTLevelGal:     3000,
			RCPCountRunning: 0,
		},
		"HotStandby": {
			Name:            "HotStandby",
			RCSPressurePsia: 2250,
			RCSTAvgF:        557,
			RegimeSolid:     false,
			PZRWaterMassLb:  60000,
			PZRSteamMassLb:  900,
			PZRWallTempF:    650,
			PowerFrac:       0,
			BoronPPM:        1200,
			RodStartSteps:   228,
			SGSecondaryTempF:        544,
			SGSecondaryPressurePsia: 1092,
			VCTLevelGal:     4000,
			RCPCountRunning: 4,
		},
		"HotFullPower": {
			Name:            "HotFullPower",
			RCSPressurePsia: 2250,
			RCSTAvgF:        588.5,
			RegimeSolid:     false,
			PZRWaterMassLb:  60000,
			PZRSteamMassLb:  1000,
			PZRWallTempF:    652.9,
			PowerFrac:       1.0,
			BoronPPM:        800,
			RodStartSteps:   200,
			SGSecondaryTempF:        544,
			SGSecondaryPressurePsia: 1092,
			VCTLevelGal:     4000,
			RCPCountRunning: 4,
		},
	}
}
