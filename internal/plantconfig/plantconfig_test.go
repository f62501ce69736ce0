package plantconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fourloop/pwrcore/internal/plantconst"
)

func TestLoadDerivesNameFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hot_full_power.yaml")
	content := "rcs_pressure_psia: 2250\nrcs_t_avg_f: 588.5\npower_frac: 1.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	ic, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ic.Name != "hot_full_power" {
		t.Fatalf("expected name derived from filename, got %q", ic.Name)
	}
	if ic.RCSPressurePsia != 2250 {
		t.Fatalf("expected parsed pressure 2250, got %v", ic.RCSPressurePsia)
	}
}

func TestLoadAllSortsByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zzz.yaml", "aaa.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("power_frac: 0\n"), 0o644); err != nil {
			t.Fatalf("write preset: %v", err)
		}
	}
	presets, err := LoadAll(dir)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(presets) != 2 || presets[0].Name != "aaa" || presets[1].Name != "zzz" {
		t.Fatalf("expected sorted [aaa, zzz], got %+v", presets)
	}
}

func TestApplyOverridesAppliesKnownKeys(t *testing.T) {
	base := plantconst.Default()
	ic := &InitialConditions{Overrides: map[string]float64{"PZR.HeaterTauSec": 45}}
	out := ApplyOverrides(base, ic)
	if out.PZR.HeaterTauSec != 45 {
		t.Fatalf("expected override applied, got %v", out.PZR.HeaterTauSec)
	}
	if out.RCS.NominalTAvg != base.RCS.NominalTAvg {
		t.Fatalf("expected unrelated fields untouched")
	}
}

func TestApplyOverridesIgnoresUnknownKeys(t *testing.T) {
	base := plantconst.Default()
	ic := &InitialConditions{Overrides: map[string]float64{"Nonexistent.Field": 1}}
	out := ApplyOverrides(base, ic)
	if out != base {
		t.Fatalf("expected unknown override key to be a no-op")
	}
}

func TestBuiltinPresetsIncludesSeedScenarios(t *testing.T) {
	presets := BuiltinPresets()
	for _, name := range []string{"ColdShutdownSolid", "HotStandby", "HotFullPower"} {
		if _, ok := presets[name]; !ok {
			t.Fatalf("expected builtin preset %q", name)
		}
	}
}
