package kinetics

import (
	"math"
	"testing"

	"github.com/fourloop/pwrcore/internal/plantconst"
)

func TestRodWorthSCurveAnchors(t *testing.T) {
	if w := RodWorthSCurve(0); w != 0 {
		t.Fatalf("expected 0 worth at 0 insertion, got %v", w)
	}
	if w := RodWorthSCurve(1); w != 1 {
		t.Fatalf("expected full worth at full insertion, got %v", w)
	}
	if w := RodWorthSCurve(0.5); math.Abs(w-0.5) > 0.01 {
		t.Fatalf("expected ~50%% worth at 50%% insertion, got %v", w)
	}
	if w := RodWorthSCurve(0.6); math.Abs(w-0.655) > 0.02 {
		t.Fatalf("expected ~65.5%% worth at 60%% insertion, got %v", w)
	}
}

func TestDopplerIsNegativeAsFuelHeatsUp(t *testing.T) {
	c := plantconst.Default().Kinetics
	d := Doppler(c, c.RefFuelTempF+500)
	if d >= 0 {
		t.Fatalf("expected negative Doppler feedback as fuel heats above reference, got %v", d)
	}
}

func TestModeratorCoeffPcmPerFInterpolatesBetweenAnchors(t *testing.T) {
	if a := ModeratorCoeffPcmPerF(100); a != -40 {
		t.Fatalf("expected -40 pcm/F at 100ppm, got %v", a)
	}
	if a := ModeratorCoeffPcmPerF(1500); a != 5 {
		t.Fatalf("expected +5 pcm/F at 1500ppm, got %v", a)
	}
	mid := ModeratorCoeffPcmPerF(800)
	if mid <= -40 || mid >= 5 {
		t.Fatalf("expected interpolated value between anchors, got %v", mid)
	}
}

func TestDecayHeatFracMatchesANS51Anchors(t *testing.T) {
	if f := DecayHeatFrac(0); math.Abs(f-0.07) > 0.01 {
		t.Fatalf("expected ~7%% decay heat at trip, got %v", f)
	}
	if f := DecayHeatFrac(60); math.Abs(f-0.05) > 0.015 {
		t.Fatalf("expected ~5%% decay heat at 1 minute, got %v", f)
	}
	if f := DecayHeatFrac(600); math.Abs(f-0.03) > 0.015 {
		t.Fatalf("expected ~3%% decay heat at 10 minutes, got %v", f)
	}
}

func TestDecayHeatFracNegativeTimeClampsToZero(t *testing.T) {
	if DecayHeatFrac(-5) != DecayHeatFrac(0) {
		t.Fatalf("expected negative time to clamp to t=0")
	}
}

func TestNewInitializesEquilibriumPrecursors(t *testing.T) {
	c := plantconst.Default().Kinetics
	r := New(c, 1.0, 800, 1200, 588.5)
	snap := r.Snapshot()
	for i, ci := range snap.PrecursorConcentrations {
		expected := c.GroupFractions[i] * 1.0 / c.GroupLambda[i]
		if math.Abs(ci-expected) > 1e-9 {
			t.Fatalf("group %d: expected equilibrium precursor %v, got %v", i, expected, ci)
		}
	}
}

func TestAdvanceHoldsPowerAtEquilibrium(t *testing.T) {
	c := plantconst.Default().Kinetics
	r := New(c, 1.0, 800, c.RefFuelTempF, c.RefModTempF)
	r.SetTemperatures(c.RefFuelTempF, c.RefModTempF)
	r.SetBoron(800)

	for i := 0; i < 60; i++ {
		r.Advance(1.0/3600.0, 0, 800)
	}

	if math.Abs(r.NeutronPowerFrac()-1.0) > 0.05 {
		t.Fatalf("expected power to stay near equilibrium with matched feedback terms, got %v", r.NeutronPowerFrac())
	}
}

func TestTripDrivesThermalPowerTowardDecayHeat(t *testing.T) {
	c := plantconst.Default().Kinetics
	r := New(c, 1.0, 800, c.RefFuelTempF, c.RefModTempF)
	r.Trip()

	for i := 0; i < 600; i++ {
		r.Advance(1.0/3600.0, 1.0, 800)
	}

	if !r.Tripped() {
		t.Fatalf("expected reactor to remain tripped")
	}
	frac := r.ThermalPowerMWt() / c.PowerMWtRated
	if frac >= 0.5 {
		t.Fatalf("expected thermal power to have decayed well below full power 10 minutes post-trip, got frac=%v", frac)
	}
}

func TestLowerBoronCarriesPositiveReactivity(t *testing.T) {
	c := plantconst.Default().Kinetics
	lowBoron := Boron(c, 800, 1200)
	highBoronDilutionReactivity := Boron(c, 1200, 1200)
	if lowBoron <= highBoronDilutionReactivity {
		t.Fatalf("expected lower boron concentration to carry positive reactivity relative to a higher reference")
	}
}
