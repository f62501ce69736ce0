package coupledthermo

import (
	"math"
	"testing"

	"github.com/fourloop/pwrcore/internal/plantconst"
)

func TestSolveSolidPlantRaisesPressureWhenHeatingAboveNominal(t *testing.T) {
	rc := plantconst.Default().RCS
	in := Input{
		Regime:            RegimeSolidPlant,
		RCSTAvgF:          rc.NominalTAvg + 5,
		PrevRCSTAvgF:      rc.NominalTAvg,
		RCSPressurePsia:   rc.NominalPressure,
		RCSWaterVolumeFt3: rc.WaterVolumeFt3,
		RCSMetalMassLb:    rc.MetalMassLb,
		CanonicalMassLb:   1.0e6,
	}
	res, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PressurePsia <= in.RCSPressurePsia {
		t.Fatalf("expected pressure to rise when heating above the previous step's T_avg, got %v", res.PressurePsia)
	}
	if res.PZRSteamVolumeFt3 != 0 {
		t.Fatalf("expected no steam volume in the solid-plant regime, got %v", res.PZRSteamVolumeFt3)
	}
}

func TestSolveSolidPlantEchoesCanonicalMass(t *testing.T) {
	rc := plantconst.Default().RCS
	in := Input{
		Regime:            RegimeSolidPlant,
		RCSTAvgF:          rc.NominalTAvg,
		PrevRCSTAvgF:      rc.NominalTAvg,
		RCSPressurePsia:   rc.NominalPressure,
		RCSWaterVolumeFt3: rc.WaterVolumeFt3,
		RCSMetalMassLb:    rc.MetalMassLb,
		CanonicalMassLb:   500000,
	}
	res, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CanonicalMassLb != 500000 {
		t.Fatalf("expected CanonicalMassLb echoed unchanged, got %v", res.CanonicalMassLb)
	}
}

func TestSolveTwoPhaseRaisesPressureWhenHeatingAboveNominal(t *testing.T) {
	rc := plantconst.Default().RCS
	pzr := plantconst.Default().PZR
	in := Input{
		Regime:            RegimeTwoPhase,
		RCSTAvgF:          rc.NominalTAvg + 5,
		PrevRCSTAvgF:      rc.NominalTAvg,
		RCSPressurePsia:   rc.NominalPressure,
		RCSWaterVolumeFt3: rc.WaterVolumeFt3,
		RCSMetalMassLb:    rc.MetalMassLb,
		PZRWaterMassLb:    60000,
		PZRSteamMassLb:    1000,
		PZRTotalVolumeFt3: pzr.TotalVolumeFt3,
		CanonicalMassLb:   1.0e6,
	}
	res, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PressurePsia <= in.RCSPressurePsia {
		t.Fatalf("expected pressure to rise when RCS heats above the previous step's T_avg, surging into the PZR, got %v", res.PressurePsia)
	}
}

func TestSolveTwoPhaseVolumesSumToTotal(t *testing.T) {
	rc := plantconst.Default().RCS
	pzr := plantconst.Default().PZR
	in := Input{
		Regime:            RegimeTwoPhase,
		RCSTAvgF:          rc.NominalTAvg,
		PrevRCSTAvgF:      rc.NominalTAvg,
		RCSPressurePsia:   rc.NominalPressure,
		RCSWaterVolumeFt3: rc.WaterVolumeFt3,
		RCSMetalMassLb:    rc.MetalMassLb,
		PZRWaterMassLb:    60000,
		PZRSteamMassLb:    1000,
		PZRTotalVolumeFt3: pzr.TotalVolumeFt3,
		CanonicalMassLb:   1.0e6,
	}
	res, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := res.PZRWaterVolumeFt3 + res.PZRSteamVolumeFt3
	if math.Abs(sum-pzr.TotalVolumeFt3) > 1e-6 {
		t.Fatalf("expected PZR water+steam volume to sum to the fixed total volume %v, got %v", pzr.TotalVolumeFt3, sum)
	}
}

func TestUncoupledEstimateExceedsCoupledResponse(t *testing.T) {
	rc := plantconst.Default().RCS
	dT := 5.0
	uncoupled := UncoupledEstimatePsi(rc.NominalTAvg, rc.NominalPressure, dT, rc.WaterVolumeFt3)

	in := Input{
		Regime:            RegimeTwoPhase,
		RCSTAvgF:          rc.NominalTAvg + dT,
		PrevRCSTAvgF:      rc.NominalTAvg,
		RCSPressurePsia:   rc.NominalPressure,
		RCSWaterVolumeFt3: rc.WaterVolumeFt3,
		RCSMetalMassLb:    rc.MetalMassLb,
		PZRWaterMassLb:    60000,
		PZRSteamMassLb:    1000,
		PZRTotalVolumeFt3: plantconst.Default().PZR.TotalVolumeFt3,
		CanonicalMassLb:   1.0e6,
	}
	res, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coupledRise := res.PressurePsia - in.RCSPressurePsia
	if coupledRise >= uncoupled {
		t.Fatalf("expected the PZR-coupled pressure response to be damped below the uncoupled (fixed-PZR) estimate: coupled=%v uncoupled=%v", coupledRise, uncoupled)
	}
}

// TestSolveSolidPlantColdShutdownStepIsStable pins the ColdShutdownSolid seed
// scenario (T_avg=130, P=350) from being driven off an absolute deviation
// from the full-power nominal T_avg (588.5F), which previously produced a
// large negative pressure on the very first step.
func TestSolveSolidPlantColdShutdownStepIsStable(t *testing.T) {
	rc := plantconst.Default().RCS
	in := Input{
		Regime:            RegimeSolidPlant,
		RCSTAvgF:          130,
		PrevRCSTAvgF:      130,
		RCSPressurePsia:   350,
		RCSWaterVolumeFt3: rc.WaterVolumeFt3,
		RCSMetalMassLb:    rc.MetalMassLb,
		CanonicalMassLb:   1.0e6,
	}
	res, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.PressurePsia-in.RCSPressurePsia) >= 20 {
		t.Fatalf("expected a stationary T_avg to leave pressure essentially unchanged, got %v -> %v", in.RCSPressurePsia, res.PressurePsia)
	}
}
