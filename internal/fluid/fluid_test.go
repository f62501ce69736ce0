package fluid

import (
	"math"
	"testing"
)

func TestTSatPSatRoundTrip(t *testing.T) {
	tF, err := TSat(2250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(tF-652.9) > 10 {
		t.Fatalf("expected T_sat near 652.9F at 2250 psia, got %v", tF)
	}

	p, err := PSat(tF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p-2250) > 10 {
		t.Fatalf("expected round-trip PSat(TSat(2250)) near 2250, got %v", p)
	}
}

func TestTSatClampsOutOfRangeAndReportsError(t *testing.T) {
	_, err := TSat(10000)
	if err == nil {
		t.Fatalf("expected an OutOfRange error for pressure above PMaxPsia")
	}
}

func TestRhoLDecreasesWithTemperature(t *testing.T) {
	coldRho, _ := RhoL(200, 2250)
	hotRho, _ := RhoL(600, 2250)
	if hotRho >= coldRho {
		t.Fatalf("expected liquid density to drop as temperature rises: cold=%v hot=%v", coldRho, hotRho)
	}
}

func TestRhoVIncreasesWithPressure(t *testing.T) {
	lowRho, _ := RhoV(100)
	highRho, _ := RhoV(2250)
	if highRho <= lowRho {
		t.Fatalf("expected vapor density to rise with pressure: low=%v high=%v", lowRho, highRho)
	}
}

func TestHGIsHLPlusHFG(t *testing.T) {
	p := 2250.0
	tSat, _ := TSat(p)
	hl, _ := HL(tSat, p)
	hfg, _ := HFG(p)
	hg, _ := HG(p)
	if math.Abs(hg-(hl+hfg)) > 1e-6 {
		t.Fatalf("expected HG == HL+HFG, got hg=%v hl+hfg=%v", hg, hl+hfg)
	}
}

func TestHFGShrinksTowardCriticalPressure(t *testing.T) {
	low, _ := HFG(1000)
	high, _ := HFG(3200)
	if high >= low {
		t.Fatalf("expected latent heat to collapse approaching the critical point: low=%v high=%v", low, high)
	}
}

func TestCpLMatchesHLDerivative(t *testing.T) {
	const dT = 0.5
	h1, _ := HL(588.0, 2250)
	h2, _ := HL(588.0+dT, 2250)
	numeric := (h2 - h1) / dT
	analytic, _ := CpL(588.0, 2250)
	if math.Abs(numeric-analytic) > 1e-3 {
		t.Fatalf("expected CpL to match the numeric derivative of HL: numeric=%v analytic=%v", numeric, analytic)
	}
}

func TestBetaPositiveInOperatingBand(t *testing.T) {
	b, err := Beta(588.5, 2250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b <= 0 {
		t.Fatalf("expected a positive thermal expansion coefficient, got %v", b)
	}
}

func TestKappaStaysAboveFloor(t *testing.T) {
	k, err := Kappa(100, 2250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k < 1.0e-6 {
		t.Fatalf("expected Kappa floor of 1e-6, got %v", k)
	}
}
