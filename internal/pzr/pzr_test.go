package pzr

import (
	"math"
	"testing"

	"github.com/fourloop/pwrcore/internal/plantconst"
)

func testConstants() plantconst.PZRConstants {
	return plantconst.Default().PZR
}

func TestAdvanceConservesMassAbsentReliefAndSurge(t *testing.T) {
	c := testConstants()
	p := NewTwoPhase(c, 60000, 1000, 1200, 600, 652.9, 2250)

	before := p.WaterMassLb() + p.SteamMassLb()
	out := p.Advance(Inputs{
		DtHr:         1.0 / 3600.0,
		PressurePsia: 2250,
		THotF:        620,
		TColdF:       560,
		HeaterMode:   HeaterOff,
	})
	after := out.WaterMassLb + out.SteamMassLb

	if out.ReliefFlowLb != 0 {
		t.Fatalf("expected no relief at nominal pressure, got %v", out.ReliefFlowLb)
	}
	if math.Abs(after-before) > 1e-6 {
		t.Fatalf("mass not conserved absent surge/relief: before=%v after=%v", before, after)
	}
}

func TestAdvanceSurgeAddsMass(t *testing.T) {
	c := testConstants()
	p := NewTwoPhase(c, 60000, 1000, 1200, 600, 652.9, 2250)

	out := p.Advance(Inputs{
		DtHr:             1.0 / 3600.0,
		PressurePsia:     2250,
		THotF:            620,
		TColdF:           560,
		SurgeFlowLbPerHr: 3600, // 1 lb/s insurge for 1s
		HeaterMode:       HeaterOff,
	})
	total := out.WaterMassLb + out.SteamMassLb
	if total <= 61000-1 {
		t.Fatalf("expected insurge to add ~1lb, got total=%v", total)
	}
}

func TestReliefOpensAbovePORVSetpoint(t *testing.T) {
	c := testConstants()
	p := NewTwoPhase(c, 60000, 2000, 1200, 600, 668.1, 2350) // 2335.3 psig ~ at setpoint

	out := p.Advance(Inputs{
		DtHr:         1.0 / 3600.0,
		PressurePsia: 2350,
		THotF:        620,
		TColdF:       560,
		HeaterMode:   HeaterOff,
	})
	if !out.PORVOpen {
		t.Fatalf("expected PORV open above setpoint pressure")
	}
	if out.ReliefFlowLb <= 0 {
		t.Fatalf("expected positive relief flow once PORV opens")
	}
}

func TestHeaterDemandFullBelowThreshold(t *testing.T) {
	p := NewTwoPhase(testConstants(), 60000, 1000, 1200, 600, 600, 2100)
	d := p.demandHeaterKW(2100-14.7, HeaterAutoPID, 0, ratedHeaterKW)
	if d != ratedHeaterKW {
		t.Fatalf("expected full heater demand below threshold, got %v", d)
	}
}

func TestHeaterDemandZeroAboveThreshold(t *testing.T) {
	p := NewTwoPhase(testConstants(), 60000, 1000, 1200, 600, 600, 2300)
	d := p.demandHeaterKW(2300-14.7, HeaterAutoPID, 0, ratedHeaterKW)
	if d != 0 {
		t.Fatalf("expected zero heater demand above threshold, got %v", d)
	}
}

func TestSprayDemandRampsBetweenBounds(t *testing.T) {
	c := testConstants()
	p := NewTwoPhase(c, 60000, 1000, 1200, 600, 600, 2250)
	low := p.demandSprayGPM(c.SprayZeroBelowPsig - 1)
	mid := p.demandSprayGPM((c.SprayZeroBelowPsig + c.SprayMaxAbovePsig) / 2)
	high := p.demandSprayGPM(c.SprayMaxAbovePsig + 10)

	if low != 0 {
		t.Fatalf("expected zero spray below SprayZeroBelowPsig, got %v", low)
	}
	if mid < c.SprayMinGPM || mid > c.SprayMaxGPM {
		t.Fatalf("expected mid spray within [min,max], got %v", mid)
	}
	if high != c.SprayMaxGPM {
		t.Fatalf("expected max spray above SprayMaxAbovePsig, got %v", high)
	}
}

func TestBubbleFSMFullSequence(t *testing.T) {
	c := testConstants()
	f := NewBubbleFSM(c)

	if ev := f.Begin(); ev == nil || ev.To != PhaseDetection {
		t.Fatalf("expected transition to Detection")
	}

	// Drive through Detection and Verification holds.
	for i := 0; i < int(detectionHoldS)+1; i++ {
		f.Advance(1.0/3600.0, 60000, 100)
	}
	if f.Phase() != PhaseVerification {
		t.Fatalf("expected Verification after detection hold, got %v", f.Phase())
	}
	for i := 0; i < int(verificationHoldS)+1; i++ {
		f.Advance(1.0/3600.0, 60000, 100)
	}
	if f.Phase() != PhaseDrain {
		t.Fatalf("expected Drain after verification hold, got %v", f.Phase())
	}

	ev, _ := f.Advance(1.0/3600.0, 50000, c.TargetBubbleLevelPct-1)
	if ev == nil || ev.To != PhaseStabilize {
		t.Fatalf("expected Stabilize once level reaches target, got %v", f.Phase())
	}

	for i := 0; i < int(stabilizeHoldS)+1; i++ {
		f.Advance(1.0/3600.0, 50000, c.TargetBubbleLevelPct)
	}
	if f.Phase() != PhasePressurize {
		t.Fatalf("expected Pressurize after stabilize hold, got %v", f.Phase())
	}

	if ev := f.CompletePressurize(); ev == nil || ev.To != PhaseComplete {
		t.Fatalf("expected Complete after CompletePressurize")
	}
}

func TestReconcileWithinEpsilonSucceeds(t *testing.T) {
	c := testConstants()
	f := NewBubbleFSM(c)
	got, err := f.Reconcile(60000, 60000+c.ReconciliationEpsLb/2)
	if err != nil {
		t.Fatalf("unexpected reconcile error: %v", err)
	}
	if got != 60000 {
		t.Fatalf("expected canonical mass preserved, got %v", got)
	}
}

func TestReconcileBeyondErrFails(t *testing.T) {
	c := testConstants()
	f := NewBubbleFSM(c)
	_, err := f.Reconcile(60000, 60000+c.ReconciliationErrLb*2)
	if err == nil {
		t.Fatalf("expected RegimeHandoffFailure beyond error threshold")
	}
}
