package plantconst

import "testing"

func TestDefaultMatchesRatedPower(t *testing.T) {
	p := Default()
	if p.Kinetics.PowerMWtRated != 3411 {
		t.Fatalf("expected 3411 MWt rated power, got %v", p.Kinetics.PowerMWtRated)
	}
}

func TestDefaultGroupFractionsSumToBetaEff(t *testing.T) {
	p := Default()
	sum := 0.0
	for _, f := range p.Kinetics.GroupFractions {
		sum += f
	}
	const eps = 1e-6
	if diff := sum - p.Kinetics.BetaEff; diff > eps || diff < -eps {
		t.Fatalf("expected group fractions to sum to BetaEff=%v, got %v", p.Kinetics.BetaEff, sum)
	}
}

func TestDefaultSGCountMatchesFourLoop(t *testing.T) {
	p := Default()
	if p.SG.Count != 4 {
		t.Fatalf("expected 4 steam generators, got %d", p.SG.Count)
	}
	if p.RCP.Count != 4 {
		t.Fatalf("expected 4 RCPs, got %d", p.RCP.Count)
	}
}

func TestDefaultAlarmBoundsBracketNominalPressure(t *testing.T) {
	p := Default()
	if p.Alarm.LowRCSPressurePsig >= p.RCS.NominalPressure {
		t.Fatalf("expected low pressure alarm below nominal pressure")
	}
	if p.Alarm.HighRCSPressurePsig <= p.RCS.NominalPressure {
		t.Fatalf("expected high pressure alarm above nominal pressure")
	}
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.RCS.NominalPressure = 1
	if b.RCS.NominalPressure == 1 {
		t.Fatalf("expected Default() to return independent values, not shared state")
	}
}
