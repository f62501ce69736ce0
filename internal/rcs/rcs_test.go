package rcs

import (
	"testing"

	"github.com/fourloop/pwrcore/internal/plantconst"
)

func TestAdvanceHeatsUpWithExcessCorePower(t *testing.T) {
	c := plantconst.Default().RCS
	l := New(c, 557)

	out := l.Advance(Inputs{
		DtHr:           1.0,
		CoreThermalMWt: 50,
		RCPHeatMWt:     21,
		SGRemovalMWt:   0,
		FlowGPM:        0,
	})
	if out.TAvgF <= 557 {
		t.Fatalf("expected heatup with net positive power, got %v", out.TAvgF)
	}
}

func TestAdvanceCoolsDownWhenSGRemovalExceedsInput(t *testing.T) {
	c := plantconst.Default().RCS
	l := New(c, 588.5)

	out := l.Advance(Inputs{
		DtHr:           1.0,
		CoreThermalMWt: 100,
		RCPHeatMWt:     21,
		SGRemovalMWt:   3411,
		FlowGPM:        0,
	})
	if out.TAvgF >= 588.5 {
		t.Fatalf("expected cooldown when SG removal dominates, got %v", out.TAvgF)
	}
}

func TestAdvanceSplitsHotColdLegsWithFlow(t *testing.T) {
	c := plantconst.Default().RCS
	l := New(c, 588.5)

	out := l.Advance(Inputs{
		DtHr:           1.0 / 3600.0,
		CoreThermalMWt: 3411,
		RCPHeatMWt:     0,
		SGRemovalMWt:   3411,
		FlowGPM:        97600, // 4 pumps nominal
	})
	if out.THotF <= out.TColdF {
		t.Fatalf("expected hot leg warmer than cold leg at rated power, hot=%v cold=%v", out.THotF, out.TColdF)
	}
}

func TestAdvanceNoFlowZeroDeltaT(t *testing.T) {
	c := plantconst.Default().RCS
	l := New(c, 557)
	out := l.Advance(Inputs{DtHr: 1.0 / 3600.0, CoreThermalMWt: 0, RCPHeatMWt: 0, SGRemovalMWt: 0, FlowGPM: 0})
	if out.THotF != out.TColdF {
		t.Fatalf("expected equal hot/cold legs at zero power/flow, hot=%v cold=%v", out.THotF, out.TColdF)
	}
}
