package fuel

import "testing"

func TestNewChannelStartsUniformAtCoolantTemp(t *testing.T) {
	c := NewChannel(1.0, 0.3, 588.5)
	snap := c.Snapshot()
	for _, temp := range []float64{snap.CenterlineTempF, snap.SurfaceTempF, snap.CladInnerTempF, snap.CladOuterTempF} {
		if temp != 588.5 {
			t.Fatalf("expected all channel temps to start at coolant temp 588.5, got %v", temp)
		}
	}
}

func TestUpdateOrdersTemperaturesCenterlineHottest(t *testing.T) {
	c := NewChannel(1.0, 0.3, 588.5)
	c.Update(1.0e4, 588.5)

	snap := c.Snapshot()
	if snap.CenterlineTempF <= snap.SurfaceTempF {
		t.Fatalf("expected centerline hotter than surface, got centerline=%v surface=%v", snap.CenterlineTempF, snap.SurfaceTempF)
	}
	if snap.SurfaceTempF <= snap.CladInnerTempF {
		t.Fatalf("expected fuel surface hotter than clad inner, got surface=%v cladInner=%v", snap.SurfaceTempF, snap.CladInnerTempF)
	}
	if snap.CladInnerTempF <= snap.CladOuterTempF {
		t.Fatalf("expected clad inner hotter than clad outer, got cladInner=%v cladOuter=%v", snap.CladInnerTempF, snap.CladOuterTempF)
	}
	if snap.CladOuterTempF <= 588.5 {
		t.Fatalf("expected clad outer hotter than coolant, got %v", snap.CladOuterTempF)
	}
}

func TestHotChannelRunsHotterThanAverageChannel(t *testing.T) {
	core := NewCore(0.3, 588.5)
	core.Advance(3411, 588.5)

	if core.Hot.EffectiveTempF() <= core.Average.EffectiveTempF() {
		t.Fatalf("expected hot channel (Fq=2.0) to run hotter than average (Fq=1.0): hot=%v avg=%v",
			core.Hot.EffectiveTempF(), core.Average.EffectiveTempF())
	}
}

func TestMeltMarginShrinksAsPowerRises(t *testing.T) {
	core := NewCore(0.3, 588.5)
	core.Advance(1000, 588.5)
	lowPowerMargin := core.Hot.MeltMarginF()

	core.Advance(3411, 588.5)
	highPowerMargin := core.Hot.MeltMarginF()

	if highPowerMargin >= lowPowerMargin {
		t.Fatalf("expected melt margin to shrink as power rises: low=%v high=%v", lowPowerMargin, highPowerMargin)
	}
}

func TestEffectiveTempIsRowlandsWeighted(t *testing.T) {
	c := NewChannel(1.0, 0.3, 588.5)
	c.Update(1.0e4, 588.5)
	snap := c.Snapshot()

	want := 0.3*snap.CenterlineTempF + 0.7*snap.SurfaceTempF
	if diff := snap.EffectiveTempF - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected Rowlands-weighted effective temp %v, got %v", want, snap.EffectiveTempF)
	}
}

func TestGapConductanceIncreasesFuelTempWithBurnup(t *testing.T) {
	bol := NewChannel(1.0, 0.0, 588.5)
	eol := NewChannel(1.0, 1.0, 588.5)
	bol.Update(1.0e4, 588.5)
	eol.Update(1.0e4, 588.5)

	// Higher EOL gap conductance should transfer heat more efficiently,
	// narrowing the gap's own temperature drop relative to BOL.
	bolGapDrop := bol.Snapshot().SurfaceTempF - bol.Snapshot().CladInnerTempF
	eolGapDrop := eol.Snapshot().SurfaceTempF - eol.Snapshot().CladInnerTempF
	if eolGapDrop >= bolGapDrop {
		t.Fatalf("expected EOL gap temperature drop to be smaller than BOL: bol=%v eol=%v", bolGapDrop, eolGapDrop)
	}
}
