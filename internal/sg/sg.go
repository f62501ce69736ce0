// Package sg implements the secondary-side steam generator model of
// spec.md §4.10: a multi-regime (subcooled, boiling, steam-dump) lumped
// secondary inventory per loop, heat removal from the primary via the tube
// bundle, and the isolated-SG pressure-rise invariant.
package sg

import (
	"github.com/fourloop/pwrcore/internal/fluid"
	"github.com/fourloop/pwrcore/internal/plantconst"
)

// Regime is the secondary-side thermal regime, spec.md §4.10.
type Regime int

const (
	RegimeSubcooled Regime = iota
	RegimeBoiling
	RegimeSteamDump
)

func (r Regime) String() string {
	switch r {
	case RegimeSubcooled:
		return "Subcooled"
	case RegimeBoiling:
		return "Boiling"
	case RegimeSteamDump:
		return "SteamDump"
	default:
		return "?"
	}
}

// Generator is one steam generator's secondary-side state.
type Generator struct {
	c plantconst.SGConstants

	secondaryTempF     float64
	secondaryPressurePsia float64
	waterMassLb        float64
	steamMassLb        float64

	regime     Regime
	steamDumpValveOpenFrac float64
}

const (
	secondaryWaterDensityLbFt3 = 45.0 // approx at SG secondary conditions
)

// New creates a Generator at the given starting conditions, all-subcooled.
func New(c plantconst.SGConstants, secondaryTempF, secondaryPressurePsia float64) *Generator {
	return &Generator{
		c:                     c,
		secondaryTempF:        secondaryTempF,
		secondaryPressurePsia: secondaryPressurePsia,
		waterMassLb:           c.SecondaryVolumeFt3 * secondaryWaterDensityLbFt3,
		regime:                RegimeSubcooled,
	}
}

// Inputs are the per-step drivers for one SG, spec.md §4.10.
type Inputs struct {
	DtHr             float64
	PrimaryTHotF     float64
	PrimaryTColdF    float64
	PrimaryFlowGPM   float64
	FeedwaterGPM     float64
	SteamDemandGPM   float64 // 0 if SG is isolated (no turbine/condenser modeled, Non-goal)
	AuxHeatingMWt    float64 // auxiliary heating, spec.md §9; engine.Step always passes 0
	Isolated         bool
}

// Output is the per-step result, spec.md §4.10.
type Output struct {
	HeatRemovedMWt        float64
	SecondaryPressurePsia float64
	SecondaryTempF        float64
	Regime                Regime
}

// Advance steps one SG's secondary-side model, spec.md §4.10.
func (g *Generator) Advance(in Inputs) Output {
	primaryAvgF := (in.PrimaryTHotF + in.PrimaryTColdF) / 2
	deltaT := primaryAvgF - g.secondaryTempF
	if deltaT < 0 {
		deltaT = 0
	}
	heatBtuPerHr := g.c.UABtuPerHrF * deltaT
	const btuPerHrPerMW = 3.412e6
	heatMWt := heatBtuPerHr / btuPerHrPerMW

	tSat, _ := fluid.TSat(g.secondaryPressurePsia)

	switch {
	case g.secondaryTempF < tSat-1.0:
		g.regime = RegimeSubcooled
	case in.Isolated || in.SteamDemandGPM <= 0:
		g.regime = RegimeSteamDump
	default:
		g.regime = RegimeBoiling
	}

	const cpSecondaryBtuPerLbF = 1.0
	massLb := g.waterMassLb + g.steamMassLb
	if massLb <= 0 {
		massLb = g.c.SecondaryVolumeFt3 * secondaryWaterDensityLbFt3
	}

	switch g.regime {
	case RegimeSubcooled:
		dT := (heatBtuPerHr + in.AuxHeatingMWt*btuPerHrPerMW) * in.DtHr / (massLb * cpSecondaryBtuPerLbF)
		g.secondaryTempF += dT

	case RegimeBoiling:
		// Boiling regime: heat converts water to steam at T_sat; steam
		// leaves via steam demand, feedwater replaces it.
		hfg, _ := fluid.HFG(g.secondaryPressurePsia)
		if hfg > 0 {
			boilLbPerHr := (heatBtuPerHr + in.AuxHeatingMWt*btuPerHrPerMW) / hfg
			boilMass := boilLbPerHr * in.DtHr
			if boilMass > g.waterMassLb {
				boilMass = g.waterMassLb
			}
			g.waterMassLb -= boilMass
			g.steamMassLb += boilMass
		}
		steamOutLb := in.SteamDemandGPM * 8.33 * 60.0 * in.DtHr
		if steamOutLb > g.steamMassLb {
			steamOutLb = g.steamMassLb
		}
		g.steamMassLb -= steamOutLb
		feedLb := in.FeedwaterGPM * 8.33 * 60.0 * in.DtHr
		g.waterMassLb += feedLb
		g.secondaryTempF = tSat

	case RegimeSteamDump:
		// Isolated SG: no steam leaves, so generated steam accumulates and
		// pressure (and thus T_sat) rises — spec.md §4.10 "isolated-SG
		// pressure-rise invariant" — rather than temperature climbing past
		// saturation.
		hfg, _ := fluid.HFG(g.secondaryPressurePsia)
		if hfg > 0 {
			boilLbPerHr := (heatBtuPerHr + in.AuxHeatingMWt*btuPerHrPerMW) / hfg
			boilMass := boilLbPerHr * in.DtHr
			if boilMass > g.waterMassLb {
				boilMass = g.waterMassLb
			}
			g.waterMassLb -= boilMass
			g.steamMassLb += boilMass
		}
		g.secondaryTempF = tSat
	}

	// Pressure follows steam inventory: more trapped steam mass at fixed
	// volume raises vapor density and thus (via the saturation dome)
	// pressure. Approximate via a simple proportional bump keyed off the
	// steam mass fraction of the secondary's fixed volume.
	rhoV, _ := fluid.RhoV(g.secondaryPressurePsia)
	steamVolFt3 := g.c.SecondaryVolumeFt3 - g.waterMassLb/secondaryWaterDensityLbFt3
	if steamVolFt3 < 0 {
		steamVolFt3 = 0
	}
	if steamVolFt3 > 0 {
		impliedRhoV := g.steamMassLb / steamVolFt3
		if impliedRhoV > rhoV {
			const pressureGainPsiPerRhoUnit = 40.0
			g.secondaryPressurePsia += (impliedRhoV - rhoV) * pressureGainPsiPerRhoUnit * in.DtHr
		}
	}

	return Output{
		HeatRemovedMWt:        heatMWt,
		SecondaryPressurePsia: g.secondaryPressurePsia,
		SecondaryTempF:        g.secondaryTempF,
		Regime:                g.regime,
	}
}

// SecondaryPressurePsia, SecondaryTempF, SteamMassLb, Regime accessors.
func (g *Generator) SecondaryPressurePsia() float64 { return g.secondaryPressurePsia }
func (g *Generator) SecondaryTempF() float64        { return g.secondaryTempF }
func (g *Generator) SteamMassLb() float64           { return g.steamMassLb }
func (g *Generator) CurrentRegime() Regime          { return g.regime }

// Bank holds all four steam generators, spec.md §3 "4 loops".
type Bank struct {
	Units [4]*Generator
}

// NewBank creates 4 identical steam generators.
func NewBank(c plantconst.SGConstants, secondaryTempF, secondaryPressurePsia float64) *Bank {
	b := &Bank{}
	for i := range b.Units {
		b.Units[i] = New(c, secondaryTempF, secondaryPressurePsia)
	}
	return b
}

// TotalHeatRemovedMWt sums heat removal across all 4 units for the given
// identical per-loop inputs (caller supplies per-loop primary temperatures
// if loops are asymmetric; this helper assumes symmetric 4-loop operation).
func (b *Bank) TotalHeatRemovedMWt(in Inputs) float64 {
	total := 0.0
	for _, u := range b.Units {
		out := u.Advance(in)
		total += out.HeatRemovedMWt
	}
	return total
}

// AggregateSnapshot reports a bank-wide view for telemetry, spec.md §6
// "sg_pressure/temp/steam_mass": pressure and temperature from unit 0 (the
// 4 units run symmetric inputs under TotalHeatRemovedMWt, so they track
// together), steam mass summed across all 4.
func (b *Bank) AggregateSnapshot() (pressurePsia, tempF, totalSteamMassLb float64) {
	totalSteamMassLb = 0
	for _, u := range b.Units {
		totalSteamMassLb += u.SteamMassLb()
	}
	return b.Units[0].SecondaryPressurePsia(), b.Units[0].SecondaryTempF(), totalSteamMassLb
}
