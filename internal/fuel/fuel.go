// Package fuel implements the fuel-assembly/core thermal model of spec.md
// §4.3: cylindrical radial conduction from pellet centerline through gap and
// clad to the coolant, for an average (Fq=1.0) and a hot (Fq=2.0) channel.
package fuel

import "math"

// Constants per spec.md §4.3.
const (
	meltTempF            = 5189.0
	pelletConductivity1832F = 1.73 // BTU/hr-ft-degF at 1832 degF
	gapConductanceBOL    = 500.0  // BTU/hr-ft^2-degF
	gapConductanceEOL    = 1760.0
	cladConductivity     = 9.6 // BTU/hr-ft-degF, Zircaloy approx
	pelletRadiusFt       = 0.0164 // ~0.2in radius typical PWR fuel pellet
	gapThicknessFt       = 0.0005
	cladThicknessFt      = 0.0025
)

// Channel holds the thermal state of one radial conduction channel
// (average or hot), spec.md §4.3.
type Channel struct {
	Fq              float64 // radial peaking factor
	burnupFrac      float64 // 0 (BOL) .. 1 (EOL), drives gap conductance
	centerlineTempF float64
	surfaceTempF    float64
	cladInnerTempF  float64
	cladOuterTempF  float64
	effectiveTempF  float64 // Rowlands-weighted average, feeds Doppler
}

// NewChannel creates a channel initialized at a uniform coolant temperature.
func NewChannel(fq, burnupFrac, coolantTempF float64) *Channel {
	return &Channel{
		Fq:              fq,
		burnupFrac:      burnupFrac,
		centerlineTempF: coolantTempF,
		surfaceTempF:    coolantTempF,
		cladInnerTempF:  coolantTempF,
		cladOuterTempF:  coolantTempF,
		effectiveTempF:  coolantTempF,
	}
}

// gapConductance interpolates BOL->EOL gap conductance with burnup.
func (c *Channel) gapConductance() float64 {
	return gapConductanceBOL + c.burnupFrac*(gapConductanceEOL-gapConductanceBOL)
}

// pelletConductivity decreases with temperature, spec.md §4.3.
func pelletConductivity(tF float64) float64 {
	// k(T) decreasing with T, anchored at k(1832F)=1.73; UO2 conductivity
	// roughly follows k ~ 1/(a+b*T).
	const a, b = 0.20, 0.000206
	k := 1.0 / (a + b*tF)
	if k < 0.8 {
		k = 0.8
	}
	return k
}

// Update solves the quasi-steady radial conduction profile for a linear
// heat rate qPrimeBtuPerHrFt driven by averagePowerFrac (of rated power)
// scaled by Fq, given the local coolant temperature. Returns the new
// channel temperatures. A first-order fuel-to-coolant thermal lag is
// applied by the caller (spec.md §4.3 "tau_fuel ~ 7s" is the same lag
// kinetics.Reactor applies to sensed thermal power; fuel.Channel itself
// reports the quasi-steady profile for the instantaneous heat rate).
func (c *Channel) Update(qPrimeBtuPerHrFt, coolantTempF float64) {
	qLocal := qPrimeBtuPerHrFt * c.Fq

	// Clad outer surface: film drop to coolant handled by caller via
	// coolantTempF directly driving clad outer (conduction-dominated model,
	// convective film folded into an effective outer resistance).
	const filmResistanceHrFtF = 0.00015 // hr-ft-degF/BTU per unit length ~ (1/h*2*pi*r)
	deltaTFilm := qLocal * filmResistanceHrFtF
	c.cladOuterTempF = coolantTempF + deltaTFilm

	rClad := math.Log((pelletRadiusFt+gapThicknessFt+cladThicknessFt)/(pelletRadiusFt+gapThicknessFt)) / (2 * math.Pi * cladConductivity)
	c.cladInnerTempF = c.cladOuterTempF + qLocal*rClad

	rGap := 1.0 / (c.gapConductance() * 2 * math.Pi * (pelletRadiusFt + gapThicknessFt/2))
	c.surfaceTempF = c.cladInnerTempF + qLocal*rGap

	k := pelletConductivity(c.surfaceTempF)
	rPellet := 1.0 / (4 * math.Pi * k)
	c.centerlineTempF = c.surfaceTempF + qLocal*rPellet

	// Rowlands weighting: 0.3*Tcenterline + 0.7*Tsurface, a standard
	// effective-fuel-temperature approximation for Doppler feedback.
	c.effectiveTempF = 0.3*c.centerlineTempF + 0.7*c.surfaceTempF
}

// MeltMarginF returns T_melt - T_centerline, spec.md §4.3.
func (c *Channel) MeltMarginF() float64 { return meltTempF - c.centerlineTempF }

// EffectiveTempF returns the Rowlands-weighted effective fuel temperature
// used for Doppler feedback, spec.md §3.
func (c *Channel) EffectiveTempF() float64 { return c.effectiveTempF }

// Snapshot is a point-in-time view of one channel.
type Snapshot struct {
	CenterlineTempF float64
	SurfaceTempF    float64
	CladInnerTempF  float64
	CladOuterTempF  float64
	EffectiveTempF  float64
	MeltMarginF     float64
}

// Snapshot returns the channel's current state.
func (c *Channel) Snapshot() Snapshot {
	return Snapshot{
		CenterlineTempF: c.centerlineTempF,
		SurfaceTempF:    c.surfaceTempF,
		CladInnerTempF:  c.cladInnerTempF,
		CladOuterTempF:  c.cladOuterTempF,
		EffectiveTempF:  c.effectiveTempF,
		MeltMarginF:     c.MeltMarginF(),
	}
}

// Core bundles the average and hot channels, spec.md §4.3 "Two channels".
type Core struct {
	Average *Channel
	Hot     *Channel
}

// NewCore creates a Core at the given burnup and initial coolant temperature.
func NewCore(burnupFrac, coolantTempF float64) *Core {
	return &Core{
		Average: NewChannel(1.0, burnupFrac, coolantTempF),
		Hot:     NewChannel(2.0, burnupFrac, coolantTempF),
	}
}

// Advance updates both channels for the given total thermal power (MWt)
// and coolant temperature, converting power to an approximate per-foot
// linear heat rate for a generic 12-ft active fuel length, 50,952 rods.
func (core *Core) Advance(thermalPowerMWt, coolantTempF float64) {
	const activeLengthFt = 12.0
	const rodCount = 50952.0
	const btuPerHrPerMW = 3.412e6

	totalBtuPerHr := thermalPowerMWt * btuPerHrPerMW
	qPrimeAvg := totalBtuPerHr / (rodCount * activeLengthFt)

	core.Average.Update(qPrimeAvg, coolantTempF)
	core.Hot.Update(qPrimeAvg, coolantTempF)
}
