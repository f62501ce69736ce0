// Package pzr implements the pressurizer two-phase physics of spec.md §4.5
// (surge, flash, spray, wall condensation, rainout, heater, setpoint demand
// layer) and the bubble-formation state machine of spec.md §4.7, which
// share this package because both mutate the same pressurizer mass ledger.
//
// Shaped after internal/mockpump.Pump: a private mutable struct, a
// dt-driven update method, named phases with per-phase entry actions
// (bubble.go), and a Snapshot projection.
package pzr

import (
	"math"

	"github.com/fourloop/pwrcore/internal/fluid"
	"github.com/fourloop/pwrcore/internal/plantconst"
)

// HeaterMode selects how heater demand is computed, spec.md §4.8.
type HeaterMode int

const (
	HeaterOff HeaterMode = iota
	HeaterManualPower
	HeaterAutoBubbleFormation
	HeaterAutoPressurize
	HeaterAutoPID
)

// Pressurizer holds the two-phase (or solid, with SteamMassLb==0) pressurizer
// state, spec.md §3.
type Pressurizer struct {
	c plantconst.PZRConstants

	waterMassLb float64
	steamMassLb float64
	waterVolFt3 float64
	steamVolFt3 float64

	wallTempF         float64
	heaterEffectiveKW float64
	heaterDemandKW    float64
	sprayDemandGPM    float64

	prevPressurePsia float64
}

// NewSolid creates a Pressurizer in the solid (single-phase) regime:
// steam_mass=0, steam_vol=0, spec.md §3 invariant.
func NewSolid(c plantconst.PZRConstants, waterMassLb, wallTempF, pressurePsia float64) *Pressurizer {
	return &Pressurizer{
		c:                c,
		waterMassLb:      waterMassLb,
		waterVolFt3:      c.TotalVolumeFt3,
		wallTempF:        wallTempF,
		prevPressurePsia: pressurePsia,
	}
}

// NewTwoPhase creates a Pressurizer already in the two-phase regime.
func NewTwoPhase(c plantconst.PZRConstants, waterMassLb, steamMassLb, waterVolFt3, steamVolFt3, wallTempF, pressurePsia float64) *Pressurizer {
	return &Pressurizer{
		c:                c,
		waterMassLb:      waterMassLb,
		steamMassLb:      steamMassLb,
		waterVolFt3:      waterVolFt3,
		steamVolFt3:      steamVolFt3,
		wallTempF:        wallTempF,
		prevPressurePsia: pressurePsia,
	}
}

// Inputs are the per-step drivers of two-phase physics, spec.md §4.5.
type Inputs struct {
	DtHr             float64
	PressurePsia     float64 // current pressure (start of step)
	THotF            float64
	TColdF           float64
	SurgeFlowLbPerHr float64 // signed: + = insurge (loop -> PZR)
	HeaterMode       HeaterMode
	HeaterManualKW   float64
	SprayOverrideFrac *float64 // operator spray_demand_fraction override, nil = auto demand layer
	PORVForceOpen    bool
}

// Outputs carries the updated masses/volumes and the ledger-relevant
// boundary flow (relief only — surge stays inside the RCS+PZR boundary and
// is not a canonical-mass boundary flow), spec.md §4.5 "Output contract".
type Outputs struct {
	WaterMassLb       float64
	SteamMassLb       float64
	WallTempF         float64
	HeaterEffectiveKW float64
	SprayFlowGPM      float64
	FlashRateLbPerHr  float64
	ReliefFlowLb      float64 // positive = mass leaving primary via PORV/safety
	PORVOpen          bool
	SafetyOpen        bool
}

// demandHeaterKW implements the spec.md §4.5 setpoint control demand layer
// for heaters: full below 2210 psig, zero above.
func (p *Pressurizer) demandHeaterKW(pressurePsig float64, mode HeaterMode, manualKW, ratedKW float64) float64 {
	switch mode {
	case HeaterOff:
		return 0
	case HeaterManualPower:
		return manualKW
	case HeaterAutoBubbleFormation, HeaterAutoPressurize, HeaterAutoPID:
		if pressurePsig < p.c.HeaterFullBelowPsig {
			return ratedKW
		}
		return 0
	default:
		return 0
	}
}

// demandSprayGPM implements the spray demand layer, spec.md §4.5: zero
// below 2260 psig, modulating to 500-900 gpm above 2280 psig.
func (p *Pressurizer) demandSprayGPM(pressurePsig float64) float64 {
	if pressurePsig < p.c.SprayZeroBelowPsig {
		return 0
	}
	if pressurePsig >= p.c.SprayMaxAbovePsig {
		return p.c.SprayMaxGPM
	}
	frac := (pressurePsig - p.c.SprayZeroBelowPsig) / (p.c.SprayMaxAbovePsig - p.c.SprayZeroBelowPsig)
	return p.c.SprayMinGPM + frac*(p.c.SprayMaxGPM-p.c.SprayMinGPM)
}

const ratedHeaterKW = 1800.0 // typical PWR pressurizer heater bank rating

// Advance applies one step of two-phase physics and returns the updated
// masses/volumes/flows, spec.md §4.5.
func (p *Pressurizer) Advance(in Inputs) Outputs {
	dtHr := in.DtHr
	pressurePsig := in.PressurePsia - 14.7
	tSat, _ := fluid.TSat(in.PressurePsia)
	hfg, _ := fluid.HFG(in.PressurePsia)
	rhoL, _ := fluid.RhoL(tSat, in.PressurePsia)

	// --- Surge flow: subcooled loop water enters/leaves, enthalpy deficit
	// vs saturated water is simply not modeled as extra flash here (the
	// mass itself is handled by the coupled solver via volume balance);
	// pzr.Advance's job is the phase-change processes layered on top.
	surgeMassLb := in.SurgeFlowLbPerHr * dtHr

	waterMass := p.waterMassLb + surgeMassLb
	steamMass := p.steamMassLb

	// --- Flash evaporation: dP/dt < 0 -> water flashes proportional to
	// |dP/dt| and liquid mass, spec.md §4.5.
	dPdtPsiPerHr := 0.0
	if dtHr > 0 {
		dPdtPsiPerHr = (in.PressurePsia - p.prevPressurePsia) / dtHr
	}
	flashRateLbPerHr := 0.0
	if dPdtPsiPerHr < 0 {
		const flashCoeff = 0.02 // lb flashed per (lb water * psi/hr depressurization)
		flashRateLbPerHr = flashCoeff * math.Abs(dPdtPsiPerHr) * waterMass / 1000.0
		flashMass := flashRateLbPerHr * dtHr
		if flashMass > waterMass {
			flashMass = waterMass
		}
		waterMass -= flashMass
		steamMass += flashMass
	}

	// --- Spray condensation: cold spray condenses steam, finite efficiency.
	sprayGPM := 0.0
	if in.SprayOverrideFrac != nil {
		sprayGPM = *in.SprayOverrideFrac * p.c.SprayMaxGPM
	} else {
		sprayGPM = p.demandSprayGPM(pressurePsig)
	}
	if sprayGPM > 0 && steamMass > 0 {
		sprayMassLbPerHr := sprayGPM * 8.33 * 60.0 // gpm -> lb/hr (8.33 lb/gal, 60 min/hr)
		deltaTSteamSpray := tSat - in.TColdF
		if deltaTSteamSpray < 0 {
			deltaTSteamSpray = 0
		}
		// Condensation rate proportional to spray flow and delta-T, scaled
		// by the finite spray efficiency and capped at the steam mass present.
		const condCoeff = 0.0008
		condRateLbPerHr := p.c.SprayEfficiency * condCoeff * sprayMassLbPerHr * deltaTSteamSpray
		condMass := condRateLbPerHr * dtHr
		if condMass > steamMass {
			condMass = steamMass
		}
		steamMass -= condMass
		waterMass += condMass
	}

	// --- Wall condensation: wall cooler than steam condenses steam
	// proportional to delta-T and wall area.
	const wallAreaFt2 = 450.0
	const wallCondCoeff = 0.00015
	wallTemp := p.wallTempF
	if steamMass > 0 && wallTemp < tSat {
		deltaT := tSat - wallTemp
		condMass := wallCondCoeff * wallAreaFt2 * deltaT * dtHr
		if condMass > steamMass {
			condMass = steamMass
		}
		steamMass -= condMass
		waterMass += condMass
	}
	// Wall temperature relaxes toward saturation temperature (lumped
	// capacitance), spec.md §3 "lumped metal temperature".
	const wallTauHr = 0.5
	wallTemp += (dtHr / wallTauHr) * (tSat - wallTemp)

	// --- Rainout: steam that has subcooled below T_sat bulk-condenses.
	// In this lumped model steam is assumed at T_sat by construction, so
	// rainout is folded into the wall/spray terms above; the explicit term
	// below guards against any residual steam mass when water fully fills
	// the volume (steam_vol would go negative otherwise).
	if steamMass < 0 {
		waterMass += steamMass
		steamMass = 0
	}

	// --- Heater: first-order lag on demanded power, spec.md §4.5.
	heaterDemand := p.demandHeaterKW(pressurePsig, in.HeaterMode, in.HeaterManualKW, ratedHeaterKW)
	tauHr := p.c.HeaterTauSec / 3600.0
	heaterEffective := p.heaterEffectiveKW + (dtHr/tauHr)*(heaterDemand-p.heaterEffectiveKW)
	if heaterEffective < 0 {
		heaterEffective = 0
	}
	// Energy delivered heats water and generates steam proportional to rate.
	heaterBtuPerHr := heaterEffective * 3412.0 // kW -> BTU/hr
	if waterMass > 0 && hfg > 0 {
		boilMassLbPerHr := heaterBtuPerHr / hfg
		boilMass := boilMassLbPerHr * dtHr
		if boilMass > waterMass {
			boilMass = waterMass
		}
		waterMass -= boilMass
		steamMass += boilMass
	}

	// --- Relief: PORV at 2335 psig, safety at 2485 psig, spec.md §4.5.
	reliefLb := 0.0
	porvOpen := in.PORVForceOpen || pressurePsig >= p.c.PORVSetpointPsig
	safetyOpen := pressurePsig >= p.c.SafetySetpointPsig
	if porvOpen || safetyOpen {
		const porvCapacityLbPerHr = 180000.0
		const safetyCapacityLbPerHr = 900000.0
		rate := 0.0
		if porvOpen {
			rate += porvCapacityLbPerHr
		}
		if safetyOpen {
			rate += safetyCapacityLbPerHr
		}
		reliefLb = rate * dtHr
		if reliefLb > steamMass {
			reliefLb = steamMass
		}
		steamMass -= reliefLb
	}

	if waterMass < 0 {
		waterMass = 0
	}
	if steamMass < 0 {
		steamMass = 0
	}

	waterVol := waterMass / rhoL
	if waterVol > p.c.TotalVolumeFt3 {
		waterVol = p.c.TotalVolumeFt3
	}
	steamVol := p.c.TotalVolumeFt3 - waterVol

	p.waterMassLb = waterMass
	p.steamMassLb = steamMass
	p.waterVolFt3 = waterVol
	p.steamVolFt3 = steamVol
	p.wallTempF = wallTemp
	p.heaterEffectiveKW = heaterEffective
	p.heaterDemandKW = heaterDemand
	p.sprayDemandGPM = sprayGPM
	p.prevPressurePsia = in.PressurePsia

	return Outputs{
		WaterMassLb:       waterMass,
		SteamMassLb:       steamMass,
		WallTempF:         wallTemp,
		HeaterEffectiveKW: heaterEffective,
		SprayFlowGPM:      sprayGPM,
		FlashRateLbPerHr:  flashRateLbPerHr,
		ReliefFlowLb:      reliefLb,
		PORVOpen:          porvOpen,
		SafetyOpen:        safetyOpen,
	}
}

// ApplySolvedState overwrites mass/volume state with the coupled solver's
// reconciled result (spec.md §4.4 runs after pzr.Advance each step).
func (p *Pressurizer) ApplySolvedState(waterMassLb, steamMassLb, waterVolFt3, steamVolFt3 float64) {
	p.waterMassLb = waterMassLb
	p.steamMassLb = steamMassLb
	p.waterVolFt3 = waterVolFt3
	p.steamVolFt3 = steamVolFt3
}

// LevelPct returns pzr_level_pct = water_volume / total_volume * 100, spec.md §3.
func (p *Pressurizer) LevelPct() float64 {
	return p.waterVolFt3 / p.c.TotalVolumeFt3 * 100.0
}

// PrevPressurePsia returns the pressure last fed into Advance, the
// reference point its dP/dt flash-evaporation term is computed against.
func (p *Pressurizer) PrevPressurePsia() float64 { return p.prevPressurePsia }

// SetPrevPressurePsia overwrites the tracked reference pressure after the
// coupled solver reconciles a new value, so next step's flash term sees the
// solved pressure rather than the pre-solve estimate Advance was called with.
func (p *Pressurizer) SetPrevPressurePsia(psia float64) { p.prevPressurePsia = psia }

// WaterMassLb, SteamMassLb, WaterVolFt3, SteamVolFt3, WallTempF accessors.
func (p *Pressurizer) WaterMassLb() float64 { return p.waterMassLb }
func (p *Pressurizer) SteamMassLb() float64 { return p.steamMassLb }
func (p *Pressurizer) WaterVolFt3() float64 { return p.waterVolFt3 }
func (p *Pressurizer) SteamVolFt3() float64 { return p.steamVolFt3 }
func (p *Pressurizer) WallTempF() float64   { return p.wallTempF }
func (p *Pressurizer) HeaterEffectiveKW() float64 { return p.heaterEffectiveKW }

// Snapshot is a point-in-time view, spec.md §6.
type Snapshot struct {
	WaterMassLb       float64
	SteamMassLb       float64
	WaterVolFt3       float64
	SteamVolFt3       float64
	LevelPct          float64
	WallTempF         float64
	HeaterEffectiveKW float64
}

// Snapshot returns the pressurizer's current state.
func (p *Pressurizer) Snapshot() Snapshot {
	return Snapshot{
		WaterMassLb:       p.waterMassLb,
		SteamMassLb:       p.steamMassLb,
		WaterVolFt3:       p.waterVolFt3,
		SteamVolFt3:       p.steamVolFt3,
		LevelPct:          p.LevelPct(),
		WallTempF:         p.wallTempF,
		HeaterEffectiveKW: p.heaterEffectiveKW,
	}
}
