// Package cvcs implements the chemical and volume control system of
// spec.md §4.8: charging/letdown PI control, seal injection/return flow
// split (tracked as independent boundary flows — the historical bug this
// package must avoid is netting seal-return-to-RCS against letdown), VCT
// level and inventory, boron transport lag, and a BRS diversion path.
package cvcs

import "github.com/fourloop/pwrcore/internal/plantconst"

// HeaterMode-style enum for which regime CVCS is balancing against.
type ControlMode int

const (
	// ModeSolidPressure balances charging/letdown against RCS pressure
	// (solid-plant regime), spec.md §4.6/§4.8.
	ModeSolidPressure ControlMode = iota
	// ModeTwoPhaseLevel balances charging/letdown against pressurizer
	// level (two-phase regime), spec.md §4.8.
	ModeTwoPhaseLevel
)

// LevelController is a PI controller producing a charging command from a
// level or pressure error, spec.md §4.8.
type LevelController struct {
	kP, kI   float64
	setpoint float64
	integral float64
	outMinGPM, outMaxGPM float64
}

// NewLevelController creates a PI controller clamped to [outMin,outMax] gpm.
func NewLevelController(setpoint, kP, kI, outMin, outMax float64) *LevelController {
	return &LevelController{setpoint: setpoint, kP: kP, kI: kI, outMinGPM: outMin, outMaxGPM: outMax}
}

// SetSetpoint updates the controller's target.
func (c *LevelController) SetSetpoint(v float64) { c.setpoint = v }

// Update returns the commanded charging flow (gpm) for the given dtHr and
// current process value (pressure psia or level pct, per ControlMode).
func (c *LevelController) Update(dtHr, processValue float64) float64 {
	err := c.setpoint - processValue
	c.integral += err * dtHr
	out := c.kP*err + c.kI*c.integral
	if out > c.outMaxGPM {
		out = c.outMaxGPM
		c.integral -= err * dtHr
	}
	if out < c.outMinGPM {
		out = c.outMinGPM
		c.integral -= err * dtHr
	}
	return out
}

// VCT is the volume control tank inventory model, spec.md §4.8.
type VCT struct {
	c           plantconst.CVCSConstants
	levelGal    float64
	boronPPM    float64
	divertToBRS bool
}

// NewVCT creates a VCT at the given starting level and boron concentration.
func NewVCT(c plantconst.CVCSConstants, startLevelGal, boronPPM float64) *VCT {
	return &VCT{c: c, levelGal: startLevelGal, boronPPM: boronPPM}
}

// LevelPct returns the VCT level as a percentage of nominal volume.
func (v *VCT) LevelPct() float64 { return v.levelGal / v.c.VCTNominalVolumeGal * 100.0 }

// BoronPPM returns the VCT's own boron concentration, spec.md §6
// "vct_boron" — distinct from BoronPPMAtRCS's transport-lagged value.
func (v *VCT) BoronPPM() float64 { return v.boronPPM }

// Boundary holds the CVCS per-step boundary flows, each tracked
// independently and NEVER netted against one another, spec.md §4.8.
type Boundary struct {
	ChargingGPM          float64 // into RCS, from VCT
	LetdownGPM           float64 // out of RCS, to VCT/BRS
	SealInjectionGPM     float64 // into RCS, from charging pumps
	SealReturnToVCTGPM   float64 // out of RCP seals, to VCT
	SealReturnToRCSGPM   float64 // out of RCP seals, back to RCS — independent flow
	MakeupGPM            float64 // into VCT, from boric acid/RMWT
	BRSDivertGPM         float64 // out of VCT, to BRS
}

// NetRCSMassFlowLbPerHr returns the net mass flow crossing the RCS boundary
// this step, spec.md §8 mass-conservation invariant: charging + seal
// injection + seal-return-to-RCS in, minus letdown out.
func (b Boundary) NetRCSMassFlowLbPerHr() float64 {
	const lbPerGal = 8.33
	inGPM := b.ChargingGPM + b.SealInjectionGPM + b.SealReturnToRCSGPM
	outGPM := b.LetdownGPM
	return (inGPM - outGPM) * lbPerGal * 60.0
}

// Controller bundles the VCT and charging/letdown control loop, spec.md §4.8.
type Controller struct {
	c          plantconst.CVCSConstants
	vct        *VCT
	chargingCtl *LevelController
	rcpCount   int

	boronTransportLagPPM float64 // delayed boron concentration seen by RCS
}

// New creates a CVCS controller against the given VCT and charging
// controller, with the boron concentration currently seen at the RCS
// (which may lag the VCT's concentration following a recent boration or
// dilution) starting at initialRCSBoronPPM.
func New(c plantconst.CVCSConstants, vct *VCT, chargingCtl *LevelController, initialRCSBoronPPM float64) *Controller {
	return &Controller{c: c, vct: vct, chargingCtl: chargingCtl, boronTransportLagPPM: initialRCSBoronPPM}
}

// Advance computes one step's boundary flows given the running RCP count
// and the current process value for the charging controller (pressure or
// level, depending on regime).
func (ctl *Controller) Advance(dtHr, processValue float64, rcpRunning int) Boundary {
	charging := ctl.chargingCtl.Update(dtHr, processValue)
	if charging < 0 {
		charging = 0 // charging pumps cannot run in reverse; deficit handled by letdown throttling
	}
	letdown := charging // nominal balance; regime controller trims this externally via SetSetpoint

	sealInj := float64(rcpRunning) * ctl.c.SealInjectionGPMPerPump
	sealRetVCT := float64(rcpRunning) * ctl.c.SealReturnToVCTGPMPerPump
	sealRetRCS := float64(rcpRunning) * ctl.c.SealReturnToRCSGPMPerPump

	makeup := 0.0
	divert := 0.0
	levelPct := ctl.vct.LevelPct()
	if levelPct < ctl.c.VCTMakeupThresholdPct {
		makeup = charging - letdown - sealRetVCT // replace what's being drawn down
		if makeup < 0 {
			makeup = 0
		}
	}
	if levelPct > ctl.c.VCTDivertHighLevelPct {
		divert = letdown + sealRetVCT - charging
		if divert < 0 {
			divert = 0
		}
	}

	netVCTGalPerHr := (letdown + sealRetVCT + makeup - charging - divert) * 60.0
	ctl.vct.levelGal += netVCTGalPerHr * dtHr

	tauHr := ctl.c.BoronTransportTauMin / 60.0
	if tauHr > 0 {
		ctl.boronTransportLagPPM += (dtHr / tauHr) * (ctl.vct.boronPPM - ctl.boronTransportLagPPM)
	}

	return Boundary{
		ChargingGPM:        charging,
		LetdownGPM:         letdown,
		SealInjectionGPM:   sealInj,
		SealReturnToVCTGPM: sealRetVCT,
		SealReturnToRCSGPM: sealRetRCS,
		MakeupGPM:          makeup,
		BRSDivertGPM:       divert,
	}
}

// BoronPPMAtRCS returns the lagged boron concentration actually reaching
// the RCS through charging, spec.md §4.8 "first-order boron transport lag".
func (ctl *Controller) BoronPPMAtRCS() float64 { return ctl.boronTransportLagPPM }

// VCTLevelPct returns the current VCT level percentage.
func (ctl *Controller) VCTLevelPct() float64 { return ctl.vct.LevelPct() }

// VCTBoronPPM returns the VCT's own boron concentration, spec.md §6
// "vct_boron".
func (ctl *Controller) VCTBoronPPM() float64 { return ctl.vct.BoronPPM() }
