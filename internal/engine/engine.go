// Package engine implements the step-orchestrating coordinator of spec.md
// §4.12: it owns one instance of every physics/control subsystem and
// advances them in the fixed order spec.md §2 enumerates, closes the
// coupled pressure solve, reconciles the canonical mass ledger, evaluates
// alarms, and publishes a snapshot plus the step's events.
//
// Grounded on testmanager.Manager/TestSession's lifecycle shape (a single
// owning struct, a New constructor, per-call mutation methods, Info()/
// Snapshot()-style projections) generalized from "one test session per
// station" to "one physics engine per scenario run".
package engine

import (
	"fmt"

	"github.com/fourloop/pwrcore/internal/alarm"
	"github.com/fourloop/pwrcore/internal/coupledthermo"
	"github.com/fourloop/pwrcore/internal/cvcs"
	"github.com/fourloop/pwrcore/internal/eventbus"
	"github.com/fourloop/pwrcore/internal/fuel"
	"github.com/fourloop/pwrcore/internal/kinetics"
	"github.com/fourloop/pwrcore/internal/persistence"
	"github.com/fourloop/pwrcore/internal/plantconfig"
	"github.com/fourloop/pwrcore/internal/plantconst"
	"github.com/fourloop/pwrcore/internal/pzr"
	"github.com/fourloop/pwrcore/internal/rcp"
	"github.com/fourloop/pwrcore/internal/rcs"
	"github.com/fourloop/pwrcore/internal/rodbank"
	"github.com/fourloop/pwrcore/internal/sg"
	"github.com/fourloop/pwrcore/internal/simerrors"
	"github.com/fourloop/pwrcore/internal/simevent"
	"github.com/fourloop/pwrcore/internal/solidplant"
)

const (
	waterDensityLbFt3 = 49.9
	pzrNominalMassLb   = 60000.0
)

// Inputs are the operator/external commands for one step, spec.md §2
// "operator inputs".
type Inputs struct {
	DtHr float64

	RodTargets map[rodbank.ID]float64 // banks absent from the map keep their current target
	TripReactor bool

	HeaterMode     pzr.HeaterMode
	HeaterManualKW float64
	SprayOverrideFrac *float64

	ChargingSetpointOverride *float64 // pressure (solid) or level pct (two-phase)
	BoronMakeupPPM           float64  // boron concentration of makeup water; Step does not read this field

	SteamDemandGPM float64 // 0 = isolated SG, spec.md Non-goals (no turbine/condenser modeled)

	StartRCPs bool
	TripRCPs  bool

	RequestedMode *Mode // nil = no transition requested, spec.md §6 "request_mode(mode)"
}

// Result is the per-step output, spec.md §4.12 "step(dt_hr, inputs) ->
// StepResult{snapshot, events}".
type Result struct {
	Snapshot Snapshot
	Events   []simevent.Event
}

// Engine owns all per-scenario subsystem state, spec.md §4.12.
type Engine struct {
	constants plantconst.Plant

	reactor *kinetics.Reactor
	rods    *rodbank.Sequencer
	core    *fuel.Core
	rcsLoop *rcs.Loop
	sgBank  *sg.Bank
	rcpSeq  *rcp.Sequencer

	vct     *cvcs.VCT
	chargingCtl *cvcs.LevelController
	cvcsCtl *cvcs.Controller
	lastBoundary cvcs.Boundary

	alarmMgr *alarm.Manager

	mode Mode

	regime      coupledthermo.Regime
	solid       *solidplant.Plant
	twoPhase    *pzr.Pressurizer
	bubbleFSM   *pzr.BubbleFSM
	drainWaterMassLb  float64 // tracked locally during Detection/Verification/Drain
	bubbleSteamMassLb float64 // steam accumulated in the PZR during Drain, tracked independently of canonicalMassLb for a meaningful RTCC check

	prevRCSTAvgF float64 // average RCS temperature at the start of the current step, coupledthermo's ΔT reference

	canonicalMassLb float64
	simTimeHr       float64
	stepCount       int64

	eventSink *eventbus.Sink
	store     *persistence.Store
	runID     string
}

// Option configures an Engine at construction, spec.md §4.12.
type Option func(*Engine)

// WithEventSink attaches an optional non-blocking Redis event sink.
func WithEventSink(s *eventbus.Sink) Option {
	return func(e *Engine) { e.eventSink = s }
}

// WithPersistence attaches an optional sqlite run log.
func WithPersistence(s *persistence.Store, runID string) Option {
	return func(e *Engine) { e.store = s; e.runID = runID }
}

// New creates an Engine from named initial conditions and plant constants,
// spec.md §4.12 "New(initial_conditions) -> Engine".
func New(constants plantconst.Plant, ic *plantconfig.InitialConditions, opts ...Option) *Engine {
	e := &Engine{constants: constants}
	e.initFromIC(ic)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) initFromIC(ic *plantconfig.InitialConditions) {
	c := e.constants

	e.reactor = kinetics.New(c.Kinetics, ic.PowerFrac, ic.BoronPPM, c.Kinetics.RefFuelTempF, ic.RCSTAvgF)
	e.rods = rodbank.New(c.Kinetics, c.Alarm, ic.RodStartSteps)
	e.core = fuel.NewCore(0.3, ic.RCSTAvgF)
	e.rcsLoop = rcs.New(c.RCS, ic.RCSTAvgF)
	e.sgBank = sg.NewBank(c.SG, ic.SGSecondaryTempF, ic.SGSecondaryPressurePsia)
	e.rcpSeq = rcp.New(c.RCP)

	e.vct = cvcs.NewVCT(c.CVCS, ic.VCTLevelGal, ic.BoronPPM)
	e.chargingCtl = cvcs.NewLevelController(ic.RCSPressurePsia, 0.5, 0.01, 0, 200)
	e.cvcsCtl = cvcs.New(c.CVCS, e.vct, e.chargingCtl, ic.BoronPPM)

	e.alarmMgr = alarm.New(c.Alarm)
	e.bubbleFSM = pzr.NewBubbleFSM(c.PZR)

	e.mode = modeForIC(ic.RegimeSolid, ic.PowerFrac)
	e.prevRCSTAvgF = ic.RCSTAvgF

	if ic.RegimeSolid {
		e.regime = coupledthermo.RegimeSolidPlant
		ctl := solidplant.NewController(ic.RCSPressurePsia, 0.2, 0.005, -500, 500)
		surge := solidplant.NewSurgeLine(5000)
		e.solid = solidplant.New(c.RCS, ic.RCSTAvgF, ic.RCSPressurePsia, ic.PZRWallTempF, ctl, surge)
		e.canonicalMassLb = c.RCS.WaterVolumeFt3*waterDensityLbFt3 + pzrNominalMassLb
	} else {
		e.regime = coupledthermo.RegimeTwoPhase
		waterVol := ic.PZRWaterMassLb / waterDensityLbFt3
		steamVol := c.PZR.TotalVolumeFt3 - waterVol
		e.twoPhase = pzr.NewTwoPhase(c.PZR, ic.PZRWaterMassLb, ic.PZRSteamMassLb, waterVol, steamVol, ic.PZRWallTempF, ic.RCSPressurePsia)
		e.canonicalMassLb = c.RCS.WaterVolumeFt3*waterDensityLbFt3 + ic.PZRWaterMassLb + ic.PZRSteamMassLb
	}

	if ic.RCPCountRunning > 0 {
		e.rcpSeq.StartAll(true, ic.RCSPressurePsia-14.7)
		for i := 0; i < 50; i++ {
			e.rcpSeq.Advance(1.0 / 3600.0)
		}
	}
}

// currentPressurePsia returns the active regime's pressure.
func (e *Engine) currentPressurePsia() float64 {
	if e.regime == coupledthermo.RegimeSolidPlant {
		return e.solid.PressurePsia()
	}
	return e.twoPhase.PrevPressurePsia()
}

// Step advances the simulation by one dt, spec.md §2 step ordering / §4.12.
func (e *Engine) Step(in Inputs) (Result, error) {
	var events []simevent.Event
	emit := func(kind simevent.Kind, msg string, attrs map[string]interface{}) {
		ev := simevent.New(e.simTimeHr, kind, msg, attrs)
		events = append(events, ev)
		e.eventSink.Publish(ev)
	}

	// 1. operator inputs
	for id, target := range in.RodTargets {
		e.rods.SetTarget(id, target)
	}
	if in.TripReactor {
		e.reactor.Trip()
		e.rods.Trip()
		e.rcpSeq.TripAll()
		e.mode = ModeTripped
		emit(simevent.KindTrip, "reactor trip commanded", nil)
	}
	if in.TripRCPs {
		e.rcpSeq.TripAll()
	}
	if in.RequestedMode != nil {
		if ok, reason := e.RequestMode(*in.RequestedMode); ok {
			emit(simevent.KindModeChanged, fmt.Sprintf("mode -> %s", e.mode), nil)
		} else {
			emit(simevent.KindInputRejected, fmt.Sprintf("request_mode(%s) rejected: %s", *in.RequestedMode, reason), nil)
		}
	}

	// 2. reactor/kinetics
	e.rods.Advance(in.DtHr)
	refBoronPPM := e.cvcsCtl.BoronPPMAtRCS()
	e.reactor.SetBoron(refBoronPPM)
	e.reactor.Advance(in.DtHr, e.rods.EffectiveInsertionFrac(), refBoronPPM)
	thermalPowerMWt := e.reactor.ThermalPowerMWt()

	// 3. fuel -> coolant heat transfer
	e.core.Advance(thermalPowerMWt, e.rcsLoop.TColdF())
	e.reactor.SetTemperatures(e.core.Average.EffectiveTempF(), e.rcsLoop.TAvgF())

	// 4. SG heat removal
	sgIn := sg.Inputs{
		DtHr:           in.DtHr,
		PrimaryTHotF:   e.rcsLoop.THotF(),
		PrimaryTColdF:  e.rcsLoop.TColdF(),
		FeedwaterGPM:   in.SteamDemandGPM,
		SteamDemandGPM: in.SteamDemandGPM,
		Isolated:       in.SteamDemandGPM <= 0,
		AuxHeatingMWt:  0,
	}
	sgHeatMWt := e.sgBank.TotalHeatRemovedMWt(sgIn)

	// 5. RCP / natural circulation flow
	if in.StartRCPs {
		e.rcpSeq.StartAll(e.bubbleFSM.Phase() == pzr.PhaseComplete, e.currentPressurePsia()-14.7)
	}
	e.rcpSeq.Advance(in.DtHr)
	flowGPM := e.rcpSeq.TotalFlowGPM(e.rcsLoop.THotF() - e.rcsLoop.TColdF())
	rcpHeatMWt := e.rcpSeq.HeatMWt()

	// 6. RCS loop energy balance
	rcsOut := e.rcsLoop.Advance(rcs.Inputs{
		DtHr:           in.DtHr,
		CoreThermalMWt: thermalPowerMWt,
		RCPHeatMWt:     rcpHeatMWt,
		SGRemovalMWt:   sgHeatMWt,
		FlowGPM:        flowGPM,
	})

	// 7. CVCS boundary flows
	processValue := e.currentPressurePsia()
	if e.regime == coupledthermo.RegimeTwoPhase {
		processValue = e.twoPhase.LevelPct()
	}
	if in.ChargingSetpointOverride != nil {
		e.chargingCtl.SetSetpoint(*in.ChargingSetpointOverride)
	}
	boundary := e.cvcsCtl.Advance(in.DtHr, processValue, e.rcpSeq.RunningCount())
	e.lastBoundary = boundary
	e.canonicalMassLb += boundary.NetRCSMassFlowLbPerHr() * in.DtHr

	// 8-9. regime selector + coupled solver
	var pressurePsia float64
	var err error
	switch e.regime {
	case coupledthermo.RegimeSolidPlant:
		pressurePsia, err = e.stepSolidPlant(in, rcsOut, boundary, emit)
	default:
		pressurePsia, err = e.stepTwoPhase(in, rcsOut, boundary, emit)
	}
	if err != nil {
		return Result{}, &simerrors.StepFault{Kind: err}
	}

	// 10. alarms
	pressurePsig := pressurePsia - 14.7
	conds := e.alarmMgr.EvaluateStandard(pressurePsig)
	conds[alarm.KindVCTLowLevel] = e.cvcsCtl.VCTLevelPct() < e.constants.CVCS.VCTMakeupThresholdPct
	conds[alarm.KindVCTHighLevel] = e.cvcsCtl.VCTLevelPct() > e.constants.CVCS.VCTDivertHighLevelPct
	if limited := e.rods.AnyAtLimit(); len(limited) > 0 {
		conds[alarm.KindRodAtLimit] = true
	} else {
		conds[alarm.KindRodAtLimit] = false
	}
	for _, tr := range e.alarmMgr.Evaluate(conds) {
		kind := simevent.KindAlarmCleared
		if tr.Set {
			kind = simevent.KindAlarmSet
		}
		emit(kind, tr.Kind.String(), map[string]interface{}{"severity": tr.Severity.String()})
	}
	if e.alarmMgr.AnyTripSet() && !e.reactor.Tripped() {
		e.reactor.Trip()
		e.rods.Trip()
		e.mode = ModeTripped
		emit(simevent.KindTrip, "automatic trip on alarm", nil)
	}
	if e.reactor.Tripped() {
		e.mode = ModeTripped
	}

	e.simTimeHr += in.DtHr
	e.stepCount++

	snap := e.Snapshot()
	if e.store != nil {
		e.store.RecordSnapshot(persistence.Snapshot{
			RunID: e.runID, SimTimeHr: snap.SimTimeHr, PressurePsia: snap.RCSPressurePsia,
			TAvgF: snap.RCSTAvgF, PowerFrac: snap.NeutronPowerFrac, PZRLevelPct: snap.PZRLevelPct,
			Regime: snap.RegimeName,
		})
		for _, ev := range events {
			e.store.RecordEvent(persistence.EventRow{ID: ev.ID, RunID: e.runID, SimTimeHr: ev.SimTimeHr, Kind: string(ev.Kind), Message: ev.Message})
		}
	}

	return Result{Snapshot: snap, Events: events}, nil
}

func (e *Engine) stepSolidPlant(in Inputs, rcsOut rcs.Output, boundary cvcs.Boundary, emit func(simevent.Kind, string, map[string]interface{})) (float64, error) {
	out, err := e.solid.Advance(in.DtHr, rcsOut.TAvgF)
	if err != nil {
		return 0, err
	}

	if out.BubbleTriggered && e.bubbleFSM.Phase() == pzr.PhaseNone {
		e.bubbleFSM.Begin()
		e.drainWaterMassLb = pzrNominalMassLb
		e.bubbleSteamMassLb = 0
		emit(simevent.KindRegimeTransition, "bubble formation detected", nil)
	}

	// Drain boils PZR water off to the letdown path at a fixed rate; the
	// heater-driven fraction of that mass flashes to steam in place (tracked
	// here, independently of canonicalMassLb's boundary-flow bookkeeping) so
	// the Stabilize handoff has a genuine reconstructed-vs-canonical check.
	const drainRateLbPerHr = 1200.0
	const drainToSteamFrac = 0.15
	if e.bubbleFSM.Phase() == pzr.PhaseDrain {
		drainedLb := drainRateLbPerHr * in.DtHr
		if drainedLb > e.drainWaterMassLb {
			drainedLb = e.drainWaterMassLb
		}
		e.drainWaterMassLb -= drainedLb
		e.bubbleSteamMassLb += drainedLb * drainToSteamFrac
	}
	levelPct := e.drainWaterMassLb / (e.constants.PZR.TotalVolumeFt3 * waterDensityLbFt3) * 100.0

	ev, warn := e.bubbleFSM.Advance(in.DtHr, e.drainWaterMassLb, levelPct)
	if warn {
		emit(simevent.KindWarning, "bubble drain exceeded directional ceiling", nil)
	}
	if ev != nil {
		emit(simevent.KindRegimeTransition, fmt.Sprintf("%s -> %s", ev.From, ev.To), nil)
		if ev.To == pzr.PhaseStabilize {
			reconstructed := e.constants.RCS.WaterVolumeFt3*waterDensityLbFt3 + e.drainWaterMassLb + e.bubbleSteamMassLb
			canonical, rerr := e.bubbleFSM.Reconcile(e.canonicalMassLb, reconstructed)
			if rerr != nil {
				return 0, rerr
			}
			e.canonicalMassLb = canonical
			if d := e.bubbleFSM.LastReconcileDeltaLb(); d > e.constants.PZR.ReconciliationEpsLb || d < -e.constants.PZR.ReconciliationEpsLb {
				emit(simevent.KindWarning, fmt.Sprintf("RTCC force-reconciled mass delta %.2f lb", d), nil)
			}
			waterVol := e.drainWaterMassLb / waterDensityLbFt3
			steamVol := e.constants.PZR.TotalVolumeFt3 - waterVol
			e.twoPhase = pzr.NewTwoPhase(e.constants.PZR, e.drainWaterMassLb, e.bubbleSteamMassLb, waterVol, steamVol, e.solid.PZRTempF(), e.solid.PressurePsia())
			e.regime = coupledthermo.RegimeTwoPhase
		}
	}

	coupled, err := coupledthermo.Solve(coupledthermo.Input{
		Regime:            coupledthermo.RegimeSolidPlant,
		RCSTAvgF:          rcsOut.TAvgF,
		PrevRCSTAvgF:      e.prevRCSTAvgF,
		RCSPressurePsia:   e.solid.PressurePsia(),
		RCSWaterVolumeFt3: e.constants.RCS.WaterVolumeFt3,
		RCSMetalMassLb:    e.constants.RCS.MetalMassLb,
		PZRWaterMassLb:    e.drainWaterMassLb,
		PZRTotalVolumeFt3: e.constants.PZR.TotalVolumeFt3,
		CanonicalMassLb:   e.canonicalMassLb,
	})
	if err != nil {
		return 0, err
	}
	e.solid.SetPressurePsia(coupled.PressurePsia)
	e.prevRCSTAvgF = rcsOut.TAvgF
	return coupled.PressurePsia, nil
}

func (e *Engine) stepTwoPhase(in Inputs, rcsOut rcs.Output, boundary cvcs.Boundary, emit func(simevent.Kind, string, map[string]interface{})) (float64, error) {
	out := e.twoPhase.Advance(pzr.Inputs{
		DtHr:             in.DtHr,
		PressurePsia:     e.twoPhase.PrevPressurePsia(),
		THotF:            rcsOut.THotF,
		TColdF:           rcsOut.TColdF,
		SurgeFlowLbPerHr: 0,
		HeaterMode:       in.HeaterMode,
		HeaterManualKW:   in.HeaterManualKW,
		SprayOverrideFrac: in.SprayOverrideFrac,
	})
	e.canonicalMassLb -= out.ReliefFlowLb
	if out.PORVOpen {
		emit(simevent.KindWarning, "PORV open", nil)
	}
	if out.SafetyOpen {
		emit(simevent.KindWarning, "safety valve open", nil)
	}

	coupled, err := coupledthermo.Solve(coupledthermo.Input{
		Regime:            coupledthermo.RegimeTwoPhase,
		RCSTAvgF:          rcsOut.TAvgF,
		PrevRCSTAvgF:      e.prevRCSTAvgF,
		RCSPressurePsia:   e.twoPhase.PrevPressurePsia(),
		RCSWaterVolumeFt3: e.constants.RCS.WaterVolumeFt3,
		RCSMetalMassLb:    e.constants.RCS.MetalMassLb,
		PZRWaterMassLb:    out.WaterMassLb,
		PZRSteamMassLb:    out.SteamMassLb,
		PZRTotalVolumeFt3: e.constants.PZR.TotalVolumeFt3,
		CanonicalMassLb:   e.canonicalMassLb,
	})
	if err != nil {
		return 0, err
	}
	e.twoPhase.ApplySolvedState(coupled.PZRWaterMassLb, coupled.PZRSteamMassLb, coupled.PZRWaterVolumeFt3, coupled.PZRSteamVolumeFt3)
	e.twoPhase.SetPrevPressurePsia(coupled.PressurePsia)
	e.prevRCSTAvgF = rcsOut.TAvgF
	return coupled.PressurePsia, nil
}

// Reset reinitializes the Engine to a new set of initial conditions,
// spec.md §4.12 "reset(ic)".
func (e *Engine) Reset(ic *plantconfig.InitialConditions) {
	e.simTimeHr = 0
	e.stepCount = 0
	e.initFromIC(ic)
}

// Snapshot is a point-in-time plant-wide view, spec.md §6 "Snapshot
// surface (read-only structure), including at minimum" the listed fields.
type Snapshot struct {
	SimTimeHr        float64
	Mode             string
	RegimeName       string
	RCSPressurePsia  float64
	RCSTAvgF         float64
	RCSTHotF         float64
	RCSTColdF        float64
	NeutronPowerFrac float64
	ThermalPowerMWt  float64
	Keff             float64
	BoronPPM         float64
	XenonPcm         float64
	Tripped          bool
	RodPositions     [8]float64
	PZRLevelPct      float64
	PZRWaterMassLb   float64
	PZRSteamMassLb   float64
	BubblePhase      string
	VCTLevelPct      float64
	VCTBoronPPM      float64
	ChargingFlowGPM  float64
	LetdownFlowGPM   float64
	SGPressurePsia   float64
	SGTempF          float64
	SGSteamMassLb    float64
	RCPRunningCount  int
	ActiveRCPMask    uint8
	AlarmSet         []string
	CanonicalMassLb  float64
}

// Snapshot returns the Engine's current plant-wide state, spec.md §4.12
// "snapshot() -> PlantSnapshot".
func (e *Engine) Snapshot() Snapshot {
	regimeName := "SolidPlant"
	pressure := 0.0
	pzrLevel := 0.0
	pzrWaterMassLb := 0.0
	pzrSteamMassLb := 0.0
	if e.regime == coupledthermo.RegimeSolidPlant {
		pressure = e.solid.PressurePsia()
		pzrLevel = e.drainWaterMassLb / (e.constants.PZR.TotalVolumeFt3 * waterDensityLbFt3) * 100.0
		pzrWaterMassLb = e.drainWaterMassLb
		pzrSteamMassLb = e.bubbleSteamMassLb
	} else {
		regimeName = "TwoPhase"
		pressure = e.twoPhase.PrevPressurePsia()
		pzs := e.twoPhase.Snapshot()
		pzrLevel = pzs.LevelPct
		pzrWaterMassLb = pzs.WaterMassLb
		pzrSteamMassLb = pzs.SteamMassLb
	}

	rs := e.reactor.Snapshot()

	sgPressurePsia, sgTempF, sgSteamMassLb := e.sgBank.AggregateSnapshot()

	alarmKinds := e.alarmMgr.ActiveKinds()
	alarmSet := make([]string, len(alarmKinds))
	for i, k := range alarmKinds {
		alarmSet[i] = k.String()
	}

	return Snapshot{
		SimTimeHr:        e.simTimeHr,
		Mode:             e.mode.String(),
		RegimeName:       regimeName,
		RCSPressurePsia:  pressure,
		RCSTAvgF:         e.rcsLoop.TAvgF(),
		RCSTHotF:         e.rcsLoop.THotF(),
		RCSTColdF:        e.rcsLoop.TColdF(),
		NeutronPowerFrac: rs.NeutronPowerFrac,
		ThermalPowerMWt:  rs.ThermalPowerMWt,
		Keff:             rs.Keff,
		BoronPPM:         rs.BoronPPM,
		XenonPcm:         rs.XenonPcm,
		Tripped:          rs.Tripped,
		RodPositions:     e.rods.Positions(),
		PZRLevelPct:      pzrLevel,
		PZRWaterMassLb:   pzrWaterMassLb,
		PZRSteamMassLb:   pzrSteamMassLb,
		BubblePhase:      e.bubbleFSM.Phase().String(),
		VCTLevelPct:      e.cvcsCtl.VCTLevelPct(),
		VCTBoronPPM:      e.cvcsCtl.VCTBoronPPM(),
		ChargingFlowGPM:  e.lastBoundary.ChargingGPM,
		LetdownFlowGPM:   e.lastBoundary.LetdownGPM,
		SGPressurePsia:   sgPressurePsia,
		SGTempF:          sgTempF,
		SGSteamMassLb:    sgSteamMassLb,
		RCPRunningCount:  e.rcpSeq.RunningCount(),
		ActiveRCPMask:    e.rcpSeq.RunningMask(),
		AlarmSet:         alarmSet,
		CanonicalMassLb:  e.canonicalMassLb,
	}
}
