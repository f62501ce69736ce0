package pzr

import (
	"github.com/fourloop/pwrcore/internal/plantconst"
	"github.com/fourloop/pwrcore/internal/simerrors"
)

// Phase is a bubble-formation state, spec.md §4.7.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseDetection
	PhaseVerification
	PhaseDrain
	PhaseStabilize
	PhasePressurize
	PhaseComplete
)

func (p Phase) String() string {
	names := [...]string{"None", "Detection", "Verification", "Drain", "Stabilize", "Pressurize", "Complete"}
	if int(p) < 0 || int(p) >= len(names) {
		return "?"
	}
	return names[p]
}

// Hold times for each transient-confirmation phase, spec.md §4.7.
const (
	detectionHoldS    = 10.0
	verificationHoldS = 30.0
	stabilizeHoldS    = 120.0
)

// BubbleFSM drives the solid-plant -> two-phase regime handoff, spec.md §4.7.
// Modeled after mockpump.Pump's internal phase machine: named phases, a
// per-phase elapsed timer, and entry actions run on transition.
type BubbleFSM struct {
	c plantconst.PZRConstants

	phase        Phase
	elapsedS     float64
	drainStartLb float64 // PZR water mass at Drain entry, for rate tracking

	lastReconcileDeltaLb float64
	lastReconcileErrored bool
}

// NewBubbleFSM creates an FSM at rest in the solid-plant regime.
func NewBubbleFSM(c plantconst.PZRConstants) *BubbleFSM {
	return &BubbleFSM{c: c, phase: PhaseNone}
}

func (f *BubbleFSM) Phase() Phase { return f.phase }

// Event is emitted on a phase transition, spec.md §6 RegimeTransition.
type Event struct {
	From Phase
	To   Phase
}

// Begin starts bubble formation from PhaseNone once T_pzr >= T_sat(P),
// spec.md §4.6 "solid-plant bubble-formation detection".
func (f *BubbleFSM) Begin() *Event {
	if f.phase != PhaseNone {
		return nil
	}
	f.phase = PhaseDetection
	f.elapsedS = 0
	return &Event{From: PhaseNone, To: PhaseDetection}
}

// Abort returns the FSM to PhaseNone if the saturation condition drops out
// before Drain has committed (Detection/Verification are reversible).
func (f *BubbleFSM) Abort() *Event {
	if f.phase != PhaseDetection && f.phase != PhaseVerification {
		return nil
	}
	from := f.phase
	f.phase = PhaseNone
	f.elapsedS = 0
	return &Event{From: from, To: PhaseNone}
}

// Advance steps the FSM's phase timer and returns a transition event if one
// occurred this step, plus a Warning-level flag if the drain ceiling was
// exceeded (spec.md §9 Open Question: no hard target, 60 sim-minute ceiling
// logged as a warning only).
func (f *BubbleFSM) Advance(dtHr float64, currentWaterMassLb float64, pzrLevelPct float64) (*Event, bool) {
	dtS := dtHr * 3600.0
	f.elapsedS += dtS
	warnDrainOverrun := false

	switch f.phase {
	case PhaseDetection:
		if f.elapsedS >= detectionHoldS {
			f.phase = PhaseVerification
			f.elapsedS = 0
			return &Event{From: PhaseDetection, To: PhaseVerification}, false
		}
	case PhaseVerification:
		if f.elapsedS >= verificationHoldS {
			f.phase = PhaseDrain
			f.elapsedS = 0
			f.drainStartLb = currentWaterMassLb
			return &Event{From: PhaseVerification, To: PhaseDrain}, false
		}
	case PhaseDrain:
		if f.elapsedS/60.0 > f.c.DrainCeilingSimMinutes {
			warnDrainOverrun = true
		}
		if pzrLevelPct <= f.c.TargetBubbleLevelPct {
			f.phase = PhaseStabilize
			f.elapsedS = 0
			return &Event{From: PhaseDrain, To: PhaseStabilize}, warnDrainOverrun
		}
	case PhaseStabilize:
		if f.elapsedS >= stabilizeHoldS {
			f.phase = PhasePressurize
			f.elapsedS = 0
			return &Event{From: PhaseStabilize, To: PhasePressurize}, false
		}
	case PhasePressurize:
		// Pressurize phase completes once the pressure controller (driven
		// externally) reports on-setpoint; engine calls CompletePressurize.
	case PhaseComplete, PhaseNone:
		// terminal / idle
	}
	return nil, warnDrainOverrun
}

// CompletePressurize transitions Pressurize -> Complete once the caller
// (the solid/two-phase pressure controller) reports the operating setpoint
// has been reached and held, spec.md §4.7.
func (f *BubbleFSM) CompletePressurize() *Event {
	if f.phase != PhasePressurize {
		return nil
	}
	f.phase = PhaseComplete
	f.elapsedS = 0
	return &Event{From: PhasePressurize, To: PhaseComplete}
}

// Reconcile implements the Regime Transition Conservation Contract (RTCC),
// spec.md §4.7: snapshot -> reconstruct -> delta -> reconcile -> assert.
//
// canonicalMassLb is the ledger's single source of truth going into the
// transition; reconstructedMassLb is the same quantity recomputed from the
// post-transition regime's volumes*densities. A delta within
// ReconciliationEpsLb is silently accepted; within ReconciliationErrLb it is
// force-reconciled (canonical wins) and logged; beyond that it is a hard
// RegimeHandoffFailure.
func (f *BubbleFSM) Reconcile(canonicalMassLb, reconstructedMassLb float64) (float64, error) {
	delta := reconstructedMassLb - canonicalMassLb
	f.lastReconcileDeltaLb = delta
	absDelta := delta
	if absDelta < 0 {
		absDelta = -absDelta
	}

	if absDelta <= f.c.ReconciliationEpsLb {
		f.lastReconcileErrored = false
		return canonicalMassLb, nil
	}
	if absDelta <= f.c.ReconciliationErrLb {
		f.lastReconcileErrored = false
		return canonicalMassLb, nil
	}
	f.lastReconcileErrored = true
	return canonicalMassLb, &simerrors.RegimeHandoffFailure{DeltaLb: delta}
}

// LastReconcileDeltaLb reports the most recent RTCC delta for diagnostics.
func (f *BubbleFSM) LastReconcileDeltaLb() float64 { return f.lastReconcileDeltaLb }
