package engine

import "github.com/fourloop/pwrcore/internal/pzr"

// Mode is the plant's top-level operating mode, spec.md §3: core-owned
// state distinct from the P-T-V "regime" (solid vs two-phase), which the
// coupled solver selects on independently.
type Mode int

const (
	ModeColdShutdown Mode = iota
	ModeHeatup
	ModeHotStandby
	ModeStartup
	ModePowerOperation
	ModeTripped
)

func (m Mode) String() string {
	switch m {
	case ModeColdShutdown:
		return "ColdShutdown"
	case ModeHeatup:
		return "Heatup"
	case ModeHotStandby:
		return "HotStandby"
	case ModeStartup:
		return "Startup"
	case ModePowerOperation:
		return "PowerOperation"
	case ModeTripped:
		return "Tripped"
	default:
		return "?"
	}
}

// startupToPowerMinFrac gates Startup -> PowerOperation, a generic analog of
// a low-power-permissive interlock, spec.md §6 "request_mode(mode) —
// honored only if permissives satisfied".
const startupToPowerMinFrac = 0.02

// modeForIC picks the starting mode implied by a named initial condition,
// spec.md §8 seed scenarios (ColdShutdownSolid, HotStandby, HotFullPower).
func modeForIC(regimeSolid bool, powerFrac float64) Mode {
	switch {
	case regimeSolid:
		return ModeColdShutdown
	case powerFrac > startupToPowerMinFrac:
		return ModePowerOperation
	default:
		return ModeHotStandby
	}
}

// permissiveForward reports whether the forward transition from the
// Engine's current mode to target is currently permitted. Only the fixed
// sequence ColdShutdown -> Heatup -> HotStandby -> Startup ->
// PowerOperation is ever operator-requestable; Tripped is entered
// automatically on trip, never by request.
func (e *Engine) permissiveForward(target Mode) (bool, string) {
	if e.reactor.Tripped() {
		return false, "reactor tripped"
	}
	switch {
	case e.mode == ModeColdShutdown && target == ModeHeatup:
		return true, ""
	case e.mode == ModeHeatup && target == ModeHotStandby:
		if e.bubbleFSM.Phase() != pzr.PhaseComplete {
			return false, "bubble formation not complete"
		}
		return true, ""
	case e.mode == ModeHotStandby && target == ModeStartup:
		if e.rcpSeq.RunningCount() < 1 {
			return false, "no RCP running"
		}
		return true, ""
	case e.mode == ModeStartup && target == ModePowerOperation:
		if e.reactor.NeutronPowerFrac() < startupToPowerMinFrac {
			return false, "neutron power below startup permissive"
		}
		return true, ""
	default:
		return false, "no forward transition defined from " + e.mode.String() + " to " + target.String()
	}
}

// RequestMode attempts the operator-requested mode transition, spec.md §6
// "request_mode(mode) — honored only if permissives satisfied". Reports
// whether the request was honored and, if rejected, why.
func (e *Engine) RequestMode(target Mode) (bool, string) {
	if target == e.mode {
		return true, ""
	}
	if target == ModeTripped {
		return false, "Tripped is entered automatically, not requested"
	}
	ok, reason := e.permissiveForward(target)
	if !ok {
		return false, reason
	}
	e.mode = target
	return true, ""
}

// Mode returns the Engine's current plant mode.
func (e *Engine) Mode() Mode { return e.mode }
