// Package alarm implements the alarm and trip manager of spec.md §4.11,
// generalizing the single-bool emergency-stop latch of internal/estop into
// a set of independently edge-detected, latched alarm kinds with
// severities, each producing a set/clear event exactly once per transition.
package alarm

import "github.com/fourloop/pwrcore/internal/plantconst"

// Severity classifies an alarm's operational significance, spec.md §4.11.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityTrip
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityTrip:
		return "Trip"
	default:
		return "?"
	}
}

// Kind identifies a specific alarm condition, spec.md §4.11.
type Kind int

const (
	KindHighRCSPressure Kind = iota
	KindLowRCSPressure
	KindHighPZRLevel
	KindLowPZRLevel
	KindPORVOpen
	KindSafetyValveOpen
	KindRodAtLimit
	KindRodDeviation
	KindLowFlow
	KindHighSGPressure
	KindVCTLowLevel
	KindVCTHighLevel
	KindBubbleDrainOverrun
	KindRegimeHandoffFailure
	KindReactorTrip
	kindCount
)

func (k Kind) String() string {
	names := [...]string{
		"HighRCSPressure", "LowRCSPressure", "HighPZRLevel", "LowPZRLevel",
		"PORVOpen", "SafetyValveOpen", "RodAtLimit", "RodDeviation",
		"LowFlow", "HighSGPressure", "VCTLowLevel", "VCTHighLevel",
		"BubbleDrainOverrun", "RegimeHandoffFailure", "ReactorTrip",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "?"
	}
	return names[k]
}

var severityOf = [kindCount]Severity{
	KindHighRCSPressure:     SeverityWarning,
	KindLowRCSPressure:      SeverityWarning,
	KindHighPZRLevel:        SeverityWarning,
	KindLowPZRLevel:         SeverityWarning,
	KindPORVOpen:            SeverityWarning,
	KindSafetyValveOpen:     SeverityTrip,
	KindRodAtLimit:          SeverityInfo,
	KindRodDeviation:        SeverityWarning,
	KindLowFlow:             SeverityTrip,
	KindHighSGPressure:      SeverityWarning,
	KindVCTLowLevel:         SeverityWarning,
	KindVCTHighLevel:        SeverityInfo,
	KindBubbleDrainOverrun:  SeverityWarning,
	KindRegimeHandoffFailure: SeverityTrip,
	KindReactorTrip:         SeverityTrip,
}

// Transition is an edge-detected set/clear event for one alarm kind.
type Transition struct {
	Kind  Kind
	Set   bool // true = newly set this step, false = newly cleared
	Severity Severity
}

// Manager holds the latched state of every alarm kind and emits edge
// transitions, spec.md §4.11. Modeled after estop.Coordinator's
// single-bool latch, generalized to a [kindCount]bool set.
type Manager struct {
	c       plantconst.AlarmConstants
	latched [kindCount]bool
}

// New creates a Manager with all alarms clear.
func New(c plantconst.AlarmConstants) *Manager {
	return &Manager{c: c}
}

// Evaluate sets condition[k] = active for each kind and returns the
// transitions (set or clear edges) that occurred this call. Conditions not
// present in the map are left unchanged (sticky latches persist until
// explicitly cleared by the caller evaluating that kind again).
func (m *Manager) Evaluate(conditions map[Kind]bool) []Transition {
	var out []Transition
	for k, active := range conditions {
		if k < 0 || int(k) >= int(kindCount) {
			continue
		}
		was := m.latched[k]
		if active && !was {
			m.latched[k] = true
			out = append(out, Transition{Kind: k, Set: true, Severity: severityOf[k]})
		} else if !active && was {
			m.latched[k] = false
			out = append(out, Transition{Kind: k, Set: false, Severity: severityOf[k]})
		}
	}
	return out
}

// IsSet reports whether the given alarm kind is currently latched.
func (m *Manager) IsSet(k Kind) bool {
	if k < 0 || int(k) >= int(kindCount) {
		return false
	}
	return m.latched[k]
}

// AnyTripSet reports whether any Trip-severity alarm is currently latched,
// spec.md §4.11 "a Trip-severity alarm commands a reactor trip".
func (m *Manager) AnyTripSet() bool {
	for k, latched := range m.latched {
		if latched && severityOf[k] == SeverityTrip {
			return true
		}
	}
	return false
}

// ActiveKinds returns all currently-latched alarm kinds.
func (m *Manager) ActiveKinds() []Kind {
	var out []Kind
	for k, latched := range m.latched {
		if latched {
			out = append(out, Kind(k))
		}
	}
	return out
}

// EvaluateStandard runs the fixed process-variable threshold checks defined
// directly by spec.md §4.11 constants (pressure high/low); callers add
// additional map entries (VCT level, rod limits, etc.) before calling
// Evaluate, or call this helper and then merge in the rest.
func (m *Manager) EvaluateStandard(rcsPressurePsig float64) map[Kind]bool {
	return map[Kind]bool{
		KindHighRCSPressure: rcsPressurePsig >= m.c.HighRCSPressurePsig,
		KindLowRCSPressure:  rcsPressurePsig <= m.c.LowRCSPressurePsig,
	}
}
