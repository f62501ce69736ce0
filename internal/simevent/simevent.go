// Package simevent defines the simulation event envelope of spec.md §6:
// every alarm transition, regime change, rod-limit hit, and trip is wrapped
// in a common envelope carrying a unique ID and simulation time, grounded
// on protocol.Envelope's id/timestamp/type shape.
package simevent

import "github.com/google/uuid"

// Kind identifies the category of a simulation event, spec.md §6.
type Kind string

const (
	KindAlarmSet          Kind = "alarm.set"
	KindAlarmCleared      Kind = "alarm.cleared"
	KindRegimeTransition  Kind = "regime.transition"
	KindBankAtLimit       Kind = "rodbank.at_limit"
	KindTrip              Kind = "reactor.trip"
	KindWarning           Kind = "warning"
	KindScenarioStarted   Kind = "scenario.started"
	KindScenarioCompleted Kind = "scenario.completed"
	KindModeChanged       Kind = "mode.changed"
	KindInputRejected     Kind = "input.rejected"
)

// Event is the common envelope for every simulation event, spec.md §6.
type Event struct {
	ID         string                 `json:"id"`
	SimTimeHr  float64                `json:"sim_time_hr"`
	Kind       Kind                   `json:"kind"`
	Message    string                 `json:"message"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// New creates an Event with a fresh UUID, spec.md §6 "each event carries a
// unique id and the simulation time it occurred at".
func New(simTimeHr float64, kind Kind, message string, attrs map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		SimTimeHr:  simTimeHr,
		Kind:       kind,
		Message:    message,
		Attributes: attrs,
	}
}
