// Package rodbank models the eight control/shutdown rod banks of spec.md §3:
// "Rod banks: ordered sequence of 8 (SA..SD shutdown, D..A control)".
package rodbank

import (
	"github.com/fourloop/pwrcore/internal/kinetics"
	"github.com/fourloop/pwrcore/internal/plantconst"
)

// ID identifies one of the eight banks in their physical sequence.
type ID int

const (
	BankSA ID = iota
	BankSB
	BankSC
	BankSD
	BankD
	BankC
	BankB
	BankA
	bankCount
)

// String returns the conventional bank name.
func (b ID) String() string {
	names := [...]string{"SA", "SB", "SC", "SD", "D", "C", "B", "A"}
	if int(b) < 0 || int(b) >= len(names) {
		return "?"
	}
	return names[b]
}

// Bank is the state of a single rod bank, spec.md §3.
type Bank struct {
	ID             ID
	PositionSteps  float64 // 0..228
	TargetSteps    float64
	TripDropping   bool
	dropElapsedS   float64
}

// Sequencer holds all eight banks and drives insertion/withdrawal and trip
// drop dynamics, spec.md §4.2/§4.11.
type Sequencer struct {
	constants plantconst.KineticsConstants
	alarmConstants plantconst.AlarmConstants
	banks     [8]Bank
}

// New creates a Sequencer with all banks at the given starting position
// (steps withdrawn; 228 = fully withdrawn).
func New(kc plantconst.KineticsConstants, ac plantconst.AlarmConstants, startSteps float64) *Sequencer {
	s := &Sequencer{constants: kc, alarmConstants: ac}
	for i := 0; i < int(bankCount); i++ {
		s.banks[i] = Bank{ID: ID(i), PositionSteps: startSteps, TargetSteps: startSteps}
	}
	return s
}

// SetTarget commands a bank to move to targetSteps, clamped to [0,228].
func (s *Sequencer) SetTarget(id ID, targetSteps float64) {
	if id < 0 || int(id) >= len(s.banks) {
		return
	}
	max := float64(s.constants.RodStepsFullRange)
	if targetSteps < 0 {
		targetSteps = 0
	}
	if targetSteps > max {
		targetSteps = max
	}
	s.banks[id].TargetSteps = targetSteps
}

// StopAll halts all bank motion at current position (clears targets).
func (s *Sequencer) StopAll() {
	for i := range s.banks {
		s.banks[i].TargetSteps = s.banks[i].PositionSteps
	}
}

// Trip drops all rods: spec.md §4.11 "Reactor Trip inserts all rods (drop
// time 2s with dashpot at 34 steps)".
func (s *Sequencer) Trip() {
	for i := range s.banks {
		s.banks[i].TripDropping = true
		s.banks[i].TargetSteps = 0
	}
}

// stepRateStepsPerSec is the nominal rod-motion speed outside a trip drop.
const stepRateStepsPerSec = 30.0

// Advance moves all banks by dt (hours) toward their targets (or drops them
// if tripping), spec.md §4.11 drop-time/dashpot behavior.
func (s *Sequencer) Advance(dtHr float64) {
	dtS := dtHr * 3600.0
	dropTimeS := s.alarmConstants.RodDropTimeS
	dashpotSteps := s.alarmConstants.DashpotEngageSteps
	fullRange := float64(s.constants.RodStepsFullRange)

	for i := range s.banks {
		b := &s.banks[i]
		if b.TripDropping {
			b.dropElapsedS += dtS
			// Two-stage drop: fast free-fall from full range to the
			// dashpot engagement height, then a slower dashpot-cushioned
			// final approach, both completing by dropTimeS total.
			fastFrac := 0.8 // fraction of drop time spent in free fall
			fastTimeS := dropTimeS * fastFrac
			if b.dropElapsedS <= fastTimeS {
				frac := b.dropElapsedS / fastTimeS
				b.PositionSteps = fullRange - frac*(fullRange-dashpotSteps)
			} else {
				slowElapsed := b.dropElapsedS - fastTimeS
				slowTimeS := dropTimeS - fastTimeS
				frac := slowElapsed / slowTimeS
				if frac > 1 {
					frac = 1
				}
				b.PositionSteps = dashpotSteps - frac*dashpotSteps
			}
			if b.PositionSteps < 0 {
				b.PositionSteps = 0
			}
			continue
		}

		diff := b.TargetSteps - b.PositionSteps
		if diff == 0 {
			continue
		}
		maxStep := stepRateStepsPerSec * dtS
		if diff > maxStep {
			diff = maxStep
		} else if diff < -maxStep {
			diff = -maxStep
		}
		b.PositionSteps += diff
		if b.PositionSteps < 0 {
			b.PositionSteps = 0
		}
		if b.PositionSteps > fullRange {
			b.PositionSteps = fullRange
		}
	}
}

// AllFullyInserted reports whether every bank is at 0 steps (fully inserted).
func (s *Sequencer) AllFullyInserted() bool {
	for _, b := range s.banks {
		if b.PositionSteps > 0.01 {
			return false
		}
	}
	return true
}

// AnyAtLimit reports banks currently at 0 or full-range, for the
// BankAtLimit event, spec.md §6.
func (s *Sequencer) AnyAtLimit() []ID {
	var out []ID
	fullRange := float64(s.constants.RodStepsFullRange)
	for _, b := range s.banks {
		if b.PositionSteps <= 0.01 || b.PositionSteps >= fullRange-0.01 {
			out = append(out, b.ID)
		}
	}
	return out
}

// EffectiveInsertionFrac returns the weighted total insertion fraction
// [0,1] across all banks accounting for the 100-step overlap between
// adjacent control banks, spec.md §4.2 "bank overlap = 100 steps".
//
// Banks are consumed in physical withdrawal order (SA first, A last); a
// bank's worth is weighted by how far the bank ahead of it in the sequence
// has withdrawn, from 0 at that bank's full insertion up to full weight
// once it has withdrawn past the overlap point.
func (s *Sequencer) EffectiveInsertionFrac() float64 {
	fullRange := float64(s.constants.RodStepsFullRange)
	overlap := float64(s.constants.RodBankOverlapSteps)

	totalWorth := 0.0
	for i := 0; i < len(s.banks); i++ {
		b := s.banks[i]
		insertionFrac := 1.0 - b.PositionSteps/fullRange

		// Overlap discount: a bank's worth is fully counted only when the
		// bank ahead of it (closer to fully withdrawn) has itself passed
		// the overlap threshold; otherwise scale down proportionally to
		// avoid double counting inserted worth across the overlap band.
		weight := 1.0
		if i > 0 {
			ahead := s.banks[i-1]
			aheadWithdrawnSteps := ahead.PositionSteps
			if aheadWithdrawnSteps < overlap {
				weight = aheadWithdrawnSteps / overlap
			}
		}
		totalWorth += kinetics.RodWorthSCurve(insertionFrac) * weight
	}
	return totalWorth / float64(len(s.banks))
}

// Positions returns the 8 bank positions in sequence order, spec.md §6
// "bank_positions[8]".
func (s *Sequencer) Positions() [8]float64 {
	var out [8]float64
	for i, b := range s.banks {
		out[i] = b.PositionSteps
	}
	return out
}

// AnyTripDropping reports whether any bank is currently in a trip drop.
func (s *Sequencer) AnyTripDropping() bool {
	for _, b := range s.banks {
		if b.TripDropping {
			return true
		}
	}
	return false
}

// ClearTripDrop clears the trip-dropping flag on all banks once a new mode
// (e.g. operator re-arm after a trip) resets bank control.
func (s *Sequencer) ClearTripDrop() {
	for i := range s.banks {
		s.banks[i].TripDropping = false
		s.banks[i].dropElapsedS = 0
	}
}
