// Package rcp implements the reactor coolant pump sequencer of spec.md
// §4.9: staggered startup gated on bubble-formed + pressure, exponential
// coastdown on trip/stop, affinity-law flow scaling, and natural
// circulation once all pumps are stopped.
package rcp

import (
	"math"

	"github.com/fourloop/pwrcore/internal/plantconst"
)

// Pump is a single RCP's running state, spec.md §3.
type Pump struct {
	running       bool
	speedFrac     float64 // 0..1 of rated speed; decays exponentially on trip
	startDelayS   float64 // remaining stagger delay before this pump may start
}

// Sequencer manages all four RCPs, spec.md §4.9.
type Sequencer struct {
	c     plantconst.RCPConstants
	pumps [4]Pump

	startCommanded bool
	startElapsedS  float64
}

// New creates a Sequencer with all pumps stopped.
func New(c plantconst.RCPConstants) *Sequencer {
	return &Sequencer{c: c}
}

// StartAll commands a staggered start of all pumps, gated by the caller on
// bubble-formed + pressure >= StartMinPressurePsig, spec.md §4.9.
func (s *Sequencer) StartAll(bubbleFormed bool, pressurePsig float64) bool {
	if !bubbleFormed || pressurePsig < s.c.StartMinPressurePsig {
		return false
	}
	s.startCommanded = true
	s.startElapsedS = 0
	for i := range s.pumps {
		delay := s.c.FirstPumpDelayS
		if i > 0 {
			delay = s.c.FirstPumpDelayS + float64(i)*s.c.SubsequentPumpIntervalS
		}
		s.pumps[i].startDelayS = delay
	}
	return true
}

// TripAll trips all running pumps into coastdown, spec.md §4.9/§4.11.
func (s *Sequencer) TripAll() {
	for i := range s.pumps {
		s.pumps[i].running = false
	}
	s.startCommanded = false
}

// Advance steps all pumps by dtHr.
func (s *Sequencer) Advance(dtHr float64) {
	dtS := dtHr * 3600.0
	if s.startCommanded {
		s.startElapsedS += dtS
		for i := range s.pumps {
			p := &s.pumps[i]
			if !p.running && s.startElapsedS >= p.startDelayS {
				p.running = true
				p.speedFrac = 1.0
			}
		}
	}

	tau := s.c.CoastdownTauS
	for i := range s.pumps {
		p := &s.pumps[i]
		if p.running {
			p.speedFrac = 1.0
			continue
		}
		if p.speedFrac > 0 {
			p.speedFrac *= math.Exp(-dtS / tau)
			if p.speedFrac < 1e-4 {
				p.speedFrac = 0
			}
		}
	}
}

// RunningCount returns how many pumps are at full running speed.
func (s *Sequencer) RunningCount() int {
	n := 0
	for _, p := range s.pumps {
		if p.running {
			n++
		}
	}
	return n
}

// TotalFlowGPM returns the sequencer's contribution to RCS flow: running
// pumps contribute nominal flow (affinity laws applied to any coasting
// pumps' residual speed), plus natural circulation once all pumps are
// stopped and fully decayed, spec.md §4.9.
func (s *Sequencer) TotalFlowGPM(deltaTHotColdF float64) float64 {
	total := 0.0
	anyMoving := false
	for _, p := range s.pumps {
		if p.speedFrac > 0 {
			anyMoving = true
			// Affinity law: flow scales linearly with speed (centrifugal
			// pump Q proportional to N).
			total += s.c.NominalFlowGPMPerPump * p.speedFrac
		}
	}
	if !anyMoving {
		return s.naturalCirculationGPM(deltaTHotColdF)
	}
	return total
}

// naturalCirculationGPM approximates buoyancy-driven flow once all pumps
// are stopped, spec.md §4.9: proportional to delta-T above a threshold,
// bounded to [NatCircMinGPM, NatCircMaxGPM].
func (s *Sequencer) naturalCirculationGPM(deltaTHotColdF float64) float64 {
	if deltaTHotColdF < s.c.NatCircThresholdDeltaTF {
		return 0
	}
	const refDeltaTF = 30.0 // delta-T at which nat-circ flow saturates toward max
	frac := deltaTHotColdF / refDeltaTF
	if frac > 1 {
		frac = 1
	}
	return s.c.NatCircMinGPM + frac*(s.c.NatCircMaxGPM-s.c.NatCircMinGPM)
}

// HeatMWt returns the total pump heat addition to the RCS from all
// currently-moving pumps, spec.md §4.9 "pump heat = 5.25 MWt/pump running".
func (s *Sequencer) HeatMWt() float64 {
	total := 0.0
	for _, p := range s.pumps {
		total += s.c.HeatPerPumpMW * p.speedFrac
	}
	return total
}

// RunningMask returns a bit per pump (bit i set = pump i running at speed),
// spec.md §6 "active_rcp_mask".
func (s *Sequencer) RunningMask() uint8 {
	var mask uint8
	for i, p := range s.pumps {
		if p.running {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// Speeds returns the four pumps' speed fractions for telemetry.
func (s *Sequencer) Speeds() [4]float64 {
	var out [4]float64
	for i, p := range s.pumps {
		out[i] = p.speedFrac
	}
	return out
}
