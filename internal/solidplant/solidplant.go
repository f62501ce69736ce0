// Package solidplant implements the solid-plant (single-phase, pressurizer
// completely water-solid) pressure response of spec.md §4.6: a PI pressure
// controller driving charging/letdown-mediated pressure control, surge mass
// and conductive surge-line heat transfer between RCS and pressurizer, and
// detection of the bubble-formation trigger condition T_pzr >= T_sat(P).
package solidplant

import (
	"github.com/fourloop/pwrcore/internal/fluid"
	"github.com/fourloop/pwrcore/internal/plantconst"
)

// Controller is a PI pressure controller used only in the solid-plant
// regime, spec.md §4.6 "solid plant pressure control via charging/letdown".
type Controller struct {
	kP, kI   float64
	setpoint float64
	integral float64
	outMin   float64
	outMax   float64
}

// NewController creates a PI controller targeting setpointPsia, with output
// clamped to [outMin, outMax] (a signed charging/letdown rate trim, gpm).
func NewController(setpointPsia, kP, kI, outMin, outMax float64) *Controller {
	return &Controller{setpoint: setpointPsia, kP: kP, kI: kI, outMin: outMin, outMax: outMax}
}

// SetSetpoint updates the target pressure.
func (c *Controller) SetSetpoint(psia float64) { c.setpoint = psia }

// Update advances the controller by dtHr given the current pressure and
// returns the commanded charging/letdown trim (positive = more charging).
func (c *Controller) Update(dtHr, pressurePsia float64) float64 {
	err := c.setpoint - pressurePsia
	c.integral += err * dtHr
	out := c.kP*err + c.kI*c.integral
	if out > c.outMax {
		out = c.outMax
		c.integral -= err * dtHr // anti-windup
	}
	if out < c.outMin {
		out = c.outMin
		c.integral -= err * dtHr
	}
	return out
}

// SurgeLine models the conductive heat transfer and mass exchange between
// the RCS hot leg and the pressurizer through the surge line, spec.md §4.6.
type SurgeLine struct {
	conductanceBtuPerHrF float64
}

// NewSurgeLine creates a surge line with the given lumped conductance.
func NewSurgeLine(conductanceBtuPerHrF float64) *SurgeLine {
	return &SurgeLine{conductanceBtuPerHrF: conductanceBtuPerHrF}
}

// HeatFlowBtuPerHr returns the conductive heat flow from the RCS side to
// the pressurizer side for the given temperature difference (positive flow
// = RCS hotter, heating the pressurizer).
func (s *SurgeLine) HeatFlowBtuPerHr(tHotSideF, tColdSideF float64) float64 {
	return s.conductanceBtuPerHrF * (tHotSideF - tColdSideF)
}

// BubbleTriggered reports whether the solid-plant pressurizer has reached
// its saturation condition and should hand off to the two-phase bubble
// formation sequence, spec.md §4.6/§4.7.
func BubbleTriggered(pzrTempF, pressurePsia float64) (bool, error) {
	tSat, err := fluid.TSat(pressurePsia)
	if err != nil {
		return false, err
	}
	return pzrTempF >= tSat, nil
}

// Plant holds the solid-plant regime state: a single water-filled
// compressible volume spanning the RCS loop and pressurizer, spec.md §3.
type Plant struct {
	c plantconst.RCSConstants

	tAvgF        float64
	pressurePsia float64
	pzrTempF     float64

	pressureCtl *Controller
	surgeLine   *SurgeLine
}

// New creates a Plant at the given starting average temperature, pressure
// and pressurizer (surge-line-coupled) temperature.
func New(c plantconst.RCSConstants, tAvgF, pressurePsia, pzrTempF float64, ctl *Controller, surge *SurgeLine) *Plant {
	return &Plant{c: c, tAvgF: tAvgF, pressurePsia: pressurePsia, pzrTempF: pzrTempF, pressureCtl: ctl, surgeLine: surge}
}

// Output is the per-step result of solid-plant advancement, spec.md §4.6.
type Output struct {
	TAvgF              float64
	PressurePsia       float64
	PZRTempF           float64
	ChargingTrimGPM    float64
	BubbleTriggered    bool
}

// Advance steps the solid-plant model by dtHr given a proposed new average
// RCS temperature (driven by the heat-balance calculation upstream) and
// returns the controller's charging trim plus whether the bubble-formation
// trigger has been reached.
func (p *Plant) Advance(dtHr, newTAvgF float64) (Output, error) {
	p.tAvgF = newTAvgF

	heatFlow := p.surgeLine.HeatFlowBtuPerHr(p.tAvgF, p.pzrTempF)
	const pzrWaterMassLb = 60000.0 // solid-filled pressurizer, nominal mass
	const cpWaterBtuPerLbF = 1.0
	dTpzr := (heatFlow * dtHr) / (pzrWaterMassLb * cpWaterBtuPerLbF)
	p.pzrTempF += dTpzr

	trim := p.pressureCtl.Update(dtHr, p.pressurePsia)

	triggered, err := BubbleTriggered(p.pzrTempF, p.pressurePsia)
	if err != nil {
		return Output{}, err
	}

	return Output{
		TAvgF:           p.tAvgF,
		PressurePsia:    p.pressurePsia,
		PZRTempF:        p.pzrTempF,
		ChargingTrimGPM: trim,
		BubbleTriggered: triggered,
	}, nil
}

// SetPressurePsia overwrites the solver-reconciled pressure after the
// coupled solve, spec.md §4.4 runs after this package's Advance each step.
func (p *Plant) SetPressurePsia(psia float64) { p.pressurePsia = psia }

// PressurePsia, TAvgF, PZRTempF accessors.
func (p *Plant) PressurePsia() float64 { return p.pressurePsia }
func (p *Plant) TAvgF() float64        { return p.tAvgF }
func (p *Plant) PZRTempF() float64     { return p.pzrTempF }
