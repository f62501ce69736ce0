// Package rcs implements the RCS loop thermal-hydraulics and heatup
// integration of spec.md §2 item 9 and §3: the energy balance driving
// average coolant temperature from core heat input, SG heat removal, RCP
// pump heat, and metal mass thermal inertia.
package rcs

import "github.com/fourloop/pwrcore/internal/plantconst"

// Loop holds the RCS bulk thermal state, spec.md §3.
type Loop struct {
	c plantconst.RCSConstants

	tAvgF   float64
	tHotF   float64
	tColdF  float64
	flowGPM float64
}

// New creates a Loop at the given starting average temperature with zero
// delta-T (no flow/power yet).
func New(c plantconst.RCSConstants, tAvgF float64) *Loop {
	return &Loop{c: c, tAvgF: tAvgF, tHotF: tAvgF, tColdF: tAvgF}
}

const (
	cpWaterBtuPerLbF = 1.0
	waterDensityLbFt3 = 49.9 // approx at RCS average operating temperature
	btuPerHrPerMW      = 3.412e6
)

// Inputs are the per-step heat sources/sinks driving the loop energy
// balance, spec.md §2 item 9.
type Inputs struct {
	DtHr           float64
	CoreThermalMWt float64
	RCPHeatMWt     float64
	SGRemovalMWt   float64
	FlowGPM        float64 // total RCS flow, from rcp.Sequencer
}

// Output is the proposed new average temperature (before the coupled
// pressure solve) and the hot/cold leg split, spec.md §3.
type Output struct {
	TAvgF  float64
	THotF  float64
	TColdF float64
}

// Advance integrates the lumped RCS energy balance for one step:
//
//	netMWt = core + RCP_heat - SG_removal
//	dT = netMWt * btuPerHr / (waterMassLb*cp + metalMassLb*cpMetal) * dt
//
// and splits hot/cold legs from delta-T implied by flow and core power
// (T_hot - T_cold = Q / (flow * rho * cp)).
func (l *Loop) Advance(in Inputs) Output {
	netMWt := in.CoreThermalMWt + in.RCPHeatMWt - in.SGRemovalMWt
	netBtuPerHr := netMWt * btuPerHrPerMW

	const cpMetalBtuPerLbF = 0.11 // carbon steel approx
	waterMassLb := l.c.WaterVolumeFt3 * waterDensityLbFt3
	thermalCapacity := waterMassLb*cpWaterBtuPerLbF + l.c.MetalMassLb*cpMetalBtuPerLbF

	dT := 0.0
	if thermalCapacity > 0 {
		dT = (netBtuPerHr * in.DtHr) / thermalCapacity
	}
	l.tAvgF += dT

	deltaTLoop := 0.0
	if in.FlowGPM > 0 {
		massFlowLbPerHr := in.FlowGPM * 8.33 * 60.0
		coreBtuPerHr := in.CoreThermalMWt * btuPerHrPerMW
		deltaTLoop = coreBtuPerHr / (massFlowLbPerHr * cpWaterBtuPerLbF)
	}
	l.tHotF = l.tAvgF + deltaTLoop/2
	l.tColdF = l.tAvgF - deltaTLoop/2
	l.flowGPM = in.FlowGPM

	return Output{TAvgF: l.tAvgF, THotF: l.tHotF, TColdF: l.tColdF}
}

// TAvgF, THotF, TColdF, FlowGPM accessors.
func (l *Loop) TAvgF() float64   { return l.tAvgF }
func (l *Loop) THotF() float64   { return l.tHotF }
func (l *Loop) TColdF() float64  { return l.tColdF }
func (l *Loop) FlowGPM() float64 { return l.flowGPM }
