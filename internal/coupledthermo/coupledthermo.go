// Package coupledthermo implements the coupled pressure-temperature-volume
// solver of spec.md §4.4: given a proposed change in average RCS
// temperature, find the consistent new (P, V_water, V_steam, masses)
// honoring fixed total geometric volume, conserved canonical mass, and (in
// two-phase) saturation in the pressurizer.
package coupledthermo

import (
	"math"

	"github.com/fourloop/pwrcore/internal/fluid"
	"github.com/fourloop/pwrcore/internal/simerrors"
)

// Regime selects which branch of the pressurizer equations governs the
// solve, spec.md §3 "regime".
type Regime int

const (
	RegimeSolidPlant Regime = iota
	RegimeTwoPhase
)

// Input describes the pre-solve state the solver closes against.
type Input struct {
	Regime Regime

	RCSTAvgF       float64 // proposed new average RCS temperature
	PrevRCSTAvgF   float64 // average RCS temperature at the start of this step, the solve's ΔT reference
	RCSPressurePsia float64 // current pressure, solve starting point

	RCSWaterVolumeFt3 float64 // fixed
	RCSMetalMassLb    float64 // fixed

	PZRWaterMassLb float64
	PZRSteamMassLb float64
	PZRTotalVolumeFt3 float64 // fixed

	CanonicalMassLb float64 // total_primary_mass_lb, unchanged by this solver
}

// Result is the closed solution.
type Result struct {
	PressurePsia      float64
	PZRWaterVolumeFt3 float64
	PZRSteamVolumeFt3 float64
	PZRWaterMassLb    float64
	PZRSteamMassLb    float64
	CanonicalMassLb   float64 // echoed back unchanged, spec.md §4.4
	Iterations        int
	ResidualPsi       float64
}

const (
	maxIterations  = 20
	toleranceePsi  = 0.1
)

// Solve closes the P-T-V system for the given input, spec.md §4.4.
//
// Solid-plant branch: pressure responds to the net thermal expansion of the
// closed water volume against its (small) compressibility, via
// dP = dV_thermal / (kappa * V_total).
//
// Two-phase branch: pressurizer water sits at T_sat(P); the solver finds
// the pressure at which the proposed RCS expansion is absorbed by PZR
// liquid volume displacement while PZR water stays saturated, iterating
// because both rho_l(T_sat(P)) and T_sat(P) depend on the unknown P.
func Solve(in Input) (Result, error) {
	switch in.Regime {
	case RegimeTwoPhase:
		return solveTwoPhase(in)
	default:
		return solveSolidPlant(in)
	}
}

func solveSolidPlant(in Input) (Result, error) {
	p := in.RCSPressurePsia
	var iter int
	var residual float64

	for iter = 0; iter < maxIterations; iter++ {
		beta, _ := fluid.Beta(in.RCSTAvgF, p)
		kappa, _ := fluid.Kappa(in.RCSTAvgF, p)

		// Thermal expansion displaces volume; compressibility resists it by
		// raising pressure. At constant total volume:
		//   dV_thermal = beta * V * dT   must be absorbed by
		//   dV_compress = -kappa * V * dP
		// so dP = (beta/kappa) * dT, referenced to the average temperature
		// at the start of this step — not to the full-power nominal T_avg,
		// which would only be correct while parked at that one operating
		// point.
		dT := in.RCSTAvgF - in.PrevRCSTAvgF
		newP := in.RCSPressurePsia + (beta/kappa)*dT

		residual = math.Abs(newP - p)
		p = newP
		if residual <= toleranceePsi {
			iter++
			break
		}
	}

	if iter >= maxIterations && residual > toleranceePsi {
		return Result{}, &simerrors.SolverNonConvergence{Iterations: iter, Residual: residual}
	}
	if p < 0 {
		return Result{}, &simerrors.InvariantViolation{Which: "rcs_pressure_negative"}
	}

	return Result{
		PressurePsia:      p,
		PZRWaterVolumeFt3: in.PZRTotalVolumeFt3,
		PZRSteamVolumeFt3: 0,
		PZRWaterMassLb:    in.PZRWaterMassLb,
		PZRSteamMassLb:    0,
		CanonicalMassLb:   in.CanonicalMassLb,
		Iterations:        iter,
		ResidualPsi:       residual,
	}, nil
}

func solveTwoPhase(in Input) (Result, error) {
	p := in.RCSPressurePsia
	totalPZRMass := in.PZRWaterMassLb + in.PZRSteamMassLb

	var iter int
	var residual float64

	for iter = 0; iter < maxIterations; iter++ {
		tSat, _ := fluid.TSat(p)
		rhoL, _ := fluid.RhoL(tSat, p)
		rhoV, _ := fluid.RhoV(p)

		// Thermal expansion of the RCS loop (outside the PZR) pushes surge
		// water into/out of the pressurizer; the resulting liquid-volume
		// change in the PZR, at fixed total PZR volume, determines how much
		// steam volume (and thus pressure, via saturation) must change.
		beta, _ := fluid.Beta(in.RCSTAvgF, p)
		dT := in.RCSTAvgF - in.PrevRCSTAvgF
		dVSurge := beta * in.RCSWaterVolumeFt3 * dT // ft3 displaced into PZR

		waterVol := in.PZRWaterMassLb/rhoL + dVSurge
		if waterVol < 0 {
			waterVol = 0
		}
		if waterVol > in.PZRTotalVolumeFt3 {
			waterVol = in.PZRTotalVolumeFt3
		}
		steamVol := in.PZRTotalVolumeFt3 - waterVol

		// Mass split consistent with saturated densities at this pressure,
		// holding total PZR mass (this solver's local bookkeeping, not the
		// canonical ledger) fixed.
		newWaterMass := waterVol * rhoL
		newSteamMass := steamVol * rhoV
		massResidual := (newWaterMass + newSteamMass) - totalPZRMass

		// Adjust pressure to drive massResidual toward zero: more pressure
		// -> denser steam -> more mass fits in the same steam volume, so a
		// positive massResidual (too much mass implied) means we need
		// *less* steam volume, i.e. higher pressure (smaller steam dome at
		// higher density isn't monotonic in a simple closed form, so use a
		// damped secant-style correction).
		dPressureCorrection := -massResidual / (in.PZRTotalVolumeFt3 * 0.05)
		newP := p + dPressureCorrection

		residual = math.Abs(newP - p)
		p = newP
		if residual <= toleranceePsi {
			iter++
			break
		}
	}

	if iter >= maxIterations && residual > toleranceePsi {
		return Result{}, &simerrors.SolverNonConvergence{Iterations: iter, Residual: residual}
	}
	if p < 0 {
		return Result{}, &simerrors.InvariantViolation{Which: "rcs_pressure_negative"}
	}

	tSat, _ := fluid.TSat(p)
	rhoL, _ := fluid.RhoL(tSat, p)
	rhoV, _ := fluid.RhoV(p)

	beta, _ := fluid.Beta(in.RCSTAvgF, p)
	dT := in.RCSTAvgF - in.PrevRCSTAvgF
	dVSurge := beta * in.RCSWaterVolumeFt3 * dT

	waterVol := in.PZRWaterMassLb/rhoL + dVSurge
	if waterVol < 0 {
		waterVol = 0
	}
	if waterVol > in.PZRTotalVolumeFt3 {
		waterVol = in.PZRTotalVolumeFt3
	}
	steamVol := in.PZRTotalVolumeFt3 - waterVol

	return Result{
		PressurePsia:      p,
		PZRWaterVolumeFt3: waterVol,
		PZRSteamVolumeFt3: steamVol,
		PZRWaterMassLb:    waterVol * rhoL,
		PZRSteamMassLb:    steamVol * rhoV,
		CanonicalMassLb:   in.CanonicalMassLb,
		Iterations:        iter,
		ResidualPsi:       residual,
	}, nil
}

// UncoupledEstimatePsi returns the fixed-volume, fixed-pressurizer (no PZR
// surge absorption) pressure response to the same dT, for the
// sign-monotonicity / coupled-less-than-uncoupled contract test in
// spec.md §4.4/§8.
func UncoupledEstimatePsi(tAvgF, pressurePsia, dTF, rcsVolumeFt3 float64) float64 {
	beta, _ := fluid.Beta(tAvgF, pressurePsia)
	kappa, _ := fluid.Kappa(tAvgF, pressurePsia)
	return (beta / kappa) * dTF
}
