// Package fluid is a pure-function IAPWS-IF97-grade water/steam property
// library, spec.md §4.1. All functions are stateless and side-effect free.
//
// The correlations below are closed-form engineering fits (Clausius-Clapeyron
// for saturation pressure/temperature, polynomial fits for liquid density and
// enthalpy, a power law for vapor density and latent heat) calibrated against
// steam-table anchor points in the 1-3000 psia / 100-705 degF band named by
// spec.md §4.1. They are tuned tightest around the Westinghouse 4-loop
// operating point (2250 psia / ~590-655 degF) which is where every
// spec.md §8 scenario actually exercises them.
package fluid

import (
	"math"

	"github.com/fourloop/pwrcore/internal/simerrors"
)

// Validity bounds, spec.md §4.1.
const (
	PMinPsia = 1.0
	PMaxPsia = 3000.0
	TMinF    = 100.0
	TMaxF    = 705.0

	critPressurePsia = 3208.2
	critTempR        = 1165.1 // critical temperature, degR
)

// Clausius-Clapeyron calibration anchored at 14.7 psia / 212 degF and
// 2250 psia / 652.9 degF (spec.md §4.4 nominal operating point).
const (
	ccRefPressurePsia = 14.7
	ccRefTempR        = 671.67 // 212 degF in Rankine
	ccSlopeR          = 8526.9 // fitted L/R, degR
)

// clamp returns x restricted to [lo,hi] and, if clamping occurred, an
// OutOfRange error describing the original value. Callers decide whether to
// surface the error as a Warning event (spec.md §7) or ignore it.
func clamp(varName string, x, lo, hi float64) (float64, error) {
	if x < lo {
		return lo, &simerrors.OutOfRange{Var: varName, Value: x, LoBound: lo, HiBound: hi}
	}
	if x > hi {
		return hi, &simerrors.OutOfRange{Var: varName, Value: x, LoBound: lo, HiBound: hi}
	}
	return x, nil
}

// TSat returns saturation temperature (degF) at pressure P (psia).
func TSat(pPsia float64) (float64, error) {
	p, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	invT := 1.0/ccRefTempR - (1.0/ccSlopeR)*math.Log(p/ccRefPressurePsia)
	tR := 1.0 / invT
	return tR - 459.67, errP
}

// PSat returns saturation pressure (psia) at temperature T (degF).
func PSat(tF float64) (float64, error) {
	t, errT := clamp("temp_f", tF, TMinF, TMaxF)
	tR := t + 459.67
	p := ccRefPressurePsia * math.Exp(ccSlopeR*(1.0/ccRefTempR-1.0/tR))
	return p, errT
}

// Liquid density polynomial fit coefficients, rho_l(T) = a + b*T + c*T^2,
// anchored at (60F,62.4), (400F,53.6), (600F,42.4) lb/ft3.
const (
	rhoLA = 62.614
	rhoLB = -0.000227
	rhoLC = -5.577e-5
)

// RhoL returns saturated/subcooled liquid density (lb/ft3) at (T degF, P psia).
// Pressure dependence is a small linear correction via isothermal compressibility.
func RhoL(tF, pPsia float64) (float64, error) {
	t, errT := clamp("temp_f", tF, TMinF, TMaxF)
	p, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	rho0 := rhoLA + rhoLB*t + rhoLC*t*t
	k, _ := Kappa(t, p)
	rho := rho0 * (1.0 + k*(p-2250.0))
	if errP != nil {
		return rho, errP
	}
	return rho, errT
}

// saturated vapor density power-law fit, rho_v(P) = rhoV0*(P/Pref)^n.
const (
	rhoVRefPsia = 14.7
	rhoVRef     = 0.0373
	rhoVExp     = 0.948
)

// RhoV returns saturated vapor density (lb/ft3) at pressure P (psia).
func RhoV(pPsia float64) (float64, error) {
	p, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	rho := rhoVRef * math.Pow(p/rhoVRefPsia, rhoVExp)
	return rho, errP
}

// Saturated liquid enthalpy polynomial, h_l(T) = a + b*T + c*T^2,
// referenced to 0 Btu/lb at 32 degF, anchored at (212F,180.17),(600F,616.9).
const (
	hlA = -30.54
	hlB = 0.94739
	hlC = 2.1945e-4
)

// HL returns liquid enthalpy (Btu/lb) at (T degF, P psia). Pressure has a
// second-order effect on compressed-liquid enthalpy which is neglected here
// (consistent with the single-phase, near-saturation regimes spec.md covers).
func HL(tF, pPsia float64) (float64, error) {
	t, errT := clamp("temp_f", tF, TMinF, TMaxF)
	_, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	h := hlA + hlB*t + hlC*t*t
	if errT != nil {
		return h, errT
	}
	return h, errP
}

// HFG power-law fit, hfg(P) = hfg0*(1-P/Pc)^m, tightest near 1000-2500 psia.
const (
	hfg0 = 765.6
	hfgM = 0.4410
)

// HFG returns latent heat of vaporization (Btu/lb) at pressure P (psia).
func HFG(pPsia float64) (float64, error) {
	p, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	x := 1.0 - p/critPressurePsia
	if x < 0 {
		x = 0
	}
	h := hfg0 * math.Pow(x, hfgM)
	return h, errP
}

// HG returns saturated vapor enthalpy (Btu/lb) at pressure P (psia).
func HG(pPsia float64) (float64, error) {
	tSat, errT := TSat(pPsia)
	hl, errHl := HL(tSat, pPsia)
	hfg, errHfg := HFG(pPsia)
	hg := hl + hfg
	if errT != nil {
		return hg, errT
	}
	if errHl != nil {
		return hg, errHl
	}
	return hg, errHfg
}

// CpL returns liquid specific heat (Btu/lb-degF) as dH_l/dT, so it stays
// thermodynamically consistent with HL.
func CpL(tF, pPsia float64) (float64, error) {
	t, errT := clamp("temp_f", tF, TMinF, TMaxF)
	_, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	cp := hlB + 2*hlC*t
	if errT != nil {
		return cp, errT
	}
	return cp, errP
}

// CpV returns vapor specific heat (Btu/lb-degF); weakly temperature dependent
// near saturation in the validated band.
func CpV(tF, pPsia float64) (float64, error) {
	t, errT := clamp("temp_f", tF, TMinF, TMaxF)
	_, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	cp := 0.48 + 2.0e-4*(t-300.0)
	if errT != nil {
		return cp, errT
	}
	return cp, errP
}

// Beta returns the volumetric thermal expansion coefficient (1/degF) of
// liquid water, derived from -(1/rho)*(drho/dT) of the RhoL fit.
func Beta(tF, pPsia float64) (float64, error) {
	t, errT := clamp("temp_f", tF, TMinF, TMaxF)
	_, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	rho0 := rhoLA + rhoLB*t + rhoLC*t*t
	drhodT := rhoLB + 2*rhoLC*t
	beta := -drhodT / rho0
	if errT != nil {
		return beta, errT
	}
	return beta, errP
}

// Kappa returns the isothermal compressibility of liquid water (1/psi).
// Compressed liquid water in the PWR operating band is weakly compressible;
// this grows mildly with temperature, matching the trend (not the exact
// magnitude) IAPWS-IF97 reports.
func Kappa(tF, pPsia float64) (float64, error) {
	t, errT := clamp("temp_f", tF, TMinF, TMaxF)
	_, errP := clamp("pressure_psia", pPsia, PMinPsia, PMaxPsia)
	k := 3.0e-6 * (1.0 + (t-300.0)/1000.0)
	if k < 1.0e-6 {
		k = 1.0e-6
	}
	if errT != nil {
		return k, errT
	}
	return k, errP
}
