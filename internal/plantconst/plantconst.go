// Package plantconst consolidates the Westinghouse 4-loop reference
// constants used throughout the simulator into a single immutable tree.
//
// The source material for this class of constant (generic PWR training
// simulator data, NRC generic fundamentals manuals, and the spec this
// repo implements) is normally scattered across many files close to the
// code that uses it; here it lives in one place so every physics package
// imports the same numbers instead of re-deriving them.
package plantconst

// RCSConstants holds Reactor Coolant System geometry and mass constants.
// Values per spec.md §3 "RCS (primary coolant)".
type RCSConstants struct {
	WaterVolumeFt3  float64 // fixed geometric volume of the closed loop, spec.md §3
	MetalMassLb     float64 // fixed thermal-inertia mass, spec.md §3
	NominalPressure float64 // psia, nominal full-power operating point, spec.md §4.4
	NominalTAvg     float64 // degF, nominal full-power T_avg, spec.md §8 scenario 1
}

// PZRConstants holds pressurizer geometry and setpoints, spec.md §3/§4.5.
type PZRConstants struct {
	TotalVolumeFt3   float64 // water_vol + steam_vol, exact, spec.md §3
	WallMassLb       float64 // lumped metal mass, spec.md §3
	HeaterTauSec     float64 // first-order heater lag, spec.md §3
	SprayEfficiency  float64 // finite spray efficiency eta, spec.md §4.5
	HeaterFullBelowPsig  float64 // heater demand full below this pressure, spec.md §4.5
	SprayZeroBelowPsig   float64 // spray demand zero below this pressure, spec.md §4.5
	SprayMaxAbovePsig    float64 // spray demand reaches max above this pressure, spec.md §4.5
	SprayMinGPM          float64 // minimum modulated spray flow, spec.md §4.5
	SprayMaxGPM          float64 // maximum modulated spray flow, spec.md §4.5
	PORVSetpointPsig     float64 // spec.md §4.5
	SafetySetpointPsig   float64 // spec.md §4.5
	TargetBubbleLevelPct float64 // Stabilize-phase target level, spec.md §4.7
	ReconciliationEpsLb  float64 // RTCC epsilon, spec.md §4.7/§8
	ReconciliationErrLb  float64 // RTCC hard error threshold, spec.md §4.7
	PressurizeDeadbandPsi     float64 // Pressurize-phase PID deadband, spec.md §4.7
	PressurizeRateLimitPctSec float64 // heater power rate limit, spec.md §4.7
	DrainCeilingSimMinutes    float64 // directional-only ceiling, spec.md §9
}

// SGConstants holds per-steam-generator secondary constants, spec.md §3/§4.10.
type SGConstants struct {
	Count               int     // number of steam generators, spec.md §3
	SecondaryVolumeFt3  float64 // fixed secondary free volume per SG (lumped as equivalent)
	UABtuPerHrF         float64 // overall heat-transfer conductance, primary->secondary
	NominalPressurePsia float64 // secondary pressure at hot standby, spec.md §8 scenario 6
	SetpointPressurePsia float64 // boiling-regime pressure setpoint
}

// CVCSConstants holds CVCS/VCT/seal-flow constants, spec.md §4.8/§9.
type CVCSConstants struct {
	SealInjectionGPMPerPump    float64 // 8 gpm/RCP, spec.md §4.8
	SealReturnToVCTGPMPerPump  float64 // 3 gpm/RCP, spec.md §4.8/§9 (Open Question, decided in DESIGN.md)
	SealReturnToRCSGPMPerPump  float64 // 5 gpm/RCP, spec.md §4.8/§9 — bypasses VCT, tracked independently
	BoronTransportTauMin       float64 // VCT->RCS boron delivery lag, spec.md §4.8
	VCTNominalVolumeGal        float64
	VCTMakeupThresholdPct      float64 // level below which RWST auto-makeup engages
	VCTDivertHighLevelPct      float64 // level above which BRS diversion engages
}

// KineticsConstants holds point-kinetics and feedback constants, spec.md §4.2.
type KineticsConstants struct {
	BetaEff         float64    // delayed-neutron fraction, spec.md §4.2
	GroupFractions  [6]float64 // beta_i, sum to BetaEff
	GroupLambda     [6]float64 // decay constants, 1/s
	PromptLifetimeS float64    // Lambda, seconds
	DopplerCoeffPcmPerSqrtR float64 // alpha_D, pcm/sqrt(degR)
	RefFuelTempF            float64
	RefModTempF              float64
	BoronWorthPcmPerPPM      float64 // per spec.md §4.2
	XenonEquilibriumPcmAt100 float64 // spec.md §4.2
	XenonTauHr               float64
	IodineTauHr              float64
	RodBankOverlapSteps      int     // spec.md §4.2
	RodStepsFullRange        int     // spec.md §3 [0,228]
	PowerMWtRated            float64 // 3411 MWt, spec.md §1
	FuelThermalLagTauS       float64 // tau_fuel approx 7s, spec.md §4.3
}

// RCPConstants holds reactor coolant pump constants, spec.md §4.9.
type RCPConstants struct {
	Count                  int
	HeatPerPumpMW           float64
	CoastdownTauS           float64
	StartMinPressurePsig    float64
	FirstPumpDelayS         float64
	SubsequentPumpIntervalS float64
	NominalFlowGPMPerPump   float64 // nominal total flow / 4 at full operation
	NatCircMinGPM           float64
	NatCircMaxGPM           float64
	NatCircThresholdDeltaTF float64
}

// AlarmConstants holds alarm/trip setpoints, spec.md §4.11.
type AlarmConstants struct {
	HighRCSPressurePsig float64
	LowRCSPressurePsig  float64
	RodDropTimeS        float64
	DashpotEngageSteps  float64
}

// SGAuxHeatingPolicy resolves the Open Question in spec.md §9.
type SGAuxHeatingPolicy int

const (
	// SGAuxHeatingPassive: never actively closes primary/secondary delta-T
	// during Mode-4 hold; the system may not fully stabilize by design.
	SGAuxHeatingPassive SGAuxHeatingPolicy = iota
	// SGAuxHeatingOperatorSetpoint: operator-controlled auxiliary steam
	// injection with an explicit setpoint.
	SGAuxHeatingOperatorSetpoint
	// SGAuxHeatingAutoTrackRCS: automatic T_sg -> T_rcs tracking above Mode 3.
	SGAuxHeatingAutoTrackRCS
)

// Plant is the root of the consolidated constant tree.
type Plant struct {
	RCS      RCSConstants
	PZR      PZRConstants
	SG       SGConstants
	CVCS     CVCSConstants
	Kinetics KineticsConstants
	RCP      RCPConstants
	Alarm    AlarmConstants
	SGAuxHeating SGAuxHeatingPolicy
}

// Default returns the Westinghouse 4-loop (3411 MWt) reference constant set.
func Default() Plant {
	return Plant{
		RCS: RCSConstants{
			WaterVolumeFt3:  11500,
			MetalMassLb:     2.2e6,
			NominalPressure: 2250,
			NominalTAvg:     588.5,
		},
		PZR: PZRConstants{
			TotalVolumeFt3:            1800,
			WallMassLb:                2.0e5,
			HeaterTauSec:              20,
			SprayEfficiency:           0.85,
			HeaterFullBelowPsig:       2210,
			SprayZeroBelowPsig:        2260,
			SprayMaxAbovePsig:         2280,
			SprayMinGPM:               500,
			SprayMaxGPM:               900,
			PORVSetpointPsig:          2335,
			SafetySetpointPsig:        2485,
			TargetBubbleLevelPct:      25,
			ReconciliationEpsLb:       10,
			ReconciliationErrLb:       100,
			PressurizeDeadbandPsi:     5,
			PressurizeRateLimitPctSec: 10,
			DrainCeilingSimMinutes:    60,
		},
		SG: SGConstants{
			Count:                4,
			SecondaryVolumeFt3:   4*1000, // lumped equivalent secondary free volume
			UABtuPerHrF:          4.0e6,
			NominalPressurePsia:  17.0 + 14.7, // ~17 psig hot standby -> psia, spec.md §8 scenario 6
			SetpointPressurePsia: 1092.0,      // secondary pressure setpoint at full power
		},
		CVCS: CVCSConstants{
			SealInjectionGPMPerPump:   8,
			SealReturnToVCTGPMPerPump: 3,
			SealReturnToRCSGPMPerPump: 5,
			BoronTransportTauMin:      10,
			VCTNominalVolumeGal:       4000,
			VCTMakeupThresholdPct:     20,
			VCTDivertHighLevelPct:     80,
		},
		Kinetics: KineticsConstants{
			BetaEff: 0.0065,
			GroupFractions: [6]float64{
				0.000215, 0.001424, 0.001274, 0.002566, 0.000748, 0.000273,
			},
			GroupLambda: [6]float64{
				0.0124, 0.0305, 0.111, 0.301, 1.14, 3.01,
			},
			PromptLifetimeS:          20e-6,
			DopplerCoeffPcmPerSqrtR:  -2.5,
			RefFuelTempF:             1200,
			RefModTempF:              588.5,
			BoronWorthPcmPerPPM:      -9,
			XenonEquilibriumPcmAt100: -2800,
			XenonTauHr:               6,
			IodineTauHr:              6.6,
			RodBankOverlapSteps:      100,
			RodStepsFullRange:        228,
			PowerMWtRated:            3411,
			FuelThermalLagTauS:       7,
		},
		RCP: RCPConstants{
			Count:                   4,
			HeatPerPumpMW:           5.25,
			CoastdownTauS:           12,
			StartMinPressurePsig:    320,
			FirstPumpDelayS:         2.0,
			SubsequentPumpIntervalS: 0.5,
			NominalFlowGPMPerPump:   24400, // ~97600/4
			NatCircMinGPM:           12000,
			NatCircMaxGPM:           23000,
			NatCircThresholdDeltaTF: 2.0,
		},
		Alarm: AlarmConstants{
			HighRCSPressurePsig: 2385,
			LowRCSPressurePsig:  1885,
			RodDropTimeS:        2.0,
			DashpotEngageSteps:  34,
		},
		SGAuxHeating: SGAuxHeatingPassive,
	}
}
