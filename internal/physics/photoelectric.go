package physics

import (
	"fmt"
	"math"
)

// Calibration constants. These are the rounded values the reference
// datasets were produced with and are kept for parity.
const (
	PlanckJs         = 6.626e-34
	PlanckEvS        = 4.136e-15
	SpeedOfLight     = 3e8
	ElementaryCharge = 1.602e-19

	// SaturationScale converts intensity*area into microamps. It has no
	// physical derivation.
	SaturationScale = 0.001
)

type Result struct {
	FrequencyHz           float64 `json:"frequency_hz"`
	PhotonEnergyEv        float64 `json:"photon_energy_ev"`
	WorkFunctionEv        float64 `json:"work_function_ev"`
	MaxKineticEnergyEv    float64 `json:"max_kinetic_energy_ev"`
	ThresholdWavelengthNm float64 `json:"threshold_wavelength_nm"`
	StoppingPotentialV    float64 `json:"stopping_potential_v"`
	SaturationCurrentUa   float64 `json:"saturation_current_ua"`
	CurrentUa             float64 `json:"current_ua"`
	EmissionOccurs        bool    `json:"emission_occurs"`
}

// Compute evaluates the photoelectric model. Parameter ranges are the
// caller's responsibility; only the work function is checked here.
func Compute(workFunctionEv float64, p Parameters) (Result, error) {
	if math.IsNaN(workFunctionEv) || workFunctionEv <= 0 {
		return Result{}, fmt.Errorf("%w: work function must be positive, got %g", ErrInvalidParameter, workFunctionEv)
	}
	if math.IsNaN(p.WavelengthNm) || p.WavelengthNm <= 0 {
		return Result{}, fmt.Errorf("%w: wavelength must be positive, got %g", ErrInvalidParameter, p.WavelengthNm)
	}

	freq := SpeedOfLight / (p.WavelengthNm * 1e-9)
	photon := PlanckEvS * freq
	kmax := math.Max(0, photon-workFunctionEv)

	r := Result{
		FrequencyHz:           freq,
		PhotonEnergyEv:        photon,
		WorkFunctionEv:        workFunctionEv,
		MaxKineticEnergyEv:    kmax,
		ThresholdWavelengthNm: ThresholdWavelength(workFunctionEv),
		StoppingPotentialV:    kmax,
		SaturationCurrentUa:   p.IntensityWPerM2 * p.AreaCm2 * SaturationScale,
		EmissionOccurs:        photon > workFunctionEv,
	}
	r.CurrentUa = CurrentAt(r, p.AppliedVoltageV)
	return r, nil
}

// ThresholdWavelength is the longest wavelength in nm that ejects electrons
// from a surface with the given work function. workFunctionEv must be > 0.
func ThresholdWavelength(workFunctionEv float64) float64 {
	return PlanckJs * SpeedOfLight / (workFunctionEv * ElementaryCharge) * 1e9
}

// CurrentAt applies the collector-bias model to a computed result.
func CurrentAt(r Result, voltage float64) float64 {
	vs := r.StoppingPotentialV
	switch {
	case !r.EmissionOccurs || voltage < -vs:
		return 0
	case voltage >= 0:
		return r.SaturationCurrentUa
	case vs == 0:
		return r.SaturationCurrentUa
	default:
		return r.SaturationCurrentUa * math.Exp(voltage/vs)
	}
}
