package physics

import (
	"fmt"
	"math"
)

const (
	MinWavelengthNm = 100.0
	MaxWavelengthNm = 700.0
	MinIntensity    = 1.0
	MaxIntensity    = 10.0
	MinAreaCm2      = 0.01
	MaxAreaCm2      = 1.00
	MinVoltage      = -5.0
	MaxVoltage      = 5.0
)

// Parameters is one point in the experiment's control space.
type Parameters struct {
	MaterialID      string  `json:"material_id" yaml:"material"`
	WavelengthNm    float64 `json:"wavelength_nm" yaml:"wavelength_nm"`
	IntensityWPerM2 float64 `json:"intensity_w_per_m2" yaml:"intensity_w_per_m2"`
	AreaCm2         float64 `json:"area_cm2" yaml:"area_cm2"`
	AppliedVoltageV float64 `json:"applied_voltage_v" yaml:"applied_voltage_v"`
}

// Validate checks every numeric field against its range. The material id is
// resolved by the caller against a catalog.
func (p Parameters) Validate() error {
	if p.MaterialID == "" {
		return fmt.Errorf("%w: material id is empty", ErrInvalidParameter)
	}
	checks := []struct {
		field         string
		value, lo, hi float64
	}{
		{"wavelength_nm", p.WavelengthNm, MinWavelengthNm, MaxWavelengthNm},
		{"intensity_w_per_m2", p.IntensityWPerM2, MinIntensity, MaxIntensity},
		{"area_cm2", p.AreaCm2, MinAreaCm2, MaxAreaCm2},
		{"applied_voltage_v", p.AppliedVoltageV, MinVoltage, MaxVoltage},
	}
	for _, c := range checks {
		if err := checkRange(c.field, c.value, c.lo, c.hi); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return &ParameterError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// WithVoltage returns a copy biased at v.
func (p Parameters) WithVoltage(v float64) Parameters {
	p.AppliedVoltageV = v
	return p
}
