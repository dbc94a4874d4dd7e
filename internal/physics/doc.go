// Package physics implements the photoelectric emission model.
//
// [Compute] maps a work function and a set of [Parameters] to a [Result]:
//
//   - photon frequency and energy from the illumination wavelength
//   - maximum kinetic energy and stopping potential of ejected electrons
//   - threshold wavelength of the surface
//   - collector current for the applied bias
//
// The current model is intensity-linear. It saturates at non-negative bias,
// decays exponentially through the retarding region and is zero below the
// stopping potential:
//
//	res, err := physics.Compute(2.10, physics.Parameters{
//	    MaterialID: "cesium", WavelengthNm: 400,
//	    IntensityWPerM2: 5, AreaCm2: 0.1,
//	})
//
// Compute never returns NaN or Inf for valid input. A zero stopping potential
// in the retarding region is treated as saturation.
package physics
