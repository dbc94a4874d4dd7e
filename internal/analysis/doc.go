// Package analysis extracts physical constants from acquired data.
//
//   - [StoppingPotential]: cutoff bias of an I-V curve
//   - [SaturationCurrent]: plateau current at non-negative bias
//   - [LinearFit]: ordinary least squares on paired samples
//   - [MillikanFit]: Planck constant and work function from stopping
//     potentials measured at several frequencies
//
// # Millikan Method
//
// Stopping potential is linear in photon frequency, eVs = hf - W. Fitting
// Vs against f gives h (in eV·s) as the slope and -W as the intercept:
//
//	fit, err := analysis.MillikanFit(points)
//	fmt.Printf("h = %.3e eV·s, W = %.2f eV\n", fit.PlanckEvS, fit.WorkFunctionEv)
package analysis
