package analysis

import (
	"math"

	"github.com/san-kum/photolab/internal/ledger"
)

// StoppingPotential estimates the stopping potential from a measured curve as
// the magnitude of the lowest bias that still carries current. ok is false
// when no point carries current. The estimate is at most one sweep step
// below the true value.
func StoppingPotential(points []ledger.IVPoint) (float64, bool) {
	peak := 0.0
	for _, p := range points {
		peak = math.Max(peak, p.CurrentUa)
	}
	if peak == 0 {
		return 0, false
	}

	floor := peak * 1e-9
	cutoff := math.Inf(1)
	for _, p := range points {
		if p.CurrentUa > floor && p.VoltageV < cutoff {
			cutoff = p.VoltageV
		}
	}
	if cutoff >= 0 {
		return 0, true
	}
	return -cutoff, true
}

// SaturationCurrent averages the current over points at non-negative bias.
func SaturationCurrent(points []ledger.IVPoint) (float64, bool) {
	sum, n := 0.0, 0
	for _, p := range points {
		if p.VoltageV >= 0 {
			sum += p.CurrentUa
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
