package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/photolab/internal/analysis"
	"github.com/san-kum/photolab/internal/ledger"
	"github.com/san-kum/photolab/internal/physics"
)

// ScanPoint is the outcome of one wavelength in a scan.
type ScanPoint struct {
	WavelengthNm float64
	Result       physics.Result
	Curve        []ledger.IVPoint
	// MeasuredStopV is the stopping potential read off Curve. Resolved is
	// false when the curve has no cutoff inside the bias range.
	MeasuredStopV float64
	Resolved      bool
}

// Ensemble sweeps the same setup at several wavelengths, one after the
// other. Each wavelength runs on its own Lab seeded seedStart+index, so any
// single wavelength can be rerun on its own.
type Ensemble struct {
	cfg       Config
	seedStart int64
}

func NewEnsemble(cfg Config) *Ensemble {
	return &Ensemble{cfg: cfg, seedStart: cfg.Seed}
}

// Scan sweeps p from..to at each wavelength. ctx is checked between
// wavelengths.
func (e *Ensemble) Scan(ctx context.Context, p physics.Parameters, wavelengths []float64, from, to, step float64) ([]ScanPoint, error) {
	if _, err := SweepVoltages(from, to, step); err != nil {
		return nil, err
	}

	out := make([]ScanPoint, len(wavelengths))
	for i, lambda := range wavelengths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pt, err := e.scanOne(i, p, lambda, from, to, step)
		if err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}

func (e *Ensemble) scanOne(i int, p physics.Parameters, lambda, from, to, step float64) (ScanPoint, error) {
	cfg := e.cfg
	cfg.Seed = e.seedStart + int64(i)
	lab := New(cfg)

	p.WavelengthNm = lambda
	if _, err := lab.Sweep(p, from, to, step); err != nil {
		return ScanPoint{}, fmt.Errorf("wavelength %.1f nm: %w", lambda, err)
	}

	// the sweep overrides the bias, so the model point is taken at zero
	res, err := lab.Evaluate(p.WithVoltage(0))
	if err != nil {
		return ScanPoint{}, fmt.Errorf("wavelength %.1f nm: %w", lambda, err)
	}

	curve := lab.IVCurve()
	pt := ScanPoint{WavelengthNm: lambda, Result: res, Curve: curve}
	vs, ok := analysis.StoppingPotential(curve)
	// a curve that still conducts at the most negative bias has no cutoff
	pt.Resolved = ok && pt.Result.StoppingPotentialV < -from
	if pt.Resolved {
		pt.MeasuredStopV = vs
	}
	return pt, nil
}

// FrequencyPoints keeps the resolved points of a scan for a Millikan fit.
func FrequencyPoints(scan []ScanPoint) []analysis.FrequencyPoint {
	pts := make([]analysis.FrequencyPoint, 0, len(scan))
	for _, s := range scan {
		if s.Resolved {
			pts = append(pts, analysis.FrequencyPoint{
				FrequencyHz:        s.Result.FrequencyHz,
				StoppingPotentialV: s.MeasuredStopV,
			})
		}
	}
	return pts
}
