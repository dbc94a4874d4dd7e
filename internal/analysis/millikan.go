package analysis

import (
	"errors"
	"math"
)

var ErrInsufficientData = errors.New("analysis: not enough distinct points to fit")

type Fit struct {
	Slope     float64
	Intercept float64
	R2        float64
}

// LinearFit performs ordinary least squares of ys on xs.
func LinearFit(xs, ys []float64) (Fit, error) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return Fit{}, ErrInsufficientData
	}

	var sx, sy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/float64(n), sy/float64(n)

	var sxx, sxy, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return Fit{}, ErrInsufficientData
	}

	slope := sxy / sxx
	fit := Fit{Slope: slope, Intercept: my - slope*mx, R2: 1}
	if syy > 0 {
		fit.R2 = sxy * sxy / (sxx * syy)
	}
	return fit, nil
}

type FrequencyPoint struct {
	FrequencyHz        float64
	StoppingPotentialV float64
}

type MillikanResult struct {
	PlanckEvS          float64
	WorkFunctionEv     float64
	ThresholdFrequency float64
	R2                 float64
	Points             int
}

// MillikanFit fits stopping potential against frequency. Points without
// emission (zero stopping potential) sit on the flat part of the response
// and are dropped before fitting.
func MillikanFit(points []FrequencyPoint) (MillikanResult, error) {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if p.StoppingPotentialV <= 0 || math.IsNaN(p.StoppingPotentialV) {
			continue
		}
		xs = append(xs, p.FrequencyHz)
		ys = append(ys, p.StoppingPotentialV)
	}

	fit, err := LinearFit(xs, ys)
	if err != nil {
		return MillikanResult{}, err
	}
	if fit.Slope <= 0 {
		return MillikanResult{}, ErrInsufficientData
	}

	return MillikanResult{
		PlanckEvS:          fit.Slope,
		WorkFunctionEv:     -fit.Intercept,
		ThresholdFrequency: -fit.Intercept / fit.Slope,
		R2:                 fit.R2,
		Points:             len(xs),
	}, nil
}
