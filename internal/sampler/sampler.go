// Package sampler simulates repeated current readings around a nominal value.
//
// Noise is uniform in a band of ±NoiseFraction around the nominal current.
// The randomness comes from an injected [RandomSource], so a seeded or
// fixed source gives reproducible output.
package sampler

import "math"

const (
	DefaultCount         = 1000
	DefaultNoiseFraction = 0.0001
)

type Output struct {
	Mean     float64
	StdDev   float64
	StdError float64
	Samples  []float64
}

type Sampler struct {
	Count         int
	NoiseFraction float64
	src           RandomSource
}

func New(src RandomSource) *Sampler {
	return &Sampler{
		Count:         DefaultCount,
		NoiseFraction: DefaultNoiseFraction,
		src:           src,
	}
}

// Sample draws Count readings around currentUa.
func (s *Sampler) Sample(currentUa float64) Output {
	n := s.Count
	if n <= 0 {
		n = DefaultCount
	}

	samples := make([]float64, n)
	band := 2 * s.NoiseFraction * currentUa
	for i := range samples {
		u := s.src.Float64()
		samples[i] = currentUa + (u-0.5)*band
	}

	mean, stdDev, stdErr := Summarize(samples)
	return Output{
		Mean:     mean,
		StdDev:   stdDev,
		StdError: stdErr,
		Samples:  samples,
	}
}

// Summarize returns the mean, population standard deviation and standard
// error of the mean. An empty slice yields zeros.
func Summarize(samples []float64) (mean, stdDev, stdErr float64) {
	n := float64(len(samples))
	if n == 0 {
		return 0, 0, 0
	}

	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	mean = sum / n

	sq := 0.0
	for _, v := range samples {
		d := v - mean
		sq += d * d
	}
	stdDev = math.Sqrt(sq / n)
	stdErr = stdDev / math.Sqrt(n)
	return mean, stdDev, stdErr
}
