package sampler

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

func NewSeededSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a seed from crypto/rand for runs that don't pin one.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// SequenceSource replays a fixed list of values, wrapping around at the end.
type SequenceSource struct {
	values []float64
	pos    int
}

func NewSequenceSource(values ...float64) *SequenceSource {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	v := make([]float64, len(values))
	copy(v, values)
	return &SequenceSource{values: v}
}

func (s *SequenceSource) Float64() float64 {
	v := s.values[s.pos]
	s.pos = (s.pos + 1) % len(s.values)
	return v
}
