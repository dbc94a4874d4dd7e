// Package ledger keeps the ordered history of measurements for one
// experiment.
//
// The ledger is append-only: [Ledger.Record] adds a record and bumps the
// counter, [Ledger.Reset] is the only way to drop records. Accessors return
// copies so callers cannot reach ledger-owned memory.
//
// A Ledger is not safe for concurrent use.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/photolab/internal/physics"
	"github.com/san-kum/photolab/internal/sampler"
)

type Ledger struct {
	records []Record
	counter int
	now     func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		records: make([]Record, 0),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends a measurement built from the given inputs and returns a
// copy of it.
func (l *Ledger) Record(material string, p physics.Parameters, res physics.Result, out sampler.Output) Record {
	samples := make([]float64, len(out.Samples))
	copy(samples, out.Samples)

	l.counter++
	rec := Record{
		ID:          uuid.NewString(),
		Sequence:    l.counter,
		Timestamp:   l.now(),
		Material:    material,
		Parameters:  p,
		Result:      res,
		MeanUa:      out.Mean,
		StdDevUa:    out.StdDev,
		StdErrorUa:  out.StdError,
		SampleCount: len(samples),
		Samples:     samples,
	}
	l.records = append(l.records, rec)
	return rec.clone()
}

func (l *Ledger) Reset() {
	l.records = l.records[:0:0]
	l.counter = 0
}

// Len is the number of stored records.
func (l *Ledger) Len() int { return len(l.records) }

// Count is the measurement counter. It always equals Len.
func (l *Ledger) Count() int { return l.counter }

// LastN returns up to k of the most recent records, oldest first.
func (l *Ledger) LastN(k int) []Record {
	if k <= 0 {
		return []Record{}
	}
	start := len(l.records) - k
	if start < 0 {
		start = 0
	}
	return cloneAll(l.records[start:])
}

func (l *Ledger) All() []Record {
	return cloneAll(l.records)
}

// IVCurve returns (voltage, mean current) pairs in insertion order. The
// points are not sorted by voltage: a sweep may revisit or reverse bias, and
// plotting in acquisition order keeps the trace continuous.
func (l *Ledger) IVCurve() []IVPoint {
	pts := make([]IVPoint, len(l.records))
	for i, r := range l.records {
		pts[i] = IVPoint{VoltageV: r.Parameters.AppliedVoltageV, CurrentUa: r.MeanUa}
	}
	return pts
}

func cloneAll(src []Record) []Record {
	out := make([]Record, len(src))
	for i, r := range src {
		out[i] = r.clone()
	}
	return out
}
