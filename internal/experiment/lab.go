// Package experiment is the boundary between the photoelectric engine and
// its callers.
//
// A [Lab] owns one ledger and threads parameters through the physics model,
// the measurement sampler and the ledger:
//
//	lab := experiment.New(experiment.Config{Seed: 42})
//	res, err := lab.Evaluate(params)
//	rec, err := lab.Measure(params, res)
//	csv, err := lab.Export()
//
// A Lab is not safe for concurrent use. Callers that poll Evaluate from a
// redraw loop must serialize those calls with Measure.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/photolab/internal/export"
	"github.com/san-kum/photolab/internal/ledger"
	"github.com/san-kum/photolab/internal/logging"
	"github.com/san-kum/photolab/internal/materials"
	"github.com/san-kum/photolab/internal/physics"
	"github.com/san-kum/photolab/internal/sampler"
)

// DefaultSnapshotSize is the window Snapshot uses when k is not positive.
const DefaultSnapshotSize = 10

// maxSweepPoints bounds a single sweep; the full voltage range at 1 mV is 10001.
const maxSweepPoints = 10001

type Config struct {
	Seed          int64
	SampleCount   int
	NoiseFraction float64
}

type Lab struct {
	cfg     Config
	catalog *materials.Catalog
	sampler *sampler.Sampler
	ledger  *ledger.Ledger
	log     *slog.Logger
}

type Option func(*Lab)

// WithSource replaces the seeded generator, e.g. with a fixed sequence.
func WithSource(src sampler.RandomSource) Option {
	return func(l *Lab) { l.sampler = l.newSampler(src) }
}

func WithLedger(led *ledger.Ledger) Option {
	return func(l *Lab) { l.ledger = led }
}

func WithCatalog(c *materials.Catalog) Option {
	return func(l *Lab) { l.catalog = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Lab) { l.log = log }
}

func New(cfg Config, opts ...Option) *Lab {
	l := &Lab{
		cfg:     cfg,
		catalog: materials.NewCatalog(),
		ledger:  ledger.New(),
		log:     logging.Discard(),
	}
	l.sampler = l.newSampler(sampler.NewSeededSource(cfg.Seed))
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lab) newSampler(src sampler.RandomSource) *sampler.Sampler {
	s := sampler.New(src)
	if l.cfg.SampleCount > 0 {
		s.Count = l.cfg.SampleCount
	}
	if l.cfg.NoiseFraction > 0 {
		s.NoiseFraction = l.cfg.NoiseFraction
	}
	return s
}

func (l *Lab) Seed() int64 { return l.cfg.Seed }

func (l *Lab) Catalog() *materials.Catalog { return l.catalog }

// Material resolves a catalog id.
func (l *Lab) Material(id string) (materials.Material, error) {
	return l.catalog.Get(id)
}

// Evaluate validates p and computes the physics result. Unknown materials
// are reported as invalid parameters.
func (l *Lab) Evaluate(p physics.Parameters) (physics.Result, error) {
	m, err := l.resolve(p)
	if err != nil {
		return physics.Result{}, err
	}
	res, err := physics.Compute(m.WorkFunctionEv, p)
	if err != nil {
		return physics.Result{}, err
	}
	l.log.Log(context.Background(), logging.LevelTrace, "evaluated",
		"material", m.ID, "wavelength_nm", p.WavelengthNm, "voltage_v", p.AppliedVoltageV, "current_ua", res.CurrentUa)
	return res, nil
}

func (l *Lab) resolve(p physics.Parameters) (materials.Material, error) {
	if err := p.Validate(); err != nil {
		return materials.Material{}, err
	}
	m, err := l.catalog.Get(p.MaterialID)
	if err != nil {
		return materials.Material{}, fmt.Errorf("%w: %v", physics.ErrInvalidParameter, err)
	}
	return m, nil
}

// Measure draws a sample set around res.CurrentUa and appends it to the
// ledger. On error the ledger is left untouched.
func (l *Lab) Measure(p physics.Parameters, res physics.Result) (ledger.Record, error) {
	m, err := l.resolve(p)
	if err != nil {
		return ledger.Record{}, err
	}
	if math.IsNaN(res.CurrentUa) || math.IsInf(res.CurrentUa, 0) || res.CurrentUa < 0 {
		return ledger.Record{}, fmt.Errorf("%w: current %g is not a finite non-negative value", physics.ErrInvalidParameter, res.CurrentUa)
	}

	out := l.sampler.Sample(res.CurrentUa)
	rec := l.ledger.Record(m.Name, p, res, out)
	l.log.Debug("measured",
		"seq", rec.Sequence, "material", m.ID, "voltage_v", p.AppliedVoltageV,
		"mean_ua", rec.MeanUa, "stderr_ua", rec.StdErrorUa)
	return rec, nil
}

// Snapshot returns up to k recent records, oldest first. k <= 0 means
// DefaultSnapshotSize.
func (l *Lab) Snapshot(k int) []ledger.Record {
	if k <= 0 {
		k = DefaultSnapshotSize
	}
	return l.ledger.LastN(k)
}

func (l *Lab) Records() []ledger.Record { return l.ledger.All() }

func (l *Lab) Count() int { return l.ledger.Count() }

func (l *Lab) IVCurve() []ledger.IVPoint { return l.ledger.IVCurve() }

func (l *Lab) Reset() {
	l.ledger.Reset()
	l.log.Debug("ledger reset")
}

// Export renders the ledger as CSV, or export.ErrEmptyLedger.
func (l *Lab) Export() (string, error) {
	return export.CSV(l.ledger.All())
}

// Sweep measures p at every bias from..to in step increments, to included.
// All points are validated and evaluated before anything is recorded.
func (l *Lab) Sweep(p physics.Parameters, from, to, step float64) ([]ledger.Record, error) {
	voltages, err := SweepVoltages(from, to, step)
	if err != nil {
		return nil, err
	}

	params := make([]physics.Parameters, len(voltages))
	results := make([]physics.Result, len(voltages))
	for i, v := range voltages {
		params[i] = p.WithVoltage(v)
		res, err := l.Evaluate(params[i])
		if err != nil {
			return nil, fmt.Errorf("sweep point %.3f V: %w", v, err)
		}
		results[i] = res
	}

	recs := make([]ledger.Record, 0, len(voltages))
	for i := range voltages {
		rec, err := l.Measure(params[i], results[i])
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	l.log.Info("sweep complete", "material", p.MaterialID, "points", len(recs), "from_v", from, "to_v", to)
	return recs, nil
}

// SweepVoltages lists the bias points of a sweep. Points are snapped to the
// step grid so accumulated rounding never skips the last one.
func SweepVoltages(from, to, step float64) ([]float64, error) {
	if math.IsNaN(step) || step <= 0 {
		return nil, fmt.Errorf("%w: sweep step must be positive, got %g", physics.ErrInvalidParameter, step)
	}
	if math.IsNaN(from) || math.IsNaN(to) || math.IsInf(from, 0) || math.IsInf(to, 0) || from > to {
		return nil, fmt.Errorf("%w: invalid sweep window [%g, %g]", physics.ErrInvalidParameter, from, to)
	}

	// count in float64 so tiny steps cannot overflow int
	count := math.Floor((to-from)/step+1e-9) + 1
	if math.IsInf(count, 0) || count > maxSweepPoints {
		return nil, fmt.Errorf("%w: sweep has %g points, limit %d", physics.ErrInvalidParameter, count, maxSweepPoints)
	}
	n := int(count)
	out := make([]float64, n)
	for i := range out {
		v := math.Round((from+float64(i)*step)*1e9) / 1e9
		if v == 0 {
			v = 0 // drop negative zero
		}
		out[i] = v
	}
	return out, nil
}
