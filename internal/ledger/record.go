package ledger

import (
	"time"

	"github.com/san-kum/photolab/internal/physics"
)

// Record is one measurement event. Records are immutable once appended;
// the ledger hands out copies.
type Record struct {
	ID          string             `json:"id"`
	Sequence    int                `json:"sequence"`
	Timestamp   time.Time          `json:"timestamp"`
	Material    string             `json:"material"`
	Parameters  physics.Parameters `json:"parameters"`
	Result      physics.Result     `json:"result"`
	MeanUa      float64            `json:"mean_current_ua"`
	StdDevUa    float64            `json:"std_dev_ua"`
	StdErrorUa  float64            `json:"std_error_ua"`
	SampleCount int                `json:"sample_count"`
	Samples     []float64          `json:"samples"`
}

func (r Record) clone() Record {
	c := r
	c.Samples = make([]float64, len(r.Samples))
	copy(c.Samples, r.Samples)
	return c
}

// IVPoint is one (bias, mean current) pair of the acquired curve.
type IVPoint struct {
	VoltageV  float64 `json:"voltage_v"`
	CurrentUa float64 `json:"current_ua"`
}
