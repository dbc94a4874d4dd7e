package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/san-kum/photolab/internal/ledger"
)

type Dataset struct {
	RunID      string           `json:"run_id,omitempty"`
	Material   string           `json:"material"`
	Seed       int64            `json:"seed"`
	ExportedAt time.Time        `json:"exported_at"`
	Count      int              `json:"count"`
	IVCurve    []ledger.IVPoint `json:"iv_curve"`
	Records    []ledger.Record  `json:"records"`
}

func NewDataset(material string, seed int64, records []ledger.Record) Dataset {
	curve := make([]ledger.IVPoint, len(records))
	for i, r := range records {
		curve[i] = ledger.IVPoint{VoltageV: r.Parameters.AppliedVoltageV, CurrentUa: r.MeanUa}
	}
	return Dataset{
		Material:   material,
		Seed:       seed,
		ExportedAt: time.Now().UTC(),
		Count:      len(records),
		IVCurve:    curve,
		Records:    records,
	}
}

func WriteJSON(w io.Writer, ds Dataset) error {
	if ds.Count == 0 {
		return ErrEmptyLedger
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ds)
}
