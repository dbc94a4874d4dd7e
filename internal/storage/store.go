// Package storage keeps exported datasets on disk, one directory per run:
//
//	<base>/<run id>/metadata.json
//	<base>/<run id>/measurements.csv
//
// The CSV file is the export format itself; nothing else is persisted.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/photolab/internal/export"
	"github.com/san-kum/photolab/internal/ledger"
)

const (
	metadataFile     = "metadata.json"
	measurementsFile = "measurements.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Material     string             `json:"material"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Count        int                `json:"count"`
	WavelengthNm float64            `json:"wavelength_nm"`
	Intensity    float64            `json:"intensity_w_per_m2"`
	AreaCm2      float64            `json:"area_cm2"`
	VoltageMinV  float64            `json:"voltage_min_v"`
	VoltageMaxV  float64            `json:"voltage_max_v"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// Save writes records as a new run and returns its id. The run's
// parameters are taken from the first record.
func (s *Store) Save(material string, seed int64, records []ledger.Record, metrics map[string]float64) (string, error) {
	if len(records) == 0 {
		return "", export.ErrEmptyLedger
	}

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s_%s_%s", material, now.Format("20060102T150405"), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, runMetadata(runID, material, seed, now, records, metrics), records); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func runMetadata(runID, material string, seed int64, now time.Time, records []ledger.Record, metrics map[string]float64) RunMetadata {
	first := records[0].Parameters
	meta := RunMetadata{
		ID:           runID,
		Material:     material,
		Timestamp:    now,
		Seed:         seed,
		Count:        len(records),
		WavelengthNm: first.WavelengthNm,
		Intensity:    first.IntensityWPerM2,
		AreaCm2:      first.AreaCm2,
		VoltageMinV:  first.AppliedVoltageV,
		VoltageMaxV:  first.AppliedVoltageV,
		Metrics:      metrics,
	}
	for _, r := range records[1:] {
		v := r.Parameters.AppliedVoltageV
		if v < meta.VoltageMinV {
			meta.VoltageMinV = v
		}
		if v > meta.VoltageMaxV {
			meta.VoltageMaxV = v
		}
	}
	return meta
}

// writeCSV is swapped out by tests to simulate a failed write.
var writeCSV = export.WriteCSV

func writeRun(runDir string, meta RunMetadata, records []ledger.Record) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, measurementsFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := writeCSV(csvFile, records); err != nil {
		return err
	}
	return csvFile.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, newest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// CSVPath is where a run's dataset lives.
func (s *Store) CSVPath(runID string) string {
	return filepath.Join(s.baseDir, runID, measurementsFile)
}

func (s *Store) LoadRows(runID string) ([]export.Row, error) {
	f, err := os.Open(s.CSVPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return export.ParseCSV(f)
}
