// Package export serializes measurement records.
//
// [CSV] produces the flat dataset format shared with the spreadsheet
// tooling; [ParseCSV] reads it back. [WriteJSON] and [IVCurveSVG] cover the
// machine-readable and plotted forms.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/photolab/internal/ledger"
)

var ErrEmptyLedger = errors.New("export: ledger has no records")

// TimestampLayout is ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var Header = []string{
	"Timestamp",
	"Material",
	"Work_Function_eV",
	"Wavelength_nm",
	"Photon_Energy_eV",
	"Intensity_W_per_m2",
	"Area_cm2",
	"Applied_Voltage_V",
	"Mean_Current_uA",
	"Standard_Deviation_uA",
	"Standard_Error_uA",
	"Measurements_Count",
	"Individual_Readings",
}

// CSV renders records as a dataset. It returns ErrEmptyLedger, and no text,
// when there is nothing to export.
func CSV(records []ledger.Record) (string, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, records); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteCSV writes nothing when records is empty.
//
// The readings column is always quoted. encoding/csv only quotes on demand,
// so rows are assembled by hand; no other field can contain a comma.
func WriteCSV(w io.Writer, records []ledger.Record) error {
	if len(records) == 0 {
		return ErrEmptyLedger
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(Header, ","))
	sb.WriteByte('\n')

	for _, r := range records {
		row := []string{
			r.Timestamp.UTC().Format(TimestampLayout),
			r.Material,
			formatFloat(r.Result.WorkFunctionEv),
			formatFloat(r.Parameters.WavelengthNm),
			formatFloat(r.Result.PhotonEnergyEv),
			formatFloat(r.Parameters.IntensityWPerM2),
			formatFloat(r.Parameters.AreaCm2),
			formatFloat(r.Parameters.AppliedVoltageV),
			formatFloat(r.MeanUa),
			formatFloat(r.StdDevUa),
			formatFloat(r.StdErrorUa),
			strconv.Itoa(r.SampleCount),
			`"` + joinReadings(r.Samples) + `"`,
		}
		sb.WriteString(strings.Join(row, ","))
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func joinReadings(samples []float64) string {
	parts := make([]string, len(samples))
	for i, v := range samples {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ";")
}

// Row is one parsed dataset line.
type Row struct {
	Timestamp         time.Time
	Material          string
	WorkFunctionEv    float64
	WavelengthNm      float64
	PhotonEnergyEv    float64
	IntensityWPerM2   float64
	AreaCm2           float64
	AppliedVoltageV   float64
	MeanCurrentUa     float64
	StdDevUa          float64
	StdErrorUa        float64
	MeasurementsCount int
	Readings          []float64
}

func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header")
	}
	for i, name := range Header {
		if strings.TrimSpace(records[0][i]) != name {
			return nil, fmt.Errorf("read csv: column %d is %q, want %q", i, records[0][i], name)
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for line, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("read csv: line %d: %w", line+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (Row, error) {
	var row Row
	ts, err := time.Parse(time.RFC3339Nano, rec[0])
	if err != nil {
		return row, err
	}
	row.Timestamp = ts
	row.Material = rec[1]

	floats := []*float64{
		&row.WorkFunctionEv, &row.WavelengthNm, &row.PhotonEnergyEv,
		&row.IntensityWPerM2, &row.AreaCm2, &row.AppliedVoltageV,
		&row.MeanCurrentUa, &row.StdDevUa, &row.StdErrorUa,
	}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(rec[i+2], 64)
		if err != nil {
			return row, fmt.Errorf("%s: %w", Header[i+2], err)
		}
		*dst = v
	}

	n, err := strconv.Atoi(rec[11])
	if err != nil {
		return row, fmt.Errorf("%s: %w", Header[11], err)
	}
	row.MeasurementsCount = n

	if rec[12] != "" {
		parts := strings.Split(rec[12], ";")
		row.Readings = make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return row, fmt.Errorf("%s[%d]: %w", Header[12], i, err)
			}
			row.Readings[i] = v
		}
	}
	return row, nil
}
