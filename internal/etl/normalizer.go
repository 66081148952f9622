package etl

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tigerroll/gridwatch/internal/domain/entity"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
)

const normalizerModule = "normalizer"

// Source column names that are not measurements.
const (
	ColumnID        = "id"
	ColumnTimestamp = "timestamp"
)

// measureColumn binds a raw source column to its field in entity.EnergyFlow.
type measureColumn struct {
	source string
	field  func(*entity.EnergyFlow) *sql.NullFloat64
}

// measureColumns lists every measurement read from the extract, under its source name.
// ifa2, intelec_ict and nsl land in their canonical fields.
var measureColumns = []measureColumn{
	{"demand", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Demand }},
	{"frequency", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Frequency }},
	{"coal", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Coal }},
	{"nuclear", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Nuclear }},
	{"ccgt", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.CCGT }},
	{"wind", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Wind }},
	{"pumped", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Pumped }},
	{"hydro", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Hydro }},
	{"biomass", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Biomass }},
	{"oil", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Oil }},
	{"solar", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Solar }},
	{"ocgt", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.OCGT }},
	{"french_ict", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.FrenchICT }},
	{"dutch_ict", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.DutchICT }},
	{"irish_ict", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.IrishICT }},
	{"ew_ict", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.EWICT }},
	{"nemo", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Nemo }},
	{"other", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.Other }},
	{"north_south", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.NorthSouth }},
	{"scotland_england", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.ScotlandEngland }},
	{"ifa2", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.FrenchICT2 }},
	{"intelec_ict", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.FrenchICTIntelec }},
	{"nsl", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.NorwayICT }},
	{"vkl_ict", func(f *entity.EnergyFlow) *sql.NullFloat64 { return &f.VKLICT }},
}

// RequiredColumns returns the source columns every extract must carry.
func RequiredColumns() []string {
	cols := []string{ColumnID, ColumnTimestamp}
	for _, m := range measureColumns {
		cols = append(cols, m.source)
	}
	return cols
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	time.DateOnly,
}

// ParseTimestamp parses a raw timestamp into a naive instant: UTC location holding the
// source wall clock. Values with an offset are converted to UTC first.
func ParseTimestamp(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

// NormalizeHeader lower-cases and trims every column name.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// Normalize reads a raw CSV extract and returns one Reading per record, in input order.
// Extra columns are ignored. A blank measurement cell becomes a NULL measure; any other
// malformed value aborts the batch.
func Normalize(r io.Reader) ([]entity.Reading, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, exception.NewBatchErrorf(normalizerModule, "extract is empty, no header row", ErrMissingColumn)
	}
	if err != nil {
		return nil, exception.NewBatchError(normalizerModule, "failed to read header row", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range NormalizeHeader(header) {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range RequiredColumns() {
		if _, ok := index[col]; !ok {
			return nil, exception.NewBatchErrorf(normalizerModule, "column '%s' not found in extract", col, ErrMissingColumn)
		}
	}

	var readings []entity.Reading
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, exception.NewBatchErrorf(normalizerModule, "line %d: malformed CSV record", line, err)
		}
		reading, err := parseRecord(record, index, line)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

func parseRecord(record []string, index map[string]int, line int) (entity.Reading, error) {
	var reading entity.Reading

	rawID := strings.TrimSpace(record[index[ColumnID]])
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		// Some extracts carry integral ids as floats ("12.0").
		f, ferr := strconv.ParseFloat(rawID, 64)
		if ferr != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
			return reading, exception.NewBatchErrorf(normalizerModule, "line %d: id %q is not an integer", line, rawID, ErrInvalidValue)
		}
		id = int64(f)
	}
	reading.ID = id

	rawTS := record[index[ColumnTimestamp]]
	ts, err := ParseTimestamp(rawTS)
	if err != nil {
		return reading, exception.NewBatchErrorf(normalizerModule, "line %d: cannot parse timestamp %q", line, rawTS, ErrInvalidTimestamp)
	}
	reading.Timestamp = ts

	for _, m := range measureColumns {
		raw := record[index[m.source]]
		v, err := parseMeasure(raw)
		if err != nil {
			return reading, exception.NewBatchErrorf(normalizerModule, "line %d: column '%s' has invalid value %q", line, m.source, raw, ErrInvalidValue)
		}
		*m.field(&reading.Flow) = v
	}
	return reading, nil
}

// parseMeasure maps a blank cell, or a spelled-out NaN, to NULL. Infinities are rejected.
func parseMeasure(raw string) (sql.NullFloat64, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) {
		return sql.NullFloat64{}, ErrInvalidValue
	}
	if math.IsNaN(f) {
		return sql.NullFloat64{}, nil
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}
