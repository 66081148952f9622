package etl_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/gridwatch/internal/domain/entity"
	"github.com/tigerroll/gridwatch/internal/etl"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
)

func TestNormalize_ParsesRecords(t *testing.T) {
	input := buildCSV(
		demandRow(1, "2020-01-01 00:00:00", 100),
		csvRow{id: "2", timestamp: " 2020-01-01T00:30 ", measures: map[string]string{
			"demand": "200.5", "ifa2": "1.5", "intelec_ict": "2.5", "nsl": "3.5", "coal": " 42 ",
		}},
	)

	readings, err := etl.Normalize(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, int64(1), readings[0].ID)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), readings[0].Timestamp)
	assert.Equal(t, entity.Measure(100), readings[0].Flow.Demand)

	second := readings[1]
	assert.Equal(t, time.Date(2020, 1, 1, 0, 30, 0, 0, time.UTC), second.Timestamp)
	assert.Equal(t, entity.Measure(200.5), second.Flow.Demand)
	assert.Equal(t, entity.Measure(42), second.Flow.Coal)
	assert.Equal(t, entity.Measure(1.5), second.Flow.FrenchICT2)
	assert.Equal(t, entity.Measure(2.5), second.Flow.FrenchICTIntelec)
	assert.Equal(t, entity.Measure(3.5), second.Flow.NorwayICT)
}

func TestNormalize_BlankMeasureIsNull(t *testing.T) {
	input := buildCSV(
		csvRow{id: "1", timestamp: "2020-01-01 00:00", measures: map[string]string{"demand": "100", "nsl": ""}},
		csvRow{id: "2", timestamp: "2020-01-01 00:30", measures: map[string]string{"demand": " ", "solar": "NaN"}},
	)

	readings, err := etl.Normalize(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, entity.Measure(100), readings[0].Flow.Demand)
	assert.False(t, readings[0].Flow.NorwayICT.Valid)
	assert.False(t, readings[1].Flow.Demand.Valid)
	assert.False(t, readings[1].Flow.Solar.Valid)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, []string{"id", "timestamp", "french_ict"}, etl.NormalizeHeader([]string{" ID", "TimeStamp ", "French_ICT"}))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2021, 3, 4, 5, 6, 0, 0, time.UTC)
	for _, raw := range []string{
		"2021-03-04 05:06:00",
		"2021-03-04T05:06:00",
		"2021-03-04 05:06",
		"2021-03-04T05:06",
		"2021-03-04T06:06:00+01:00",
	} {
		got, err := etl.ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s parsed to %s", raw, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	day, err := etl.ParseTimestamp("2021-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), day)

	_, err = etl.ParseTimestamp("not a date")
	assert.ErrorIs(t, err, etl.ErrInvalidTimestamp)
}

func TestNormalize_InputFormatErrors(t *testing.T) {
	valid := buildCSV(demandRow(1, "2020-01-01 00:00", 1))

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty extract", "", etl.ErrMissingColumn},
		{"missing column", strings.Replace(valid, "NSL", "unknown", 1), etl.ErrMissingColumn},
		{"bad timestamp", buildCSV(demandRow(1, "yesterday", 1)), etl.ErrInvalidTimestamp},
		{"bad number", buildCSV(csvRow{id: "1", timestamp: "2020-01-01", measures: map[string]string{"wind": "lots"}}), etl.ErrInvalidValue},
		{"text measure", buildCSV(csvRow{id: "1", timestamp: "2020-01-01", measures: map[string]string{"solar": "n/a"}}), etl.ErrInvalidValue},
		{"infinite", buildCSV(csvRow{id: "1", timestamp: "2020-01-01", measures: map[string]string{"demand": "+Inf"}}), etl.ErrInvalidValue},
		{"fractional id", buildCSV(csvRow{id: "1.5", timestamp: "2020-01-01"}), etl.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := etl.Normalize(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, exception.IsBatchError(err))
		})
	}
}

func TestNormalize_FloatFormattedID(t *testing.T) {
	readings, err := etl.Normalize(strings.NewReader(buildCSV(csvRow{id: "12.0", timestamp: "2020-01-01"})))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, int64(12), readings[0].ID)
}
