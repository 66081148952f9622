package query_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/gridwatch/internal/query"
	"github.com/tigerroll/gridwatch/internal/testutil"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

func newReports(t *testing.T, rows ...testutil.Row) *query.Reports {
	t.Helper()
	cfg := testutil.NewConfig(t)
	session := testutil.LoadWarehouse(t, cfg, testutil.BuildTables(t, testutil.CSV(rows...)))
	return query.NewReports(session, metrics.NewNoOpMetricRecorder())
}

func dates(t *testing.T, start, end string) query.DateRange {
	t.Helper()
	r, err := query.ParseDateRange(start, end)
	require.NoError(t, err)
	return r
}

var twoReadings = []testutil.Row{
	{ID: 1, Timestamp: "2020-01-01 00:00", Measures: map[string]float64{"demand": 100, "nuclear": 4, "french_ict": 1}},
	{ID: 2, Timestamp: "2020-01-01 00:30", Measures: map[string]float64{"demand": 200, "nuclear": 6, "french_ict": 3}},
}

func TestYearlyDemand_SumsAllReadingsOfTheYear(t *testing.T) {
	r := newReports(t, twoReadings...)

	got, err := r.YearlyDemand(context.Background(), dates(t, "2020-01-01", "2020-12-31"))
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "demand"}, got.Columns)
	assert.Equal(t, [][]any{{"2020", 300.0}}, got.Rows)
}

func TestDailyDemand_WindowZeroIsTheDailyTotal(t *testing.T) {
	r := newReports(t, append(twoReadings,
		testutil.Row{ID: 3, Timestamp: "2020-01-02 10:00", Measures: map[string]float64{"demand": 50}},
	)...)

	got, err := r.DailyDemand(context.Background(), dates(t, "2020-01-01", "2020-12-31"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "demand"}, got.Columns)
	assert.Equal(t, [][]any{{"2020-01-01", 300.0}, {"2020-01-02", 50.0}}, got.Rows)
}

func TestDailyDemand_TrailingAverage(t *testing.T) {
	totals := []float64{5, 9, 1, 7, 3, 8, 2, 6, 4, 10}
	var rows []testutil.Row
	for i, v := range totals {
		rows = append(rows, testutil.Row{
			ID:        int64(i),
			Timestamp: fmt.Sprintf("2020-03-%02d 12:00", i+1),
			Measures:  map[string]float64{"demand": v},
		})
	}
	r := newReports(t, rows...)

	const window = 3
	got, err := r.DailyDemand(context.Background(), dates(t, "2020-03-01", "2020-03-31"), window)
	require.NoError(t, err)
	require.Equal(t, len(totals), got.Len())

	for i := range totals {
		lo := max(0, i-window)
		var sum float64
		for _, v := range totals[lo : i+1] {
			sum += v
		}
		want := sum / float64(i+1-lo)
		assert.Equal(t, fmt.Sprintf("2020-03-%02d", i+1), got.Rows[i][0])
		assert.InDelta(t, want, got.Rows[i][1], 1e-9, "row %d", i)
	}
}

func TestDateRange_FiltersByCalendarDate(t *testing.T) {
	r := newReports(t, append(twoReadings,
		testutil.Row{ID: 3, Timestamp: "2020-01-02 23:30", Measures: map[string]float64{"demand": 50}},
		testutil.Row{ID: 4, Timestamp: "2020-01-03 00:00", Measures: map[string]float64{"demand": 70}},
	)...)

	got, err := r.DailyMinMaxDemand(context.Background(), dates(t, "2020-01-02", "2020-01-02"))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"2020-01-02", 50.0, 50.0}}, got.Rows)
}

func TestYearlyAverages(t *testing.T) {
	r := newReports(t, twoReadings...)
	ctx := context.Background()
	year := dates(t, "2020-01-01", "2020-12-31")

	demand, err := r.YearlyAverageDemand(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"2020", 150.0}}, demand.Rows)

	sources, err := r.YearlyAverageSourceOutput(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "coal", "nuclear", "ccgt", "wind", "pumped", "hydro", "biomass", "oil", "solar", "ocgt"}, sources.Columns)
	require.Equal(t, 1, sources.Len())
	assert.Equal(t, 5.0, sources.Column("nuclear")[0])
	assert.Equal(t, 0.0, sources.Column("coal")[0])
}

func TestYearlyAverages_IgnoreBlankMeasures(t *testing.T) {
	r := newReports(t, append(twoReadings,
		testutil.Row{ID: 3, Timestamp: "2020-01-01 01:00", Measures: map[string]float64{"coal": 2}, Blank: []string{"demand", "nuclear"}},
	)...)
	ctx := context.Background()
	year := dates(t, "2020-01-01", "2020-12-31")

	demand, err := r.YearlyAverageDemand(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"2020", 150.0}}, demand.Rows)

	total, err := r.YearlyDemand(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"2020", 300.0}}, total.Rows)

	sources, err := r.YearlyAverageSourceOutput(ctx, year)
	require.NoError(t, err)
	require.Equal(t, 1, sources.Len())
	assert.Equal(t, 5.0, sources.Column("nuclear")[0])
	assert.InDelta(t, 2.0/3.0, sources.Column("coal")[0], 1e-9)
}

func TestWeeklyDemand_UsesUnpaddedYearWeekKeys(t *testing.T) {
	r := newReports(t, append(twoReadings,
		testutil.Row{ID: 3, Timestamp: "2020-01-08 10:00", Measures: map[string]float64{"demand": 100}},
	)...)

	got, err := r.WeeklyDemand(context.Background(), dates(t, "2020-01-01", "2020-12-31"), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"year_week", "demand"}, got.Columns)
	assert.Equal(t, [][]any{{"2020-1", 300.0}, {"2020-2", 200.0}}, got.Rows)
}

func TestMinMaxDemand_SumsDailyPeaks(t *testing.T) {
	r := newReports(t, append(twoReadings,
		testutil.Row{ID: 3, Timestamp: "2020-01-02 10:00", Measures: map[string]float64{"demand": 40}},
		testutil.Row{ID: 4, Timestamp: "2020-01-02 11:00", Measures: map[string]float64{"demand": 60}},
	)...)
	ctx := context.Background()
	year := dates(t, "2020-01-01", "2020-12-31")

	daily, err := r.DailyMinMaxDemand(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "max_demand", "min_demand"}, daily.Columns)
	assert.Equal(t, [][]any{{"2020-01-01", 200.0, 100.0}, {"2020-01-02", 60.0, 40.0}}, daily.Rows)

	weekly, err := r.WeeklyMinMaxDemand(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"2020-1", 260.0, 140.0}}, weekly.Rows)

	yearly, err := r.YearlyMinMaxDemand(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "max_demand", "min_demand"}, yearly.Columns)
	assert.Equal(t, [][]any{{"2020", 260.0, 140.0}}, yearly.Rows)
}

func TestSourceAndInterconnectorTrends(t *testing.T) {
	r := newReports(t, twoReadings...)
	ctx := context.Background()
	year := dates(t, "2020-01-01", "2020-12-31")

	sources, err := r.SourceOutputTrend(ctx, year, 27)
	require.NoError(t, err)
	require.Equal(t, 1, sources.Len())
	assert.Equal(t, "date", sources.Columns[0])
	assert.Equal(t, 10.0, sources.Column("nuclear")[0])

	ict, err := r.InterconnectorTrend(ctx, year, 27, "french_ict")
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "french_ict"}, ict.Columns)
	assert.Equal(t, [][]any{{"2020-01-01", 4.0}}, ict.Rows)
}

func TestMonthlySourceTotal(t *testing.T) {
	r := newReports(t, append(twoReadings,
		testutil.Row{ID: 3, Timestamp: "2020-03-15 10:00", Measures: map[string]float64{"nuclear": 5}},
		testutil.Row{ID: 4, Timestamp: "2021-03-15 10:00", Measures: map[string]float64{"nuclear": 99}},
	)...)

	got, err := r.MonthlySourceTotal(context.Background(), 2020, "nuclear")
	require.NoError(t, err)
	assert.Equal(t, []string{"month", "total_nuclear"}, got.Columns)
	assert.Equal(t, [][]any{{int64(1), 10.0}, {int64(3), 5.0}}, got.Rows)

	_, err = r.MonthlySourceTotal(context.Background(), 2020, "french_ict")
	assert.ErrorIs(t, err, query.ErrUnknownSeries)
}

func TestRollingDemandByYear(t *testing.T) {
	r := newReports(t, append(twoReadings,
		testutil.Row{ID: 3, Timestamp: "2020-01-02 10:00", Measures: map[string]float64{"demand": 100}},
		testutil.Row{ID: 4, Timestamp: "2019-12-31 10:00", Measures: map[string]float64{"demand": 1000}},
	)...)

	got, err := r.RollingDemandByYear(context.Background(), 2020, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "demand", "rolling_demand"}, got.Columns)
	assert.Equal(t, [][]any{{"2020-01-01", 300.0, 300.0}, {"2020-01-02", 100.0, 200.0}}, got.Rows)
}

func TestInvertedRange_ReturnsEmptyTablesWithHeaders(t *testing.T) {
	r := newReports(t, twoReadings...)
	ctx := context.Background()
	inverted := dates(t, "2021-06-01", "2021-01-01")
	require.True(t, inverted.Inverted())

	reports := map[string]func() (*query.Table, error){
		"yearly_avg_demand":  func() (*query.Table, error) { return r.YearlyAverageDemand(ctx, inverted) },
		"yearly_avg_sources": func() (*query.Table, error) { return r.YearlyAverageSourceOutput(ctx, inverted) },
		"daily_demand":       func() (*query.Table, error) { return r.DailyDemand(ctx, inverted, 27) },
		"weekly_demand":      func() (*query.Table, error) { return r.WeeklyDemand(ctx, inverted, 3) },
		"yearly_demand":      func() (*query.Table, error) { return r.YearlyDemand(ctx, inverted) },
		"source_trend":       func() (*query.Table, error) { return r.SourceOutputTrend(ctx, inverted, 27) },
		"interconnector":     func() (*query.Table, error) { return r.InterconnectorTrend(ctx, inverted, 27, "nemo") },
		"daily_min_max":      func() (*query.Table, error) { return r.DailyMinMaxDemand(ctx, inverted) },
		"weekly_min_max":     func() (*query.Table, error) { return r.WeeklyMinMaxDemand(ctx, inverted) },
		"yearly_min_max":     func() (*query.Table, error) { return r.YearlyMinMaxDemand(ctx, inverted) },
	}
	for name, report := range reports {
		t.Run(name, func(t *testing.T) {
			got, err := report()
			require.NoError(t, err)
			assert.NotEmpty(t, got.Columns)
			assert.NotNil(t, got.Rows)
			assert.Empty(t, got.Rows)
		})
	}
}

func TestParameterErrors(t *testing.T) {
	r := newReports(t, twoReadings...)
	ctx := context.Background()
	year := dates(t, "2020-01-01", "2020-12-31")

	_, err := r.DailyDemand(ctx, year, -1)
	assert.ErrorIs(t, err, query.ErrInvalidWindow)

	_, err = r.RollingDemandByYear(ctx, 2020, -2)
	assert.ErrorIs(t, err, query.ErrInvalidWindow)

	_, err = r.InterconnectorTrend(ctx, year, 3, "coal")
	assert.ErrorIs(t, err, query.ErrUnknownSeries)

	_, err = r.DescribeTable(ctx, "sqlite_master")
	assert.ErrorIs(t, err, query.ErrUnknownTable)
}

func TestDescribeAndListTables(t *testing.T) {
	r := newReports(t, twoReadings...)
	ctx := context.Background()

	desc, err := r.DescribeTable(ctx, "dim_datetime")
	require.NoError(t, err)
	assert.Equal(t, []string{"column_name", "column_type"}, desc.Columns)
	assert.Equal(t, []any{"datetime_id", "timestamp", "year", "month", "day", "hour", "day_of_week", "week"}, desc.Column("column_name"))
	assert.Equal(t, "DATETIME", desc.Rows[1][1])

	tables, err := r.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{"dim_datetime", "dim_energy_output_and_flow", "fct_gridwatch"}, tables.Column("table_name"))
}

func TestDateRange(t *testing.T) {
	_, err := query.ParseDateRange("2020-13-01", "2020-12-31")
	assert.Error(t, err)

	r := query.NewDateRange(time.Date(2020, 1, 1, 23, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 1, 0, 0, 0, time.UTC))
	assert.False(t, r.Inverted())
	assert.Equal(t, "2020-01-01..2020-01-01", r.String())
}
