package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/tigerroll/gridwatch/internal/domain/entity"
)

// Report names, used for spans and metrics.
const (
	ReportYearlyAverageDemand       = "yearly_avg_energy_demand"
	ReportYearlyAverageSourceOutput = "yearly_avg_energy_source_contribution"
	ReportDailyDemand               = "daily_demand"
	ReportWeeklyDemand              = "weekly_demand"
	ReportYearlyDemand              = "yearly_demand"
	ReportSourceOutputTrend         = "energy_source_contribution"
	ReportInterconnectorTrend       = "interconnector_trend"
	ReportDailyMinMaxDemand         = "daily_min_max_demand"
	ReportWeeklyMinMaxDemand        = "weekly_min_max_demand"
	ReportYearlyMinMaxDemand        = "yearly_min_max_demand"
	ReportMonthlySourceTotal        = "monthly_source_total"
	ReportRollingDemandByYear       = "rolling_demand_by_year"
	ReportDescribeTable             = "check_tbl"
	ReportListTables                = "check_db"
)

var peakColumns = []string{"max_demand", "min_demand"}

// YearlyAverageDemand averages demand over every reading of each year.
// Columns: year, demand.
func (r *Reports) YearlyAverageDemand(ctx context.Context, dates DateRange) (*Table, error) {
	series := []Series{demandSeries()}
	return r.run(ctx, ReportYearlyAverageDemand, r.sql.periodAverage(byYear, series), dates.args(), seriesColumns("year", series))
}

// YearlyAverageSourceOutput averages each generation source over every reading of each year.
// Columns: year, coal, nuclear, ccgt, wind, pumped, hydro, biomass, oil, solar, ocgt.
func (r *Reports) YearlyAverageSourceOutput(ctx context.Context, dates DateRange) (*Table, error) {
	series := Sources()
	return r.run(ctx, ReportYearlyAverageSourceOutput, r.sql.periodAverage(byYear, series), dates.args(), seriesColumns("year", series))
}

// DailyDemand is the trailing average of daily demand totals over the current date and up
// to window preceding dates. Columns: date, demand.
func (r *Reports) DailyDemand(ctx context.Context, dates DateRange, window int) (*Table, error) {
	return r.trend(ctx, ReportDailyDemand, byDate, []Series{demandSeries()}, dates, window)
}

// WeeklyDemand is the trailing average of weekly demand totals. Columns: year_week, demand.
func (r *Reports) WeeklyDemand(ctx context.Context, dates DateRange, window int) (*Table, error) {
	return r.trend(ctx, ReportWeeklyDemand, byYearWeek, []Series{demandSeries()}, dates, window)
}

// YearlyDemand sums daily demand totals per year. Columns: year, demand.
func (r *Reports) YearlyDemand(ctx context.Context, dates DateRange) (*Table, error) {
	s := demandSeries()
	return r.run(ctx, ReportYearlyDemand, r.sql.yearlyTotal(s), dates.args(), seriesColumns("year", []Series{s}))
}

// SourceOutputTrend is the trailing average of daily totals for each generation source.
// Columns: date, coal, nuclear, ccgt, wind, pumped, hydro, biomass, oil, solar, ocgt.
func (r *Reports) SourceOutputTrend(ctx context.Context, dates DateRange, window int) (*Table, error) {
	return r.trend(ctx, ReportSourceOutputTrend, byDate, Sources(), dates, window)
}

// InterconnectorTrend is the trailing average of daily totals for one interconnector.
// Columns: date, <series alias>.
func (r *Reports) InterconnectorTrend(ctx context.Context, dates DateRange, window int, series string) (*Table, error) {
	s, err := LookupSeries(series, GroupInterconnector)
	if err != nil {
		return r.reject(ctx, ReportInterconnectorTrend, err)
	}
	return r.trend(ctx, ReportInterconnectorTrend, byDate, []Series{s}, dates, window)
}

func (r *Reports) trend(ctx context.Context, report string, p period, series []Series, dates DateRange, window int) (*Table, error) {
	if err := checkWindow(window); err != nil {
		return r.reject(ctx, report, err)
	}
	return r.run(ctx, report, r.sql.trailingAverage(p, series, window), dates.args(), seriesColumns(p.keyName(), series))
}

// DailyMinMaxDemand returns the highest and lowest single demand reading of each date.
// Columns: date, max_demand, min_demand.
func (r *Reports) DailyMinMaxDemand(ctx context.Context, dates DateRange) (*Table, error) {
	return r.run(ctx, ReportDailyMinMaxDemand, r.sql.dailyPeaks(), dates.args(), peakTableColumns(byDate))
}

// WeeklyMinMaxDemand sums the daily maxima and minima of each week.
// Columns: year_week, max_demand, min_demand.
func (r *Reports) WeeklyMinMaxDemand(ctx context.Context, dates DateRange) (*Table, error) {
	return r.run(ctx, ReportWeeklyMinMaxDemand, r.sql.summedPeaks(byYearWeek), dates.args(), peakTableColumns(byYearWeek))
}

// YearlyMinMaxDemand sums the daily maxima and minima of each year.
// Columns: year, max_demand, min_demand.
func (r *Reports) YearlyMinMaxDemand(ctx context.Context, dates DateRange) (*Table, error) {
	return r.run(ctx, ReportYearlyMinMaxDemand, r.sql.summedPeaks(byYear), dates.args(), peakTableColumns(byYear))
}

func peakTableColumns(p period) []column {
	cols := []column{keyColumn(p.keyName())}
	for _, c := range peakColumns {
		cols = append(cols, measureColumn(c))
	}
	return cols
}

// MonthlySourceTotal sums one generation source per month of year.
// Columns: month (int64), total_<series>.
func (r *Reports) MonthlySourceTotal(ctx context.Context, year int, series string) (*Table, error) {
	s, err := LookupSeries(series, GroupSource)
	if err != nil {
		return r.reject(ctx, ReportMonthlySourceTotal, err)
	}
	cols := []column{{name: "month", kind: kindInteger}, measureColumn("total_" + s.Alias)}
	return r.run(ctx, ReportMonthlySourceTotal, r.sql.monthlyTotal(s), []any{year}, cols)
}

// RollingDemandByYear returns each date's demand total in year next to its trailing
// average. Columns: date, demand, rolling_demand.
func (r *Reports) RollingDemandByYear(ctx context.Context, year, window int) (*Table, error) {
	if err := checkWindow(window); err != nil {
		return r.reject(ctx, ReportRollingDemandByYear, err)
	}
	s := demandSeries()
	cols := []column{keyColumn("date"), measureColumn(s.Alias), measureColumn("rolling_" + s.Alias)}
	return r.run(ctx, ReportRollingDemandByYear, r.sql.rollingByYear(s, window), []any{year}, cols)
}

// DescribeTable lists the columns of one warehouse table. Columns: column_name, column_type.
func (r *Reports) DescribeTable(ctx context.Context, table string) (*Table, error) {
	if !slices.Contains(entity.Tables, table) {
		return r.reject(ctx, ReportDescribeTable, fmt.Errorf("%w: '%s'", ErrUnknownTable, table))
	}
	q, args := r.sql.d.DescribeTable(r.sql.schema, table)
	cols := []column{{name: "column_name", kind: kindText}, {name: "column_type", kind: kindText}}
	return r.run(ctx, ReportDescribeTable, q, args, cols)
}

// ListTables lists the tables under the warehouse schema. Columns: table_name.
func (r *Reports) ListTables(ctx context.Context) (*Table, error) {
	q, args := r.sql.d.ListTables(r.sql.schema)
	return r.run(ctx, ReportListTables, q, args, []column{{name: "table_name", kind: kindText}})
}
