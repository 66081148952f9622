package query

import (
	"fmt"
	"strings"

	"github.com/tigerroll/gridwatch/internal/domain/entity"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
)

// period selects the grouping key of a report.
type period int

const (
	byDate period = iota
	byYearWeek
	byYear
)

// keyName is the output column of the grouping key.
func (p period) keyName() string {
	switch p {
	case byYearWeek:
		return "year_week"
	case byYear:
		return "year"
	default:
		return "date"
	}
}

// sqlBuilder renders report SQL for one dialect and schema. Measures are read from the
// eof alias and calendar fields from the dt alias.
type sqlBuilder struct {
	d      database.Dialect
	schema string
}

func (b sqlBuilder) from() string {
	return fmt.Sprintf(`FROM %s g
LEFT JOIN %s dt ON dt.datetime_id = g.datetime_id
LEFT JOIN %s eof ON eof.energy_id = g.energy_id`,
		b.d.Qualify(b.schema, entity.TableFact),
		b.d.Qualify(b.schema, entity.TableDatetime),
		b.d.Qualify(b.schema, entity.TableEnergyFlow))
}

func (b sqlBuilder) dateOf() string { return b.d.DateOf("dt.timestamp") }

// inRange filters on the calendar date; it takes the start and end as two arguments.
func (b sqlBuilder) inRange() string { return b.dateOf() + " BETWEEN ? AND ?" }

// yearWeek renders an unpadded "year-week" key from two integer expressions.
func (b sqlBuilder) yearWeek(year, week string) string {
	return b.d.Concat(b.d.Text(year), "'-'", b.d.Text(week))
}

func (b sqlBuilder) key(p period) string {
	switch p {
	case byYearWeek:
		return b.yearWeek("dt.year", "dt.week")
	case byYear:
		return b.d.Text("dt.year")
	default:
		return b.dateOf()
	}
}

// periodAverage averages each series over every fact in the period.
func (b sqlBuilder) periodAverage(p period, series []Series) string {
	aggs := make([]string, len(series))
	for i, s := range series {
		aggs[i] = fmt.Sprintf("AVG(eof.%s) AS %s", s.Column, s.Alias)
	}
	return fmt.Sprintf(`SELECT %s AS %s, %s
%s
WHERE %s
GROUP BY 1
ORDER BY 1`, b.key(p), p.keyName(), strings.Join(aggs, ", "), b.from(), b.inRange())
}

// trailingAverage sums each series per period, then averages each period's total with
// up to window preceding totals.
func (b sqlBuilder) trailingAverage(p period, series []Series, window int) string {
	sums := make([]string, len(series))
	avgs := make([]string, len(series))
	for i, s := range series {
		sums[i] = fmt.Sprintf("SUM(eof.%s) AS %s", s.Column, s.Alias)
		avgs[i] = fmt.Sprintf("AVG(%s) OVER (ORDER BY bucket ROWS BETWEEN %d PRECEDING AND CURRENT ROW) AS %s", s.Alias, window, s.Alias)
	}
	return fmt.Sprintf(`WITH base AS (
SELECT %s AS bucket, %s
%s
WHERE %s
GROUP BY 1
)
SELECT bucket AS %s, %s
FROM base
ORDER BY 1`, b.key(p), strings.Join(sums, ", "), b.from(), b.inRange(), p.keyName(), strings.Join(avgs, ", "))
}

// yearlyTotal sums the daily totals of series per calendar year.
func (b sqlBuilder) yearlyTotal(s Series) string {
	return fmt.Sprintf(`WITH daily AS (
SELECT %s AS bucket, MIN(dt.year) AS yr, SUM(eof.%s) AS total
%s
WHERE %s
GROUP BY 1
)
SELECT %s AS year, SUM(total) AS %s
FROM daily
GROUP BY 1
ORDER BY 1`, b.dateOf(), s.Column, b.from(), b.inRange(), b.d.Text("yr"), s.Alias)
}

// dailyPeaks returns the highest and lowest single reading of demand per date.
func (b sqlBuilder) dailyPeaks() string {
	return fmt.Sprintf(`SELECT %s AS date, MAX(eof.demand) AS max_demand, MIN(eof.demand) AS min_demand
%s
WHERE %s
GROUP BY 1
ORDER BY 1`, b.dateOf(), b.from(), b.inRange())
}

// summedPeaks computes daily peaks first, then sums them per year-week or year.
func (b sqlBuilder) summedPeaks(p period) string {
	key := b.d.Text("yr")
	if p == byYearWeek {
		key = b.yearWeek("yr", "wk")
	}
	return fmt.Sprintf(`WITH daily AS (
SELECT %s AS bucket, MIN(dt.year) AS yr, MIN(dt.week) AS wk, MAX(eof.demand) AS max_demand, MIN(eof.demand) AS min_demand
%s
WHERE %s
GROUP BY 1
)
SELECT %s AS %s, SUM(max_demand) AS max_demand, SUM(min_demand) AS min_demand
FROM daily
GROUP BY 1
ORDER BY 1`, b.dateOf(), b.from(), b.inRange(), key, p.keyName())
}

// monthlyTotal sums series per month of one year; it takes the year as its argument.
func (b sqlBuilder) monthlyTotal(s Series) string {
	return fmt.Sprintf(`SELECT dt.month AS month, SUM(eof.%s) AS total_%s
%s
WHERE dt.year = ?
GROUP BY 1
ORDER BY 1`, s.Column, s.Alias, b.from())
}

// rollingByYear returns daily totals of series for one year next to their trailing average.
func (b sqlBuilder) rollingByYear(s Series, window int) string {
	return fmt.Sprintf(`WITH base AS (
SELECT %s AS bucket, SUM(eof.%s) AS total
%s
WHERE dt.year = ?
GROUP BY 1
)
SELECT bucket AS date, total AS %s, AVG(total) OVER (ORDER BY bucket ROWS BETWEEN %d PRECEDING AND CURRENT ROW) AS rolling_%s
FROM base
ORDER BY 1`, b.dateOf(), s.Column, b.from(), s.Alias, window, s.Alias)
}
