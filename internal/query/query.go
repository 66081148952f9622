// Package query is the read side of the warehouse: parameterized aggregation reports over
// the star schema, each returned as a fully materialized Table.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

// Parameter errors, raised before any SQL runs.
var (
	ErrInvalidWindow = errors.New("invalid window")
	ErrUnknownSeries = errors.New("unknown series")
	ErrUnknownTable  = errors.New("unknown table")
)

// Session is the warehouse handle the reports read through.
type Session interface {
	DB() *gorm.DB
	Dialect() database.Dialect
	Schema() string
}

// DateRange is an inclusive range of calendar dates. Only the date part of each bound is used.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange returns the range [start, end].
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: start, End: end}
}

// ParseDateRange parses two YYYY-MM-DD bounds.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date '%s': %w", start, err)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date '%s': %w", end, err)
	}
	return NewDateRange(s, e), nil
}

// Inverted reports whether the start date is after the end date. Such a range matches nothing.
func (r DateRange) Inverted() bool {
	return r.Start.Format(time.DateOnly) > r.End.Format(time.DateOnly)
}

func (r DateRange) String() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

func (r DateRange) args() []any {
	return []any{r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly)}
}

// Reports runs the aggregation reports. It is safe for concurrent use.
type Reports struct {
	session  Session
	sql      sqlBuilder
	recorder metrics.MetricRecorder
	tracer   trace.Tracer
}

// NewReports creates Reports over session. Each report records its duration and outcome
// on recorder.
func NewReports(session Session, recorder metrics.MetricRecorder) *Reports {
	return &Reports{
		session:  session,
		sql:      sqlBuilder{d: session.Dialect(), schema: session.Schema()},
		recorder: recorder,
		tracer:   otel.Tracer("gridwatch/query"),
	}
}

// run executes one report query and materializes the result. Engine errors are returned as is.
func (r *Reports) run(ctx context.Context, report, query string, args []any, columns []column) (t *Table, err error) {
	ctx, span := r.tracer.Start(ctx, "query."+report, trace.WithAttributes(
		attribute.String("report", report),
		attribute.String("db.system", r.sql.d.Name()),
	))
	start := time.Now()
	defer func() {
		r.recorder.RecordQuery(ctx, report, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("rows", t.Len()))
		}
		span.End()
	}()

	rows, err := r.session.DB().WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTable(rows, columns)
}

// reject records a parameter error for report without touching the store.
func (r *Reports) reject(ctx context.Context, report string, err error) (*Table, error) {
	r.recorder.RecordQuery(ctx, report, 0, err)
	return nil, err
}

func checkWindow(window int) error {
	if window < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidWindow, window)
	}
	return nil
}

func seriesColumns(key string, series []Series) []column {
	cols := []column{keyColumn(key)}
	for _, s := range series {
		cols = append(cols, measureColumn(s.Alias))
	}
	return cols
}
