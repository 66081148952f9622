package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
)

// MetricRecorder records metrics about job and step execution and about the warehouse it builds.
// Implementations must be safe for concurrent use.
type MetricRecorder interface {
	// RecordJobStart records the start of a JobExecution.
	RecordJobStart(ctx context.Context, execution *model.JobExecution)
	// RecordJobEnd records the end of a JobExecution, including its duration and status.
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)
	// RecordStepStart records the start of a StepExecution.
	RecordStepStart(ctx context.Context, execution *model.StepExecution)
	// RecordStepEnd records the end of a StepExecution, including its duration and status.
	RecordStepEnd(ctx context.Context, execution *model.StepExecution)
	// RecordRowsWritten records rows written to a warehouse table.
	RecordRowsWritten(ctx context.Context, table string, count int)
	// RecordDroppedFacts records readings that matched no dimension row and produced no fact.
	RecordDroppedFacts(ctx context.Context, count int)
	// RecordQuery records the duration and outcome of one report query.
	RecordQuery(ctx context.Context, report string, duration time.Duration, err error)
}
