package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
)

// NoOpMetricRecorder is an implementation of MetricRecorder that does nothing.
// It is used in tests and by callers that run without a metrics registry.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() *NoOpMetricRecorder {
	return &NoOpMetricRecorder{}
}

func (r *NoOpMetricRecorder) RecordJobStart(context.Context, *model.JobExecution)       {}
func (r *NoOpMetricRecorder) RecordJobEnd(context.Context, *model.JobExecution)         {}
func (r *NoOpMetricRecorder) RecordStepStart(context.Context, *model.StepExecution)     {}
func (r *NoOpMetricRecorder) RecordStepEnd(context.Context, *model.StepExecution)       {}
func (r *NoOpMetricRecorder) RecordRowsWritten(context.Context, string, int)            {}
func (r *NoOpMetricRecorder) RecordDroppedFacts(context.Context, int)                   {}
func (r *NoOpMetricRecorder) RecordQuery(context.Context, string, time.Duration, error) {}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

func (t *NoOpTracer) StartJobSpan(ctx context.Context, _ *model.JobExecution) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) StartStepSpan(ctx context.Context, _ *model.StepExecution) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) RecordError(context.Context, string, error) {}

func (t *NoOpTracer) RecordEvent(context.Context, string, map[string]interface{}) {}

var _ Tracer = (*NoOpTracer)(nil)
