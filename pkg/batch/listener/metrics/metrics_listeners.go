// Package metrics forwards job and step boundaries to a MetricRecorder.
package metrics

import (
	"context"

	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

// Listener observes both job and step boundaries. Register the same value in both listener lists.
type Listener struct {
	recorder metrics.MetricRecorder
}

var (
	_ port.JobExecutionListener  = (*Listener)(nil)
	_ port.StepExecutionListener = (*Listener)(nil)
)

// NewListener creates a Listener. A nil recorder records nothing.
func NewListener(recorder metrics.MetricRecorder) *Listener {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &Listener{recorder: recorder}
}

func (l *Listener) BeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	l.recorder.RecordJobStart(ctx, jobExecution)
}

func (l *Listener) AfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	l.recorder.RecordJobEnd(ctx, jobExecution)
}

func (l *Listener) BeforeStep(ctx context.Context, stepExecution *model.StepExecution) {
	l.recorder.RecordStepStart(ctx, stepExecution)
}

// AfterStep records the step's end. Steps that never started are not observed.
func (l *Listener) AfterStep(ctx context.Context, stepExecution *model.StepExecution) {
	if stepExecution.Status == model.BatchStatusStarting {
		return
	}
	l.recorder.RecordStepEnd(ctx, stepExecution)
}
