// Package runner provides the job implementation that runs steps in sequence.
package runner

import (
	"context"

	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
	exception "github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// SimpleJob runs its steps in order and stops at the first failure.
type SimpleJob struct {
	name         string
	steps        []port.Step
	jobListeners []port.JobExecutionListener
	tracer       metrics.Tracer
}

var _ port.Job = (*SimpleJob)(nil)

// NewSimpleJob creates a new instance of SimpleJob. A nil tracer disables tracing.
func NewSimpleJob(name string, steps []port.Step, jobListeners []port.JobExecutionListener, tracer metrics.Tracer) *SimpleJob {
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	return &SimpleJob{name: name, steps: steps, jobListeners: jobListeners, tracer: tracer}
}

// JobName returns the job name.
func (j *SimpleJob) JobName() string {
	return j.name
}

// Run executes each step once. A cancelled context stops the job before the next step.
func (j *SimpleJob) Run(ctx context.Context, jobExecution *model.JobExecution) (err error) {
	ctx, endSpan := j.tracer.StartJobSpan(ctx, jobExecution)
	defer endSpan()

	jobExecution.MarkAsStarted()
	for _, l := range j.jobListeners {
		l.BeforeJob(ctx, jobExecution)
	}
	defer func() {
		if err != nil {
			j.tracer.RecordError(ctx, j.name, err)
			jobExecution.MarkAsFailed(err)
		} else {
			jobExecution.MarkAsCompleted()
		}
		for _, l := range j.jobListeners {
			l.AfterJob(ctx, jobExecution)
		}
	}()

	for _, step := range j.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return exception.NewBatchError(j.name, "job cancelled before step "+step.StepName(), ctxErr)
		}
		jobExecution.CurrentStepName = step.StepName()
		stepExecution := model.NewStepExecution(jobExecution, step.StepName())
		jobExecution.AddStepExecution(stepExecution)

		if err := step.Execute(ctx, jobExecution, stepExecution); err != nil {
			logger.Errorf("Job '%s': step '%s' failed: %v", j.name, step.StepName(), err)
			return err
		}
	}
	return nil
}
