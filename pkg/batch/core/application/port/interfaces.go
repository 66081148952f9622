// Package port defines the core interfaces (ports) of the batch runtime.
// The gridwatch ETL is composed of Tasklets wrapped in Steps and run by a Job.
package port

import (
	"context"

	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
)

// Job is an executable batch job.
type Job interface {
	// Run executes every step of the job in order and records the outcome on jobExecution.
	Run(ctx context.Context, jobExecution *model.JobExecution) error
	// JobName returns the logical name of the job.
	JobName() string
}

// Step is a single unit of work executed within a job.
type Step interface {
	// Execute runs the step and records the outcome on stepExecution.
	Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error
	// StepName returns the logical name of the step.
	StepName() string
}

// Tasklet is the body of a tasklet-oriented step.
type Tasklet interface {
	// Execute performs the work and returns the step's exit status.
	Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)
	// Close releases any resources held by the tasklet. It is called even when Execute failed.
	Close(ctx context.Context) error
}

// ItemWriter writes a stream of items to a target resource.
type ItemWriter[T any] interface {
	// Open prepares the writer. It must be called before Write.
	Open(ctx context.Context) error
	// Write buffers or writes items.
	Write(ctx context.Context, items []T) error
	// Close flushes and releases the writer.
	Close(ctx context.Context) error
}

// ItemReader reads every item from a source resource.
type ItemReader[T any] interface {
	// ReadAll returns every item in the source.
	ReadAll(ctx context.Context) ([]T, error)
}

// JobExecutionListener observes job boundaries.
type JobExecutionListener interface {
	BeforeJob(ctx context.Context, jobExecution *model.JobExecution)
	AfterJob(ctx context.Context, jobExecution *model.JobExecution)
}

// StepExecutionListener observes step boundaries.
type StepExecutionListener interface {
	BeforeStep(ctx context.Context, stepExecution *model.StepExecution)
	AfterStep(ctx context.Context, stepExecution *model.StepExecution)
}

// JobParametersIncrementer derives the parameters of the next run from the previous ones.
type JobParametersIncrementer interface {
	GetNext(params model.JobParameters) model.JobParameters
}
