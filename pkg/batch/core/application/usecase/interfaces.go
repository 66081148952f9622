package usecase

import (
	"context"

	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
)

// JobLauncher starts a Job with JobParameters.
type JobLauncher interface {
	// Launch runs job to completion and returns its JobExecution.
	// The error reports a failed run; the JobExecution is returned either way once the run has started.
	Launch(ctx context.Context, job port.Job, params model.JobParameters) (*model.JobExecution, error)
}
