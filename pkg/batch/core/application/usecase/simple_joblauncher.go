// Package usecase runs jobs on behalf of the application entry points.
package usecase

import (
	"context"
	"sync"

	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	exception "github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// SimpleJobLauncher runs jobs synchronously in the calling goroutine and remembers their executions.
type SimpleJobLauncher struct {
	mu         sync.Mutex
	executions []*model.JobExecution
	cancels    map[string]context.CancelFunc
}

var _ JobLauncher = (*SimpleJobLauncher)(nil)

// NewSimpleJobLauncher creates a new SimpleJobLauncher.
func NewSimpleJobLauncher() *SimpleJobLauncher {
	return &SimpleJobLauncher{cancels: make(map[string]context.CancelFunc)}
}

// Launch creates a JobExecution with a fresh run ID and runs job. A panic inside the job
// is recovered and recorded as a failure.
func (l *SimpleJobLauncher) Launch(ctx context.Context, job port.Job, params model.JobParameters) (jobExecution *model.JobExecution, err error) {
	if job == nil {
		return nil, exception.NewBatchError("launcher", "job cannot be nil", nil)
	}
	if params.Params == nil {
		params = model.NewJobParameters()
	}

	jobExecution = model.NewJobExecution(job.JobName(), params)
	runCtx, cancel := context.WithCancel(ctx)
	l.register(jobExecution, cancel)
	defer l.unregister(jobExecution.ID)

	logger.Infof("Launching job '%s' (Execution ID: %s).", job.JobName(), jobExecution.ID)
	defer func() {
		if r := recover(); r != nil {
			err = exception.NewBatchErrorf("launcher", "job '%s' panicked: %v", job.JobName(), r)
			jobExecution.MarkAsFailed(err)
		}
	}()

	if err := job.Run(runCtx, jobExecution); err != nil {
		return jobExecution, err
	}
	return jobExecution, nil
}

// Stop cancels the context of a running execution. It reports false if the execution is not running.
func (l *SimpleJobLauncher) Stop(executionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cancel, ok := l.cancels[executionID]
	if ok {
		logger.Warnf("Stopping JobExecution (ID: %s).", executionID)
		cancel()
	}
	return ok
}

// Executions returns every execution launched so far, oldest first.
func (l *SimpleJobLauncher) Executions() []*model.JobExecution {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*model.JobExecution, len(l.executions))
	copy(out, l.executions)
	return out
}

func (l *SimpleJobLauncher) register(je *model.JobExecution, cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.executions = append(l.executions, je)
	l.cancels[je.ID] = cancel
}

func (l *SimpleJobLauncher) unregister(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cancel, ok := l.cancels[id]; ok {
		cancel()
		delete(l.cancels, id)
	}
}
