package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	"github.com/tigerroll/gridwatch/pkg/batch/core/job/runner"
)

type fakeStep struct {
	name string
	err  error
	ran  *[]string
}

func (s *fakeStep) StepName() string { return s.name }

func (s *fakeStep) Execute(ctx context.Context, je *model.JobExecution, se *model.StepExecution) error {
	*s.ran = append(*s.ran, s.name)
	se.MarkAsStarted()
	if s.err != nil {
		se.MarkAsFailed(s.err)
		return s.err
	}
	se.MarkAsCompleted(model.ExitStatusCompleted)
	return nil
}

type jobListener struct {
	before, after int
	final         model.JobStatus
}

func (l *jobListener) BeforeJob(ctx context.Context, je *model.JobExecution) { l.before++ }

func (l *jobListener) AfterJob(ctx context.Context, je *model.JobExecution) {
	l.after++
	l.final = je.Status
}

func TestSimpleJob_RunsStepsInOrder(t *testing.T) {
	var ran []string
	listener := &jobListener{}
	job := runner.NewSimpleJob("gridwatchWarehouseJob", []port.Step{
		&fakeStep{name: "extractStep", ran: &ran},
		&fakeStep{name: "buildStep", ran: &ran},
	}, []port.JobExecutionListener{listener}, nil)

	je := model.NewJobExecution(job.JobName(), model.NewJobParameters())
	require.NoError(t, job.Run(context.Background(), je))

	assert.Equal(t, []string{"extractStep", "buildStep"}, ran)
	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	assert.Equal(t, model.ExitStatusCompleted, je.ExitStatus)
	require.Len(t, je.StepExecutions, 2)
	assert.Equal(t, "buildStep", je.CurrentStepName)
	assert.Equal(t, 1, listener.before)
	assert.Equal(t, 1, listener.after)
	assert.Equal(t, model.BatchStatusCompleted, listener.final)
}

func TestSimpleJob_StopsAtFirstFailure(t *testing.T) {
	var ran []string
	cause := errors.New("load failed")
	listener := &jobListener{}
	job := runner.NewSimpleJob("gridwatchWarehouseJob", []port.Step{
		&fakeStep{name: "extractStep", ran: &ran},
		&fakeStep{name: "loadStep", err: cause, ran: &ran},
		&fakeStep{name: "neverStep", ran: &ran},
	}, []port.JobExecutionListener{listener}, nil)

	je := model.NewJobExecution(job.JobName(), model.NewJobParameters())
	err := job.Run(context.Background(), je)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, []string{"extractStep", "loadStep"}, ran)
	assert.Len(t, je.StepExecutions, 2)
	assert.Equal(t, model.BatchStatusFailed, je.Status)
	assert.Equal(t, model.FailureList{"load failed"}, je.Failures)
	assert.Equal(t, model.BatchStatusFailed, listener.final)
}

func TestSimpleJob_CancelledContext(t *testing.T) {
	var ran []string
	job := runner.NewSimpleJob("gridwatchWarehouseJob", []port.Step{
		&fakeStep{name: "extractStep", ran: &ran},
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	je := model.NewJobExecution(job.JobName(), model.NewJobParameters())
	err := job.Run(ctx, je)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ran)
	assert.Empty(t, je.StepExecutions)
	assert.Equal(t, model.BatchStatusFailed, je.Status)
}
