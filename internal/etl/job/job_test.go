package job_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/gridwatch/internal/domain/entity"
	"github.com/tigerroll/gridwatch/internal/etl"
	"github.com/tigerroll/gridwatch/internal/etl/job"
	"github.com/tigerroll/gridwatch/internal/testutil"
	"github.com/tigerroll/gridwatch/pkg/batch/core/config"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

type droppedRecorder struct {
	metrics.NoOpMetricRecorder
	dropped []int
	written map[string]int
}

func (r *droppedRecorder) RecordDroppedFacts(_ context.Context, n int) {
	r.dropped = append(r.dropped, n)
}

func (r *droppedRecorder) RecordRowsWritten(_ context.Context, table string, n int) {
	if r.written == nil {
		r.written = map[string]int{}
	}
	r.written[table] += n
}

func newJob(t *testing.T, cfg *config.Config, recorder metrics.MetricRecorder) (*model.JobExecution, error) {
	t.Helper()
	j := job.NewJob(job.Dependencies{
		Config:   &cfg.Gridwatch.ETL,
		Resolver: testutil.NewStorageResolver(t, cfg),
		Session:  testutil.OpenSession(t, cfg, false),
		Recorder: recorder,
	})
	je := model.NewJobExecution(j.JobName(), model.NewJobParameters())
	return je, j.Run(context.Background(), je)
}

func TestJob_BuildsWarehouse(t *testing.T) {
	cfg := testutil.NewConfig(t)
	testutil.WriteExtract(t, cfg, testutil.CSV(
		testutil.Row{ID: 1, Timestamp: "2020-01-01 00:00", Measures: map[string]float64{"demand": 100}},
		testutil.Row{ID: 2, Timestamp: "2020-01-01 00:30", Measures: map[string]float64{"demand": 200}},
		testutil.Row{ID: 3, Timestamp: "2020-01-02 00:00", Measures: map[string]float64{"demand": 50, "wind": 3}},
	))

	recorder := &droppedRecorder{}
	je, err := newJob(t, cfg, recorder)
	require.NoError(t, err)

	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	assert.Equal(t, model.ExitStatusCompleted, je.ExitStatus)
	require.Len(t, je.StepExecutions, 4)
	names := make([]string, 0, 4)
	for _, se := range je.StepExecutions {
		names = append(names, se.StepName)
		assert.Equal(t, model.BatchStatusCompleted, se.Status, se.StepName)
	}
	assert.Equal(t, []string{job.StepExtract, job.StepBuild, job.StepExport, job.StepLoad}, names)

	assert.Equal(t, 3, je.StepExecutions[0].ReadCount)
	build := je.StepExecutions[1]
	assert.Equal(t, 3, build.WriteCount)
	assert.Equal(t, 0, build.FilterCount)
	assert.Equal(t, []int{0}, recorder.dropped)

	assert.Equal(t, 3+3+3, je.StepExecutions[3].WriteCount)
	assert.Equal(t, map[string]int{
		entity.TableDatetime:   3,
		entity.TableEnergyFlow: 3,
		entity.TableFact:       3,
	}, recorder.written)

	session := testutil.OpenSession(t, cfg, true)
	var n int64
	require.NoError(t, session.DB().Table(session.Qualify(entity.TableFact)).Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

func TestJob_MalformedExtractLeavesWarehouseUntouched(t *testing.T) {
	cfg := testutil.NewConfig(t)
	tables := testutil.BuildTables(t, testutil.CSV(
		testutil.Row{ID: 1, Timestamp: "2020-01-01 00:00", Measures: map[string]float64{"demand": 100}},
	))
	testutil.LoadWarehouse(t, cfg, tables)

	testutil.WriteExtract(t, cfg, testutil.CSV(
		testutil.Row{ID: 7, Timestamp: "not a time"},
	))

	je, err := newJob(t, cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrInvalidTimestamp))
	assert.Equal(t, model.BatchStatusFailed, je.Status)
	require.Len(t, je.StepExecutions, 1)
	assert.Equal(t, model.ExitStatusFailed, je.StepExecutions[0].ExitStatus)
	assert.NotEmpty(t, je.Failures)

	session := testutil.OpenSession(t, cfg, true)
	var ids []int64
	require.NoError(t, session.DB().Table(session.Qualify(entity.TableEnergyFlow)).Pluck("energy_id", &ids).Error)
	assert.Equal(t, []int64{1}, ids)
}

func TestJob_HeaderOnlyExtractLeavesWarehouseUntouched(t *testing.T) {
	cfg := testutil.NewConfig(t)
	testutil.LoadWarehouse(t, cfg, testutil.BuildTables(t, testutil.CSV(
		testutil.Row{ID: 1, Timestamp: "2020-01-01 00:00", Measures: map[string]float64{"demand": 100}},
	)))
	testutil.WriteExtract(t, cfg, testutil.CSV())

	je, err := newJob(t, cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrEmptyExtract))
	assert.Equal(t, model.BatchStatusFailed, je.Status)
	require.Len(t, je.StepExecutions, 1)
	assert.Equal(t, model.ExitStatusFailed, je.StepExecutions[0].ExitStatus)

	session := testutil.OpenSession(t, cfg, true)
	var n int64
	require.NoError(t, session.DB().Table(session.Qualify(entity.TableFact)).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestJob_MissingExtractFails(t *testing.T) {
	cfg := testutil.NewConfig(t)
	cfg.Gridwatch.ETL.SourceObject = "absent.csv"

	je, err := newJob(t, cfg, nil)
	require.Error(t, err)
	assert.Equal(t, model.ExitStatusFailed, je.ExitStatus)
}

func TestJob_CancelledContextStopsBeforeFirstStep(t *testing.T) {
	cfg := testutil.NewConfig(t)
	j := job.NewJob(job.Dependencies{
		Config:   &cfg.Gridwatch.ETL,
		Resolver: testutil.NewStorageResolver(t, cfg),
		Session:  testutil.OpenSession(t, cfg, false),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	je := model.NewJobExecution(j.JobName(), model.NewJobParameters())
	require.Error(t, j.Run(ctx, je))
	assert.Empty(t, je.StepExecutions)
	assert.Equal(t, cfg.Gridwatch.ETL.JobName, je.JobName)
}
