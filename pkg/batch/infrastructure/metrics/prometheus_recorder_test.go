package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
)

func TestPrometheusRecorder_JobAndStep(t *testing.T) {
	r := NewPrometheusRecorder()
	ctx := context.Background()

	je := model.NewJobExecution("gridwatchWarehouseJob", model.NewJobParameters())
	se := model.NewStepExecution(je, "loadStep")

	r.RecordJobStart(ctx, je)
	r.RecordStepStart(ctx, se)
	se.MarkAsStarted()
	se.MarkAsCompleted(model.ExitStatusCompleted)
	r.RecordStepEnd(ctx, se)
	je.MarkAsStarted()
	je.MarkAsCompleted()
	r.RecordJobEnd(ctx, je)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobStatusCounter.WithLabelValues("gridwatchWarehouseJob", "STARTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobStatusCounter.WithLabelValues("gridwatchWarehouseJob", "COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stepStatusCounter.WithLabelValues("gridwatchWarehouseJob", "loadStep", "COMPLETED")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.stepDurationSeconds))
}

func TestPrometheusRecorder_Warehouse(t *testing.T) {
	r := NewPrometheusRecorder()
	ctx := context.Background()

	r.RecordRowsWritten(ctx, "fct_gridwatch", 3)
	r.RecordRowsWritten(ctx, "fct_gridwatch", 2)
	r.RecordDroppedFacts(ctx, 0)
	r.RecordDroppedFacts(ctx, 4)

	assert.Equal(t, 5.0, testutil.ToFloat64(r.rowsWritten.WithLabelValues("fct_gridwatch")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.droppedFacts))
}

func TestPrometheusRecorder_Query(t *testing.T) {
	r := NewPrometheusRecorder()
	ctx := context.Background()

	r.RecordQuery(ctx, "demand_daily", 10*time.Millisecond, nil)
	r.RecordQuery(ctx, "demand_daily", 5*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.queryErrors.WithLabelValues("demand_daily")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.queryDurationSeconds))

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["gridwatch_query_duration_seconds"])
	assert.True(t, names["go_goroutines"])
}
