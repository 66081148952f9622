package job

import (
	"context"

	"github.com/tigerroll/gridwatch/internal/etl"
	"github.com/tigerroll/gridwatch/internal/warehouse"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// BuildTasklet builds both dimensions and the fact table from the extracted readings.
type BuildTasklet struct {
	state    *State
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer
}

// NewBuildTasklet creates a BuildTasklet.
func NewBuildTasklet(state *State, recorder metrics.MetricRecorder, tracer metrics.Tracer) *BuildTasklet {
	return &BuildTasklet{state: state, recorder: recorder, tracer: tracer}
}

func (t *BuildTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	readings := t.state.Readings

	datetimes := etl.BuildDatetimeDimension(readings)
	flows, err := etl.BuildEnergyFlowDimension(readings)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	facts, dropped := etl.BuildFacts(readings, datetimes, flows)

	t.state.Tables = &warehouse.Tables{Datetimes: datetimes, EnergyFlows: flows, Facts: facts}
	t.state.Dropped = dropped

	stepExecution.ReadCount = len(readings)
	stepExecution.WriteCount = len(facts)
	stepExecution.FilterCount = dropped
	for table, n := range t.state.Tables.RowCounts() {
		stepExecution.ExecutionContext.Put(table, n)
	}

	if dropped > 0 {
		logger.Warnf("%d of %d readings matched no dimension row and were left out of %s.", dropped, len(readings), "fct_gridwatch")
		t.tracer.RecordEvent(ctx, "facts.dropped", map[string]interface{}{"count": dropped})
	}
	t.recorder.RecordDroppedFacts(ctx, dropped)

	logger.Infof("Built star schema: %d datetimes, %d energy flows, %d facts.", len(datetimes), len(flows), len(facts))
	return model.ExitStatusCompleted, nil
}

func (t *BuildTasklet) Close(ctx context.Context) error { return nil }
