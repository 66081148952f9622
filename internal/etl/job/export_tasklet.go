package job

import (
	"context"

	"github.com/tigerroll/gridwatch/internal/warehouse"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
)

// ExportTasklet writes each built table to its Parquet object.
type ExportTasklet struct {
	exporter *warehouse.Exporter
	state    *State
}

// NewExportTasklet creates an ExportTasklet.
func NewExportTasklet(exporter *warehouse.Exporter, state *State) *ExportTasklet {
	return &ExportTasklet{exporter: exporter, state: state}
}

func (t *ExportTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	if t.state.Tables == nil {
		return model.ExitStatusFailed, exception.NewBatchError(StepExport, "no tables were built", nil)
	}
	if err := t.exporter.Export(ctx, t.state.Tables); err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(StepExport, "failed to export tables", err)
	}
	for table, n := range t.state.Tables.RowCounts() {
		stepExecution.WriteCount += n
		stepExecution.ExecutionContext.Put(table, t.exporter.ObjectName(table))
	}
	return model.ExitStatusCompleted, nil
}

func (t *ExportTasklet) Close(ctx context.Context) error { return nil }
