package job

import (
	"context"

	"github.com/tigerroll/gridwatch/internal/warehouse"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
)

// LoadTasklet replaces the warehouse tables with the exported objects.
type LoadTasklet struct {
	loader *warehouse.Loader
}

// NewLoadTasklet creates a LoadTasklet.
func NewLoadTasklet(loader *warehouse.Loader) *LoadTasklet {
	return &LoadTasklet{loader: loader}
}

func (t *LoadTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	written, err := t.loader.Load(ctx)
	for table, n := range written {
		stepExecution.WriteCount += n
		stepExecution.ExecutionContext.Put(table, n)
	}
	if err != nil {
		return model.ExitStatusFailed, err
	}
	return model.ExitStatusCompleted, nil
}

func (t *LoadTasklet) Close(ctx context.Context) error { return nil }
