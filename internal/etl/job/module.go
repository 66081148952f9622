package job

import (
	"go.uber.org/fx"

	"github.com/tigerroll/gridwatch/internal/warehouse"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	"github.com/tigerroll/gridwatch/pkg/batch/core/config"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

type jobParams struct {
	fx.In
	ETL       *config.ETLConfig
	Warehouse *config.WarehouseConfig
	Provider  database.DBProvider
	Resolver  storage.StorageConnectionResolver
	Recorder  metrics.MetricRecorder
	Tracer    metrics.Tracer
}

func provideJob(p jobParams) (port.Job, error) {
	session, err := warehouse.OpenSession(p.Provider, p.Warehouse)
	if err != nil {
		return nil, err
	}
	return NewJob(Dependencies{
		Config:   p.ETL,
		Resolver: p.Resolver,
		Session:  session,
		Recorder: p.Recorder,
		Tracer:   p.Tracer,
	}), nil
}

// Module provides the warehouse build job as port.Job.
// It needs a read-write database.DBProvider and a storage resolver.
var Module = fx.Options(
	fx.Provide(provideJob),
)
