package warehouse

import (
	"context"

	"gorm.io/gorm"

	"github.com/tigerroll/gridwatch/internal/domain/entity"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	"github.com/tigerroll/gridwatch/pkg/batch/component/step/reader"
	"github.com/tigerroll/gridwatch/pkg/batch/core/config"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

const stagingSuffix = "__staging"

// Loader reads the Parquet exports back and replaces the warehouse tables with them.
// Each table is replaced in its own transaction; a failure between tables leaves the
// earlier ones already replaced.
type Loader struct {
	session   *Session
	resolver  storage.StorageConnectionResolver
	exporter  *Exporter
	batchSize int
	recorder  metrics.MetricRecorder
}

// NewLoader creates a Loader that reads the objects exporter writes.
func NewLoader(session *Session, resolver storage.StorageConnectionResolver, exporter *Exporter, cfg *config.ETLConfig, recorder metrics.MetricRecorder) *Loader {
	return &Loader{
		session:   session,
		resolver:  resolver,
		exporter:  exporter,
		batchSize: cfg.InsertBatchSize,
		recorder:  recorder,
	}
}

// Load replaces every table in load order and returns the rows written per table.
func (l *Loader) Load(ctx context.Context) (map[string]int, error) {
	written := make(map[string]int, len(entity.Tables))

	datetimeRows, err := readTable[entity.DatetimeParquetRow](ctx, l, entity.TableDatetime)
	if err != nil {
		return written, err
	}
	datetimes := make([]entity.DimDatetime, len(datetimeRows))
	for i, r := range datetimeRows {
		datetimes[i] = r.DimDatetime()
	}
	if err := l.replace(ctx, entity.TableDatetime, func(tx *gorm.DB) error { return insert(tx, datetimes, l.batchSize) }, len(datetimes)); err != nil {
		return written, err
	}
	written[entity.TableDatetime] = len(datetimes)

	flowRows, err := readTable[entity.EnergyFlowParquetRow](ctx, l, entity.TableEnergyFlow)
	if err != nil {
		return written, err
	}
	flows := make([]entity.DimEnergyFlow, len(flowRows))
	for i, r := range flowRows {
		flows[i] = r.DimEnergyFlow()
	}
	if err := l.replace(ctx, entity.TableEnergyFlow, func(tx *gorm.DB) error { return insert(tx, flows, l.batchSize) }, len(flows)); err != nil {
		return written, err
	}
	written[entity.TableEnergyFlow] = len(flows)

	facts, err := readTable[entity.FactGridwatch](ctx, l, entity.TableFact)
	if err != nil {
		return written, err
	}
	if err := l.replace(ctx, entity.TableFact, func(tx *gorm.DB) error { return insert(tx, facts, l.batchSize) }, len(facts)); err != nil {
		return written, err
	}
	written[entity.TableFact] = len(facts)

	return written, nil
}

func readTable[T any](ctx context.Context, l *Loader, table string) ([]T, error) {
	rows, err := reader.NewParquetReader[T](l.resolver, l.exporter.StorageRef(), l.exporter.ObjectName(table)).ReadAll(ctx)
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to read export of '%s'", table, err)
	}
	return rows, nil
}

// replace rebuilds table inside one transaction: create the staging table, fill it, then
// swap it over the live table.
func (l *Loader) replace(ctx context.Context, table string, fill func(tx *gorm.DB) error, count int) error {
	columns, ok := entity.ColumnsOf(table)
	if !ok {
		return exception.NewBatchErrorf(moduleName, "no column set for table '%s'", table)
	}
	d := l.session.Dialect()
	schema := l.session.Schema()
	staging := table + stagingSuffix

	if stmt := d.CreateSchema(schema); stmt != "" {
		if err := l.session.DB().WithContext(ctx).Exec(stmt).Error; err != nil {
			return exception.NewBatchErrorf(moduleName, "failed to create schema '%s'", schema, err)
		}
	}

	err := l.session.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(d.DropTable(schema, staging)).Error; err != nil {
			return err
		}
		if err := tx.Exec(database.CreateTableSQL(d, schema, staging, columns)).Error; err != nil {
			return err
		}
		if err := fill(tx.Table(d.Qualify(schema, staging))); err != nil {
			return err
		}
		for _, stmt := range d.SwapTable(schema, staging, table) {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to replace table '%s.%s'", schema, table, err)
	}

	l.recorder.RecordRowsWritten(ctx, table, count)
	logger.Infof("Replaced %s.%s with %d rows.", schema, table, count)
	return nil
}

// insert writes rows in batches; an empty table leaves the staging table empty.
func insert[T any](tx *gorm.DB, rows []T, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}
