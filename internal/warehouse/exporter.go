package warehouse

import (
	"context"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/gridwatch/internal/domain/entity"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	"github.com/tigerroll/gridwatch/pkg/batch/component/step/writer"
	"github.com/tigerroll/gridwatch/pkg/batch/core/config"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// Exporter writes each table to one Parquet object named <table>.parquet under the
// configured output directory.
type Exporter struct {
	resolver        storage.StorageConnectionResolver
	storageRef      string
	outputBaseDir   string
	compressionType string
}

// NewExporter creates an Exporter targeting the ETL's export storage connection.
func NewExporter(resolver storage.StorageConnectionResolver, cfg *config.ETLConfig) *Exporter {
	return &Exporter{
		resolver:        resolver,
		storageRef:      cfg.ExportStorageRef,
		outputBaseDir:   cfg.OutputBaseDir,
		compressionType: cfg.CompressionType,
	}
}

// ObjectName returns the storage object holding table's export.
func (e *Exporter) ObjectName(table string) string {
	return e.writerConfig(table).ObjectName()
}

// StorageRef returns the storage connection the exports are written to.
func (e *Exporter) StorageRef() string { return e.storageRef }

func (e *Exporter) writerConfig(table string) writer.ParquetWriterConfig {
	return writer.ParquetWriterConfig{
		StorageRef:      e.storageRef,
		OutputBaseDir:   e.outputBaseDir,
		FileName:        table,
		CompressionType: e.compressionType,
	}
}

// Export writes all three tables. Every table is attempted; failures are aggregated.
// After a complete export, any other Parquet object directly under the output
// directory is deleted, so the directory holds exactly the current tables.
func (e *Exporter) Export(ctx context.Context, t *Tables) error {
	datetimes := make([]entity.DatetimeParquetRow, len(t.Datetimes))
	for i, d := range t.Datetimes {
		datetimes[i] = d.ToParquet()
	}
	flows := make([]entity.EnergyFlowParquetRow, len(t.EnergyFlows))
	for i, f := range t.EnergyFlows {
		flows[i] = f.ToParquet()
	}

	var result error
	if err := exportTable(ctx, e, entity.TableDatetime, datetimes); err != nil {
		result = multierror.Append(result, err)
	}
	if err := exportTable(ctx, e, entity.TableEnergyFlow, flows); err != nil {
		result = multierror.Append(result, err)
	}
	if err := exportTable(ctx, e, entity.TableFact, t.Facts); err != nil {
		result = multierror.Append(result, err)
	}
	if result != nil {
		return result
	}
	return e.removeStale(ctx)
}

func (e *Exporter) removeStale(ctx context.Context) error {
	conn, err := e.resolver.ResolveStorageConnection(ctx, e.storageRef)
	if err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to resolve storage connection '%s'", e.storageRef, err)
	}
	current := make(map[string]struct{}, len(entity.Tables))
	for _, table := range entity.Tables {
		current[e.ObjectName(table)] = struct{}{}
	}
	prefix := ""
	if e.outputBaseDir != "" {
		prefix = strings.TrimSuffix(e.outputBaseDir, "/") + "/"
	}

	var stale []string
	err = conn.ListObjects(ctx, "", prefix, func(objectName string) error {
		if path.Ext(objectName) != ".parquet" || strings.Contains(strings.TrimPrefix(objectName, prefix), "/") {
			return nil
		}
		if _, ok := current[objectName]; !ok {
			stale = append(stale, objectName)
		}
		return nil
	})
	if err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to list exports under '%s'", prefix, err)
	}
	for _, objectName := range stale {
		if err := conn.DeleteObject(ctx, "", objectName); err != nil {
			return exception.NewBatchErrorf(moduleName, "failed to delete stale export '%s'", objectName, err)
		}
		logger.Infof("Deleted stale export %s/%s.", e.storageRef, objectName)
	}
	return nil
}

func exportTable[T any](ctx context.Context, e *Exporter, table string, rows []T) error {
	w, err := writer.NewParquetWriter[T](e.writerConfig(table), e.resolver)
	if err != nil {
		return err
	}
	if err := w.Open(ctx); err != nil {
		return err
	}
	if err := w.Write(ctx, rows); err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to buffer rows for '%s'", table, err)
	}
	return w.Close(ctx)
}
