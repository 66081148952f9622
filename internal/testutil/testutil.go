// Package testutil builds throwaway warehouses for tests: a temporary SQLite file attached
// as the warehouse schema and local storage directories for the extract and the exports.
package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigerroll/gridwatch/internal/etl"
	"github.com/tigerroll/gridwatch/internal/warehouse"
	gormadapter "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm"
	_ "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage/local"
	"github.com/tigerroll/gridwatch/pkg/batch/core/config"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

// NewConfig returns a default configuration whose warehouse and storage connections all
// live under a fresh temporary directory.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Gridwatch.AdapterConfigs = map[string]interface{}{
		"database": map[string]interface{}{
			"warehouse": map[string]interface{}{
				"type":     "sqlite",
				"database": filepath.Join(dir, "warehouse.db"),
			},
		},
		"storage": map[string]interface{}{
			"raw":             map[string]interface{}{"type": "local", "base_dir": filepath.Join(dir, "raw")},
			"warehouse_files": map[string]interface{}{"type": "local", "base_dir": filepath.Join(dir, "exports")},
		},
	}
	return cfg
}

// NewStorageResolver returns a resolver over local storage only.
func NewStorageResolver(t testing.TB, cfg *config.Config) *storage.ConnectionResolver {
	t.Helper()
	r := storage.NewConnectionResolver([]storage.StorageProvider{local.NewLocalProvider(cfg)}, cfg)
	t.Cleanup(func() { _ = r.CloseAll() })
	return r
}

// OpenSession opens the configured warehouse, read-only or read-write.
func OpenSession(t testing.TB, cfg *config.Config, readOnly bool) *warehouse.Session {
	t.Helper()
	var p *gormadapter.Provider
	if readOnly {
		p = gormadapter.NewReadOnlyProvider(cfg)
	} else {
		p = gormadapter.NewProvider(cfg)
	}
	t.Cleanup(func() { _ = p.CloseAll() })

	session, err := warehouse.OpenSession(p, &cfg.Gridwatch.Warehouse)
	require.NoError(t, err)
	return session
}

// WriteExtract stores csv as the configured raw extract object.
func WriteExtract(t testing.TB, cfg *config.Config, csv string) {
	t.Helper()
	conn, err := NewStorageResolver(t, cfg).ResolveStorageConnection(context.Background(), cfg.Gridwatch.ETL.SourceStorageRef)
	require.NoError(t, err)
	require.NoError(t, conn.Upload(context.Background(), "", cfg.Gridwatch.ETL.SourceObject, strings.NewReader(csv), "text/csv"))
}

// BuildTables runs the in-memory part of the ETL over csv.
func BuildTables(t testing.TB, csv string) *warehouse.Tables {
	t.Helper()
	readings, err := etl.Normalize(strings.NewReader(csv))
	require.NoError(t, err)
	flows, err := etl.BuildEnergyFlowDimension(readings)
	require.NoError(t, err)
	datetimes := etl.BuildDatetimeDimension(readings)
	facts, _ := etl.BuildFacts(readings, datetimes, flows)
	return &warehouse.Tables{Datetimes: datetimes, EnergyFlows: flows, Facts: facts}
}

// LoadWarehouse exports tables and loads them into the configured warehouse, then
// returns a read-only session onto it.
func LoadWarehouse(t testing.TB, cfg *config.Config, tables *warehouse.Tables) *warehouse.Session {
	t.Helper()
	ctx := context.Background()
	resolver := NewStorageResolver(t, cfg)
	exporter := warehouse.NewExporter(resolver, &cfg.Gridwatch.ETL)
	require.NoError(t, exporter.Export(ctx, tables))

	writable := OpenSession(t, cfg, false)
	loader := warehouse.NewLoader(writable, resolver, exporter, &cfg.Gridwatch.ETL, metrics.NewNoOpMetricRecorder())
	_, err := loader.Load(ctx)
	require.NoError(t, err)

	return OpenSession(t, cfg, true)
}
