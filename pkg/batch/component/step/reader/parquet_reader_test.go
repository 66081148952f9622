package reader_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/gridwatch/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage/local"
	"github.com/tigerroll/gridwatch/pkg/batch/component/step/reader"
	"github.com/tigerroll/gridwatch/pkg/batch/component/step/writer"
)

type row struct {
	ID    int64    `parquet:"name=id, type=INT64"`
	Value *float64 `parquet:"name=value, type=DOUBLE, repetitiontype=OPTIONAL"`
}

type singleResolver struct{ conn storage.StorageConnection }

func (r singleResolver) ResolveStorageConnection(context.Context, string) (storage.StorageConnection, error) {
	return r.conn, nil
}

func newResolver(t *testing.T) singleResolver {
	t.Helper()
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{Type: local.ProviderType, BaseDir: filepath.Join(t.TempDir(), "files")}, "files")
	require.NoError(t, err)
	return singleResolver{conn: conn}
}

func writeRows(t *testing.T, resolver singleResolver, name string, rows []row) {
	t.Helper()
	ctx := context.Background()
	w, err := writer.NewParquetWriter[row](writer.ParquetWriterConfig{
		StorageRef:      "files",
		OutputBaseDir:   "out",
		FileName:        name,
		CompressionType: "SNAPPY",
	}, resolver)
	require.NoError(t, err)
	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, rows))
	require.NoError(t, w.Close(ctx))
}

func TestReadAll_RoundTripsWrittenRows(t *testing.T) {
	resolver := newResolver(t)
	v := 1.5
	writeRows(t, resolver, "values", []row{{ID: 1, Value: &v}, {ID: 2}})

	got, err := reader.NewParquetReader[row](resolver, "files", "out/values.parquet").ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	require.NotNil(t, got[0].Value)
	assert.Equal(t, 1.5, *got[0].Value)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Nil(t, got[1].Value)
}

func TestReadAll_EmptyFile(t *testing.T) {
	resolver := newResolver(t)
	writeRows(t, resolver, "empty", nil)

	got, err := reader.NewParquetReader[row](resolver, "files", "out/empty.parquet").ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadAll_MissingObject(t *testing.T) {
	_, err := reader.NewParquetReader[row](newResolver(t), "files", "out/absent.parquet").ReadAll(context.Background())
	assert.Error(t, err)
}
