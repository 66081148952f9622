// Package reader provides item readers over storage connections.
package reader

import (
	"context"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	"github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
)

const moduleName = "reader"

const parallelism = 4

// ParquetReader reads every row of one Parquet object into T, using T's parquet struct tags.
type ParquetReader[T any] struct {
	storageConnectionResolver storage.StorageConnectionResolver
	storageRef                string
	objectName                string
}

// NewParquetReader creates a reader for objectName on the storageRef connection.
func NewParquetReader[T any](storageConnectionResolver storage.StorageConnectionResolver, storageRef, objectName string) *ParquetReader[T] {
	return &ParquetReader[T]{
		storageConnectionResolver: storageConnectionResolver,
		storageRef:                storageRef,
		objectName:                objectName,
	}
}

// ReadAll downloads the object into memory and decodes all of its rows.
func (r *ParquetReader[T]) ReadAll(ctx context.Context) (rows []T, err error) {
	conn, err := r.storageConnectionResolver.ResolveStorageConnection(ctx, r.storageRef)
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to resolve storage connection '%s'", r.storageRef, err)
	}
	rc, err := conn.Download(ctx, "", r.objectName)
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to download '%s'", r.objectName, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to read '%s'", r.objectName, err)
	}

	pf, err := buffer.NewBufferFile(data)
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to buffer '%s'", r.objectName, err)
	}
	pr, err := reader.NewParquetReader(pf, new(T), parallelism)
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to open Parquet file '%s'", r.objectName, err)
	}
	defer pr.ReadStop()

	defer func() {
		if rec := recover(); rec != nil {
			err = exception.NewBatchError(moduleName, fmt.Sprintf("Parquet reader panicked on '%s': %v", r.objectName, rec), nil)
		}
	}()

	rows = make([]T, int(pr.GetNumRows()))
	if len(rows) == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to decode rows of '%s'", r.objectName, err)
	}
	return rows, nil
}

var _ port.ItemReader[any] = (*ParquetReader[any])(nil)
