package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	"github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

const moduleName = "writer"

// parallelism is the number of goroutines parquet-go uses to encode a row group.
const parallelism = 4

// ParquetWriterConfig holds the configuration for ParquetWriter.
type ParquetWriterConfig struct {
	// StorageRef is the name of the storage connection to use.
	StorageRef string
	// OutputBaseDir is the prefix of the exported object (e.g., "warehouse").
	OutputBaseDir string
	// FileName is the object name under OutputBaseDir, without extension (e.g., "dim_datetime").
	FileName string
	// CompressionType is the compression type for Parquet files ("SNAPPY", "GZIP", "NONE").
	CompressionType string
}

// ObjectName returns the object the writer produces: OutputBaseDir/FileName.parquet.
func (c ParquetWriterConfig) ObjectName() string {
	return path.Join(c.OutputBaseDir, c.FileName+".parquet")
}

// ParquetWriter implements port.ItemWriter by buffering every item and writing a single
// Parquet object on Close. The schema is taken from T's parquet struct tags.
type ParquetWriter[T any] struct {
	config                    ParquetWriterConfig
	storageConnectionResolver storage.StorageConnectionResolver

	storageConn   storage.StorageConnection
	bufferedItems []T
}

// NewParquetWriter creates a new instance of ParquetWriter.
func NewParquetWriter[T any](config ParquetWriterConfig, storageConnectionResolver storage.StorageConnectionResolver) (*ParquetWriter[T], error) {
	if config.StorageRef == "" {
		return nil, exception.NewBatchError(moduleName, "ParquetWriter requires a storage reference", nil)
	}
	if config.FileName == "" {
		return nil, exception.NewBatchError(moduleName, "ParquetWriter requires a file name", nil)
	}
	if config.CompressionType == "" {
		config.CompressionType = "GZIP"
	}
	if _, err := getCompressionCodec(config.CompressionType); err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "invalid compression type for '%s'", config.FileName, err)
	}
	return &ParquetWriter[T]{
		config:                    config,
		storageConnectionResolver: storageConnectionResolver,
	}, nil
}

// Open resolves the storage connection and clears the buffer.
func (w *ParquetWriter[T]) Open(ctx context.Context) error {
	conn, err := w.storageConnectionResolver.ResolveStorageConnection(ctx, w.config.StorageRef)
	if err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to resolve storage connection '%s' for '%s'", w.config.StorageRef, w.config.FileName, err)
	}
	w.storageConn = conn
	w.bufferedItems = w.bufferedItems[:0]
	logger.Debugf("ParquetWriter '%s' opened. Target storage: %s, object: %s", w.config.FileName, w.config.StorageRef, w.config.ObjectName())
	return nil
}

// Write accumulates items. Nothing is written to storage until Close.
func (w *ParquetWriter[T]) Write(ctx context.Context, items []T) error {
	w.bufferedItems = append(w.bufferedItems, items...)
	return nil
}

// Close encodes the buffered items and uploads the object. An empty buffer still
// produces a valid file with zero rows, so every table is always exported.
func (w *ParquetWriter[T]) Close(ctx context.Context) error {
	if w.storageConn == nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("ParquetWriter '%s' closed before Open", w.config.FileName), nil)
	}
	compressionCodec, _ := getCompressionCodec(w.config.CompressionType)

	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(T), parallelism)
	if err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to create Parquet writer for '%s'", w.config.FileName, err)
	}
	pw.CompressionType = compressionCodec

	var multiErr error
	for _, item := range w.bufferedItems {
		if err := pw.Write(item); err != nil {
			multiErr = multierror.Append(multiErr, exception.NewBatchErrorf(moduleName, "failed to write row to '%s'", w.config.FileName, err))
			break
		}
	}

	// parquet-go panics on some malformed schemas during flush.
	func() {
		defer func() {
			if r := recover(); r != nil {
				multiErr = multierror.Append(multiErr, exception.NewBatchError(moduleName,
					fmt.Sprintf("Parquet writer panicked during WriteStop for '%s': %v", w.config.FileName, r), nil))
			}
		}()
		if err := pw.WriteStop(); err != nil {
			multiErr = multierror.Append(multiErr, exception.NewBatchErrorf(moduleName, "failed to finalize Parquet file '%s'", w.config.FileName, err))
		}
	}()
	if multiErr != nil {
		return multiErr
	}

	objectName := w.config.ObjectName()
	if err := w.storageConn.Upload(ctx, "", objectName, buf, "application/octet-stream"); err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to upload '%s' to '%s'", objectName, w.config.StorageRef, err)
	}
	logger.Infof("ParquetWriter: wrote %d rows to %s/%s (%s).", len(w.bufferedItems), w.config.StorageRef, objectName, strings.ToUpper(w.config.CompressionType))

	w.bufferedItems = nil
	return nil
}

// getCompressionCodec returns the Parquet compression codec from a string.
func getCompressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP", "":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

var _ port.ItemWriter[any] = (*ParquetWriter[any])(nil)
