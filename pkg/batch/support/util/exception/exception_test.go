package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
)

var errSentinel = errors.New("invalid value")

func TestNewBatchError(t *testing.T) {
	originalErr := errors.New("db connection refused")
	be := exception.NewBatchError("loader", "failed to connect", originalErr)

	assert.Equal(t, "loader", be.Module)
	assert.Equal(t, "failed to connect", be.Message)
	assert.Equal(t, originalErr, be.Unwrap())
	assert.Equal(t, "[loader] failed to connect: db connection refused", be.Error())
	assert.NotEmpty(t, be.StackTrace)
}

func TestNewBatchErrorf(t *testing.T) {
	be := exception.NewBatchErrorf("normalizer", "row %d: bad value %q", 12, "x")
	assert.Nil(t, be.Unwrap())
	assert.Equal(t, "[normalizer] row 12: bad value \"x\"", be.Error())

	wrapped := exception.NewBatchErrorf("normalizer", "row %d: bad value %q", 12, "x", errSentinel)
	assert.Equal(t, errSentinel, wrapped.Unwrap())
	assert.Equal(t, "row 12: bad value \"x\"", wrapped.Message)
}

func TestErrorsIs_ReachesSentinel(t *testing.T) {
	be := exception.NewBatchError("dimension", "conflicting measurements", errSentinel)
	outer := fmt.Errorf("build step: %w", be)

	assert.True(t, errors.Is(outer, errSentinel))
	assert.True(t, exception.IsBatchError(outer))
	assert.Equal(t, "dimension", exception.ModuleOf(outer))
	assert.False(t, exception.IsBatchError(errSentinel))
	assert.Equal(t, "", exception.ModuleOf(errSentinel))
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
	assert.Equal(t, "plain", exception.ExtractErrorMessage(errors.New("plain")))
	assert.Equal(t, "export failed",
		exception.ExtractErrorMessage(fmt.Errorf("wrapped: %w", exception.NewBatchError("exporter", "export failed", errSentinel))))
}
