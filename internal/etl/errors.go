// Package etl turns the raw gridwatch extract into the star schema: it normalizes raw
// records, builds both dimensions and joins the fact table against them.
package etl

import "errors"

// Input-format errors. They reach callers wrapped in an *exception.BatchError.
var (
	ErrMissingColumn    = errors.New("missing required column")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidValue     = errors.New("invalid numeric value")
	ErrConflictingID    = errors.New("conflicting measurements for source id")
	ErrEmptyExtract     = errors.New("extract has no records")
)
