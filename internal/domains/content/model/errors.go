package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - no record with the given id/slug exists.
	ErrNotFound = errors.New("content record not found")
	// ErrSlugTaken - another record of the same variant owns the slug.
	ErrSlugTaken = errors.New("slug already in use")
)

// FieldErrors maps a field name to a single human-readable message. The
// first violation per field wins; messages are surfaced verbatim.
type FieldErrors map[string]string

// ValidationError aborts a reconciliation before any side effect occurred.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// ConflictError is a field-scoped slug collision. Recoverable; no committed
// side effects remain once it is returned.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UploadError means asset materialization failed. By the time it is
// returned, every upload that succeeded in the same batch has been rolled
// back.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("asset upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError means the relational write was rejected. The uploads made
// by the failed request have been rolled back; the previously persisted
// record is unchanged.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
