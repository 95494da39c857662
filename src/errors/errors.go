package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// Catalog errors
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrPaletteNotFound  = errors.New("palette not found")

	// Store errors
	ErrColorNotSupported = errors.New("slot does not support color")
	ErrSlotLocked        = errors.New("slot is locked")
	ErrPaletteLocked     = errors.New("palette is locked")

	// History import errors
	ErrInvalidData        = errors.New("invalid_data")
	ErrUnsupportedVersion = errors.New("unsupported_version")

	// Backend errors
	ErrStaleResponse = errors.New("stale response discarded")
	ErrParseFailed   = errors.New("prompt parse failed")

	// Persistence errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPresetNotFound     = errors.New("preset not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrOutOfRange   = errors.New("value out of acceptable range")
)

// StorageError represents a database operation error with context
type StorageError struct {
	Op    string // Operation that failed (e.g., "insert", "load", "query")
	Table string // Table involved
	Err   error  // Underlying error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s operation on %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new storage error
func NewStorageError(op, table string, err error) error {
	return &StorageError{
		Op:    op,
		Table: table,
		Err:   err,
	}
}

// ImportError represents a history import failure with a machine-readable
// reason code ("invalid_data" or "unsupported_version")
type ImportError struct {
	Reason  string
	Version int
	Err     error
}

func (e *ImportError) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("history import failed (%s): version %d", e.Reason, e.Version)
	}
	return fmt.Sprintf("history import failed (%s)", e.Reason)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewImportError creates an import error carrying the reason code
func NewImportError(reason string, version int) error {
	var base error
	switch reason {
	case "unsupported_version":
		base = ErrUnsupportedVersion
	default:
		base = ErrInvalidData
	}
	return &ImportError{Reason: reason, Version: version, Err: base}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for %s (value: %v): %s",
			e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Helper functions for common error patterns

// IsNotFound checks if error indicates a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrOptionNotFound) ||
		errors.Is(err, ErrPaletteNotFound) ||
		errors.Is(err, ErrPresetNotFound)
}

// IsRecoverableImport checks if error is a recoverable import validation error
func IsRecoverableImport(err error) bool {
	return errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrUnsupportedVersion)
}

// IsStale checks if error indicates a superseded backend response
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleResponse)
}

// WrapWithContext adds context to an error
func WrapWithContext(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
