package simpleconf

import (
	"errors"
	"fmt"

	"github.com/dshills/simpleconf/loader"
)

// Errors returned by configuration operations.
var (
	// ErrKeyNotFound indicates the key path doesn't exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrProfileNotFound indicates the requested profile doesn't exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrReadOnly indicates a reload was attempted on a Sub view.
	ErrReadOnly = errors.New("configuration view is read-only")
)

// Loader errors, re-exported for callers that only import this package.
var (
	ErrFormatNotSupported = loader.ErrFormatNotSupported
	ErrFormat             = loader.ErrFormat
	ErrImportMissing      = loader.ErrImportMissing
	ErrInvalidSource      = loader.ErrInvalidSource
)

// FormatError is returned when a source cannot be parsed.
type FormatError = loader.FormatError

// KeyNotFoundError is returned when a key path doesn't exist.
type KeyNotFoundError struct {
	// Key is the dotted key path that was looked up.
	Key string
}

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %q", e.Key)
}

// Is implements error matching for KeyNotFoundError.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// TypeError is returned when a value has a different type than requested.
type TypeError struct {
	// Key is the dotted key path.
	Key string
	// Expected is the expected type name.
	Expected string
	// Actual is the actual type name.
	Actual string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type error for %s: expected %s, got %s", e.Key, e.Expected, e.Actual)
}

// Is implements error matching for TypeError.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
