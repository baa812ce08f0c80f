package loader

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by loaders.
var (
	// ErrFormatNotSupported indicates no loader exists for a format tag.
	ErrFormatNotSupported = errors.New("format not supported")

	// ErrFormat indicates a source could not be parsed.
	ErrFormat = errors.New("malformed configuration")

	// ErrImportMissing indicates no parser backend is available for a format.
	ErrImportMissing = errors.New("parser backend not available")

	// ErrInvalidSource indicates a loader was handed a source kind it cannot read.
	ErrInvalidSource = errors.New("invalid source")
)

// UnsupportedFormatError is returned by a Registry for an unknown format tag.
type UnsupportedFormatError struct {
	// Format is the offending tag.
	Format Format
	// Source describes the source the tag was inferred from, if any.
	Source string
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		if e.Source != "" {
			return fmt.Sprintf("cannot determine configuration format of %s", e.Source)
		}
		return "empty configuration format is not supported"
	}
	if e.Source != "" {
		return fmt.Sprintf("format %q is not supported (source %s)", e.Format, e.Source)
	}
	return fmt.Sprintf("format %q is not supported", e.Format)
}

// Is implements error matching for UnsupportedFormatError.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrFormatNotSupported
}

// FormatError represents a parse failure of one source.
type FormatError struct {
	// Format is the format the source was parsed as.
	Format Format
	// Source identifies the source (file path or a placeholder for in-memory text).
	Source string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s parse error in %s at line %d, column %d: %s", e.Format, e.Source, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error in %s at line %d: %s", e.Format, e.Source, e.Line, e.Message)
	}
	return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.Source, e.Message)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements error matching for FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// positioner is implemented by parser errors that know where they happened.
type positioner interface {
	Position() (row, column int)
}

// positionError attaches a location to a parser error that carries it
// in fields rather than through Position.
type positionError struct {
	line, column int
	err          error
}

func (e *positionError) Error() string               { return e.err.Error() }
func (e *positionError) Unwrap() error               { return e.err }
func (e *positionError) Position() (row, column int) { return e.line, e.column }

func newFormatError(format Format, source string, err error) *FormatError {
	fe := &FormatError{
		Format:  format,
		Source:  source,
		Message: err.Error(),
		Err:     err,
	}
	var p positioner
	if errors.As(err, &p) {
		fe.Line, fe.Column = p.Position()
	}
	return fe
}

// ImportMissingError is returned when neither the primary parser backend of
// a format nor any of its fallbacks is available.
type ImportMissingError struct {
	Format    Format
	Primary   string
	Fallbacks []string
}

// Error implements the error interface.
func (e *ImportMissingError) Error() string {
	if len(e.Fallbacks) == 0 {
		return fmt.Sprintf("%s: parser %q is not available", e.Format, e.Primary)
	}
	return fmt.Sprintf("%s: neither parser %q nor its fallbacks %s is available",
		e.Format, e.Primary, strings.Join(quoteAll(e.Fallbacks), ", "))
}

// Is implements error matching for ImportMissingError.
func (e *ImportMissingError) Is(target error) bool {
	return target == ErrImportMissing
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}

// SourceTypeError is returned when a loader receives a Go value it cannot read.
type SourceTypeError struct {
	Format Format
	Type   string
}

// Error implements the error interface.
func (e *SourceTypeError) Error() string {
	return fmt.Sprintf("%s loader cannot read a source of type %s", e.Format, e.Type)
}

// Is implements error matching for SourceTypeError.
func (e *SourceTypeError) Is(target error) bool {
	return target == ErrInvalidSource
}

// ValueError reports a value that has no place in a normalized configuration.
type ValueError struct {
	// Path is the dotted key path of the value.
	Path string
	// Type is the Go type of the value.
	Type string
	// Reason optionally explains the rejection.
	Reason string
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported value of type %s at %q: %s", e.Type, e.Path, e.Reason)
	}
	return fmt.Sprintf("unsupported value of type %s at %q", e.Type, e.Path)
}
