// Package alerr provides standardized error handling for erdpad.
// All errors have stable, machine-readable codes, structured context, and proper wrapping.
package alerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: E{category}{number} where category is 1-9 and number is 001-999.
type Code string

// Error codes organized by category.
const (
	// Document errors (E1xxx) - problems with the serialized diagram document
	ErrDocumentInvalid Code = "E1001" // Document is malformed or structurally invalid
	ErrDocumentRead    Code = "E1002" // Document could not be read
	ErrDocumentWrite   Code = "E1003" // Document could not be written

	// Diagram errors (E2xxx) - lookups and validation against the graph
	ErrTableNotFound        Code = "E2001" // No table with the given id
	ErrColumnNotFound       Code = "E2002" // No column with the given id in the table
	ErrRelationshipNotFound Code = "E2003" // No relationship with the given id
	ErrInvalidReference     Code = "E2004" // Foreign-key reference is not "Table.Column"
	ErrInvalidType          Code = "E2005" // Column type is outside the SQL vocabulary
	ErrInvalidCardinality   Code = "E2006" // Unknown cardinality value
	ErrInvalidDirection     Code = "E2007" // Unknown direction value
	ErrDuplicateID          Code = "E2008" // Id used twice where it must be unique
	ErrNoDraft              Code = "E2009" // No table is open for editing

	// Config errors (E3xxx)
	ErrConfigInvalid Code = "E3001" // Config file could not be parsed

	// Host errors (E4xxx) - HTTP host and file watching
	ErrServe Code = "E4001" // HTTP host failed
	ErrWatch Code = "E4002" // File watcher failed

	// Runtime errors (E5xxx) - problems with JS execution
	ErrJSExecution Code = "E5001" // JavaScript execution failed
	ErrJSTimeout   Code = "E5002" // JavaScript execution timed out

	// Cache errors (E8xxx) - problems with the local autosave cache
	ErrCacheInit    Code = "E8001" // Cache initialization failed
	ErrCacheRead    Code = "E8002" // Cache read failed
	ErrCacheWrite   Code = "E8003" // Cache write failed
	ErrCacheCorrupt Code = "E8004" // Cache entry could not be decoded

	// Internal errors (E9xxx) - unexpected internal errors
	EInternalError Code = "E9001" // Internal error
)

// Error is the standard error type for erdpad.
// It provides structured error information with codes, context, and wrapping support.
type Error struct {
	code    Code           // Machine-readable error code
	message string         // Human-readable error message
	context map[string]any // Structured context data
	cause   error          // Wrapped underlying error
}

// Error returns the formatted error string.
// Format:
//
//	[E2001] table not found
//	  table: table_1718000000000_3
func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.code, e.message)

	// Context in sorted order for deterministic output
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %v", k, e.context[k])
		}
	}

	if e.cause != nil {
		fmt.Fprintf(&b, "\n  cause: %v", e.cause)
	}

	return b.String()
}

// Unwrap returns the underlying cause error for errors.Unwrap compatibility.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.code == targetErr.code
	}

	return false
}

// GetCode returns the error code.
func (e *Error) GetCode() Code {
	return e.code
}

// GetMessage returns the error message.
func (e *Error) GetMessage() string {
	return e.message
}

// GetContext returns the error context map.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// GetCause returns the underlying cause error.
func (e *Error) GetCause() error {
	return e.cause
}

// With adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithTable adds table context to the error.
func (e *Error) WithTable(id string) *Error {
	return e.With("table", id)
}

// WithColumn adds column context to the error.
func (e *Error) WithColumn(id string) *Error {
	return e.With("column", id)
}

// WithFile adds file context to the error.
func (e *Error) WithFile(path string) *Error {
	return e.With("file", path)
}

// WithHelp adds a help suggestion to the error (displayed as "help: ...").
func (e *Error) WithHelp(help string) *Error {
	helps, _ := e.context["helps"].([]string)
	helps = append(helps, help)
	return e.With("helps", helps)
}

// Helps returns all help suggestions attached to this error.
func (e *Error) Helps() []string {
	helps, _ := e.context["helps"].([]string)
	return helps
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(code Code, err error, msg string) *Error {
	e := New(code, msg)
	e.cause = err
	return e
}

// Wrapf creates a new Error that wraps an existing error with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// GetErrorCode extracts the error code from an error chain.
// Returns empty string if no code is found.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}

	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.code
	}

	return ""
}

// Is checks if an error has the specified code.
func Is(err error, code Code) bool {
	return GetErrorCode(err) == code
}
