// Package errors provides structured error types for the pulsegrid layout engine.
//
// Every failure that crosses a package boundary carries a [Code], so the
// CLI can pick an exit status and the API an HTTP status without matching
// on message text.
//
// # Error Codes
//
// Layout codes mirror the failure kinds of the geometry engine:
//   - UNSET_COORDINATE: a coordinate was read before it was assigned (recoverable)
//   - NEGATIVE_SIZE: a far-edge write would invert a grow box
//   - INVALID_REGION: malformed region arguments (programming error)
//   - CELL_OCCUPIED: placement onto an occupied source cell without insert mode
//   - MISSING_OWNER: an element lacks the placement data its parent requires
//   - BINDING_CYCLE: same-axis bindings form a cycle (strict mode only)
//
// Input codes (INVALID_*) cover snapshots, DSL sources and CLI flags.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCellOccupied, "cell %d,%d already holds %s", r, c, id)
//	if errors.Is(err, errors.ErrCodeCellOccupied) {
//	    // retry with an insert mode
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidSnapshot, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout errors
	ErrCodeUnsetCoordinate Code = "UNSET_COORDINATE"
	ErrCodeNegativeSize    Code = "NEGATIVE_SIZE"
	ErrCodeInvalidRegion   Code = "INVALID_REGION"
	ErrCodeCellOccupied    Code = "CELL_OCCUPIED"
	ErrCodeMissingOwner    Code = "MISSING_OWNER"
	ErrCodeBindingCycle    Code = "BINDING_CYCLE"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidSource   Code = "INVALID_SOURCE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of an *Error without code or cause, and
// err.Error() for anything else.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether err is a layout condition a caller may retry or
// defer instead of aborting the edit: an unset coordinate or an occupied cell.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnsetCoordinate, ErrCodeCellOccupied:
		return true
	}
	return false
}

// CycleError reports the entities of a binding cycle on one axis.
type CycleError struct {
	Axis string   // "x" or "y"
	IDs  []string // entity ids in edge order; the last binds back to the first
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("binding cycle on %s axis through %d entities", e.Axis, len(e.IDs))
}

// Code is always BINDING_CYCLE.
func (e *CycleError) Code() Code {
	return ErrCodeBindingCycle
}
