package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unitime error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"          // 404
	ErrFileNotFound     ErrorCode = "FILE_NOT_FOUND"     // 404
	ErrDocumentTooLarge ErrorCode = "DOCUMENT_TOO_LARGE" // 413
	ErrNoRecords        ErrorCode = "NO_RECORDS"         // 422
	ErrInternal         ErrorCode = "INTERNAL"           // 500
)

// UnitimeError represents a structured error with code, status, and details.
type UnitimeError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *UnitimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *UnitimeError {
	return &UnitimeError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing course or record.
func NewNotFound(what, identifier string) *UnitimeError {
	return &UnitimeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", what, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing input file.
func NewFileNotFound(path string) *UnitimeError {
	return &UnitimeError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewDocumentTooLarge creates a 413 error when a timetable exceeds the size limit.
func NewDocumentTooLarge(name string, max, actual int64) *UnitimeError {
	return &UnitimeError{
		Code:    ErrDocumentTooLarge,
		Status:  413,
		Message: fmt.Sprintf("document %s exceeds maximum size: %d bytes (max %d)", name, actual, max),
		Details: map[string]any{"name": name, "max_bytes": max, "actual_bytes": actual},
	}
}

// NewNoRecords creates a 422 error when an operation needs a non-empty schedule.
func NewNoRecords(op string) *UnitimeError {
	return &UnitimeError{
		Code:    ErrNoRecords,
		Status:  422,
		Message: fmt.Sprintf("no schedule records to %s", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *UnitimeError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &UnitimeError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a UnitimeError with the given code.
func Is(err error, code ErrorCode) bool {
	var uErr *UnitimeError
	if stderrors.As(err, &uErr) {
		return uErr.Code == code
	}
	return false
}

// As extracts a *UnitimeError, wrapping anything else as INTERNAL.
func As(err error) *UnitimeError {
	var uErr *UnitimeError
	if stderrors.As(err, &uErr) {
		return uErr
	}
	return NewInternal(err)
}
