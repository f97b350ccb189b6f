package errors

import (
	"fmt"
	"testing"
)

func TestUnitimeError_Error(t *testing.T) {
	err := &UnitimeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "course not found: Fisica",
	}

	expected := "NOT_FOUND: course not found: Fisica"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("path is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "path is required" {
		t.Errorf("Message = %q, want %q", err.Message, "path is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("course", "Fisica")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "Fisica" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "Fisica")
	}
}

func TestNewFileNotFound(t *testing.T) {
	err := NewFileNotFound("/tmp/orario.html")

	if err.Code != ErrFileNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrFileNotFound)
	}
	if err.Details["path"] != "/tmp/orario.html" {
		t.Errorf("Details[path] = %v", err.Details["path"])
	}
}

func TestNewDocumentTooLarge(t *testing.T) {
	err := NewDocumentTooLarge("big.html", 100, 250)

	if err.Code != ErrDocumentTooLarge {
		t.Errorf("Code = %q, want %q", err.Code, ErrDocumentTooLarge)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_bytes"] != int64(100) {
		t.Errorf("Details[max_bytes] = %v, want 100", err.Details["max_bytes"])
	}
}

func TestNewNoRecords(t *testing.T) {
	err := NewNoRecords("export")

	if err.Code != ErrNoRecords {
		t.Errorf("Code = %q, want %q", err.Code, ErrNoRecords)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Message != "no schedule records to export" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("course", "x"), ErrNotFound, true},
		{"other code", NewNotFound("course", "x"), ErrInternal, false},
		{"wrapped", fmt.Errorf("ctx: %w", NewInvalidRequest("bad")), ErrInvalidRequest, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	orig := NewInvalidRequest("bad")
	if got := As(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Errorf("As() did not unwrap the original error")
	}
	if got := As(fmt.Errorf("boom")); got.Code != ErrInternal {
		t.Errorf("As(plain).Code = %q, want %q", got.Code, ErrInternal)
	}
}
