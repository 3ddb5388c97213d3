package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	originalErr := errors.New("session start failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if unwrapped := errors.Unwrap(wrapped); unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestAtCapacity(t *testing.T) {
	err := AtCapacity("pass is at capacity for 2025-06-01", map[string]any{
		"next_available_date": "2025-06-03",
	})

	if err.Code != CodeAtCapacity {
		t.Errorf("expected code %s, got %s", CodeAtCapacity, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	if err.Details["next_available_date"] != "2025-06-03" {
		t.Errorf("expected next_available_date detail, got %v", err.Details)
	}
}

func TestNotAvailable(t *testing.T) {
	err := NotAvailable("pass is not yet available", map[string]any{"reason": "not_yet_available"})

	if err.Code != CodeNotAvailable {
		t.Errorf("expected code %s, got %s", CodeNotAvailable, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Pass", "507f1f77bcf86cd799439011")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Details["id"] != "507f1f77bcf86cd799439011" {
		t.Errorf("expected id detail, got %v", err.Details)
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(Conflict("overlap"), CodeConflict) {
		t.Error("expected HasCode to match Conflict")
	}
	if HasCode(errors.New("plain"), CodeConflict) {
		t.Error("plain errors must not match any code")
	}
	if HasCode(AtCapacity("full", nil), CodeConflict) {
		t.Error("AT_CAPACITY must not match CONFLICT")
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)
	if appErr.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, appErr.Code)
	}

	conflict := Conflict("taken")
	if AsAppError(conflict) != conflict {
		t.Error("existing AppError should pass through unchanged")
	}
}
