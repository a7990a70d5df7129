package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("mongo connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected wrapped error to unwrap to original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeResourceNotFound,
				Message: "kitchen not found",
			},
			expected: "RESOURCE_NOT_FOUND: kitchen not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "insert failed",
				Err:     errors.New("write conflict"),
			},
			expected: "INTERNAL_ERROR: insert failed (caused by: write conflict)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTaxonomyStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"slot unavailable", SlotUnavailable("window taken"), CodeSlotUnavailable, http.StatusConflict},
		{"below minimum duration", BelowMinimumDuration("sl-1", 1, 3), CodeBelowMinimumDuration, http.StatusUnprocessableEntity},
		{"not eligible", NotEligible("chef-1", "k-1"), CodeNotEligible, http.StatusForbidden},
		{"refund exceeds balance", RefundExceedsBalance(5000, 1200), CodeRefundExceedsBalance, http.StatusUnprocessableEntity},
		{"extension already pending", ExtensionAlreadyPending("sr-1"), CodeExtensionAlreadyPending, http.StatusConflict},
		{"invalid date range", InvalidDateRange("end before start"), CodeInvalidDateRange, http.StatusBadRequest},
		{"resource not found", ResourceNotFound("kitchen", "k-9"), CodeResourceNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	appErr := SlotUnavailable("taken")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("expected AsAppError to return the same AppError")
	}

	raw := errors.New("driver timeout")
	converted := AsAppError(raw)
	if converted.Code != CodeInternal {
		t.Errorf("expected raw errors to convert to %s, got %s", CodeInternal, converted.Code)
	}
	if converted.Message == raw.Error() {
		t.Errorf("internal error text must not leak into the user-facing message")
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(SlotUnavailable("x"), CodeSlotUnavailable) {
		t.Errorf("expected IsCode to match SlotUnavailable")
	}
	if IsCode(errors.New("plain"), CodeSlotUnavailable) {
		t.Errorf("expected plain errors not to match")
	}
}
