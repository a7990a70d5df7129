package errors

import (
	"fmt"
	"net/http"
)

// Generic codes shared by every surface.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// Booking-engine taxonomy. Every one of these is user-facing and recoverable;
// internal failures must never leak through as one of them.
const (
	CodeSlotUnavailable         = "SLOT_UNAVAILABLE"
	CodeBelowMinimumDuration    = "BELOW_MINIMUM_DURATION"
	CodeNotEligible             = "NOT_ELIGIBLE"
	CodeRefundExceedsBalance    = "REFUND_EXCEEDS_BALANCE"
	CodeExtensionAlreadyPending = "EXTENSION_ALREADY_PENDING"
	CodeInvalidDateRange        = "INVALID_DATE_RANGE"
	CodeResourceNotFound        = "RESOURCE_NOT_FOUND"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// SlotUnavailable reports a booking conflict. Retryable: the caller is
// expected to refetch availability and pick another window.
func SlotUnavailable(message string) *AppError {
	return &AppError{
		Code:       CodeSlotUnavailable,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func BelowMinimumDuration(listingID string, requestedDays, minimumDays int) *AppError {
	return &AppError{
		Code:       CodeBelowMinimumDuration,
		Message:    fmt.Sprintf("requested %d day(s) but listing requires at least %d", requestedDays, minimumDays),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"listing_id":   listingID,
			"requested":    requestedDays,
			"minimum_days": minimumDays,
		},
	}
}

func NotEligible(chefID, kitchenID string) *AppError {
	return &AppError{
		Code:       CodeNotEligible,
		Message:    "chef is not eligible to book this kitchen",
		HTTPStatus: http.StatusForbidden,
		Details: map[string]any{
			"chef_id":    chefID,
			"kitchen_id": kitchenID,
		},
	}
}

func RefundExceedsBalance(requested, available int64) *AppError {
	return &AppError{
		Code:       CodeRefundExceedsBalance,
		Message:    "requested refund exceeds the refundable balance",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"requested_cents": requested,
			"available_cents": available,
		},
	}
}

func ExtensionAlreadyPending(storageReservationID string) *AppError {
	return &AppError{
		Code:       CodeExtensionAlreadyPending,
		Message:    "an unresolved extension already exists for this storage reservation",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"storage_reservation_id": storageReservationID,
		},
	}
}

func InvalidDateRange(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidDateRange,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func ResourceNotFound(resource, id string) *AppError {
	return &AppError{
		Code:       CodeResourceNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError converts any error to an AppError, shielding internal errors
// behind a generic message.
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
