package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security & Authentication (SEC) ----

func ErrMissingServiceToken() *AppError {
	return New("SEC_001", "Missing service token", http.StatusUnauthorized)
}

func ErrInvalidServiceToken() *AppError {
	return New("SEC_002", "Invalid or expired service token", http.StatusUnauthorized)
}

// ---- Webhook Dispatch (WH) ----

func ErrUnknownEventType(event string) *AppError {
	return New("WH_001", fmt.Sprintf("Unknown event type %q", event), http.StatusBadRequest)
}

func ErrInvalidOrganizationID() *AppError {
	return New("WH_002", "Invalid organization ID", http.StatusBadRequest)
}

func ErrDeliveryLogNotFound() *AppError {
	return New("WH_003", "Delivery log not found", http.StatusNotFound)
}

func ErrSweepInProgress() *AppError {
	return New("WH_004", "A retry sweep is already running", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a WH_005-coded validation error.
func Validation(message string) *AppError {
	return New("WH_005", message, http.StatusBadRequest)
}
