// Package errors provides standardized error handling for the application flow and its HTTP surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeInvalidRequest              ErrorCode = "INVALID_REQUEST"
	ErrCodeUnknownEvent                ErrorCode = "UNKNOWN_EVENT"

	ErrCodeSubmissionInProgress ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeResultNotReady       ErrorCode = "RESULT_NOT_READY"
	ErrCodeResultNotFound       ErrorCode = "RESULT_NOT_FOUND"
	ErrCodeResetRequired        ErrorCode = "RESET_REQUIRED"

	ErrCodeFormatFailed ErrorCode = "FORMAT_FAILED"
	ErrCodeCopyFailed   ErrorCode = "COPY_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeContentInvalid     ErrorCode = "CONTENT_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error metadata and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewApplicationValidationFailedError creates a non-retryable validation error.
func NewApplicationValidationFailedError(failures int) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationValidationFailed,
		Message:   "Application failed validation",
		Details:   fmt.Sprintf("%d field(s) rejected", failures),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable malformed-request error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownEventError is returned when no handler is subscribed to an event type.
func NewUnknownEventError(eventType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownEvent,
		Message:   "No handler registered for event",
		Details:   fmt.Sprintf("eventType: %s", eventType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInProgressError rejects a re-entrant submit.
func NewSubmissionInProgressError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInProgress,
		Message:   "A submission is already in progress",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultNotReadyError is returned while the simulated delay has not elapsed.
func NewResultNotReadyError(readyAt time.Time) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultNotReady,
		Message:   "Result is not ready yet",
		Details:   fmt.Sprintf("readyAt: %s", readyAt.UTC().Format(time.RFC3339Nano)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultNotFoundError is returned when no result view exists for the session.
func NewResultNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultNotFound,
		Message:   "No application result available",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResetRequiredError is returned when submitting while a result is still shown.
func NewResetRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeResetRequired,
		Message:   "Reset the form before submitting another application",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFormatFailedError wraps a formatter failure.
func NewFormatFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFormatFailed,
		Message:   "Failed to format application",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCopyFailedError carries the user-facing alert text for a failed copy action.
// The alert comes from the content registry so every surface shows the same text.
func NewCopyFailedError(alert, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCopyFailed,
		Message:   alert,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable storage error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContentInvalidError reports a content registry that fails its schema.
func NewContentInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeContentInvalid,
		Message:   "Content registry is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatus maps an error code to the response status used by the transport layer.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeApplicationValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidRequest, ErrCodeUnknownEvent:
		return http.StatusBadRequest
	case ErrCodeSubmissionInProgress, ErrCodeResetRequired, ErrCodeResultNotFound, ErrCodeCopyFailed:
		return http.StatusConflict
	case ErrCodeResultNotReady:
		return http.StatusAccepted
	case ErrCodeSessionStoreFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// As unwraps err to a *StandardError, if there is one in the chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeSubmissionInProgress, ErrCodeResultNotReady, ErrCodeCopyFailed, ErrCodeSessionStoreFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SUBMISSION") || strings.Contains(codeStr, "RESULT") || strings.Contains(codeStr, "RESET"):
		return "FLOW"
	case strings.Contains(codeStr, "SESSION"):
		return "STORAGE"
	case strings.Contains(codeStr, "FORMAT") || strings.Contains(codeStr, "COPY"):
		return "RENDER"
	default:
		return "OTHER"
	}
}
