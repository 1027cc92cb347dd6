package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a resolution failure. Every internal error is
// converted to exactly one of these before it crosses a component boundary.
type ErrorType string

const (
	ErrorTypeInvalidURL      ErrorType = "invalid_url"
	ErrorTypeFetchFailed     ErrorType = "fetch_failed"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeNoMetadataFound ErrorType = "no_metadata_found"
	ErrorTypeNoMediaURLFound ErrorType = "no_media_url_found"
	ErrorTypePrivateContent  ErrorType = "private_content"
	ErrorTypeUpstreamError   ErrorType = "upstream_error"
)

// Error represents a pipeline error with type information.
// Code carries the upstream HTTP status when one was observed, 0 otherwise.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error with no upstream status code.
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// NewWithCode creates a typed error carrying an upstream HTTP status code.
func NewWithCode(t ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Code: code}
}

// From converts any error into a typed *Error. Errors that already carry a
// type pass through unchanged; everything else becomes an upstream error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Type: ErrorTypeUpstreamError, Message: err.Error()}
}

// TypeOf returns the error type of err, or ErrorTypeUpstreamError for
// untyped errors.
func TypeOf(err error) ErrorType {
	return From(err).Type
}

// HTTPStatus maps an error type to the client-facing HTTP status code.
// Caller errors map to 4xx, upstream resolution failures to 502/504.
func HTTPStatus(t ErrorType) int {
	switch t {
	case ErrorTypeInvalidURL:
		return http.StatusBadRequest
	case ErrorTypePrivateContent:
		return http.StatusForbidden
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeFetchFailed, ErrorTypeNoMetadataFound, ErrorTypeNoMediaURLFound, ErrorTypeUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether an operation failing with this type is worth
// retrying. A page that parsed but yielded no media will not change on retry.
func IsRetryable(t ErrorType) bool {
	switch t {
	case ErrorTypeFetchFailed, ErrorTypeTimeout, ErrorTypeUpstreamError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
