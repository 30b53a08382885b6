package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants.
// All handlers MUST use these constants instead of hardcoded strings.
const (
	// Feed fetch failures (per Source Client). Exactly one of these
	// classifies every failed fetch.
	ErrCodeFeedTransport ErrorCode = "feed_transport_failure" // no response at all
	ErrCodeFeedStatus    ErrorCode = "feed_status_failure"    // non-success HTTP status
	ErrCodeFeedShape     ErrorCode = "feed_shape_failure"     // response missing required fields
	ErrCodeFeedParse     ErrorCode = "feed_parse_failure"     // malformed payload

	// Validation (400)
	ErrCodeValidationMissingField ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidFeed  ErrorCode = "validation_invalid_feed"

	// Limits (429)
	ErrCodeRateLimit ErrorCode = "rate_limit_exceeded"

	// Not Found (404)
	ErrCodeNotFoundSnapshot ErrorCode = "not_found_snapshot"

	// Internal (500) / defensive
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
	ErrCodeSchedulerFault     ErrorCode = "scheduler_fault"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Used by the API layer to translate AppErrors into HTTP responses.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest // 400
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound // 404
	case s == string(ErrCodeRateLimit):
		return http.StatusTooManyRequests // 429
	case strings.HasPrefix(s, "feed_"):
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// AppError is the standard application error type used throughout the
// platform. All domain and handler errors should be expressed as AppError to
// enable consistent error formatting, HTTP status mapping, and error chain
// support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error. This is the standard constructor for domain
// errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FeedErrorCode extracts the fetch-failure classification from an error
// chain. Returns the code and true when the error is (or wraps) an AppError
// carrying one of the four feed failure codes.
func FeedErrorCode(err error) (ErrorCode, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "", false
	}
	switch appErr.Code {
	case ErrCodeFeedTransport, ErrCodeFeedStatus, ErrCodeFeedShape, ErrCodeFeedParse:
		return appErr.Code, true
	}
	return "", false
}
