package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Tracker
	ErrTrackerRequest  = errors.New("tracker request failed")
	ErrTrackerDecode   = errors.New("tracker response could not be decoded")
	ErrGroupNotFound   = errors.New("group not found")
	ErrTooManyPages    = errors.New("tracker result exceeds page limit")
	ErrTrackerNotReady = errors.New("tracker client not configured")

	// Workload request validation
	ErrSelectionRequired = errors.New("an assignee or a group is required")
	ErrAmbiguousSelect   = errors.New("select either an assignee or a group, not both")
	ErrInvalidGroupBy    = errors.New("invalid grouping mode")
	ErrInvalidDate       = errors.New("invalid due date")
	ErrInvalidDateRange  = errors.New("start due date is after end due date")
	ErrUnknownGroup      = errors.New("group is not configured")

	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "NOT_FOUND",
		StatusCode: 404,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}

// TrackerError is returned when the issue tracker answers with a non-2xx
// status. The body is kept verbatim for diagnosis.
type TrackerError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *TrackerError) Error() string {
	return fmt.Sprintf("tracker API error %d on %s %s: %s", e.StatusCode, e.Method, e.Endpoint, e.Body)
}

func (e *TrackerError) Unwrap() error {
	return ErrTrackerRequest
}

// IsNotFound reports whether the tracker answered 404.
func (e *TrackerError) IsNotFound() bool {
	return e.StatusCode == 404
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
