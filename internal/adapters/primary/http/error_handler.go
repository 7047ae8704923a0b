package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
)

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		WriteJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: validationErrs.Errors,
		})
		return
	}

	statusCode, response := h.Describe(err)
	h.logError(r, statusCode, err)
	WriteJSON(w, statusCode, response)
}

// Describe maps an error to the status code and body it is reported with.
func (h *ErrorHandler) Describe(err error) (int, ErrorResponse) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	}

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Validation failed",
			Code:    "VALIDATION_ERROR",
			Details: map[string]interface{}{"fields": validationErrs.Errors},
		}
	}

	var trackerErr *apperrors.TrackerError
	if errors.As(err, &trackerErr) {
		return http.StatusBadGateway, ErrorResponse{
			Error: "The issue tracker rejected the request",
			Code:  "TRACKER_ERROR",
			Details: map[string]interface{}{
				"trackerStatus": trackerErr.StatusCode,
				"endpoint":      trackerErr.Endpoint,
				"body":          trackerErr.Body,
			},
		}
	}

	return mapDomainError(err)
}

// mapDomainError converts domain errors to HTTP status codes and responses
func mapDomainError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, apperrors.ErrGroupNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Group not found",
			Code:  "GROUP_NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrUnknownGroup):
		return http.StatusNotFound, ErrorResponse{
			Error: "Group is not available on this dashboard",
			Code:  "UNKNOWN_GROUP",
		}

	// Tracker failures
	case errors.Is(err, apperrors.ErrTooManyPages):
		return http.StatusBadGateway, ErrorResponse{
			Error: "The selection matches too many issues; narrow the due-date range",
			Code:  "TOO_MANY_RESULTS",
		}
	case errors.Is(err, apperrors.ErrTrackerRequest),
		errors.Is(err, apperrors.ErrTrackerDecode):
		return http.StatusBadGateway, ErrorResponse{
			Error: "The issue tracker could not be reached",
			Code:  "TRACKER_ERROR",
		}
	case errors.Is(err, apperrors.ErrTrackerNotReady):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error: "The issue tracker is not configured",
			Code:  "TRACKER_NOT_READY",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{
			Error: "The issue tracker did not answer in time",
			Code:  "TRACKER_TIMEOUT",
		}

	// Validation errors
	case errors.Is(err, apperrors.ErrSelectionRequired),
		errors.Is(err, apperrors.ErrAmbiguousSelect),
		errors.Is(err, apperrors.ErrInvalidGroupBy),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrInvalidDateRange):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		}

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many requests. Please try again later.",
			Code:  "RATE_LIMITED",
		}

	// Default to internal server error
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  "INTERNAL_ERROR",
		}
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	logAttrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	ctx := r.Context()
	switch {
	case statusCode >= 500:
		h.logger.ErrorContext(ctx, "server error", logAttrs...)
	case statusCode >= 400:
		h.logger.WarnContext(ctx, "client error", logAttrs...)
	default:
		h.logger.InfoContext(ctx, "request error", logAttrs...)
	}
}

// HandleError Helper function to handle errors inline in handlers
// Usage: if HandleError(w, r, err, h.errorHandler) { return }
func HandleError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) bool {
	if err != nil {
		handler.Handle(w, r, err)
		return true
	}
	return false
}
