package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
)

// ErrorWriter answers a request that a middleware refused.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// WriteAppError writes err as a JSON error body. Errors that are not
// *apperrors.AppError are answered as internal errors.
func WriteAppError(w http.ResponseWriter, _ *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}{appErr.Error(), appErr.Code})
}
