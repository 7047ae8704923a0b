package http

import (
	"encoding/json"
	"net/http"
)

// ListResponse wraps a list of items (non-paginated)
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header is already sent; an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteList writes a simple list response
func WriteList[T any](w http.ResponseWriter, data []T) {
	if data == nil {
		data = []T{}
	}
	WriteJSON(w, http.StatusOK, ListResponse[T]{
		Data:  data,
		Count: len(data),
	})
}
