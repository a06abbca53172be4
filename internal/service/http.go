// Package service implements the HTTP JSON API: account management, group
// and session CRUD, and the settlement endpoints backed by the settle engine.
package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pokercount/backend/internal/settle"
	"github.com/pokercount/backend/internal/storage"
)

// respond writes v as a JSON response with the given status.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError writes a JSON error body with the given status.
func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}

// respondStoreError maps engine and storage errors to HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, settle.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, settle.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decode parses the request body into v.
func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
