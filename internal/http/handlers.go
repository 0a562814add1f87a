package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dsjohal14/listmatch/internal/scope/db"
	"github.com/dsjohal14/listmatch/internal/scope/reconcile"
	"github.com/rs/zerolog"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	service      *reconcile.Service
	results      db.ResultReader
	maxBodyBytes int64
	logger       zerolog.Logger
}

// NewHandler creates a new HTTP handler. results may be nil when runs are not persisted.
func NewHandler(service *reconcile.Service, results db.ResultReader, maxBodyBytes int64, logger zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		results:      results,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
