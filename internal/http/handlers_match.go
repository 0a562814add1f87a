package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dsjohal14/listmatch/internal/catalog"
	"github.com/dsjohal14/listmatch/internal/streamlite"
)

// HandleMatch reconciles the posted catalogs and responds with one JSON line per product.
// A malformed record anywhere rejects the whole request.
func (h *Handler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "BODY_TOO_LARGE", "")
			return
		}
		h.logger.Warn().Err(err).Msg("invalid match request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON", "")
		return
	}

	job, res, err := h.service.Execute(r.Context(),
		streamlite.NewBytesSource("products", []byte(req.Products)),
		streamlite.NewBytesSource("listings", []byte(req.Listings)),
	)
	w.Header().Set("X-Run-ID", job.ID)

	if err != nil {
		var recErr *catalog.RecordError
		if errors.As(err, &recErr) {
			writeError(w, http.StatusBadRequest, "malformed record", "INVALID_RECORD", recErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "reconciliation failed", "RUN_ERROR", "")
		return
	}

	h.logger.Info().
		Str("run_id", job.ID).
		Int("products", res.Stats.Products).
		Int("matched_listings", res.Stats.MatchedListings).
		Msg("match completed")

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}
