package httpapi

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/dsjohal14/listmatch/internal/libs/jobs"
	"github.com/dsjohal14/listmatch/internal/scope/db"
	"github.com/dsjohal14/listmatch/internal/scope/emit"
	"github.com/go-chi/chi/v5"
)

// HandleListRuns returns the runs still held by the registry, oldest first
func (h *Handler) HandleListRuns(w http.ResponseWriter, _ *http.Request) {
	runs := h.service.Runs().List()
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs, Count: len(runs)})
}

// HandleGetRun returns one run by id
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.service.Runs().Get(id)
	if errors.Is(err, jobs.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found", "RUN_NOT_FOUND", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run", "RUN_ERROR", "")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// HandleRunMatches replays the stored output of a run
func (h *Handler) HandleRunMatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.results == nil {
		writeError(w, http.StatusNotFound, "run results not stored", "RESULTS_NOT_STORED", "")
		return
	}

	lines, err := h.results.Lines(id)
	if errors.Is(err, db.ErrRunNotStored) {
		writeError(w, http.StatusNotFound, "run results not stored", "RESULTS_NOT_STORED", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("run_id", id).Msg("failed to read stored results")
		writeError(w, http.StatusInternalServerError, "failed to load results", "RUN_ERROR", "")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bytes.Join(lines, []byte(emit.LineSeparator)))
}
