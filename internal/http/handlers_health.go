package httpapi

import "net/http"

// HandleHealth returns API health status and run count
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:   "healthy",
		RunCount: h.service.Runs().Count(),
	}

	h.logger.Debug().Int("run_count", resp.RunCount).Msg("health check")

	writeJSON(w, http.StatusOK, resp)
}
