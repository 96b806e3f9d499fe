package handlers

import (
	"net/http"
	"time"

	"github.com/waajacu/minerals/internal/server/response"
)

// HandleHealth handles GET /api/v1/health.
// @Summary Health check
// @Description Health check endpoint (liveness probe)
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "minerals-api",
		"version": "v1",
	})
}

// HandleReady handles GET /api/v1/ready. The service is ready once the
// default-language catalog can be loaded.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.Catalog(r.Context(), h.config.DefaultLang)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Readiness check failed")
		response.ServiceUnavailable(w, "Catalog not available")
		return
	}

	response.OK(w, map[string]any{
		"status":            "ready",
		"minerals":          cat.Len(),
		"ai_provider":       h.svc.AIProvider(),
		"uptime_seconds":    int64(time.Since(h.config.StartTime).Seconds()),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
