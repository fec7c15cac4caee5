package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/interfaces"
)

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	enricher  interfaces.EnrichmentService
	startTime time.Time
	logger    arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(enricher interfaces.EnrichmentService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		enricher:  enricher,
		startTime: time.Now(),
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// GetHealthHandler handles GET /api/health, probing the enrichment provider
func (h *StatusHandler) GetHealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	probeCtx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.enricher.HealthCheck(probeCtx); err != nil {
		h.logger.Warn().Err(err).Msg("Enrichment health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
