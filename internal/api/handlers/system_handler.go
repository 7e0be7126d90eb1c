package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/monitoring"
)

// SystemHandler exposes host resource usage for operational dashboards.
type SystemHandler struct {
	collector *monitoring.Collector
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(collector *monitoring.Collector) *SystemHandler {
	return &SystemHandler{collector: collector}
}

// Stats returns a snapshot of host CPU, memory and process stats.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.collector.Snapshot()
	if err != nil {
		log.Error().Err(err).Msg("Failed to collect system stats")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
