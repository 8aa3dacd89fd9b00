package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/forest/pkg/metrics"
)

// StatsProvider reports service counters for GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// opsHandler serves the operational endpoints.
type opsHandler struct {
	stats   StatsProvider
	metrics http.Handler
}

func newOpsHandler(stats StatsProvider) *opsHandler {
	return &opsHandler{
		stats:   stats,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// health exposes the service registry in the Prometheus text format.
func (h *opsHandler) health(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

func (h *opsHandler) statsJSON(w http.ResponseWriter, _ *http.Request) {
	if h.stats == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}
