package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler answers liveness probes. It reports dataset state but
// never fails: a server without a loaded dataset is degraded, not dead.
type HealthHandler struct {
	service DebriefServiceInterface
	version string
	started time.Time
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(service DebriefServiceInterface, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		started: time.Now(),
	}
}

// ServeHTTP handles GET /healthz
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.service.Loaded() {
		status = "degraded"
	}

	body := map[string]interface{}{
		"status":  status,
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
		"dataset": map[string]interface{}{
			"loaded": h.service.Loaded(),
			"source": h.service.SourceDescription(),
		},
	}
	if loadedAt := h.service.LoadedAt(); !loadedAt.IsZero() {
		body["dataset"].(map[string]interface{})["loaded_at"] = loadedAt
	}

	render.JSON(w, r, body)
}
