package api

import (
	"net/http"

	"github.com/docchat/docchat/internal/rag"
)

// healthHandler serves liveness and readiness probes.
type healthHandler struct {
	engine *rag.Engine
}

// liveness returns 200 OK if the process is alive.
func (h *healthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readiness returns 200 OK once the application is wired. Document
// grounding availability is reported but does not fail the probe; the
// service answers without grounding when the embedder is absent.
func (h *healthHandler) readiness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"grounding": h.engine.Available(),
	})
}
