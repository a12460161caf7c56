package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sakif/portfolio-cms/internal/apperror"
)

// Pinger is anything /healthz should check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the session store is reachable. The remote
// API is probed by the CLI's check command instead: a slow API should not
// take the site out of a load balancer.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeError(w, apperror.Upstream(0, "session store unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
