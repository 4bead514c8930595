package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthHandler exposes Kubernetes-style liveness and readiness endpoints.
type HealthHandler struct {
	redis redis.Cmdable
}

func NewHealthHandler(redis redis.Cmdable) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// Live reports OK while the process serves requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready checks Redis when it backs idempotency; without Redis the service
// is ready as soon as it serves.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.redis == nil {
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ready", "redis": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		RespondError(w, r, http.StatusServiceUnavailable, "health/redis-unavailable", "redis unavailable")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ready", "redis": "ok"})
}
