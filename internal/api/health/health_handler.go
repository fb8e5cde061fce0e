package health

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cineshelf/cineshelf/internal/api"
)

// Pinger is the readiness probe against the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HandlerImpl struct {
	logger  *slog.Logger
	db      Pinger
	started time.Time
}

func NewHandlerImpl(db Pinger, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		db:      db,
		started: time.Now(),
	}
}

// Health handles GET /health.
func (h *HandlerImpl) Health(w http.ResponseWriter, r *http.Request) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.started).String(),
		"environment": env,
	})
}

// Ready handles GET /health/ready. It pings the database pool.
func (h *HandlerImpl) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(r.Context(), "Readiness check failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, "database not reachable")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
