package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/m04kA/SMC-ScoringAPI/internal/api/handlers"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	deps   map[string]Pinger
	logger Logger
}

// NewHandler deps имя зависимости -> проверка доступности
func NewHandler(deps map[string]Pinger, logger Logger) *Handler {
	return &Handler{
		deps:   deps,
		logger: logger,
	}
}

// Handle GET /health
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.deps[name].Ping(ctx); err != nil {
			h.logger.Warn("Health check: %s unavailable: %v", name, err)
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	response := map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}
	if status != http.StatusOK {
		response["status"] = "unhealthy"
	}

	handlers.RespondJSON(w, status, response)
}
