package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/zentask/internal/http/response"
	"github.com/magabrotheeeer/zentask/internal/lib/sl"
)

// Checker проверяет доступность зависимости.
type Checker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log      *slog.Logger
	checkers map[string]Checker
}

// New создает Handler. Без checkers отвечает всегда ok.
func New(log *slog.Logger, checkers map[string]Checker) *Handler {
	return &Handler{
		log:      log,
		checkers: checkers,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	deps := make(map[string]string, len(h.checkers))
	healthy := true
	for name, c := range h.checkers {
		if err := c.Ping(r.Context()); err != nil {
			h.log.Warn("dependency unavailable", slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			deps[name] = "down"
			healthy = false
			continue
		}
		deps[name] = "up"
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "dependency unavailable",
			Data:   deps,
		})
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status":       "ok",
		"dependencies": deps,
	}))
}
