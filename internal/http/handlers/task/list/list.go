// Package list реализует HTTP-обработчик получения списка задач текущего пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/zentask/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zentask/internal/http/response"
	"github.com/magabrotheeeer/zentask/internal/lib/sl"
	"github.com/magabrotheeeer/zentask/internal/models"
)

// Service возвращает задачи владельца.
type Service interface {
	List(ctx context.Context, owner string) ([]*models.Task, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список задач
// @Description Возвращает все задачи текущего пользователя вместе с подзадачами.
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /tasks [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := middlewarectx.UsernameFrom(r.Context())
	if !ok {
		log.Error("username not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	tasks, err := h.service.List(r.Context(), username)
	if err != nil {
		log.Error("failed to list tasks", sl.Err(err))
		status, body := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("tasks listed", slog.Int("count", len(tasks)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tasks": tasks,
	}))
}
