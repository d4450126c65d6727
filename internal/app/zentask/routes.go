// Package zentask собирает HTTP API задач: маршруты, зависимости и жизненный цикл сервера.
package zentask

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/zentask/docs"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/health"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/task/create"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/task/list"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/task/read"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/task/remove"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/task/update"
	"github.com/magabrotheeeer/zentask/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zentask/internal/lib/metrics"
)

// AuthClient — клиент сервиса аутентификации.
type AuthClient interface {
	register.Service
	login.Service
	middlewarectx.Service
}

// TaskService — операции с задачами.
type TaskService interface {
	list.Service
	create.Service
	read.Service
	update.Service
	remove.Service
}

// Deps — зависимости маршрутов.
type Deps struct {
	Logger      *slog.Logger
	AuthClient  AuthClient
	TaskService TaskService
	AuthLimiter *rate.Limiter
	Registry    *prometheus.Registry
	Checkers    map[string]health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	httpMetrics := metrics.NewHTTPMetrics(d.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		httpMetrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(d.Logger, d.AuthLimiter))
			r.Post("/register", register.New(d.Logger, d.AuthClient).ServeHTTP)
			r.Post("/login", login.New(d.Logger, d.AuthClient).ServeHTTP)
			r.Post("/logout", logout.New(d.Logger).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.AuthClient, d.Logger))
			r.Get("/tasks", list.New(d.Logger, d.TaskService).ServeHTTP)
			r.Post("/tasks", create.New(d.Logger, d.TaskService).ServeHTTP)
			r.Get("/tasks/{id}", read.New(d.Logger, d.TaskService).ServeHTTP)
			r.Put("/tasks/{id}", update.New(d.Logger, d.TaskService).ServeHTTP)
			r.Delete("/tasks/{id}", remove.New(d.Logger, d.TaskService).ServeHTTP)
		})
	})

	r.Get("/healthz", health.New(d.Logger, d.Checkers).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry}))
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
