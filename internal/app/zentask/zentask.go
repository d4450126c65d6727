package zentask

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/zentask/internal/cache"
	"github.com/magabrotheeeer/zentask/internal/config"
	"github.com/magabrotheeeer/zentask/internal/grpc/client"
	"github.com/magabrotheeeer/zentask/internal/http/handlers/health"
	"github.com/magabrotheeeer/zentask/internal/lib/metrics"
	"github.com/magabrotheeeer/zentask/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/zentask/internal/lib/sl"
	"github.com/magabrotheeeer/zentask/internal/migrations"
	taskservices "github.com/magabrotheeeer/zentask/internal/services/task"
	"github.com/magabrotheeeer/zentask/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	authClient *client.AuthClient
	amqpConn   *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.zentask.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		logger: logger,
		db:     db,
	}
	checkers := map[string]health.Checker{"postgres": db}

	// Кэш не обязателен: без Redis списки читаются из базы.
	var taskCache taskservices.Cache
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis unavailable, list cache disabled", slog.String("op", op), sl.Err(err))
	} else {
		app.cache = cacheRedis
		taskCache = cacheRedis
		checkers["redis"] = cacheRedis
	}

	var publisher taskservices.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, err
		}
		app.amqpConn = conn
		ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetTaskAuditQueues())
		if err != nil {
			app.close()
			return nil, err
		}
		publisher = rabbitmq.NewEventPublisher(ch, cfg.Exchange)
	} else {
		logger.Info("rabbitmq url is empty, task events are not published")
	}

	authClient, err := client.NewAuthClient(cfg.GRPCAuthAddress)
	if err != nil {
		app.close()
		return nil, err
	}
	app.authClient = authClient

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	taskService := taskservices.NewTaskService(
		logger,
		db,
		db,
		taskCache,
		publisher,
		metrics.NewTaskMetrics(reg),
		taskservices.Settings{
			Statuses: cfg.AllowedStatuses(),
			CacheTTL: cfg.CacheTTL,
		},
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:      logger,
		AuthClient:  authClient,
		TaskService: taskService,
		AuthLimiter: rate.NewLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst),
		Registry:    reg,
		Checkers:    checkers,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает внешние соединения в обратном порядке.
func (a *App) close() {
	if a.authClient != nil {
		if err := a.authClient.Close(); err != nil {
			a.logger.Error("failed to close auth client", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
