// Package audit собирает воркер, который читает очередь аудита задач.
package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/zentask/internal/config"
	"github.com/magabrotheeeer/zentask/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/zentask/internal/lib/sl"
	auditservices "github.com/magabrotheeeer/zentask/internal/services/audit"
)

type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	recorder *auditservices.Recorder
	workers  int
	logger   *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQ.URL == "" {
		return nil, errors.New("app.audit.New: rabbitmq url is empty")
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetTaskAuditQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err = ch.Qos(cfg.AuditWorkers, 0, false); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &App{
		conn:     conn,
		ch:       ch,
		recorder: auditservices.NewRecorder(logger),
		workers:  cfg.AuditWorkers,
		logger:   logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}()

	a.logger.Info("audit consumer started", slog.String("queue", rabbitmq.AuditQueueName), slog.Int("workers", a.workers))
	return rabbitmq.ConsumeMessages(ctx, a.logger, a.ch, rabbitmq.AuditQueueName, a.workers, a.recorder.Handle)
}
