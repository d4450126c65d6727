// Package services содержит обработку потока аудита задач.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/zentask/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/zentask/internal/models"
)

// Recorder пишет события жизненного цикла задач в структурированный журнал.
type Recorder struct {
	log *slog.Logger
}

// NewRecorder создает Recorder.
func NewRecorder(log *slog.Logger) *Recorder {
	return &Recorder{log: log}
}

// Handle разбирает событие и записывает его в журнал.
// Нераспознанные сообщения помечаются rabbitmq.ErrMalformed.
func (r *Recorder) Handle(ctx context.Context, body []byte) error {
	const op = "services.audit.Handle"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var event models.TaskEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w: %v", op, rabbitmq.ErrMalformed, err)
	}
	switch event.Type {
	case models.EventTaskCreated, models.EventTaskUpdated, models.EventTaskDeleted:
	default:
		return fmt.Errorf("%s: %w: unknown event type %q", op, rabbitmq.ErrMalformed, event.Type)
	}

	r.log.Info("task event",
		slog.String("op", op),
		slog.String("type", string(event.Type)),
		slog.Int64("task_id", event.TaskID),
		slog.String("owner", event.Owner),
		slog.Int("sub_tasks", event.SubTasks),
		slog.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
