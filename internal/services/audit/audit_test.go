package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/zentask/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/zentask/internal/models"
	services "github.com/magabrotheeeer/zentask/internal/services/audit"
)

func TestRecorder_Handle(t *testing.T) {
	var buf bytes.Buffer
	rec := services.NewRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))

	body, err := json.Marshal(models.TaskEvent{
		Type:       models.EventTaskDeleted,
		TaskID:     11,
		Owner:      "alice",
		SubTasks:   2,
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, rec.Handle(context.Background(), body))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "task event", line["msg"])
	assert.Equal(t, "task.deleted", line["type"])
	assert.EqualValues(t, 11, line["task_id"])
	assert.Equal(t, "alice", line["owner"])
}

func TestRecorder_HandleMalformed(t *testing.T) {
	rec := services.NewRecorder(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"unknown type", `{"type":"task.archived","task_id":1}`},
		{"missing type", `{"task_id":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rec.Handle(context.Background(), []byte(tt.body))
			require.ErrorIs(t, err, rabbitmq.ErrMalformed)
		})
	}
}

func TestRecorder_HandleCanceled(t *testing.T) {
	rec := services.NewRecorder(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rec.Handle(ctx, []byte(`{"type":"task.created"}`))
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, rabbitmq.ErrMalformed)
}
