package models

import "time"

// EventType — тип события аудита задачи.
type EventType string

const (
	EventTaskCreated EventType = "task.created"
	EventTaskUpdated EventType = "task.updated"
	EventTaskDeleted EventType = "task.deleted"
)

// TaskEvent публикуется в брокер после успешного изменения задачи.
type TaskEvent struct {
	Type       EventType `json:"type"`
	TaskID     int64     `json:"task_id"`
	Owner      string    `json:"owner"`
	SubTasks   int       `json:"sub_tasks"`
	OccurredAt time.Time `json:"occurred_at"`
}
