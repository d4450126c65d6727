package models

import (
	"slices"
	"strings"
	"time"
)

// Status — статус задачи. Допустимый набор значений задаётся конфигурацией.
type Status string

// Priority — приоритет задачи.
type Priority string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// DateLayout — формат даты дедлайна в JSON.
const DateLayout = "2006-01-02"

// DefaultStatuses возвращает набор статусов по умолчанию.
func DefaultStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// Task — основная модель задачи, используемая в бизнес-логике и хранилище.
type Task struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        Status     `json:"status"`
	Priority      Priority   `json:"priority,omitempty"`
	Category      string     `json:"category,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	OwnerUID      string     `json:"-"`
	OwnerUsername string     `json:"owner"`
	CreatedAt     time.Time  `json:"created_at"`
	SubTasks      []SubTask  `json:"sub_tasks"`
}

// SubTask — пункт чек-листа задачи. Не существует без родительской задачи.
type SubTask struct {
	ID     int64  `json:"id"`
	TaskID int64  `json:"task_id"`
	Title  string `json:"title"`
	IsDone bool   `json:"is_done"`
}

// TaskDraft используется для приёма задачи из JSON-запроса,
// прежде чем конвертировать её в Task. Поле Owner принимается, но всегда игнорируется.
type TaskDraft struct {
	Title       string         `json:"title" validate:"required,max=255"`
	Description string         `json:"description" validate:"max=1000"`
	Status      string         `json:"status" validate:"omitempty,max=32"`
	Priority    string         `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Category    string         `json:"category" validate:"max=100"`
	DueDate     string         `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Owner       string         `json:"owner,omitempty"`
	SubTasks    []SubTaskDraft `json:"sub_tasks" validate:"dive"`
}

// SubTaskDraft — пункт чек-листа из JSON-запроса. ID игнорируется при сохранении.
type SubTaskDraft struct {
	ID     int64  `json:"id,omitempty"`
	Title  string `json:"title" validate:"required,max=255"`
	IsDone bool   `json:"is_done"`
}

// ParseStatus приводит строку к статусу и проверяет, что он входит в allowed.
// Пустая строка означает TODO, а если TODO не разрешён — первый из allowed.
func ParseStatus(raw string, allowed []Status) (Status, bool) {
	if len(allowed) == 0 {
		allowed = DefaultStatuses()
	}
	if strings.TrimSpace(raw) == "" {
		if slices.Contains(allowed, StatusTodo) {
			return StatusTodo, true
		}
		return allowed[0], true
	}
	st := Status(strings.ToUpper(strings.TrimSpace(raw)))
	return st, slices.Contains(allowed, st)
}
