// Package services содержит бизнес-логику задач: видимость только владельцу,
// проверку владельца при изменении и замену набора подзадач.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/zentask/internal/lib/sl"
	"github.com/magabrotheeeer/zentask/internal/lib/validate"
	"github.com/magabrotheeeer/zentask/internal/models"
)

// TaskRepository определяет методы для работы с задачами в хранилище.
type TaskRepository interface {
	// GetTask возвращает задачу с подзадачами или ErrTaskNotFound.
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	// ListTasksByOwner возвращает задачи владельца по возрастанию ID.
	ListTasksByOwner(ctx context.Context, ownerUID string) ([]*models.Task, error)
	// CreateTask сохраняет задачу и подзадачи в одной транзакции.
	CreateTask(ctx context.Context, task models.Task) (*models.Task, error)
	// UpdateTask заменяет поля и подзадачи в одной транзакции.
	UpdateTask(ctx context.Context, task models.Task) (*models.Task, error)
	// RemoveTask удаляет задачу вместе с подзадачами.
	RemoveTask(ctx context.Context, id int64) error
}

// UserRepository нужен для разрешения username в UID владельца.
type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Cache описывает методы для кэширования списков задач.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Version возвращает текущую версию ключа.
	Version(ctx context.Context, versionKey string) (int64, error)
	// Bump увеличивает версию ключа.
	Bump(ctx context.Context, versionKey string) error
	// SetIfVersion сохраняет значение, только если версия не менялась.
	SetIfVersion(ctx context.Context, key string, value any, expiration time.Duration, versionKey string, version int64) (bool, error)
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher публикует события аудита задач.
type EventPublisher interface {
	PublishTaskEvent(ctx context.Context, event models.TaskEvent) error
}

// Metrics считает операции по типу и результату.
type Metrics interface {
	IncOperation(operation, result string)
}

// Settings — параметры сервиса из конфига.
type Settings struct {
	Statuses []models.Status
	CacheTTL time.Duration
}

// TaskService реализует операции с задачами от имени аутентифицированного пользователя.
type TaskService struct {
	tasks    TaskRepository
	users    UserRepository
	cache    Cache
	events   EventPublisher
	metrics  Metrics
	validate *validator.Validate
	settings Settings
	log      *slog.Logger
	now      func() time.Time
}

// NewTaskService создает новый экземпляр TaskService. cache, events и metrics
// могут быть nil.
func NewTaskService(
	log *slog.Logger,
	tasks TaskRepository,
	users UserRepository,
	cache Cache,
	events EventPublisher,
	metrics Metrics,
	settings Settings,
) *TaskService {
	if len(settings.Statuses) == 0 {
		settings.Statuses = models.DefaultStatuses()
	}
	if cache == nil {
		cache = noopCache{}
	}
	if events == nil {
		events = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &TaskService{
		tasks:    tasks,
		users:    users,
		cache:    cache,
		events:   events,
		metrics:  metrics,
		validate: validate.New(),
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

func listCacheKey(username string) string {
	return "tasks:" + username
}

func listVersionKey(username string) string {
	return "tasks:" + username + ":version"
}

// List возвращает все задачи владельца. Список кешируется по username.
// Версия списка читается до обращения к хранилищу: если между чтением и записью
// в кеш прошло изменение, кеш не заполняется.
func (s *TaskService) List(ctx context.Context, owner string) ([]*models.Task, error) {
	const op = "services.task.List"
	log := s.log.With(slog.String("op", op), slog.String("owner", owner))

	key := listCacheKey(owner)
	var cached []*models.Task
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("failed to read task list from cache", sl.Err(err))
	}
	if found && err == nil {
		s.metrics.IncOperation("list", "cache_hit")
		return cached, nil
	}

	verKey := listVersionKey(owner)
	version, verErr := s.cache.Version(ctx, verKey)
	if verErr != nil {
		log.Warn("failed to read task list version", sl.Err(verErr))
	}

	user, err := s.users.GetUserByUsername(ctx, owner)
	if err != nil {
		s.metrics.IncOperation("list", resultOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tasks, err := s.tasks.ListTasksByOwner(ctx, user.UUID)
	if err != nil {
		s.metrics.IncOperation("list", resultOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if verErr == nil {
		stored, err := s.cache.SetIfVersion(ctx, key, tasks, s.settings.CacheTTL, verKey, version)
		switch {
		case err != nil:
			log.Warn("failed to cache task list", sl.Err(err))
		case !stored:
			log.Debug("task list changed during read, cache not filled")
		}
	}
	s.metrics.IncOperation("list", "ok")
	return tasks, nil
}

// Get возвращает задачу владельца по ID.
func (s *TaskService) Get(ctx context.Context, owner string, id int64) (*models.Task, error) {
	const op = "services.task.Get"
	task, err := s.loadOwned(ctx, owner, id)
	s.metrics.IncOperation("get", resultOf(err))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

// Create создает задачу от имени owner. Поле владельца в черновике игнорируется.
func (s *TaskService) Create(ctx context.Context, owner string, draft models.TaskDraft) (*models.Task, error) {
	const op = "services.task.Create"
	log := s.log.With(slog.String("op", op), slog.String("owner", owner))

	user, err := s.users.GetUserByUsername(ctx, owner)
	if err != nil {
		s.metrics.IncOperation("create", resultOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	task, err := s.fromDraft(draft)
	if err != nil {
		s.metrics.IncOperation("create", resultOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	task.OwnerUID = user.UUID

	created, err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		s.metrics.IncOperation("create", resultOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created.OwnerUsername = user.Username

	log.Info("task created", slog.Int64("id", created.ID), slog.Int("sub_tasks", len(created.SubTasks)))
	s.afterMutation(ctx, log, models.EventTaskCreated, created)
	s.metrics.IncOperation("create", "ok")
	return created, nil
}

// Update полностью заменяет поля задачи и её подзадачи. Изменять можно только свои задачи.
func (s *TaskService) Update(ctx context.Context, owner string, id int64, draft models.TaskDraft) (*models.Task, error) {
	const op = "services.task.Update"
	log := s.log.With(slog.String("op", op), slog.String("owner", owner), slog.Int64("id", id))

	current, err := s.loadOwned(ctx, owner, id)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			log.Warn("attempt to update foreign task")
		}
		s.metrics.IncOperation("update", resultOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	task, err := s.fromDraft(draft)
	if err != nil {
		s.metrics.IncOperation("update", resultOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	task.ID = current.ID
	task.OwnerUID = current.OwnerUID

	updated, err := s.tasks.UpdateTask(ctx, task)
	if err != nil {
		s.metrics.IncOperation("update", resultOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated.OwnerUsername = current.OwnerUsername

	log.Info("task updated", slog.Int("sub_tasks", len(updated.SubTasks)))
	s.afterMutation(ctx, log, models.EventTaskUpdated, updated)
	s.metrics.IncOperation("update", "ok")
	return updated, nil
}

// Delete удаляет задачу владельца вместе с подзадачами.
func (s *TaskService) Delete(ctx context.Context, owner string, id int64) error {
	const op = "services.task.Delete"
	log := s.log.With(slog.String("op", op), slog.String("owner", owner), slog.Int64("id", id))

	current, err := s.loadOwned(ctx, owner, id)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			log.Warn("attempt to delete foreign task")
		}
		s.metrics.IncOperation("delete", resultOf(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.tasks.RemoveTask(ctx, id); err != nil {
		s.metrics.IncOperation("delete", resultOf(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("task deleted")
	s.afterMutation(ctx, log, models.EventTaskDeleted, current)
	s.metrics.IncOperation("delete", "ok")
	return nil
}

// loadOwned читает задачу из хранилища и сверяет владельца. Кеш не используется.
func (s *TaskService) loadOwned(ctx context.Context, owner string, id int64) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerUsername != owner {
		return nil, models.ErrUnauthorized
	}
	return task, nil
}

// afterMutation поднимает версию списка, сбрасывает кеш и публикует событие.
// Ошибки только логируются.
func (s *TaskService) afterMutation(ctx context.Context, log *slog.Logger, typ models.EventType, task *models.Task) {
	if err := s.cache.Bump(ctx, listVersionKey(task.OwnerUsername)); err != nil {
		log.Warn("failed to bump task list version", sl.Err(err))
	}
	if err := s.cache.Invalidate(ctx, listCacheKey(task.OwnerUsername)); err != nil {
		log.Warn("failed to invalidate task list cache", sl.Err(err))
	}

	event := models.TaskEvent{
		Type:       typ,
		TaskID:     task.ID,
		Owner:      task.OwnerUsername,
		SubTasks:   len(task.SubTasks),
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishTaskEvent(ctx, event); err != nil {
		log.Warn("failed to publish task event", slog.String("type", string(typ)), sl.Err(err))
	}
}

// fromDraft проверяет черновик и строит из него задачу без ID и владельца.
func (s *TaskService) fromDraft(draft models.TaskDraft) (models.Task, error) {
	if err := s.validate.Struct(draft); err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", models.ErrInvalidTask, err)
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return models.Task{}, fmt.Errorf("%w: title is empty", models.ErrInvalidTask)
	}

	status, ok := models.ParseStatus(draft.Status, s.settings.Statuses)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: unknown status %q", models.ErrInvalidTask, draft.Status)
	}

	task := models.Task{
		Title:       title,
		Description: draft.Description,
		Status:      status,
		Priority:    models.Priority(draft.Priority),
		Category:    strings.TrimSpace(draft.Category),
		SubTasks:    make([]models.SubTask, 0, len(draft.SubTasks)),
	}
	if draft.DueDate != "" {
		due, err := time.Parse(models.DateLayout, draft.DueDate)
		if err != nil {
			return models.Task{}, fmt.Errorf("%w: bad due date: %v", models.ErrInvalidTask, err)
		}
		task.DueDate = &due
	}
	for _, st := range draft.SubTasks {
		title := strings.TrimSpace(st.Title)
		if title == "" {
			return models.Task{}, fmt.Errorf("%w: sub-task title is empty", models.ErrInvalidTask)
		}
		task.SubTasks = append(task.SubTasks, models.SubTask{Title: title, IsDone: st.IsDone})
	}
	return task, nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrTaskNotFound):
		return "not_found"
	case errors.Is(err, models.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, models.ErrInvalidTask):
		return "invalid"
	case errors.Is(err, models.ErrUserNotFound):
		return "unknown_user"
	default:
		return "error"
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Version(context.Context, string) (int64, error) { return 0, nil }
func (noopCache) Bump(context.Context, string) error { return nil }
func (noopCache) Invalidate(context.Context, string) error { return nil }
func (noopCache) SetIfVersion(context.Context, string, any, time.Duration, string, int64) (bool, error) {
	return false, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishTaskEvent(context.Context, models.TaskEvent) error { return nil }

type noopMetrics struct{}

func (noopMetrics) IncOperation(string, string) {}
