package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/zentask/internal/models"
)

const taskColumns = `t.id, t.user_uid, u.username, t.title, t.description, t.status,
			      t.priority, t.category, t.due_date, t.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t       models.Task
		dueDate sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.OwnerUID, &t.OwnerUsername, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.Category, &dueDate, &t.CreatedAt); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	t.SubTasks = []models.SubTask{}
	return &t, nil
}

func nullDate(d *time.Time) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *d, Valid: true}
}

// insertSubTasks вставляет подзадачи в рамках транзакции и возвращает их с присвоенными ID.
func insertSubTasks(ctx context.Context, tx *sql.Tx, taskID int64, subs []models.SubTask) ([]models.SubTask, error) {
	res := make([]models.SubTask, 0, len(subs))
	query := `INSERT INTO subtasks (task_id, title, is_done)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	for _, st := range subs {
		st.TaskID = taskID
		if err := tx.QueryRowContext(ctx, query, taskID, st.Title, st.IsDone).Scan(&st.ID); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, nil
}

// CreateTask сохраняет задачу вместе с подзадачами в одной транзакции.
// Владелец задаётся полем OwnerUID.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	const op = "storage.CreateTask"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rollback(tx)

	query := `INSERT INTO tasks (user_uid, title, description, status, priority, category, due_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at`
	if err = tx.QueryRowContext(ctx, query,
		task.OwnerUID, task.Title, task.Description, string(task.Status), string(task.Priority),
		task.Category, nullDate(task.DueDate)).Scan(&task.ID, &task.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	task.SubTasks, err = insertSubTasks(ctx, tx, task.ID, task.SubTasks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &task, nil
}

// GetTask возвращает задачу с подзадачами и username владельца.
func (s *Storage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	const op = "storage.GetTask"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks t
			  JOIN users u ON u.uid = t.user_uid
			  WHERE t.id = $1`
	task, err := scanTask(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, task_id, title, is_done FROM subtasks WHERE task_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var st models.SubTask
		if err = rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.IsDone); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		task.SubTasks = append(task.SubTasks, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

// ListTasksByOwner возвращает все задачи пользователя по возрастанию ID.
func (s *Storage) ListTasksByOwner(ctx context.Context, ownerUID string) ([]*models.Task, error) {
	const op = "storage.ListTasksByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks t
			  JOIN users u ON u.uid = t.user_uid
			  WHERE t.user_uid = $1
			  ORDER BY t.id`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Task{}
	byID := make(map[int64]*models.Task)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, task)
		byID[task.ID] = task
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(result) == 0 {
		return result, nil
	}

	subRows, err := s.DB.QueryContext(ctx, `SELECT s.id, s.task_id, s.title, s.is_done
			  FROM subtasks s
			  JOIN tasks t ON t.id = s.task_id
			  WHERE t.user_uid = $1
			  ORDER BY s.id`, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = subRows.Close()
	}()
	for subRows.Next() {
		var st models.SubTask
		if err = subRows.Scan(&st.ID, &st.TaskID, &st.Title, &st.IsDone); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if task, ok := byID[st.TaskID]; ok {
			task.SubTasks = append(task.SubTasks, st)
		}
	}
	if err = subRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateTask заменяет скалярные поля задачи и весь набор подзадач в одной транзакции.
// Владелец и дата создания не меняются.
func (s *Storage) UpdateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	const op = "storage.UpdateTask"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rollback(tx)

	query := `UPDATE tasks
			  SET title = $1, description = $2, status = $3, priority = $4,
			      category = $5, due_date = $6
			  WHERE id = $7
			  RETURNING user_uid, created_at`
	err = tx.QueryRowContext(ctx, query,
		task.Title, task.Description, string(task.Status), string(task.Priority), task.Category,
		nullDate(task.DueDate), task.ID).Scan(&task.OwnerUID, &task.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = $1`, task.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	task.SubTasks, err = insertSubTasks(ctx, tx, task.ID, task.SubTasks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &task, nil
}

// RemoveTask удаляет задачу вместе с подзадачами в одной транзакции.
func (s *Storage) RemoveTask(ctx context.Context, id int64) error {
	const op = "storage.RemoveTask"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rollback(tx)

	if _, err = tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrTaskNotFound)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
