package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/zentask/internal/models"
)

func newTask(ownerUID, title string, subs ...string) models.Task {
	t := models.Task{
		Title:    title,
		Status:   models.StatusTodo,
		OwnerUID: ownerUID,
	}
	for _, s := range subs {
		t.SubTasks = append(t.SubTasks, models.SubTask{Title: s})
	}
	return t
}

func TestStorage_CreateAndGetTask(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	aliceUID := createUser(t, storage, "alice")

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	draft := newTask(aliceUID, "Buy milk", "Oat", "Soy")
	draft.Priority = models.PriorityHigh
	draft.Category = "home"
	draft.DueDate = &due

	created, err := storage.CreateTask(ctx, draft)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	require.Len(t, created.SubTasks, 2)
	for _, st := range created.SubTasks {
		assert.NotZero(t, st.ID)
		assert.Equal(t, created.ID, st.TaskID)
	}

	got, err := storage.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "alice", got.OwnerUsername)
	assert.Equal(t, aliceUID, got.OwnerUID)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, "home", got.Category)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-03-01", got.DueDate.Format(models.DateLayout))
	assert.Equal(t, created.SubTasks, got.SubTasks)

	_, err = storage.GetTask(ctx, created.ID+1000)
	require.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestStorage_ListTasksByOwner(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	aliceUID := createUser(t, storage, "alice")
	bobUID := createUser(t, storage, "bob")

	first, err := storage.CreateTask(ctx, newTask(aliceUID, "first", "a"))
	require.NoError(t, err)
	_, err = storage.CreateTask(ctx, newTask(bobUID, "bob's", "b"))
	require.NoError(t, err)
	second, err := storage.CreateTask(ctx, newTask(aliceUID, "second"))
	require.NoError(t, err)

	tasks, err := storage.ListTasksByOwner(ctx, aliceUID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)
	assert.Len(t, tasks[0].SubTasks, 1)
	assert.Empty(t, tasks[1].SubTasks)
	for _, task := range tasks {
		assert.Equal(t, "alice", task.OwnerUsername)
	}

	carolUID := createUser(t, storage, "carol")
	tasks, err = storage.ListTasksByOwner(ctx, carolUID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestStorage_UpdateTask(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	aliceUID := createUser(t, storage, "alice")

	created, err := storage.CreateTask(ctx, newTask(aliceUID, "Buy milk", "Oat", "Soy"))
	require.NoError(t, err)

	upd := newTask("", "Buy oat milk", "Oat only")
	upd.ID = created.ID
	upd.Status = models.StatusDone
	upd.SubTasks[0].ID = created.SubTasks[0].ID

	updated, err := storage.UpdateTask(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, aliceUID, updated.OwnerUID, "owner is never reassigned")
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
	require.Len(t, updated.SubTasks, 1)
	assert.NotEqual(t, created.SubTasks[0].ID, updated.SubTasks[0].ID, "sub-items are recreated")

	got, err := storage.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Nil(t, got.DueDate)
	require.Len(t, got.SubTasks, 1)
	assert.Equal(t, "Oat only", got.SubTasks[0].Title)
	assert.Equal(t, 1, countRows(t, storage, `SELECT COUNT(*) FROM subtasks WHERE task_id = $1`, created.ID))

	upd.ID = created.ID + 1000
	_, err = storage.UpdateTask(ctx, upd)
	require.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestStorage_RemoveTask(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	aliceUID := createUser(t, storage, "alice")

	created, err := storage.CreateTask(ctx, newTask(aliceUID, "Buy milk", "Oat", "Soy"))
	require.NoError(t, err)

	require.NoError(t, storage.RemoveTask(ctx, created.ID))
	assert.Equal(t, 0, countRows(t, storage, `SELECT COUNT(*) FROM tasks WHERE id = $1`, created.ID))
	assert.Equal(t, 0, countRows(t, storage, `SELECT COUNT(*) FROM subtasks WHERE task_id = $1`, created.ID))

	err = storage.RemoveTask(ctx, created.ID)
	require.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestStorage_CreateTaskRollsBack(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	aliceUID := createUser(t, storage, "alice")

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	_, err := storage.CreateTask(ctx, newTask(aliceUID, "ok", string(long)))
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, storage, `SELECT COUNT(*) FROM tasks`))
}
