package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/magabrotheeeer/zentask/internal/models"
)

// fakeStore — хранилище пользователей и задач в памяти
type fakeStore struct {
	mu sync.RWMutex

	nextTaskID int64
	nextSubID  int64

	users map[string]models.User
	tasks map[int64]models.Task

	updates int
	removes int
}

func newFakeStore(usernames ...string) *fakeStore {
	db := &fakeStore{
		nextTaskID: 1,
		nextSubID:  1,
		users:      make(map[string]models.User),
		tasks:      make(map[int64]models.Task),
	}
	for _, name := range usernames {
		db.users[name] = models.User{UUID: "uid-" + name, Username: name, PasswordHash: "hash"}
	}
	return db
}

func cloneTask(t models.Task) models.Task {
	out := t
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	out.SubTasks = append([]models.SubTask{}, t.SubTasks...)
	return out
}

func (db *fakeStore) usernameOf(uid string) string {
	for _, u := range db.users {
		if u.UUID == uid {
			return u.Username
		}
	}
	return ""
}

func (db *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[username]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (db *fakeStore) GetTask(_ context.Context, id int64) (*models.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	out := cloneTask(t)
	out.OwnerUsername = db.usernameOf(t.OwnerUID)
	return &out, nil
}

func (db *fakeStore) ListTasksByOwner(_ context.Context, ownerUID string) ([]*models.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	res := []*models.Task{}
	for _, t := range db.tasks {
		if t.OwnerUID != ownerUID {
			continue
		}
		out := cloneTask(t)
		out.OwnerUsername = db.usernameOf(t.OwnerUID)
		res = append(res, &out)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (db *fakeStore) assignSubIDs(taskID int64, subs []models.SubTask) []models.SubTask {
	out := make([]models.SubTask, 0, len(subs))
	for _, st := range subs {
		st.ID = db.nextSubID
		st.TaskID = taskID
		db.nextSubID++
		out = append(out, st)
	}
	return out
}

func (db *fakeStore) CreateTask(_ context.Context, task models.Task) (*models.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	task.ID = db.nextTaskID
	db.nextTaskID++
	task.CreatedAt = time.Now()
	task.SubTasks = db.assignSubIDs(task.ID, task.SubTasks)
	db.tasks[task.ID] = cloneTask(task)

	out := cloneTask(task)
	return &out, nil
}

func (db *fakeStore) UpdateTask(_ context.Context, task models.Task) (*models.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	current, ok := db.tasks[task.ID]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	db.updates++
	task.OwnerUID = current.OwnerUID
	task.CreatedAt = current.CreatedAt
	task.SubTasks = db.assignSubIDs(task.ID, task.SubTasks)
	db.tasks[task.ID] = cloneTask(task)

	out := cloneTask(task)
	return &out, nil
}

func (db *fakeStore) RemoveTask(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tasks[id]; !ok {
		return models.ErrTaskNotFound
	}
	db.removes++
	delete(db.tasks, id)
	return nil
}

func (db *fakeStore) subTaskCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	n := 0
	for _, t := range db.tasks {
		n += len(t.SubTasks)
	}
	return n
}

// pausingStore останавливает первый ListTasksByOwner после чтения из fakeStore,
// пока тест не закроет release.
type pausingStore struct {
	*fakeStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newPausingStore(db *fakeStore) *pausingStore {
	return &pausingStore{fakeStore: db, read: make(chan struct{}), release: make(chan struct{})}
}

func (p *pausingStore) ListTasksByOwner(ctx context.Context, ownerUID string) ([]*models.Task, error) {
	tasks, err := p.fakeStore.ListTasksByOwner(ctx, ownerUID)
	p.once.Do(func() {
		close(p.read)
		<-p.release
	})
	return tasks, err
}
