package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/zentask/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zentask/internal/models"
)

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, owner string, id int64, draft models.TaskDraft) (*models.Task, error) {
	args := m.Called(ctx, owner, id, draft)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		id             string
		username       string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное обновление задачи",
			id:       "123",
			username: "alice",
			body:     `{"title":"buy oat milk","status":"DONE","sub_tasks":[{"id":9,"title":"go to shop","is_done":true}]}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "alice", int64(123), mock.MatchedBy(func(d models.TaskDraft) bool {
					return d.Title == "buy oat milk" && d.Status == "DONE" && len(d.SubTasks) == 1 && d.SubTasks[0].IsDone
				})).Return(&models.Task{
					ID: 123, Title: "buy oat milk", Status: models.StatusDone, OwnerUsername: "alice",
					SubTasks: []models.SubTask{{ID: 10, TaskID: 123, Title: "go to shop", IsDone: true}},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"sub_tasks":[{"id":10,"task_id":123,"title":"go to shop","is_done":true}]`,
		},
		{
			name:           "некорректный JSON",
			id:             "123",
			username:       "alice",
			body:           "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "ошибка валидации подзадачи",
			id:             "123",
			username:       "alice",
			body:           `{"title":"x","sub_tasks":[{"title":""}]}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Title is a required field`,
		},
		{
			name:           "несуществующая дата",
			id:             "123",
			username:       "alice",
			body:           `{"title":"x","due_date":"2026-13-40"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field DueDate can contain only date in format 2006-01-02`,
		},
		{
			name:           "id не число",
			id:             "abc",
			username:       "alice",
			body:           `{"title":"x"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name:     "чужая задача",
			id:       "123",
			username: "bob",
			body:     `{"title":"x"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "bob", int64(123), mock.Anything).
					Return(nil, fmt.Errorf("services.Update: %w", models.ErrUnauthorized)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"task not found"}`,
		},
		{
			name:     "ошибка хранилища",
			id:       "123",
			username: "alice",
			body:     `{"title":"x"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "alice", int64(123), mock.Anything).
					Return(nil, errors.New("tx aborted")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
		{
			name:           "без авторизации",
			id:             "123",
			body:           `{"title":"x"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/tasks/"+tt.id, strings.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.username != "" {
				ctx = middlewarectx.WithUsername(ctx, tt.username)
			}
			req = req.WithContext(ctx)
			rr := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
