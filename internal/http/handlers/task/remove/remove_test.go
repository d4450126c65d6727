package remove

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/zentask/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zentask/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, owner string, id int64) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			id:   "8",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "alice", int64(8)).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"deleted_id":8}}`,
		},
		{
			name: "чужая задача",
			id:   "9",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "alice", int64(9)).
					Return(fmt.Errorf("services.Delete: %w", models.ErrUnauthorized)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"task not found"}`,
		},
		{
			name: "уже удалена",
			id:   "10",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "alice", int64(10)).
					Return(fmt.Errorf("services.Delete: %w", models.ErrTaskNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"task not found"}`,
		},
		{
			name:           "id не число",
			id:             "1.5",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+tt.id, nil)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithUsername(ctx, "alice"))
			rr := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
