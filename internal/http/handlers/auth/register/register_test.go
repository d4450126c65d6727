package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/zentask/internal/models"
)

type AuthClientMock struct {
	mock.Mock
}

func (m *AuthClientMock) Register(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "success",
			body:           `{"username":"alice","password":"pw1"}`,
			callService:    true,
			wantStatusCode: http.StatusCreated,
			wantStatus:     "OK",
		},
		{
			name:           "username taken",
			body:           `{"username":"alice","password":"pw1"}`,
			mockErr:        models.ErrUsernameTaken,
			callService:    true,
			wantStatusCode: http.StatusConflict,
			wantStatus:     "Error",
			wantError:      "username already taken",
		},
		{
			name:           "auth service down",
			body:           `{"username":"alice","password":"pw1"}`,
			mockErr:        errors.New("unavailable"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "internal error",
		},
		{
			name:           "invalid json",
			body:           `not a json`,
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "missing password",
			body:           `{"username":"alice"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Password is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthClientMock)
			if tt.callService {
				authMock.On("Register", mock.Anything, "alice", "pw1").Return(tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), authMock)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader([]byte(tt.body)))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data, ok := got["data"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "alice", data["username"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
