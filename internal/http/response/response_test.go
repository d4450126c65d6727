package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/zentask/internal/http/response"
	"github.com/magabrotheeeer/zentask/internal/lib/validate"
	"github.com/magabrotheeeer/zentask/internal/models"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", fmt.Errorf("op: %w", models.ErrTaskNotFound), http.StatusNotFound, "task not found"},
		{"foreign task", fmt.Errorf("op: %w", models.ErrUnauthorized), http.StatusNotFound, "task not found"},
		{"invalid task", fmt.Errorf("services.Create: %w", fmt.Errorf("%w: title is empty", models.ErrInvalidTask)),
			http.StatusUnprocessableEntity, "invalid task: title is empty"},
		{"username taken", models.ErrUsernameTaken, http.StatusConflict, "username already taken"},
		{"bad credentials", models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"bad token", models.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
		{"user gone", models.ErrUserNotFound, http.StatusUnauthorized, "unauthorized"},
		{"empty credentials", models.ErrEmptyCredentials, http.StatusUnprocessableEntity, models.ErrEmptyCredentials.Error()},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := response.FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, response.StatusError, body.Status)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestValidationError(t *testing.T) {
	type req struct {
		Title    string `validate:"required"`
		Priority string `validate:"omitempty,oneof=LOW HIGH"`
		DueDate  string `validate:"omitempty,datetime=2006-01-02"`
	}

	err := validate.New().Struct(req{Priority: "URGENT", DueDate: "01-2024"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	resp := response.ValidationError(verrs)
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Title is a required field")
	assert.Contains(t, resp.Error, "field Priority must be one of [LOW HIGH]")
	assert.Contains(t, resp.Error, "field DueDate can contain only date in format 2006-01-02")
}
