package response

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/zentask/internal/models"
)

// FromError сопоставляет доменную ошибку с HTTP-статусом и телом ответа.
// Чужая задача и отсутствующая задача неразличимы для клиента.
func FromError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, models.ErrTaskNotFound), errors.Is(err, models.ErrUnauthorized):
		return http.StatusNotFound, Error(models.ErrTaskNotFound.Error())
	case errors.Is(err, models.ErrInvalidTask):
		return http.StatusUnprocessableEntity, Error(unwrapMessage(err))
	case errors.Is(err, models.ErrEmptyCredentials):
		return http.StatusUnprocessableEntity, Error(models.ErrEmptyCredentials.Error())
	case errors.Is(err, models.ErrUsernameTaken):
		return http.StatusConflict, Error(models.ErrUsernameTaken.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error(models.ErrInvalidCredentials.Error())
	case errors.Is(err, models.ErrInvalidToken), errors.Is(err, models.ErrUserNotFound):
		return http.StatusUnauthorized, Error("unauthorized")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, Error("request timed out")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// unwrapMessage отдаёт клиенту текст ошибки валидации без префиксов op.
func unwrapMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, models.ErrInvalidTask.Error()); i >= 0 {
		return msg[i:]
	}
	return models.ErrInvalidTask.Error()
}
