// Package services содержит логику регистрации пользователей, входа и проверки сессионных токенов.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/zentask/internal/lib/jwt"
	"github.com/magabrotheeeer/zentask/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Hasher описывает одностороннее хэширование паролей.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// dummyPassword хэшируется один раз и используется для сравнения,
// когда пользователь не найден.
const dummyPassword = "zentask-dummy-password"

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	hasher   Hasher
	jwtMaker jwt.Maker

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, hasher Hasher, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя. Занятое имя, в том числе при гонке
// двух одновременных регистраций, возвращает models.ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "services.auth.Register"
	if strings.TrimSpace(username) == "" || rawPassword == "" {
		return "", fmt.Errorf("%s: %w", op, models.ErrEmptyCredentials)
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return "", fmt.Errorf("%s: %w", op, models.ErrUsernameTaken)
	case !errors.Is(err, models.ErrUserNotFound):
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.RegisterUser(ctx, models.User{
		Username:     username,
		PasswordHash: hashed,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и выпускает JWT.
// Отсутствующий пользователь и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, time.Time, error) {
	const op = "services.auth.Login"
	if username == "" || rawPassword == "" {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrUserNotFound) {
		_ = s.hasher.Compare(s.dummy(), rawPassword)
		return "", time.Time{}, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	token, expiresAt, err := s.jwtMaker.GenerateToken(user.Username)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, expiresAt, nil
}

// ValidateToken проверяет подпись и срок действия JWT и возвращает username.
func (s *AuthService) ValidateToken(_ context.Context, token string) (string, error) {
	const op = "services.auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, models.ErrInvalidToken, err)
	}
	return claims.Username, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummyPassword)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
