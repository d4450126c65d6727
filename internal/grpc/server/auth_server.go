// Package server реализует gRPC-сервер для авторизационного сервиса.
//
// AuthServer обрабатывает gRPC-запросы регистрации, входа и валидации JWT токенов.
// Логирует операции и ошибки, делегирует бизнес-логику AuthService.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/magabrotheeeer/zentask/internal/grpc/authpb"
	"github.com/magabrotheeeer/zentask/internal/lib/sl"
	"github.com/magabrotheeeer/zentask/internal/models"
)

// AuthService — бизнес-логика авторизации, которую обслуживает сервер.
type AuthService interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error)
	ValidateToken(ctx context.Context, token string) (string, error)
}

// AuthServer реализует gRPC-сервис авторизации
type AuthServer struct {
	authpb.UnimplementedAuthServiceServer
	authService AuthService
	log         *slog.Logger
}

// NewAuthServer создает новый экземпляр AuthServer с указанным сервисом аутентификации и логгером.
func NewAuthServer(authService AuthService, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		authService: authService,
		log:         logger,
	}
}

// Register создает нового пользователя
func (s *AuthServer) Register(ctx context.Context, req *authpb.RegisterRequest) (*emptypb.Empty, error) {
	log := s.log.With(slog.String("op", "grpc.Register"), slog.String("username", req.Username))

	if req.Username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}

	uid, err := s.authService.Register(ctx, req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, models.ErrUsernameTaken) {
			log.Error("register failed", sl.Err(err))
		}
		return nil, toStatus(err)
	}
	log.Info("user registered", slog.String("uid", uid))
	return &emptypb.Empty{}, nil
}

// Login проверяет пользователя и выпускает JWT
func (s *AuthServer) Login(ctx context.Context, req *authpb.LoginRequest) (*authpb.LoginResponse, error) {
	log := s.log.With(slog.String("op", "grpc.Login"), slog.String("username", req.Username))

	if req.Username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}

	token, expiresAt, err := s.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			log.Info("login rejected")
		} else {
			log.Error("login failed", sl.Err(err))
		}
		return nil, toStatus(err)
	}

	return &authpb.LoginResponse{
		Token:     token,
		ExpiresAt: timestamppb.New(expiresAt),
	}, nil
}

// ValidateToken проверяет JWT и возвращает username владельца
func (s *AuthServer) ValidateToken(ctx context.Context, req *authpb.ValidateTokenRequest) (*authpb.ValidateTokenResponse, error) {
	if req.Token == "" {
		return nil, status.Error(codes.Unauthenticated, "token is required")
	}

	username, err := s.authService.ValidateToken(ctx, req.Token)
	if err != nil {
		s.log.Debug("invalid token", slog.String("op", "grpc.ValidateToken"), sl.Err(err))
		return nil, toStatus(err)
	}

	return &authpb.ValidateTokenResponse{
		Username: username,
		Valid:    true,
	}, nil
}

// toStatus переводит доменные ошибки в gRPC-коды.
func toStatus(err error) error {
	switch {
	case errors.Is(err, models.ErrEmptyCredentials):
		return status.Error(codes.InvalidArgument, models.ErrEmptyCredentials.Error())
	case errors.Is(err, models.ErrUsernameTaken):
		return status.Error(codes.AlreadyExists, models.ErrUsernameTaken.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, models.ErrInvalidCredentials.Error())
	case errors.Is(err, models.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, models.ErrInvalidToken.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
