// Package client реализует gRPC-клиент сервиса авторизации для HTTP API.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zentask/internal/grpc/authpb"
	"github.com/magabrotheeeer/zentask/internal/models"
)

// AuthClient переводит вызовы в gRPC и коды ответов обратно в доменные ошибки.
type AuthClient struct {
	conn   *grpc.ClientConn
	client authpb.AuthServiceClient
}

// NewAuthClient создает клиента для сервиса авторизации по адресу addr.
func NewAuthClient(addr string, opts ...grpc.DialOption) (*AuthClient, error) {
	const op = "client.NewAuthClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthClient{conn: conn, client: authpb.NewAuthServiceClient(conn)}, nil
}

// Close закрывает соединение.
func (a *AuthClient) Close() error {
	return a.conn.Close()
}

// Register регистрирует пользователя.
func (a *AuthClient) Register(ctx context.Context, username, password string) error {
	_, err := a.client.Register(ctx, &authpb.RegisterRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return fromStatus("client.Register", err)
	}
	return nil
}

// Login возвращает токен сессии и момент его истечения.
func (a *AuthClient) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	resp, err := a.client.Login(ctx, &authpb.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", time.Time{}, fromStatus("client.Login", err)
	}
	var expiresAt time.Time
	if resp.ExpiresAt != nil {
		expiresAt = resp.ExpiresAt.AsTime()
	}
	return resp.Token, expiresAt, nil
}

// ValidateToken возвращает username из действительного токена.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (string, error) {
	const op = "client.ValidateToken"
	resp, err := a.client.ValidateToken(ctx, &authpb.ValidateTokenRequest{
		Token: token,
	})
	if err != nil {
		return "", fromStatus(op, err)
	}
	if !resp.Valid || resp.Username == "" {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	return resp.Username, nil
}

func fromStatus(op string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch st.Code() {
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", op, models.ErrUsernameTaken)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w", op, models.ErrEmptyCredentials)
	case codes.Unauthenticated:
		if op == "client.ValidateToken" {
			return fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
		}
		return fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
