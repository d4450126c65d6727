// Package auth собирает gRPC-сервис аутентификации.
package auth

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/magabrotheeeer/zentask/internal/config"
	"github.com/magabrotheeeer/zentask/internal/grpc/authpb"
	"github.com/magabrotheeeer/zentask/internal/grpc/server"
	"github.com/magabrotheeeer/zentask/internal/lib/jwt"
	"github.com/magabrotheeeer/zentask/internal/lib/password"
	"github.com/magabrotheeeer/zentask/internal/lib/sl"
	"github.com/magabrotheeeer/zentask/internal/migrations"
	authservices "github.com/magabrotheeeer/zentask/internal/services/auth"
	"github.com/magabrotheeeer/zentask/internal/storage/repository"
)

type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *repository.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservices.NewAuthService(db, password.NewHasher(cfg.BcryptCost), jwtMaker)

	lis, err := net.Listen("tcp", cfg.GRPCAuthAddress)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	grpcServer := grpc.NewServer()
	authpb.RegisterAuthServiceServer(grpcServer, server.NewAuthServer(authService, logger))

	return &App{
		grpcServer: grpcServer,
		listener:   lis,
		logger:     logger,
		db:         db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Auth gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	defer func() {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("stopping auth gRPC service gracefully")
		a.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
