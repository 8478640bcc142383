// Package services wires the local repositories and the remote client into
// the operations the CLI exposes.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/newsmarks/internal/client/client"
)

type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	repos  *client.Repositories
}

func NewAuthService(c client.Client, repos *client.Repositories) AuthService {
	return &authService{client: c, repos: repos}
}

func (s *authService) Register(ctx context.Context, username string, password []byte) error {
	if err := s.client.Register(ctx, username, password); err != nil {
		return fmt.Errorf("registration error: %w", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, username string, password []byte) error {
	if err := s.client.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return nil
}

func (s *authService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *authService) Close(ctx context.Context) error {
	if err := s.client.Close(); err != nil {
		return err
	}
	if s.repos != nil && s.repos.DB != nil {
		return s.repos.DB.Close()
	}
	return nil
}
