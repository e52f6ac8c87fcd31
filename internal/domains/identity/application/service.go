package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Apurer/go-gin-order-service/internal/domains/identity/ports"
)

// Service issues tokens for known accounts and validates tokens it issued.
type Service struct {
	repo   ports.Repository
	tokens ports.TokenIssuer
}

func NewService(repo ports.Repository, tokens ports.TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login checks the password and returns a token whose subject is the
// username as the caller typed it.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", mapLoginError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", mapLoginError(err)
	}
	if !user.CheckPassword(password) {
		return "", mapLoginError(ports.ErrInvalidCredentials)
	}
	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Validate returns the token's subject when signature, expiry and subject check out.
func (s *Service) Validate(_ context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return subject, nil
}

var _ ports.Service = (*Service)(nil)
