package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-service/internal/domains/identity/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Repository looks up accounts. Usernames match case-insensitively.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TokenIssuer mints and verifies signed tokens.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Validate(token string) (string, error)
}
