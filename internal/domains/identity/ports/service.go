package ports

import "context"

// Service exposes credential issuer use cases to adapters.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
}
