package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-gin-order-service/internal/domains/identity/domain"
	"github.com/Apurer/go-gin-order-service/internal/domains/identity/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository serves a static user directory.
type Repository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewRepository(users ...*domain.User) *Repository {
	r := &Repository{users: make(map[string]*domain.User, len(users))}
	for _, u := range users {
		if u != nil {
			r.users[domain.NormalizeUsername(u.Username)] = u
		}
	}
	return r
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[domain.NormalizeUsername(username)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return user, nil
}
