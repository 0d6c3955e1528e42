package repository

import (
	"context"
	"fmt"
	"sync"
)

// MemoryUsersRepository 内存用户Repository（local 模式 / 无 DB 联测用）
type MemoryUsersRepository struct {
	mu      sync.Mutex
	byEmail map[string]User
}

func NewMemoryUsersRepository() *MemoryUsersRepository {
	return &MemoryUsersRepository{byEmail: make(map[string]User)}
}

var _ UsersRepository = (*MemoryUsersRepository)(nil)

func (r *MemoryUsersRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return fmt.Errorf("user %s already exists", user.Email)
	}
	r.byEmail[user.Email] = *user
	return nil
}

func (r *MemoryUsersRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return &u, nil
}
