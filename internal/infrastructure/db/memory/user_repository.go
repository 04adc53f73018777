package memory

import (
	"context"
	"time"

	"github.com/taskflow/task-manager/internal/core/domain"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}

	clone := *user
	clone.ID = r.s.newID()
	r.s.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) MarkVerified(_ context.Context, token string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			u.IsVerified = true
			u.VerificationToken = ""
			u.UpdatedAt = time.Now().UTC()
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrInvalidToken
}
