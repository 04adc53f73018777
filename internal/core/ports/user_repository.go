package ports

import (
	"context"

	"github.com/taskflow/task-manager/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	// Create inserts the user. Returns domain.ErrUserExists on a duplicate email.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// MarkVerified atomically flags the holder of token as verified and clears
	// the token. Returns domain.ErrInvalidToken when nobody holds it.
	MarkVerified(ctx context.Context, token string) (*domain.User, error)
}
