package ports

import (
	"context"

	"github.com/taskflow/task-manager/internal/core/domain"
)

// CategoryService defines use-case operations for categories.
type CategoryService interface {
	Create(ctx context.Context, userID, name string) (*domain.Category, error)
	List(ctx context.Context, userID string) ([]*domain.Category, error)
	Rename(ctx context.Context, id, userID, name string) (*domain.Category, error)
	Delete(ctx context.Context, id, userID string) error
}
