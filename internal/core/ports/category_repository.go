package ports

import (
	"context"

	"github.com/taskflow/task-manager/internal/core/domain"
)

// CategoryRepository defines persistence for categories. Every lookup is
// scoped by owner: a category owned by someone else is reported as
// domain.ErrCategoryNotFound.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	ListByOwner(ctx context.Context, userID string) ([]*domain.Category, error)
	FindByID(ctx context.Context, id, userID string) (*domain.Category, error)
	// NameTaken reports whether userID owns a category called name other than excludeID.
	NameTaken(ctx context.Context, userID, name, excludeID string) (bool, error)
	Rename(ctx context.Context, id, userID, name string) (*domain.Category, error)
	Delete(ctx context.Context, id, userID string) error
}
