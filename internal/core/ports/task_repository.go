package ports

import (
	"context"

	"github.com/taskflow/task-manager/internal/core/domain"
)

// TaskFilter carries the query parameters for listing tasks.
// UserID is always enforced; the rest are optional and ANDed together.
type TaskFilter struct {
	UserID     string
	Status     string // exact match
	Priority   string // exact match
	CategoryID string // exact match
	Search     string // case-insensitive substring on title or description
}

// TaskRepository defines persistence for tasks. Lookups use the (id, owner)
// pair so that foreign tasks are indistinguishable from missing ones.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id, userID string) (*domain.Task, error)
	// List returns matching tasks, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, id, userID string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id, userID string) error
	CountByCategory(ctx context.Context, userID, categoryID string) (int64, error)
}
