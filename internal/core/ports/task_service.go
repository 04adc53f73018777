package ports

import (
	"context"
	"time"

	"github.com/taskflow/task-manager/internal/core/domain"
)

// CreateTaskInput is the DTO passed from the transport layer to TaskService.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    domain.Priority
	Status      domain.TaskStatus
	CategoryID  string
	UserID      string
}

// TaskStats summarises an owner's tasks for the dashboard.
type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
	DueToday   int `json:"dueToday"`
}

// CalendarDay groups the tasks due on one calendar day.
type CalendarDay struct {
	Date  time.Time     `json:"date"`
	Tasks []domain.Task `json:"tasks"`
}

// TaskService defines use-case operations for tasks.
type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, id, userID string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Patch(ctx context.Context, id, userID string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id, userID string) error
	Stats(ctx context.Context, userID string) (*TaskStats, error)
	// Calendar returns the days of month (any instant inside it) that have tasks due.
	Calendar(ctx context.Context, userID string, month time.Time) ([]CalendarDay, error)
}
