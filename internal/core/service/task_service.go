package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
	"github.com/taskflow/task-manager/internal/pkg/metrics"
	"github.com/taskflow/task-manager/internal/view"
)

type TaskService struct {
	tasks      ports.TaskRepository
	categories ports.CategoryRepository
	logger     zerolog.Logger
	now        func() time.Time
}

func NewTaskService(tasks ports.TaskRepository, categories ports.CategoryRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:      tasks,
		categories: categories,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a task for input.UserID. The referenced category must belong
// to the same owner.
func (s *TaskService) Create(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" || input.Description == "" || input.DueDate.IsZero() ||
		input.Priority == "" || input.Status == "" || input.CategoryID == "" {
		return nil, domain.ErrMissingFields
	}
	if !input.Priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}
	if !input.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if err := s.checkCategory(ctx, input.CategoryID, input.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.tasks.Create(ctx, &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Status:      input.Status,
		CategoryID:  input.CategoryID,
		UserID:      input.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to create task")
		return nil, err
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(created.Priority)).Inc()
	s.logger.Info().Str("task_id", created.ID).Str("user_id", input.UserID).Msg("task created")
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, id, userID string) (*domain.Task, error) {
	return s.tasks.FindByID(ctx, id, userID)
}

func (s *TaskService) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	return s.tasks.List(ctx, filter)
}

// Patch merges the fields present in patch.
func (s *TaskService) Patch(ctx context.Context, id, userID string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, *patch.CategoryID, userID); err != nil {
			return nil, err
		}
	}

	updated, err := s.tasks.Update(ctx, id, userID, patch)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		metrics.TaskStatusChangesTotal.WithLabelValues(string(*patch.Status)).Inc()
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id, userID string) error {
	if err := s.tasks.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info().Str("task_id", id).Str("user_id", userID).Msg("task deleted")
	return nil
}

// Stats summarises all of the owner's tasks; "due today" uses the UTC date.
func (s *TaskService) Stats(ctx context.Context, userID string) (*ports.TaskStats, error) {
	tasks, err := s.ownerTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	stats := view.Summarize(tasks, s.now())
	return &stats, nil
}

func (s *TaskService) Calendar(ctx context.Context, userID string, month time.Time) ([]ports.CalendarDay, error) {
	tasks, err := s.ownerTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("task calendar: %w", err)
	}
	days := view.Calendar(tasks, month)
	if days == nil {
		days = []ports.CalendarDay{}
	}
	return days, nil
}

func (s *TaskService) ownerTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	found, err := s.tasks.List(ctx, ports.TaskFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, len(found))
	for i, t := range found {
		tasks[i] = *t
	}
	return tasks, nil
}

func (s *TaskService) checkCategory(ctx context.Context, categoryID, userID string) error {
	if _, err := s.categories.FindByID(ctx, categoryID, userID); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return domain.ErrInvalidCategory
		}
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}
