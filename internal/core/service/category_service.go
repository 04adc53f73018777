package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
)

// CategoryService enforces per-owner name uniqueness and the in-use guard on delete.
//
// Rename and Delete check, then mutate, without a transaction: a concurrent
// request can slip between the two steps.
type CategoryService struct {
	categories ports.CategoryRepository
	tasks      ports.TaskRepository
	logger     zerolog.Logger
}

func NewCategoryService(categories ports.CategoryRepository, tasks ports.TaskRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{categories: categories, tasks: tasks, logger: logger}
}

func (s *CategoryService) Create(ctx context.Context, userID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrCategoryNameRequired
	}

	taken, err := s.categories.NameTaken(ctx, userID, name, "")
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	if taken {
		return nil, domain.ErrCategoryExists
	}

	now := time.Now().UTC()
	created, err := s.categories.Create(ctx, &domain.Category{
		Name:      name,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", created.ID).Str("user_id", userID).Msg("category created")
	return created, nil
}

// List returns the owner's categories ordered by name.
func (s *CategoryService) List(ctx context.Context, userID string) ([]*domain.Category, error) {
	return s.categories.ListByOwner(ctx, userID)
}

func (s *CategoryService) Rename(ctx context.Context, id, userID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrCategoryNameRequired
	}

	if _, err := s.categories.FindByID(ctx, id, userID); err != nil {
		return nil, err
	}

	taken, err := s.categories.NameTaken(ctx, userID, name, id)
	if err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	if taken {
		return nil, domain.ErrCategoryExists
	}

	return s.categories.Rename(ctx, id, userID, name)
}

// Delete removes the category unless one of the owner's tasks still references it.
func (s *CategoryService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.categories.FindByID(ctx, id, userID); err != nil {
		return err
	}

	n, err := s.tasks.CountByCategory(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n > 0 {
		return &domain.CategoryInUseError{Count: n}
	}

	if err := s.categories.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info().Str("category_id", id).Str("user_id", userID).Msg("category deleted")
	return nil
}
