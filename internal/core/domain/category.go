package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryExists       = errors.New("category already exists")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryInUse        = errors.New("cannot delete category that is being used by tasks")
)

// Category groups an owner's tasks. (Name, UserID) is unique.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryInUseError reports how many tasks still reference a category that
// was asked to be deleted.
type CategoryInUseError struct {
	Count int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("%s (%d)", ErrCategoryInUse.Error(), e.Count)
}

func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}
