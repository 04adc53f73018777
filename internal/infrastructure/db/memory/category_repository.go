package memory

import (
	"context"
	"sort"
	"time"

	"github.com/taskflow/task-manager/internal/core/domain"
)

type CategoryRepository struct {
	s *Store
}

func (r *CategoryRepository) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.taken(c.UserID, c.Name, "") {
		return nil, domain.ErrCategoryExists
	}

	clone := *c
	clone.ID = r.s.newID()
	r.s.categories[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *CategoryRepository) ListByOwner(_ context.Context, userID string) ([]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Category, 0)
	for _, c := range r.s.categories {
		if c.UserID == userID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepository) FindByID(_ context.Context, id, userID string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *CategoryRepository) NameTaken(_ context.Context, userID, name, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.taken(userID, name, excludeID), nil
}

func (r *CategoryRepository) Rename(_ context.Context, id, userID, name string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	if r.taken(userID, name, id) {
		return nil, domain.ErrCategoryExists
	}

	c.Name = name
	c.UpdatedAt = time.Now().UTC()
	clone := *c
	return &clone, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok || c.UserID != userID {
		return domain.ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	return nil
}

// taken must be called with the lock held.
func (r *CategoryRepository) taken(userID, name, excludeID string) bool {
	for id, c := range r.s.categories {
		if c.UserID == userID && c.Name == name && id != excludeID {
			return true
		}
	}
	return false
}
