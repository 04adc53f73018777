package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
)

type TaskRepository struct {
	s *Store
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clone := *t
	clone.ID = r.s.newID()
	r.s.tasks[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *TaskRepository) FindByID(_ context.Context, id, userID string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

// List applies the same filters the Mongo repository does, newest first.
func (r *TaskRepository) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(f.Search)
	out := make([]*domain.Task, 0)
	for _, t := range r.s.tasks {
		if t.UserID != f.UserID {
			continue
		}
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(t.Priority) != f.Priority {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.s.seq[out[i].ID] > r.s.seq[out[j].ID]
	})
	return out, nil
}

func (r *TaskRepository) Update(_ context.Context, id, userID string, patch domain.TaskPatch) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}

	updated := patch.Apply(*t)
	updated.UpdatedAt = time.Now().UTC()
	*t = updated
	clone := updated
	return &clone, nil
}

func (r *TaskRepository) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	delete(r.s.seq, id)
	return nil
}

func (r *TaskRepository) CountByCategory(_ context.Context, userID, categoryID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, t := range r.s.tasks {
		if t.UserID == userID && t.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}
