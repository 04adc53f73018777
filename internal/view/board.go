package view

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
)

// StatusUpdater performs the remote status patch of a task.
type StatusUpdater interface {
	UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error)
}

// Board holds an owner's task collection locally. Mutations go to the server
// first; the local copy changes only once the server confirmed them.
// Concurrent ChangeStatus calls are not serialised against each other.
type Board struct {
	mu     sync.RWMutex
	tasks  []domain.Task
	remote StatusUpdater
	notify ports.Notifier
}

// NewBoard copies tasks into a new Board.
func NewBoard(tasks []domain.Task, remote StatusUpdater, notify ports.Notifier) *Board {
	return &Board{
		tasks:  slices.Clone(tasks),
		remote: remote,
		notify: notify,
	}
}

// Tasks returns a snapshot of the local collection.
func (b *Board) Tasks() []domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.tasks)
}

// View runs the pipeline over the current snapshot.
func (b *Board) View(f Filter) []domain.Task {
	return Apply(b.Tasks(), f)
}

// ChangeStatus patches the task's status on the server and, on success only,
// in the local collection. Failures leave local state untouched.
func (b *Board) ChangeStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	if _, err := b.remote.UpdateTaskStatus(ctx, id, status); err != nil {
		b.notify.Error("Update failed", "Failed to update task status. Please try again.")
		return fmt.Errorf("change status of %s: %w", id, err)
	}

	b.mu.Lock()
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			b.tasks[i].Status = status
		}
	}
	b.mu.Unlock()

	b.notify.Success("Task updated", "Task status has been updated successfully.")
	return nil
}
