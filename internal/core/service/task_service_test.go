package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
	"github.com/taskflow/task-manager/internal/infrastructure/db/memory"
)

type taskFixture struct {
	svc        *TaskService
	categoryID string
}

func newTaskFixture(t *testing.T) taskFixture {
	t.Helper()
	store := memory.NewStore()
	c, err := store.Categories().Create(context.Background(), &domain.Category{Name: "Work", UserID: "u1"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	svc := NewTaskService(store.Tasks(), store.Categories(), zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return taskFixture{svc: svc, categoryID: c.ID}
}

func (f taskFixture) input(title string, due time.Time, p domain.Priority, s domain.TaskStatus) ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title: title, Description: title + " details", DueDate: due,
		Priority: p, Status: s, CategoryID: f.categoryID, UserID: "u1",
	}
}

func TestTaskService_Create(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	task, err := f.svc.Create(ctx, f.input("Ship release", due, domain.PriorityHigh, domain.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.UserID != "u1" || task.ID == "" || task.CreatedAt.IsZero() {
		t.Fatalf("unexpected task: %+v", task)
	}

	missing := f.input("", due, domain.PriorityHigh, domain.StatusPending)
	if _, err := f.svc.Create(ctx, missing); !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	foreign := f.input("T", due, domain.PriorityLow, domain.StatusPending)
	foreign.UserID = "u2"
	if _, err := f.svc.Create(ctx, foreign); !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestTaskService_PatchOnlyPresentFields(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	before, err := f.svc.Create(ctx, f.input("Ship release", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), domain.PriorityHigh, domain.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := domain.StatusInProgress
	after, err := f.svc.Patch(ctx, before.ID, "u1", domain.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	want := *before
	want.Status = domain.StatusInProgress
	want.UpdatedAt = after.UpdatedAt
	if diff := cmp.Diff(want, *after); diff != "" {
		t.Errorf("patch changed other fields (-want +got):\n%s", diff)
	}

	if _, err := f.svc.Patch(ctx, before.ID, "u2", domain.TaskPatch{Status: &status}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("foreign patch: expected ErrTaskNotFound, got %v", err)
	}

	bogus := "does-not-exist"
	if _, err := f.svc.Patch(ctx, before.ID, "u1", domain.TaskPatch{CategoryID: &bogus}); !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestTaskService_RejectsUnknownEnums(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := f.svc.Create(ctx, f.input("a", due, "urgent", domain.StatusPending)); !errors.Is(err, domain.ErrInvalidPriority) {
		t.Fatalf("create: expected ErrInvalidPriority, got %v", err)
	}
	if _, err := f.svc.Create(ctx, f.input("a", due, domain.PriorityLow, "bogus")); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("create: expected ErrInvalidStatus, got %v", err)
	}

	task, err := f.svc.Create(ctx, f.input("a", due, domain.PriorityLow, domain.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	status := domain.TaskStatus("bogus")
	if _, err := f.svc.Patch(ctx, task.ID, "u1", domain.TaskPatch{Status: &status}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("patch: expected ErrInvalidStatus, got %v", err)
	}
	priority := domain.Priority("urgent")
	if _, err := f.svc.Patch(ctx, task.ID, "u1", domain.TaskPatch{Priority: &priority}); !errors.Is(err, domain.ErrInvalidPriority) {
		t.Fatalf("patch: expected ErrInvalidPriority, got %v", err)
	}

	stored, err := f.svc.Get(ctx, task.ID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.StatusPending || stored.Priority != domain.PriorityLow {
		t.Fatalf("rejected patch was stored: %+v", stored)
	}
}

func TestTaskService_ListFilters(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	f.svc.Create(ctx, f.input("Buy milk", due, domain.PriorityLow, domain.StatusCompleted))
	f.svc.Create(ctx, f.input("Write FOO report", due, domain.PriorityHigh, domain.StatusPending))
	f.svc.Create(ctx, f.input("Call bank", due, domain.PriorityHigh, domain.StatusCompleted))

	cases := []struct {
		name   string
		filter ports.TaskFilter
		want   []string
	}{
		{"all newest first", ports.TaskFilter{UserID: "u1"}, []string{"Call bank", "Write FOO report", "Buy milk"}},
		{"status", ports.TaskFilter{UserID: "u1", Status: "completed"}, []string{"Call bank", "Buy milk"}},
		{"priority and status", ports.TaskFilter{UserID: "u1", Status: "completed", Priority: "high"}, []string{"Call bank"}},
		{"search is case-insensitive", ports.TaskFilter{UserID: "u1", Search: "foo"}, []string{"Write FOO report"}},
		{"other owner", ports.TaskFilter{UserID: "u2"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks, err := f.svc.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			got := make([]string, 0, len(tasks))
			for _, task := range tasks {
				got = append(got, task.Title)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("titles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTaskService_StatsAndCalendar(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	f.svc.Create(ctx, f.input("Today", time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC), domain.PriorityLow, domain.StatusPending))
	f.svc.Create(ctx, f.input("Later", time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), domain.PriorityLow, domain.StatusInProgress))
	f.svc.Create(ctx, f.input("July", time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC), domain.PriorityLow, domain.StatusCompleted))

	stats, err := f.svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := ports.TaskStats{Total: 3, Completed: 1, InProgress: 1, Pending: 1, DueToday: 1}
	if diff := cmp.Diff(want, *stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	days, err := f.svc.Calendar(ctx, "u1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(days) != 2 || days[0].Date.Day() != 1 || days[1].Date.Day() != 20 {
		t.Fatalf("calendar days = %+v", days)
	}

	empty, err := f.svc.Calendar(ctx, "u1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}
