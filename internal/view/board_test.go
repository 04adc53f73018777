package view

import (
	"context"
	"errors"
	"testing"

	"github.com/taskflow/task-manager/internal/core/domain"
)

type stubUpdater struct {
	err   error
	calls int
}

func (s *stubUpdater) UpdateTaskStatus(_ context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Task{ID: id, Status: status}, nil
}

type note struct{ kind, title, description string }

type recordingNotifier struct {
	notes []note
}

func (r *recordingNotifier) Success(title, description string) {
	r.notes = append(r.notes, note{"success", title, description})
}

func (r *recordingNotifier) Error(title, description string) {
	r.notes = append(r.notes, note{"error", title, description})
}

func statusOf(b *Board, id string) domain.TaskStatus {
	for _, t := range b.Tasks() {
		if t.ID == id {
			return t.Status
		}
	}
	return ""
}

func TestBoard_ChangeStatus_Success(t *testing.T) {
	remote := &stubUpdater{}
	notes := &recordingNotifier{}
	b := NewBoard(sample(), remote, notes)

	if err := b.ChangeStatus(context.Background(), "1", domain.StatusCompleted); err != nil {
		t.Fatalf("change status: %v", err)
	}

	if remote.calls != 1 {
		t.Fatalf("remote calls = %d", remote.calls)
	}
	if got := statusOf(b, "1"); got != domain.StatusCompleted {
		t.Fatalf("local status = %q", got)
	}
	if len(notes.notes) != 1 || notes.notes[0].kind != "success" || notes.notes[0].title != "Task updated" {
		t.Fatalf("notifications = %+v", notes.notes)
	}
}

func TestBoard_ChangeStatus_FailureLeavesState(t *testing.T) {
	remote := &stubUpdater{err: errors.New("api: 500 internal server error")}
	notes := &recordingNotifier{}
	b := NewBoard(sample(), remote, notes)
	before := b.Tasks()

	if err := b.ChangeStatus(context.Background(), "1", domain.StatusCompleted); err == nil {
		t.Fatal("expected error")
	}

	if got := statusOf(b, "1"); got != domain.StatusPending {
		t.Fatalf("local status changed to %q", got)
	}
	if len(b.Tasks()) != len(before) {
		t.Fatal("collection changed")
	}
	if len(notes.notes) != 1 || notes.notes[0].kind != "error" || notes.notes[0].title != "Update failed" {
		t.Fatalf("notifications = %+v", notes.notes)
	}
}

func TestBoard_CopiesInput(t *testing.T) {
	in := sample()
	b := NewBoard(in, &stubUpdater{}, &recordingNotifier{})

	in[0].Status = domain.StatusCompleted
	if got := statusOf(b, "1"); got != domain.StatusPending {
		t.Fatal("board shares the caller's slice")
	}

	view := b.View(Filter{Status: "pending"})
	if len(view) != 2 {
		t.Fatalf("view = %v", ids(view))
	}
}
