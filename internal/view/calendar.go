package view

import (
	"time"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
)

// Summarize counts tasks per status and those due on now's calendar day.
func Summarize(tasks []domain.Task, now time.Time) ports.TaskStats {
	stats := ports.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusPending:
			stats.Pending++
		}
		if sameDay(t.DueDate, now) {
			stats.DueToday++
		}
	}
	return stats
}

// DueOn returns the tasks due on day's calendar date, in input order.
func DueOn(tasks []domain.Task, day time.Time) []domain.Task {
	out := make([]domain.Task, 0)
	for _, t := range tasks {
		if sameDay(t.DueDate, day) {
			out = append(out, t)
		}
	}
	return out
}

// Calendar groups the tasks due in month's calendar month by day, days
// ascending. Within a day tasks are ordered by due time.
func Calendar(tasks []domain.Task, month time.Time) []ports.CalendarDay {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)

	var days []ports.CalendarDay
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		due := DueOn(tasks, d)
		if len(due) == 0 {
			continue
		}
		Sort(due, SortDueDate)
		days = append(days, ports.CalendarDay{Date: d, Tasks: due})
	}
	return days
}

// sameDay compares calendar dates in ref's location.
func sameDay(t, ref time.Time) bool {
	y1, m1, d1 := t.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
