// Package view is the client-side data view over one owner's tasks: the
// search/filter/sort pipeline, dashboard statistics, calendar grouping and
// the status-change action applied to a locally held collection.
//
// Everything here is synchronous and never mutates its input slices.
package view

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taskflow/task-manager/internal/core/domain"
)

// All disables a status, priority or category filter.
const All = "all"

// SortKey selects the ordering of the pipeline output.
type SortKey string

const (
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortTitle    SortKey = "title"
)

// ParseSortKey maps user input to a SortKey, falling back to SortDueDate.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortPriority, SortTitle:
		return SortKey(s)
	default:
		return SortDueDate
	}
}

// Filter holds the pipeline inputs. Empty strings behave like All.
type Filter struct {
	Search   string
	Status   string
	Priority string
	Category string
	Sort     SortKey
}

// Apply runs the pipeline: search, status, priority, category, then a stable sort.
func Apply(tasks []domain.Task, f Filter) []domain.Task {
	needle := strings.ToLower(f.Search)

	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		if !selected(f.Status, string(t.Status)) ||
			!selected(f.Priority, string(t.Priority)) ||
			!selected(f.Category, t.CategoryID) {
			continue
		}
		out = append(out, t)
	}

	Sort(out, f.Sort)
	return out
}

// Sort orders tasks in place. An empty key sorts by due date.
func Sort(tasks []domain.Task, key SortKey) {
	switch key {
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
	case SortTitle:
		// Collators keep per-call buffers; one per sort.
		col := collate.New(language.English)
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			return col.CompareString(a.Title, b.Title)
		})
	case SortDueDate, "":
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			return a.DueDate.Compare(b.DueDate)
		})
	}
}

func selected(want, value string) bool {
	return want == "" || want == All || want == value
}
