// Package notify implements ports.Notifier for the terminal and for logs.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskflow/task-manager/internal/core/ports"
)

var (
	_ ports.Notifier = (*Terminal)(nil)
	_ ports.Notifier = Log{}
)

// Terminal prints one line per notification, e.g. "✓ Task updated: ...".
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Success(title, description string) {
	t.write("✓", title, description)
}

func (t *Terminal) Error(title, description string) {
	t.write("✗", title, description)
}

func (t *Terminal) write(mark, title, description string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if description == "" {
		fmt.Fprintf(t.out, "%s %s\n", mark, title)
		return
	}
	fmt.Fprintf(t.out, "%s %s: %s\n", mark, title, description)
}

// Log routes notifications to a zerolog logger: success at info, error at error.
type Log struct {
	Logger zerolog.Logger
}

func (l Log) Success(title, description string) {
	l.Logger.Info().Str("description", description).Msg(title)
}

func (l Log) Error(title, description string) {
	l.Logger.Error().Str("description", description).Msg(title)
}
