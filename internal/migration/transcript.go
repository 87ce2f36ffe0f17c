package migration

import (
	"strings"
	"sync"
	"time"

	"github.com/Seradorr/migrations/internal/log"
)

// Sink receives every transcript line, newline-terminated.
type Sink func(line string)

// transcript timestamps lines, forwards them to the sink and keeps a copy.
type transcript struct {
	mu    sync.Mutex
	lines []string
	sink  Sink
	now   func() time.Time
}

func (t *transcript) write(msg string) {
	msg = strings.TrimRight(msg, "\n")
	line := t.now().UTC().Format(time.RFC3339) + " " + msg

	t.mu.Lock()
	t.lines = append(t.lines, line)
	sink := t.sink
	t.mu.Unlock()

	log.Info(log.CatMigrate, msg)
	if sink != nil {
		sink(line + "\n")
	}
}

func (t *transcript) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *transcript) reset() {
	t.mu.Lock()
	t.lines = nil
	t.mu.Unlock()
}
