package hub

import (
	"sync"
	"time"

	"grace/internal/types"

	"github.com/google/uuid"
)

// Log is the append-only conversation log: user turns, assistant turns,
// system-surfaced entities, and command results, in arrival order. Entries
// are never reordered or mutated after insertion.
type Log struct {
	mu     sync.RWMutex
	events []types.ConversationEvent
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// Append stamps the event with an id and arrival time (unless already set)
// and appends it. Returns the stored event.
func (l *Log) Append(event types.ConversationEvent) types.ConversationEvent {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
	return event
}

// Events returns a copy of the log from the given offset. The copy keeps
// callers from aliasing the internal slice.
func (l *Log) Events(offset int) []types.ConversationEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if offset < 0 || offset > len(l.events) {
		offset = len(l.events)
	}
	out := make([]types.ConversationEvent, len(l.events)-offset)
	copy(out, l.events[offset:])
	return out
}

// Len returns the number of logged events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
