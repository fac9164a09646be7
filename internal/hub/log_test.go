package hub

import (
	"testing"
	"time"

	"grace/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppendStampsIDAndTime(t *testing.T) {
	l := NewLog()

	before := time.Now()
	stored := l.Append(types.ConversationEvent{Role: types.RoleUser, Content: "hi"})
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.Timestamp.Before(before))

	// Pre-stamped events keep their id.
	again := l.Append(types.ConversationEvent{ID: "fixed", Role: types.RoleSystem})
	assert.Equal(t, "fixed", again.ID)
}

func TestLogPreservesArrivalOrder(t *testing.T) {
	l := NewLog()
	for _, content := range []string{"one", "two", "three"} {
		l.Append(types.ConversationEvent{Role: types.RoleSystem, Content: content})
	}

	events := l.Events(0)
	require.Len(t, events, 3)
	assert.Equal(t, "one", events[0].Content)
	assert.Equal(t, "three", events[2].Content)
}

func TestLogEventsOffset(t *testing.T) {
	l := NewLog()
	for i := 0; i < 4; i++ {
		l.Append(types.ConversationEvent{Role: types.RoleSystem, Content: "x"})
	}

	assert.Len(t, l.Events(2), 2)
	assert.Empty(t, l.Events(4))
	// Out-of-range offsets clamp instead of panicking.
	assert.Empty(t, l.Events(99))
	assert.Len(t, l.Events(-1), 0)
}

func TestLogEventsReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(types.ConversationEvent{Role: types.RoleSystem, Content: "original"})

	events := l.Events(0)
	events[0].Content = "mutated"

	assert.Equal(t, "original", l.Events(0)[0].Content)
}
