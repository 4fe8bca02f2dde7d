package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProcessedSetMarkAndSeen(t *testing.T) {
	t.Parallel()

	ps := newProcessedSet(time.Minute)

	assert.False(t, ps.Seen("a1"))
	ps.Mark("a1")
	assert.True(t, ps.Seen("a1"))
	assert.False(t, ps.Seen("a2"))
	assert.Equal(t, 1, ps.Len())
}

func TestProcessedSetExpiry(t *testing.T) {
	t.Parallel()

	ps := newProcessedSet(5 * time.Millisecond)
	ps.Mark("a1")

	time.Sleep(10 * time.Millisecond)

	assert.False(t, ps.Seen("a1"), "entry past its TTL reads as unseen")

	ps.Mark("a2")
	ps.Mark("a3")
	time.Sleep(10 * time.Millisecond)
	ps.Prune()
	assert.Equal(t, 0, ps.Len())
}

func TestProcessedSetZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	ps := newProcessedSet(0)
	ps.Mark("a1")

	time.Sleep(5 * time.Millisecond)
	ps.Prune()

	assert.True(t, ps.Seen("a1"))
}

func TestProcessedSetClear(t *testing.T) {
	t.Parallel()

	ps := newProcessedSet(time.Minute)
	ps.Mark("a1")
	ps.Mark("a2")

	ps.Clear()

	assert.Equal(t, 0, ps.Len())
	assert.False(t, ps.Seen("a1"))
}
