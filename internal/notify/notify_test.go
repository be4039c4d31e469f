package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) listen(n Notification, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := "hidden"
	if visible {
		state = "shown"
	}
	r.events = append(r.events, string(n.Kind)+":"+n.Message+":"+state)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestBoard_SingleSlot(t *testing.T) {
	defer goleak.VerifyNone(t)
	rec := &recorder{}
	board := NewBoard(time.Hour, zaptest.NewLogger(t), WithListener(rec.listen))
	defer board.Close()

	board.Error("first")
	second := board.Emit(KindSuccess, "second")

	current, ok := board.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, "second", current.Message)
	assert.Equal(t, KindSuccess, current.Kind)
	assert.Equal(t, []string{"error:first:shown", "success:second:shown"}, rec.snapshot())
}

func TestBoard_Expires(t *testing.T) {
	defer goleak.VerifyNone(t)
	rec := &recorder{}
	board := NewBoard(20*time.Millisecond, zaptest.NewLogger(t), WithListener(rec.listen))

	board.Success("saved")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	_, visible := board.Current()
	assert.False(t, visible)
	assert.Equal(t, []string{"success:saved:shown", "success:saved:hidden"}, rec.snapshot())
}

func TestBoard_SupersededTimerDoesNotClearNewer(t *testing.T) {
	defer goleak.VerifyNone(t)
	board := NewBoard(200*time.Millisecond, zaptest.NewLogger(t))
	defer board.Close()

	board.Error("old")
	time.Sleep(150 * time.Millisecond)
	board.Success("new")
	time.Sleep(100 * time.Millisecond)

	// The old timer would have fired by now; the new message must still be visible.
	current, ok := board.Current()
	require.True(t, ok)
	assert.Equal(t, "new", current.Message)
}

func TestBoard_DismissAndClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	board := NewBoard(time.Hour, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))

	n := board.Error("boom")
	assert.Equal(t, now, n.CreatedAt)
	board.Dismiss()
	_, ok := board.Current()
	assert.False(t, ok)

	board.Success("again")
	board.Close()
	_, ok = board.Current()
	assert.False(t, ok)

	board.Success("after close")
	_, ok = board.Current()
	assert.False(t, ok, "a closed board displays nothing")
}
