// Package notify holds the single transient message shown to the user.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a user-facing message that expires on its own.
type Notification struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink receives outcome messages.
type Sink interface {
	Success(message string)
	Error(message string)
}

// Listener observes changes to the visible notification. visible is false
// when the notification expired or was dismissed.
type Listener func(n Notification, visible bool)

// Option configures a Board.
type Option func(*Board)

// WithListener registers a change observer. It is called without the board lock held.
func WithListener(l Listener) Option {
	return func(b *Board) { b.listeners = append(b.listeners, l) }
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// Board is a Sink with a single slot: a new message replaces the visible one
// and every message disappears after the configured TTL.
type Board struct {
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
	listeners []Listener

	mu      sync.Mutex
	current *Notification
	timer   *time.Timer
	nextID  uint64
	closed  bool
}

// NewBoard creates an empty board.
func NewBoard(ttl time.Duration, logger *zap.Logger, opts ...Option) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Board{ttl: ttl, logger: logger.Named("notify"), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) Success(message string) { b.Emit(KindSuccess, message) }

func (b *Board) Error(message string) { b.Emit(KindError, message) }

// Emit replaces the visible notification and schedules its expiry.
func (b *Board) Emit(kind Kind, message string) Notification {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.nextID++
	n := Notification{ID: b.nextID, Message: message, Kind: kind, CreatedAt: b.now()}
	if b.closed {
		b.mu.Unlock()
		return n
	}
	b.current = &n
	id := n.ID
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(id) })
	b.mu.Unlock()

	if kind == KindError {
		b.logger.Warn("Notification", zap.String("kind", string(kind)), zap.String("message", message))
	} else {
		b.logger.Info("Notification", zap.String("kind", string(kind)), zap.String("message", message))
	}
	b.notify(n, true)
	return n
}

// Current returns the visible notification, if any.
func (b *Board) Current() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notification{}, false
	}
	return *b.current, true
}

// Dismiss removes the visible notification early.
func (b *Board) Dismiss() {
	b.mu.Lock()
	n := b.clearLocked()
	b.mu.Unlock()
	if n != nil {
		b.notify(*n, false)
	}
}

// Close dismisses the visible notification and cancels its timer. Later
// emissions are not displayed.
func (b *Board) Close() {
	b.mu.Lock()
	b.closed = true
	n := b.clearLocked()
	b.mu.Unlock()
	if n != nil {
		b.notify(*n, false)
	}
}

func (b *Board) expire(id uint64) {
	b.mu.Lock()
	if b.current == nil || b.current.ID != id {
		// Superseded before the timer fired.
		b.mu.Unlock()
		return
	}
	n := b.clearLocked()
	b.mu.Unlock()
	b.notify(*n, false)
}

func (b *Board) clearLocked() *Notification {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	n := b.current
	b.current = nil
	return n
}

func (b *Board) notify(n Notification, visible bool) {
	for _, l := range b.listeners {
		l(n, visible)
	}
}
