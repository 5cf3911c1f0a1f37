// Package notify provides the single transient notification shown to the user.
//
// Every [Bus.Show] replaces the current notification with a fresh id, so identical messages
// still re-trigger display. A hide request carries the id it was scheduled for and is ignored when
// a newer notification has replaced it.
package notify

import (
	"sync"
	"time"
)

// HideAfter is how long a notification stays visible by default.
const HideAfter = 3900 * time.Millisecond

// Kind is the notification severity.
type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "success"
}

// Notification is a single message.
type Notification struct {
	ID      uint64
	Message string
	Kind    Kind
}

// Bus holds at most one visible notification.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	current   *Notification
	hideAfter time.Duration
	autoHide  bool
	timer     *time.Timer
	changes   chan struct{}
}

// Option configures a [Bus].
type Option func(*Bus)

// WithHideAfter sets the display duration. Non-positive values keep the default.
func WithHideAfter(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.hideAfter = d
		}
	}
}

// WithAutoHide dismisses each notification after the display duration.
func WithAutoHide() Option {
	return func(b *Bus) { b.autoHide = true }
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{hideAfter: HideAfter, changes: make(chan struct{}, 1)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Show replaces the current notification.
func (b *Bus) Show(message string, kind Kind) Notification {
	b.mu.Lock()
	b.nextID++
	n := Notification{ID: b.nextID, Message: message, Kind: kind}
	b.current = &n
	if b.autoHide {
		if b.timer != nil {
			b.timer.Stop()
		}
		id := n.ID
		b.timer = time.AfterFunc(b.hideAfter, func() { b.Dismiss(id) })
	}
	b.mu.Unlock()

	b.signal()
	return n
}

// Success shows a success notification.
func (b *Bus) Success(message string) Notification { return b.Show(message, Success) }

// Error shows an error notification.
func (b *Bus) Error(message string) Notification { return b.Show(message, Error) }

// Current returns the visible notification.
func (b *Bus) Current() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notification{}, false
	}
	return *b.current, true
}

// Dismiss hides the notification with id if it is still current. Reports whether it hid anything.
func (b *Bus) Dismiss(id uint64) bool {
	b.mu.Lock()
	if b.current == nil || b.current.ID != id {
		b.mu.Unlock()
		return false
	}
	b.current = nil
	b.mu.Unlock()

	b.signal()
	return true
}

// HideAfter returns the display duration.
func (b *Bus) HideAfter() time.Duration { return b.hideAfter }

// Changes delivers a coalesced signal when the visible notification changes.
func (b *Bus) Changes() <-chan struct{} { return b.changes }

// Close stops any pending hide timer.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}

func (b *Bus) signal() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}
