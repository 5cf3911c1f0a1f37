package player

import "sync"

// eventQueue is an unbounded FIFO of widget states with a level-triggered notify channel.
type eventQueue struct {
	mu     sync.Mutex
	items  []PlayerState
	notify chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{notify: make(chan struct{}, 1)}
}

// push never blocks.
func (q *eventQueue) push(s PlayerState) {
	q.mu.Lock()
	q.items = append(q.items, s)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *eventQueue) drain() []PlayerState {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
