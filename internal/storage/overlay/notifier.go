package overlay

import (
	"sync"
	"time"
)

// ChangeEvent is the "publications changed" signal. It only tells views to
// refetch; it carries no data and guarantees nothing about ordering.
type ChangeEvent struct {
	At     time.Time `json:"at"`
	Origin string    `json:"origin"`
	Remote bool      `json:"remote,omitempty"`
}

// Notifier fans change events out to in-process subscribers. A slow
// subscriber misses intermediate events but always keeps the latest one
// pending, which is enough to trigger a refetch.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan ChangeEvent
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan ChangeEvent)}
}

func (n *Notifier) Subscribe() (<-chan ChangeEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++

	ch := make(chan ChangeEvent, 1)
	n.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

func (n *Notifier) Broadcast(ev ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
			// drop the stale pending event and keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.subs)
}
