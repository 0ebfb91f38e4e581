package offline

import "sync"

// MessageOfflineReady is broadcast once best-effort prefetch of the
// dynamically discovered assets has completed.
const MessageOfflineReady = "OFFLINE_READY"

// Message is a structured notification delivered to subscribed clients.
type Message struct {
	Type string `json:"type"`
}

// Broadcaster fans out messages to the currently attached clients.
// It is an optional capability: caching correctness never depends on
// anyone being subscribed.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Message
	next int
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Message)}
}

// Subscribe registers a client and returns its message channel plus a
// cancel function that detaches it.
func (b *Broadcaster) Subscribe() (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Message, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Notify delivers the message to every subscriber without blocking.
// A subscriber that has not drained its channel misses the message.
func (b *Broadcaster) Notify(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
