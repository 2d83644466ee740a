package notify

import "sync"

// TopicOrders is raised when a new-order event arrives, so any open order
// list view can refresh without a dedicated poll.
const TopicOrders = "orders"

// Broadcaster fans out same-process signals by topic. Channels are
// buffered with capacity one and sends never block: a slow subscriber
// coalesces signals instead of stalling the producer.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewBroadcaster constructs an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in a topic. The returned function removes
// the subscription; it is safe to call more than once.
func (b *Broadcaster) Subscribe(topic string) (func(), <-chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan struct{}, 1)
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan struct{}]struct{})
	}
	b.subs[topic][ch] = struct{}{}

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subscribers := b.subs[topic]
		if subscribers == nil {
			return
		}
		if _, ok := subscribers[ch]; !ok {
			return
		}
		delete(subscribers, ch)
		drainAndClose(ch)
		if len(subscribers) == 0 {
			delete(b.subs, topic)
		}
	}

	return unsub, ch
}

// Broadcast signals every subscriber of a topic without blocking.
func (b *Broadcaster) Broadcast(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// StopAll closes every subscription channel.
func (b *Broadcaster) StopAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, subscribers := range b.subs {
		for ch := range subscribers {
			drainAndClose(ch)
		}
		delete(b.subs, topic)
	}
}

// drainAndClose removes any buffered signal before closing the channel so
// receivers observe a closed channel immediately.
func drainAndClose(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}
