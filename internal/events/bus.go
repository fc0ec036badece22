package events

import (
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is used when a subscriber asks for a non-positive buffer.
const DefaultBufferSize = 256

// EventBus is a channel-based pub-sub event bus.
// Events are routed by their Topic(); SubscribeAll receives every topic.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[string][]chan Event
	allSubs []chan Event
	dropped atomic.Int64
	closed  bool
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subs: make(map[string][]chan Event),
	}
}

func (b *EventBus) newChannel(bufSize int) chan Event {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return make(chan Event, bufSize)
}

// Subscribe returns a channel receiving events of one topic.
func (b *EventBus) Subscribe(topic string, bufSize int) <-chan Event {
	ch := b.newChannel(bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}
	b.subs[topic] = append(b.subs[topic], ch)
	return ch
}

// SubscribeAll returns a channel receiving events of every topic.
func (b *EventBus) SubscribeAll(bufSize int) <-chan Event {
	ch := b.newChannel(bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}
	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Publish delivers the event to its topic's subscribers and to SubscribeAll
// channels. It never blocks: a full subscriber misses the event.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	deliver := func(ch chan Event) {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
	for _, ch := range b.subs[event.Topic()] {
		deliver(ch)
	}
	for _, ch := range b.allSubs {
		deliver(ch)
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *EventBus) Dropped() int {
	return int(b.dropped.Load())
}

// Close closes the bus and all subscriber channels. Safe to call more than once.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, channels := range b.subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range b.allSubs {
		close(ch)
	}
}
