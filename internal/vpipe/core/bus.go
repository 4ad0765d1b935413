package core

import (
	"context"
	"sync"
	"time"
)

// Message is one event posted to a Bus: a state change, an error, a
// backpressure drop, or an application-defined kind.
type Message struct {
	Kind      string
	Payload   any
	Source    Named
	Timestamp time.Time
}

// busQueueCapacity bounds the internal channel; it stands in for asyncio's
// unbounded asyncio.Queue(), sized generously enough that no realistic
// pipeline saturates it under normal operation.
const busQueueCapacity = 4096

// Bus fans pipeline-wide events out to watchers and a pollable queue.
// Grounded on original_source/vpipe/core/bus.py.
type Bus struct {
	*Object

	queue chan Message

	mu       sync.Mutex
	watchers map[int]func(Message)
	nextID   int
}

// NewBus creates a bus with its own internal queue and watcher list.
func NewBus(name string) *Bus {
	return &Bus{
		Object:   NewObject("Bus", name),
		queue:    make(chan Message, busQueueCapacity),
		watchers: make(map[int]func(Message)),
	}
}

// Post delivers msg to every watcher synchronously, then enqueues it for
// Poll/PollTimeout consumers. Posting is synchronous (unlike the original's
// fire-and-forget asyncio.create_task) so ordering across capsule state
// changes stays deterministic and testable.
func (b *Bus) Post(msg Message) {
	b.EmitSignal("message", msg)

	b.mu.Lock()
	watchers := make([]func(Message), 0, len(b.watchers))
	for _, w := range b.watchers {
		watchers = append(watchers, w)
	}
	b.mu.Unlock()

	for _, w := range watchers {
		w(msg)
	}

	select {
	case b.queue <- msg:
	default:
		b.Logger().Warn("bus queue full, dropping message", "kind", msg.Kind)
	}
}

// AddWatch registers a callback invoked synchronously on every Post, and
// returns an id usable with RemoveWatch.
func (b *Bus) AddWatch(cb func(Message)) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = cb
	return id
}

// RemoveWatch unregisters a watcher previously returned by AddWatch.
func (b *Bus) RemoveWatch(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.watchers, id)
}

// Poll blocks until a message is available or ctx is done.
func (b *Bus) Poll(ctx context.Context) (Message, bool) {
	select {
	case m := <-b.queue:
		return m, true
	case <-ctx.Done():
		return Message{}, false
	}
}

// PollTimeout blocks until a message is available or d elapses.
func (b *Bus) PollTimeout(d time.Duration) (Message, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case m := <-b.queue:
		return m, true
	case <-timer.C:
		return Message{}, false
	}
}
