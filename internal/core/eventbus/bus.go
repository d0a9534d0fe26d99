// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within redline.
package eventbus

import (
	"context"
	"sync"
)

// Event names a bus event type.
type Event string

// envelope carries one published event through the buffer.
type envelope struct {
	event   Event
	payload any
}

// EventBus fans typed events out to subscribers from a single dispatch
// goroutine. Publishing never blocks: when the buffer is full the event
// is dropped and the OnDrop hooks fire instead.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu          sync.RWMutex
	subscribers map[Event][]func(any)
}

// New creates a bus with the given buffer size. Sizes of zero or less
// fall back to a small default.
func New(size int) *EventBus {
	if size <= 0 {
		size = 16
	}
	return &EventBus{
		ch:          make(chan envelope, size),
		subscribers: make(map[Event][]func(any)),
	}
}

// Start runs the dispatch loop until ctx is canceled. Subscribers run on
// the dispatch goroutine; a panicking subscriber is recovered and
// reported through the OnPanic hooks.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subscribers[env.event]))
	copy(subs, bus.subscribers[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		bus.invoke(env, fn)
	}
}

func (bus *EventBus) invoke(env envelope, fn func(any)) {
	defer func() {
		if recovered := recover(); recovered != nil {
			bus.runOnPanic(env.event, env.payload, recovered)
		}
	}()
	fn(env.payload)
}

// subscribe registers an untyped handler. Used by the typed Subscribe
// methods.
func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subscribers[event] = append(bus.subscribers[event], fn)
	bus.mu.Unlock()

	bus.runOnSubscribe(event)
}
