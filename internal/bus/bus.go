// Package bus is the process-wide publish/subscribe fabric that fans
// generation events out to observers. The in-memory implementation serves a
// single process; the NATS-backed one carries the same events to remote
// observers over a live connection.
package bus

import (
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("bus: closed")

// Unsubscribe removes a subscription. Safe to call more than once.
type Unsubscribe func()

// Bus is the publish/subscribe contract the orchestrator depends on.
// Delivery to one subscriber preserves per-subject publish order.
type Bus interface {
	Publish(subject string, payload []byte) error
	Subscribe(subject string, handler func(payload []byte)) (Unsubscribe, error)
	Close() error
}

// subscriberQueueSize bounds each subscriber's in-flight backlog. Publish
// blocks when a subscriber falls this far behind, preserving order instead
// of dropping events.
const subscriberQueueSize = 1024

// MemoryBus is an in-process Bus. Each subscriber is served by its own
// goroutine so a slow handler delays only itself.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[string][]*memorySub
	closed bool
}

type memorySub struct {
	queue chan []byte
	done  chan struct{}
	once  sync.Once
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]*memorySub)}
}

// Publish delivers payload to every current subscriber of subject.
func (b *MemoryBus) Publish(subject string, payload []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	subs := make([]*memorySub, len(b.subs[subject]))
	copy(subs, b.subs[subject])
	b.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.queue <- payload:
		case <-sub.done:
		}
	}
	return nil
}

// Subscribe registers handler for subject. The handler runs on a dedicated
// goroutine in publish order.
func (b *MemoryBus) Subscribe(subject string, handler func(payload []byte)) (Unsubscribe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	sub := &memorySub{
		queue: make(chan []byte, subscriberQueueSize),
		done:  make(chan struct{}),
	}
	b.subs[subject] = append(b.subs[subject], sub)

	go func() {
		for {
			select {
			case payload := <-sub.queue:
				handler(payload)
			case <-sub.done:
				// Drain what was already queued so no published event is
				// silently lost on unsubscribe racing a publish.
				for {
					select {
					case payload := <-sub.queue:
						handler(payload)
					default:
						return
					}
				}
			}
		}
	}()

	return func() {
		b.mu.Lock()
		current := b.subs[subject]
		for i, s := range current {
			if s == sub {
				b.subs[subject] = append(current[:i], current[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		sub.once.Do(func() { close(sub.done) })
	}, nil
}

// Close stops all subscriber goroutines. Subsequent operations fail with
// ErrClosed.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			sub.once.Do(func() { close(sub.done) })
		}
	}
	b.subs = make(map[string][]*memorySub)
	return nil
}
