package status

import (
	"sync"
	"sync/atomic"

	"github.com/oshokin/autoclicker/internal/clock"
)

// DefaultBuffer is the per-subscriber queue length used when none is given.
const DefaultBuffer = 256

// Bus fans events out to subscribers without ever blocking Publish.
type Bus struct {
	// clock stamps events that arrive without a time.
	clock clock.Clock
	// mu guards subscribers.
	mu sync.RWMutex
	// subscribers holds the live subscriptions.
	subscribers map[*Subscription]struct{}
}

// Subscription is a cancellable registration on a Bus.
type Subscription struct {
	// bus is the owner of the subscription.
	bus *Bus
	// queue buffers events for the handler goroutine.
	queue chan Event
	// done is closed once the handler goroutine has returned.
	done chan struct{}
	// once guards Cancel.
	once sync.Once
	// dropped counts events lost because queue was full.
	dropped atomic.Uint64
}

// NewBus creates a bus; a nil clock means the system clock.
func NewBus(c clock.Clock) *Bus {
	return &Bus{
		clock:       clock.OrSystem(c),
		subscribers: make(map[*Subscription]struct{}),
	}
}

// Publish stamps the event and offers it to every subscriber.
// Full subscriber queues drop the event.
func (b *Bus) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = b.clock.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub.queue <- event:
		default:
			sub.dropped.Add(1)
		}
	}
}

// Subscribe registers handler. Events are delivered in publish order on a
// dedicated goroutine; buffer <= 0 selects DefaultBuffer.
func (b *Bus) Subscribe(handler func(Event), buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	sub := &Subscription{
		bus:   b,
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer close(sub.done)

		for event := range sub.queue {
			handler(event)
		}
	}()

	return sub
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers)
}

// Cancel unregisters the subscription, lets already queued events drain and
// waits for the handler to return. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subscribers, s)
		close(s.queue)
		s.bus.mu.Unlock()
	})

	<-s.done
}

// Dropped reports how many events this subscription lost.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}
