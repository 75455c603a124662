package input

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/oshokin/autoclicker/internal/clock"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/status"
)

var (
	// ErrListenerClosed is returned by CaptureNext when the listener stops first.
	ErrListenerClosed = errors.New("input listener stopped")

	errAlreadyRunning = errors.New("input listener is already running")
)

// Listener dispatches pointer presses to subscribers and keys to hotkeys.
type Listener struct {
	source    Source
	publisher status.Publisher
	clock     clock.Clock

	// mu guards the fields below.
	mu          sync.Mutex
	running     bool
	closed      chan struct{}
	subscribers map[*Subscription]func(click.Press)
	hotkeys     map[uint16]func(context.Context)
}

// Subscription is a cancellable registration for pointer presses.
type Subscription struct {
	listener *Listener
	once     sync.Once
}

// NewListener creates a listener over source; a nil source means HookSource.
func NewListener(source Source, publisher status.Publisher, c clock.Clock) *Listener {
	if source == nil {
		source = HookSource{}
	}

	return &Listener{
		source:      source,
		publisher:   status.OrDiscard(publisher),
		clock:       clock.OrSystem(c),
		closed:      make(chan struct{}),
		subscribers: make(map[*Subscription]func(click.Press)),
		hotkeys:     make(map[uint16]func(context.Context)),
	}
}

// Subscribe registers handler for every pointer press. Handlers run on the
// listener goroutine and must return quickly.
func (l *Listener) Subscribe(handler func(click.Press)) *Subscription {
	sub := &Subscription{listener: l}

	l.mu.Lock()
	l.subscribers[sub] = handler
	l.mu.Unlock()

	return sub
}

// Cancel removes the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.listener.mu.Lock()
		delete(s.listener.subscribers, s)
		s.listener.mu.Unlock()
	})
}

// BindHotkey runs fn whenever the named key is pressed.
// Names follow gohook's key table ("f1", "f12", "esc").
func (l *Listener) BindHotkey(name string, fn func(context.Context)) error {
	code, ok := hook.Keycode[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return &click.ConfigError{Field: "hotkey", Value: name, Reason: "unknown key name"}
	}

	l.mu.Lock()
	l.hotkeys[code] = fn
	l.mu.Unlock()

	return nil
}

// Run listens until ctx is done. If the source cannot start, Run publishes a
// single warning and returns a *click.ListenerError. A listener runs once.
func (l *Listener) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errAlreadyRunning
	}

	l.running = true
	l.mu.Unlock()

	defer l.close()

	ctx = logger.WithName(ctx, "input")

	events, err := l.source.Start()
	if err != nil {
		lerr := &click.ListenerError{Err: err}

		logger.WarnKV(ctx, "Global input is unavailable, hotkeys and recording are disabled", "error", err)
		l.publisher.Publish(status.Event{
			Kind:    status.ListenerWarning,
			Message: fmt.Sprintf("Global input unavailable: %v", err),
			Slot:    status.NoSlot,
			Err:     lerr,
		})

		return lerr
	}

	defer l.source.Stop()

	logger.Info(ctx, "Input listener started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}

			l.dispatch(ctx, event)
		}
	}
}

// CaptureNext waits for the next pointer press, as used to pick a coordinate.
func (l *Listener) CaptureNext(ctx context.Context) (click.Press, error) {
	presses := make(chan click.Press, 1)

	sub := l.Subscribe(func(p click.Press) {
		select {
		case presses <- p:
		default:
		}
	})
	defer sub.Cancel()

	select {
	case <-ctx.Done():
		return click.Press{}, ctx.Err()
	case <-l.closed:
		return click.Press{}, ErrListenerClosed
	case p := <-presses:
		at := p.Coordinate
		l.publisher.Publish(status.Event{
			Kind:       status.CoordinateCaptured,
			Message:    fmt.Sprintf("Coordinates set to %s", at),
			Slot:       status.NoSlot,
			Coordinate: &at,
		})

		return p, nil
	}
}

// Subscribers returns the number of live subscriptions.
func (l *Listener) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.subscribers)
}

// dispatch routes one raw event.
func (l *Listener) dispatch(ctx context.Context, event hook.Event) {
	switch event.Kind {
	case hook.MouseHold:
		l.press(l.toPress(event))
	case hook.KeyHold:
		l.mu.Lock()
		fn := l.hotkeys[event.Keycode]
		l.mu.Unlock()

		if fn != nil {
			logger.DebugKV(ctx, "Hotkey", "keycode", event.Keycode)
			fn(ctx)
		}
	}
}

// press hands p to every subscriber.
func (l *Listener) press(p click.Press) {
	l.mu.Lock()
	handlers := make([]func(click.Press), 0, len(l.subscribers))

	for _, h := range l.subscribers {
		handlers = append(handlers, h)
	}
	l.mu.Unlock()

	for _, h := range handlers {
		h(p)
	}
}

// toPress converts a hook mouse event.
func (l *Listener) toPress(event hook.Event) click.Press {
	button := click.Button(event.Button)
	if button > click.ButtonCenter {
		button = click.ButtonUnknown
	}

	at := event.When
	if at.IsZero() {
		at = l.clock.Now()
	}

	return click.Press{
		Coordinate: click.Coordinate{X: int(event.X), Y: int(event.Y)},
		Button:     button,
		Timestamp:  at,
	}
}

// close marks the listener as stopped and wakes pending captures.
func (l *Listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
}
