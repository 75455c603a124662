package input

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/service/status"
)

// fakeSource feeds hand-made hook events.
type fakeSource struct {
	// events is returned by Start.
	events chan hook.Event
	// err fails Start when set.
	err error
	// stopped counts Stop calls.
	stopped atomic.Int32
}

// newFakeSource creates a source with a buffered channel.
func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan hook.Event, 16)}
}

// Start implements Source.
func (f *fakeSource) Start() (<-chan hook.Event, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.events, nil
}

// Stop implements Source.
func (f *fakeSource) Stop() {
	f.stopped.Add(1)
}

// mouse builds a left press at (x, y).
func mouse(x, y int16) hook.Event {
	return hook.Event{Kind: hook.MouseHold, Button: hook.MouseMap["left"], X: x, Y: y}
}

// TestListener_DeliversPresses fans presses out and stops after Cancel.
func TestListener_DeliversPresses(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		src := newFakeSource()
		l := NewListener(src, nil, nil)

		var (
			mu      sync.Mutex
			presses []click.Press
		)

		sub := l.Subscribe(func(p click.Press) {
			mu.Lock()
			presses = append(presses, p)
			mu.Unlock()
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() { done <- l.Run(ctx) }()

		src.events <- mouse(10, 20)
		src.events <- hook.Event{Kind: hook.MouseMove, X: 1, Y: 1}
		src.events <- hook.Event{Kind: hook.MouseHold, Button: hook.MouseMap["right"], X: 30, Y: 40}
		synctest.Wait()

		sub.Cancel()
		sub.Cancel()

		src.events <- mouse(50, 60)
		synctest.Wait()

		cancel()
		require.NoError(t, <-done)
		require.Equal(t, int32(1), src.stopped.Load())

		require.Len(t, presses, 2)
		require.Equal(t, click.Coordinate{X: 10, Y: 20}, presses[0].Coordinate)
		require.Equal(t, click.ButtonRight, presses[1].Button)
		require.False(t, presses[0].Timestamp.IsZero())
		require.Zero(t, l.Subscribers())
	})
}

// TestListener_Hotkeys runs bound callbacks on key presses only.
func TestListener_Hotkeys(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		src := newFakeSource()
		l := NewListener(src, nil, nil)

		var hits atomic.Int32

		require.NoError(t, l.BindHotkey("F1", func(context.Context) { hits.Add(1) }))
		require.ErrorIs(t, l.BindHotkey("no-such-key", func(context.Context) {}), click.ErrInvalidConfig)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() { done <- l.Run(ctx) }()

		src.events <- hook.Event{Kind: hook.KeyHold, Keycode: hook.Keycode["f1"]}
		src.events <- hook.Event{Kind: hook.KeyUp, Keycode: hook.Keycode["f1"]}
		src.events <- hook.Event{Kind: hook.KeyHold, Keycode: hook.Keycode["f2"]}
		src.events <- hook.Event{Kind: hook.KeyHold, Keycode: hook.Keycode["f1"]}
		synctest.Wait()

		cancel()
		require.NoError(t, <-done)
		require.Equal(t, int32(2), hits.Load())
	})
}

// TestListener_UnavailableWarnsOnce degrades with a single warning event.
func TestListener_UnavailableWarnsOnce(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.err = errors.New("no display session available")

	var warnings []status.Event

	l := NewListener(src, status.PublisherFunc(func(e status.Event) {
		warnings = append(warnings, e)
	}), nil)

	err := l.Run(context.Background())
	require.ErrorIs(t, err, click.ErrListenerUnavailable)
	require.Len(t, warnings, 1)
	require.Equal(t, status.ListenerWarning, warnings[0].Kind)

	// Capture fails fast instead of hanging.
	_, err = l.CaptureNext(context.Background())
	require.ErrorIs(t, err, ErrListenerClosed)

	require.Error(t, l.Run(context.Background()))
	require.Len(t, warnings, 1)
}

// TestListener_CaptureNext returns the first press and unsubscribes.
func TestListener_CaptureNext(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		src := newFakeSource()

		var captured []status.Event

		l := NewListener(src, status.PublisherFunc(func(e status.Event) {
			captured = append(captured, e)
		}), nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = l.Run(ctx) }()

		result := make(chan click.Press, 1)

		go func() {
			p, err := l.CaptureNext(ctx)
			if err == nil {
				result <- p
			}
		}()

		synctest.Wait()
		require.Equal(t, 1, l.Subscribers())

		src.events <- mouse(300, 400)

		p := <-result
		require.Equal(t, click.Coordinate{X: 300, Y: 400}, p.Coordinate)

		synctest.Wait()
		require.Zero(t, l.Subscribers())
		require.Len(t, captured, 1)
		require.Equal(t, status.CoordinateCaptured, captured[0].Kind)
	})
}

// TestListener_CaptureNextHonoursContext gives up when the caller does.
func TestListener_CaptureNextHonoursContext(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		l := NewListener(newFakeSource(), nil, nil)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := l.CaptureNext(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
