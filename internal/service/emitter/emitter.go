package emitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/autoclicker/internal/clock"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/sink"
	"github.com/oshokin/autoclicker/internal/service/status"
)

// Options configures an Emitter.
type Options struct {
	// Slot is the 0-based index reported in status events.
	Slot int
	// Sink performs the clicks.
	Sink sink.Sink
	// Pointer resolves the live pointer in follow-pointer mode.
	Pointer sink.Pointer
	// Publisher receives status events; nil discards them.
	Publisher status.Publisher
	// Clock is the time source; nil means the system clock.
	Clock clock.Clock
	// PollInterval is the evaluation cadence; zero means DefaultPollInterval.
	PollInterval time.Duration
	// Tolerance is the due window; zero means DefaultTolerance.
	Tolerance time.Duration
}

// Snapshot is a point-in-time view of an emitter.
type Snapshot struct {
	// Slot is the 0-based slot index.
	Slot int
	// Armed reports whether the evaluation loop is running.
	Armed bool
	// Config is the active configuration; zero when idle.
	Config click.EmitterConfig
	// Fires counts successful clicks since the emitter was created.
	Fires uint64
	// Failures counts failed clicks since the emitter was created.
	Failures uint64
}

// Emitter fires clicks periodically relative to a reference start.
type Emitter struct {
	slot         int
	sink         sink.Sink
	pointer      sink.Pointer
	publisher    status.Publisher
	clock        clock.Clock
	pollInterval time.Duration
	tolerance    time.Duration

	// mu guards the fields below and serializes Arm/Disarm.
	mu     sync.Mutex
	armed  bool
	config click.EmitterConfig
	cancel context.CancelFunc
	done   chan struct{}

	fires    atomic.Uint64
	failures atomic.Uint64
}

var errNoSink = errors.New("emitter requires a sink")

// New creates an idle emitter.
func New(opts Options) (*Emitter, error) {
	if opts.Sink == nil {
		return nil, errNoSink
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}

	return &Emitter{
		slot:         opts.Slot,
		sink:         opts.Sink,
		pointer:      opts.Pointer,
		publisher:    status.OrDiscard(opts.Publisher),
		clock:        clock.OrSystem(opts.Clock),
		pollInterval: opts.PollInterval,
		tolerance:    opts.Tolerance,
	}, nil
}

// Arm starts the evaluation loop against reference. Arming an armed emitter
// reconfigures it: the old loop is stopped before the new one starts, so at
// most one loop ever runs per emitter.
func (e *Emitter) Arm(ctx context.Context, cfg click.EmitterConfig, reference time.Time) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if !cfg.Target.IsFixed() && e.pointer == nil {
		return &click.ConfigError{Field: "mode", Value: cfg.Target.Mode, Reason: "no pointer source available"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.armed {
		e.stopLocked()
	}

	// The loop outlives the caller's request but keeps its logger.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	loopCtx = logger.WithKV(logger.WithName(loopCtx, "emitter"), "slot", e.slot+1)

	done := make(chan struct{})

	e.armed = true
	e.config = cfg
	e.cancel = cancel
	e.done = done

	go e.loop(loopCtx, cfg, reference, done)

	logger.InfoKV(loopCtx, "Emitter armed", "interval", cfg.Interval, "target", cfg.Target.String())
	e.publisher.Publish(status.Event{
		Kind:    status.EmitterArmed,
		Message: fmt.Sprintf("Slot %d armed: every %s, %s", e.slot+1, cfg.Interval, cfg.Target),
		Slot:    e.slot,
	})

	return nil
}

// Disarm stops the evaluation loop and waits for it to exit, so no click
// happens after Disarm returns. Disarming an idle emitter does nothing.
func (e *Emitter) Disarm(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.armed {
		return
	}

	e.stopLocked()

	logger.InfoKV(ctx, "Emitter disarmed", "slot", e.slot+1)
	e.publisher.Publish(status.Event{
		Kind:    status.EmitterDisarmed,
		Message: fmt.Sprintf("Slot %d disarmed", e.slot+1),
		Slot:    e.slot,
	})
}

// Armed reports whether the emitter is armed.
func (e *Emitter) Armed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.armed
}

// Snapshot returns the current state of the emitter.
func (e *Emitter) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		Slot:     e.slot,
		Armed:    e.armed,
		Config:   e.config,
		Fires:    e.fires.Load(),
		Failures: e.failures.Load(),
	}
}

// stopLocked cancels the running loop and joins it. Callers hold e.mu.
func (e *Emitter) stopLocked() {
	e.cancel()
	<-e.done

	e.armed = false
	e.config = click.EmitterConfig{}
	e.cancel = nil
	e.done = nil
}

// loop evaluates the due rule every poll interval until ctx is cancelled.
func (e *Emitter) loop(ctx context.Context, cfg click.EmitterConfig, reference time.Time, done chan<- struct{}) {
	defer close(done)

	tolerance := effectiveTolerance(cfg.Interval, e.tolerance)

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	var lastFire time.Duration

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		elapsed := e.clock.Now().Sub(reference)
		if !due(elapsed, lastFire, cfg.Interval, tolerance) {
			continue
		}

		// Disarm may have raced with the tick.
		if ctx.Err() != nil {
			return
		}

		e.fire(ctx, cfg.Target, elapsed)

		lastFire = elapsed
	}
}

// fire resolves the target, clicks and reports the outcome.
// Failures are reported and the emitter keeps its schedule.
func (e *Emitter) fire(ctx context.Context, target click.Target, elapsed time.Duration) {
	at, err := e.resolve(ctx, target)
	if err == nil {
		err = e.sink.Click(ctx, at, click.ButtonLeft)
	}

	if err != nil {
		e.failures.Add(1)

		logger.WarnKV(ctx, "Click failed", "elapsed", elapsed, "error", err)
		e.publisher.Publish(status.Event{
			Kind:    status.EmitterFailed,
			Message: fmt.Sprintf("Slot %d click failed at %.1fs: %v", e.slot+1, elapsed.Seconds(), err),
			Slot:    e.slot,
			Elapsed: elapsed,
			Err:     err,
		})

		return
	}

	e.fires.Add(1)

	logger.DebugKV(ctx, "Click", "elapsed", elapsed, "at", at.String())
	e.publisher.Publish(status.Event{
		Kind:       status.EmitterFired,
		Message:    fmt.Sprintf("Slot %d click at %.1fs %s", e.slot+1, elapsed.Seconds(), at),
		Slot:       e.slot,
		Elapsed:    elapsed,
		Coordinate: &at,
	})
}

// resolve returns the fixed coordinate or the live pointer position.
func (e *Emitter) resolve(ctx context.Context, target click.Target) (click.Coordinate, error) {
	if target.IsFixed() {
		return target.Coordinate, nil
	}

	at, err := e.pointer.Position(ctx)
	if err != nil {
		return click.Coordinate{}, &click.SinkError{Err: fmt.Errorf("resolve pointer: %w", err)}
	}

	return at, nil
}
