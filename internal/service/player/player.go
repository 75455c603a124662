package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/autoclicker/internal/clock"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/sink"
	"github.com/oshokin/autoclicker/internal/service/status"
)

var (
	// ErrAlreadyPlaying is returned by Play while another run is active.
	ErrAlreadyPlaying = fmt.Errorf("%w: playback already in progress", click.ErrConflict)
	// ErrStopped is returned by Run.Wait when the run was cancelled.
	ErrStopped = errors.New("playback stopped")

	errNoSink = errors.New("player requires a sink")
)

// Player runs at most one playback at a time.
type Player struct {
	sink      sink.Sink
	publisher status.Publisher
	clock     clock.Clock

	// mu guards current.
	mu      sync.Mutex
	current *Run
}

// Run is one in-flight playback.
type Run struct {
	id        string
	config    click.PlaybackConfig
	length    int
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	err       error

	repeat atomic.Int64
	step   atomic.Int64
}

// RunSnapshot is a point-in-time view of a run.
type RunSnapshot struct {
	// ID identifies the run in status events.
	ID string
	// Config is the playback configuration.
	Config click.PlaybackConfig
	// Length is the number of events per pass.
	Length int
	// StartedAt is when the run began.
	StartedAt time.Time
	// Repeat is the current 1-based pass.
	Repeat int
	// Step is the last clicked 1-based event within the pass.
	Step int
}

// New creates an idle player.
func New(s sink.Sink, publisher status.Publisher, c clock.Clock) (*Player, error) {
	if s == nil {
		return nil, errNoSink
	}

	return &Player{
		sink:      s,
		publisher: status.OrDiscard(publisher),
		clock:     clock.OrSystem(c),
	}, nil
}

// Play starts replaying seq in the background. The sequence must not be
// modified until the run finishes.
func (p *Player) Play(ctx context.Context, seq click.Sequence, cfg click.PlaybackConfig) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		return nil, ErrAlreadyPlaying
	}

	run := &Run{
		id:        uuid.NewString(),
		config:    cfg,
		length:    len(seq),
		startedAt: p.clock.Now(),
		done:      make(chan struct{}),
	}

	// The run outlives the caller's request but keeps its logger.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runCtx = logger.WithKV(logger.WithName(runCtx, "player"), "run_id", run.id)
	run.cancel = cancel

	p.current = run

	go p.execute(runCtx, run, seq)

	return run, nil
}

// Stop cancels the active run and waits for it to finish.
// It does nothing when no run is active.
func (p *Player) Stop() {
	p.mu.Lock()
	run := p.current
	p.mu.Unlock()

	if run == nil {
		return
	}

	run.Stop()
}

// Current returns a snapshot of the active run.
func (p *Player) Current() (RunSnapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return RunSnapshot{}, false
	}

	return p.current.Snapshot(), true
}

// Active reports whether a run is in flight.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.current != nil
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Done is closed when the run has finished.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes. It returns ErrStopped for a cancelled run.
func (r *Run) Wait() error {
	<-r.done

	return r.err
}

// Stop cancels the run and waits for it to finish.
func (r *Run) Stop() {
	r.cancel()
	<-r.done
}

// Snapshot returns the run's progress.
func (r *Run) Snapshot() RunSnapshot {
	return RunSnapshot{
		ID:        r.id,
		Config:    r.config,
		Length:    r.length,
		StartedAt: r.startedAt,
		Repeat:    int(r.repeat.Load()),
		Step:      int(r.step.Load()),
	}
}

// execute performs the run and reports exactly one terminal event.
func (p *Player) execute(ctx context.Context, run *Run, seq click.Sequence) {
	defer func() {
		run.cancel()

		p.mu.Lock()
		if p.current == run {
			p.current = nil
		}
		p.mu.Unlock()

		close(run.done)
	}()

	logger.InfoKV(ctx, "Playback started", "events", len(seq), "repeat_count", run.config.RepeatCount)
	p.publish(run, status.Event{
		Kind: status.PlaybackStarted,
		Message: fmt.Sprintf("Playback started: %d events x %d, pause %s",
			len(seq), run.config.RepeatCount, run.config.InterRepeatPause),
	})

	if err := p.replay(ctx, run, seq); err != nil {
		run.err = ErrStopped

		logger.InfoKV(ctx, "Playback stopped", "repeat", run.repeat.Load(), "step", run.step.Load())
		p.publish(run, status.Event{
			Kind:    status.PlaybackStopped,
			Message: fmt.Sprintf("Playback stopped at repeat %d", run.repeat.Load()),
			Repeat:  int(run.repeat.Load()),
			Step:    int(run.step.Load()),
		})

		return
	}

	logger.Info(ctx, "Playback completed")
	p.publish(run, status.Event{
		Kind:    status.PlaybackCompleted,
		Message: "Playback completed",
		Repeat:  run.config.RepeatCount,
	})
}

// replay walks every pass and returns the context error on cancellation.
func (p *Player) replay(ctx context.Context, run *Run, seq click.Sequence) error {
	for repeat := 1; repeat <= run.config.RepeatCount; repeat++ {
		if repeat > 1 {
			if err := clock.Sleep(ctx, run.config.InterRepeatPause); err != nil {
				return err
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		run.repeat.Store(int64(repeat))
		run.step.Store(0)

		for i, event := range seq {
			if err := clock.Sleep(ctx, seq.Delay(i)); err != nil {
				return err
			}

			p.click(ctx, run, event, repeat, i+1)
		}
	}

	return nil
}

// click replays one event. A failed click is reported and playback goes on.
func (p *Player) click(ctx context.Context, run *Run, event click.RecordedEvent, repeat, step int) {
	run.step.Store(int64(step))

	at := event.Coordinate

	if err := p.sink.Click(ctx, at, event.Button); err != nil {
		logger.WarnKV(ctx, "Playback click failed", "repeat", repeat, "step", step, "error", err)
		p.publish(run, status.Event{
			Kind:       status.PlaybackFailed,
			Message:    fmt.Sprintf("Playback click %d/%d failed: %v", step, run.length, err),
			Coordinate: &at,
			Repeat:     repeat,
			Step:       step,
			Err:        err,
		})

		return
	}

	p.publish(run, status.Event{
		Kind:       status.PlaybackProgress,
		Message:    fmt.Sprintf("Replayed %s click at %s (%d/%d, repeat %d)", event.Button, at, step, run.length, repeat),
		Coordinate: &at,
		Repeat:     repeat,
		Step:       step,
	})
}

// publish tags e with the run and sends it.
func (p *Player) publish(run *Run, e status.Event) {
	e.RunID = run.id
	e.Slot = status.NoSlot
	p.publisher.Publish(e)
}
