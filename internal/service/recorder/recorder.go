package recorder

import (
	"context"
	"fmt"
	"sync"

	"github.com/oshokin/autoclicker/internal/clock"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/status"
)

var (
	// ErrSequenceInUse is returned when the sequence is leased to a player.
	ErrSequenceInUse = fmt.Errorf("%w: recorded sequence is being played back", click.ErrConflict)
	// ErrRecording is returned when an operation needs an idle recorder.
	ErrRecording = fmt.Errorf("%w: recorder is armed", click.ErrConflict)
)

// Recorder appends pointer presses to a sequence while armed.
type Recorder struct {
	clock     clock.Clock
	publisher status.Publisher

	// mu guards the fields below.
	mu       sync.Mutex
	armed    bool
	leases   int
	sequence click.Sequence
}

// New creates an idle recorder with an empty sequence.
func New(c clock.Clock, publisher status.Publisher) *Recorder {
	return &Recorder{
		clock:     clock.OrSystem(c),
		publisher: status.OrDiscard(publisher),
	}
}

// Start clears the previous sequence and arms the recorder.
// Starting an armed recorder restarts it with an empty sequence.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.leases > 0 {
		return ErrSequenceInUse
	}

	r.armed = true
	r.sequence = nil

	logger.Info(ctx, "Recording started")
	r.publisher.Publish(status.Event{
		Kind:    status.RecordingStarted,
		Message: "Recording started",
		Slot:    status.NoSlot,
	})

	return nil
}

// Stop disarms the recorder and freezes the sequence. It returns the number
// of captured events. Stopping an idle recorder does nothing.
func (r *Recorder) Stop(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.armed {
		return len(r.sequence)
	}

	r.armed = false

	logger.InfoKV(ctx, "Recording stopped", "events", len(r.sequence))
	r.publisher.Publish(status.Event{
		Kind:    status.RecordingStopped,
		Message: fmt.Sprintf("Recording stopped: %d events", len(r.sequence)),
		Slot:    status.NoSlot,
	})

	return len(r.sequence)
}

// Clear empties the sequence. It fails while armed or while a player holds it.
func (r *Recorder) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.armed {
		return ErrRecording
	}

	if r.leases > 0 {
		return ErrSequenceInUse
	}

	r.sequence = nil

	logger.Info(ctx, "Recording cleared")
	r.publisher.Publish(status.Event{
		Kind:    status.RecordingCleared,
		Message: "Recording cleared",
		Slot:    status.NoSlot,
	})

	return nil
}

// Handle appends press to the sequence when armed and ignores it otherwise.
// A press without a timestamp is stamped with the recorder's clock.
func (r *Recorder) Handle(press click.Press) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.armed {
		return
	}

	if press.Timestamp.IsZero() {
		press.Timestamp = r.clock.Now()
	}

	r.sequence = append(r.sequence, click.RecordedEvent(press))

	at := press.Coordinate
	r.publisher.Publish(status.Event{
		Kind:       status.RecordingCaptured,
		Message:    fmt.Sprintf("Recorded %s click at %s", press.Button, at),
		Slot:       status.NoSlot,
		Coordinate: &at,
		Step:       len(r.sequence),
	})
}

// Armed reports whether the recorder is capturing.
func (r *Recorder) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.armed
}

// Len returns the number of captured events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sequence)
}

// Sequence returns a copy of the captured events.
func (r *Recorder) Sequence() click.Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sequence.Clone()
}

// Lease hands the frozen sequence to a reader. Until release is called the
// recorder refuses Start and Clear. Leasing fails while the recorder is armed.
func (r *Recorder) Lease() (click.Sequence, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.armed {
		return nil, nil, ErrRecording
	}

	r.leases++

	var once sync.Once

	release := func() {
		once.Do(func() {
			r.mu.Lock()
			r.leases--
			r.mu.Unlock()
		})
	}

	return r.sequence.Clone(), release, nil
}
