package control

import (
	"context"
	"time"

	"github.com/oshokin/autoclicker/internal/domain/click"
)

// Service abstracts the business operations the transport layer depends on.
// A nil configuration asks the daemon to use its configured default.
type Service interface {
	StartEmitter(ctx context.Context, slot int, cfg *click.EmitterConfig) (*Status, error)
	StopEmitter(ctx context.Context, slot int) (*Status, error)
	StopAll(ctx context.Context) *Status
	StartRecording(ctx context.Context) (*Status, error)
	StopRecording(ctx context.Context) *Status
	ClearRecording(ctx context.Context) (*Status, error)
	StartPlayback(ctx context.Context, cfg *click.PlaybackConfig) (*Status, error)
	StopPlayback(ctx context.Context) *Status
	GetStatus(ctx context.Context) *Status
}

// Status is a snapshot of the daemon.
type Status struct {
	// Message describes the outcome of the call that produced the snapshot.
	Message string
	// ReferenceStart is the shared emitter origin; zero when no slot is armed.
	ReferenceStart time.Time
	// Slots lists every emitter slot.
	Slots []SlotStatus
	// Recording reports whether the recorder is armed.
	Recording bool
	// RecordedEvents is the length of the recorded sequence.
	RecordedEvents int
	// Playback describes the active run, if any.
	Playback *PlaybackStatus
}

// SlotStatus describes one emitter slot.
type SlotStatus struct {
	// Slot is the 1-based slot number.
	Slot int
	// Armed reports whether the slot is clicking.
	Armed bool
	// Interval is the active interval; zero when idle.
	Interval time.Duration
	// Target is the active target.
	Target click.Target
	// Fires counts successful clicks.
	Fires uint64
	// Failures counts failed clicks.
	Failures uint64
}

// PlaybackStatus describes an active playback run.
type PlaybackStatus struct {
	// RunID identifies the run.
	RunID string
	// Repeat is the current 1-based pass.
	Repeat int
	// RepeatCount is the total number of passes.
	RepeatCount int
	// Step is the last replayed 1-based event of the pass.
	Step int
	// Length is the number of events per pass.
	Length int
	// Pause is the wait between passes.
	Pause time.Duration
}
