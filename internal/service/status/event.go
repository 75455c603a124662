package status

import (
	"fmt"
	"time"

	"github.com/oshokin/autoclicker/internal/domain/click"
)

// Kind classifies a status event.
type Kind string

// Known event kinds.
const (
	EmitterArmed    Kind = "emitter armed"
	EmitterDisarmed Kind = "emitter disarmed"
	EmitterFired    Kind = "emitter fired"
	EmitterFailed   Kind = "emitter click failed"

	RecordingStarted  Kind = "recording started"
	RecordingStopped  Kind = "recording stopped"
	RecordingCaptured Kind = "recording event-captured"
	RecordingCleared  Kind = "recording cleared"

	PlaybackStarted   Kind = "playback started"
	PlaybackProgress  Kind = "playback progress"
	PlaybackCompleted Kind = "playback completed"
	PlaybackStopped   Kind = "playback stopped"
	PlaybackFailed    Kind = "playback click failed"

	CoordinateCaptured Kind = "coordinate captured"
	ListenerWarning    Kind = "listener warning"
)

// NoSlot marks events that do not belong to an emitter slot.
const NoSlot = -1

// Event is one entry of the status stream.
type Event struct {
	// Time is when the event was published.
	Time time.Time
	// Kind classifies the event.
	Kind Kind
	// Message is the human-readable text.
	Message string
	// Slot is the emitter slot (0-based) or NoSlot.
	Slot int
	// RunID identifies the playback run, if any.
	RunID string
	// Elapsed is the time since the shared reference start for emitter fires.
	Elapsed time.Duration
	// Coordinate is the resolved click position, if any.
	Coordinate *click.Coordinate
	// Repeat is the 1-based playback repetition.
	Repeat int
	// Step is the 1-based event index within a repetition.
	Step int
	// Err carries the failure for *Failed and warning events.
	Err error
}

// String renders the event the way a log pane shows it: "[15:04:05] message".
func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format(time.TimeOnly), e.Message)
}

// Publisher receives status events. Implementations must not block.
type Publisher interface {
	Publish(event Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(event Event)

// Publish calls f.
func (f PublisherFunc) Publish(event Event) {
	f(event)
}

// Discard drops every event.
//
//nolint:gochecknoglobals // Stateless sink shared by callers that do not care about status.
var Discard Publisher = PublisherFunc(func(Event) {})

// OrDiscard returns p, or Discard when p is nil.
//
//nolint:ireturn // Returning the interface is the point of this helper.
func OrDiscard(p Publisher) Publisher {
	if p == nil {
		return Discard
	}

	return p
}
