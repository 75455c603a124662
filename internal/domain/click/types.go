package click

import (
	"fmt"
	"time"
)

// Coordinate is a screen-space pointer position.
type Coordinate struct {
	// X is the horizontal position in pixels.
	X int `json:"x" yaml:"x"`
	// Y is the vertical position in pixels.
	Y int `json:"y" yaml:"y"`
}

// String renders the coordinate as "(x, y)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Button identifies a pointer button. Values follow gohook's MouseMap.
type Button uint16

const (
	// ButtonUnknown is used when the listener could not name the button.
	ButtonUnknown Button = 0
	// ButtonLeft is the primary button.
	ButtonLeft Button = 1
	// ButtonRight is the secondary button.
	ButtonRight Button = 2
	// ButtonCenter is the middle button.
	ButtonCenter Button = 3
)

// String returns the robotgo name of the button; unknown buttons map to "left".
func (b Button) String() string {
	switch b {
	case ButtonRight:
		return "right"
	case ButtonCenter:
		return "center"
	default:
		return "left"
	}
}

// ParseButton converts a button name to a Button.
func ParseButton(s string) (Button, bool) {
	switch s {
	case "left", "":
		return ButtonLeft, true
	case "right":
		return ButtonRight, true
	case "center", "middle":
		return ButtonCenter, true
	default:
		return ButtonUnknown, false
	}
}

// TargetMode selects how an emitter resolves its click position.
type TargetMode string

const (
	// TargetPointer clicks wherever the pointer is at fire time.
	TargetPointer TargetMode = "pointer"
	// TargetFixed clicks at a configured coordinate.
	TargetFixed TargetMode = "fixed"
)

// Target is either a fixed coordinate or "follow the pointer".
type Target struct {
	// Mode selects pointer-following or fixed clicking.
	Mode TargetMode
	// Coordinate is used only when Mode is TargetFixed.
	Coordinate Coordinate
}

// FollowPointer returns a target resolved from the live pointer at fire time.
func FollowPointer() Target {
	return Target{Mode: TargetPointer}
}

// FixedAt returns a target pinned to c.
func FixedAt(c Coordinate) Target {
	return Target{Mode: TargetFixed, Coordinate: c}
}

// IsFixed reports whether the target is a fixed coordinate.
func (t Target) IsFixed() bool {
	return t.Mode == TargetFixed
}

// String describes the target for status messages.
func (t Target) String() string {
	if t.IsFixed() {
		return "fixed " + t.Coordinate.String()
	}

	return "pointer"
}

// EmitterConfig is the immutable configuration of an armed emitter.
type EmitterConfig struct {
	// Interval is the period between fires, measured from the shared reference start.
	Interval time.Duration
	// Target decides where each fire clicks.
	Target Target
}

// Validate rejects non-positive intervals and unknown target modes.
func (c EmitterConfig) Validate() error {
	if c.Interval <= 0 {
		return &ConfigError{Field: "interval", Value: c.Interval, Reason: "must be greater than zero"}
	}

	switch c.Target.Mode {
	case TargetPointer, TargetFixed:
		return nil
	default:
		return &ConfigError{Field: "mode", Value: c.Target.Mode, Reason: `must be "pointer" or "fixed"`}
	}
}

// PlaybackConfig controls how many times a sequence is replayed.
type PlaybackConfig struct {
	// RepeatCount is the number of full passes over the sequence.
	RepeatCount int
	// InterRepeatPause is waited between passes, not after the last one.
	InterRepeatPause time.Duration
}

// Validate rejects repeat counts below one and negative pauses.
func (c PlaybackConfig) Validate() error {
	if c.RepeatCount < 1 {
		return &ConfigError{Field: "repeat_count", Value: c.RepeatCount, Reason: "must be at least 1"}
	}

	if c.InterRepeatPause < 0 {
		return &ConfigError{Field: "pause", Value: c.InterRepeatPause, Reason: "must not be negative"}
	}

	return nil
}

// Press is a physical pointer press reported by the input listener.
type Press struct {
	// Coordinate is where the press happened.
	Coordinate Coordinate
	// Button is the pressed button.
	Button Button
	// Timestamp is the capture instant; zero means "use the receiver's clock".
	Timestamp time.Time
}

// RecordedEvent is one captured press in a Sequence.
type RecordedEvent struct {
	// Coordinate is where the press happened.
	Coordinate Coordinate
	// Button is the pressed button.
	Button Button
	// Timestamp is the capture instant.
	Timestamp time.Time
}

// Sequence is an ordered list of recorded events.
type Sequence []RecordedEvent

// Clone returns an independent copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}

	cloned := make(Sequence, len(s))
	copy(cloned, s)

	return cloned
}

// Delay returns the wait before event i during playback.
// The first event has no delay, and out-of-order timestamps never yield a negative wait.
func (s Sequence) Delay(i int) time.Duration {
	if i <= 0 || i >= len(s) {
		return 0
	}

	return max(s[i].Timestamp.Sub(s[i-1].Timestamp), 0)
}

// Duration is the sum of all inter-event delays of one pass.
func (s Sequence) Duration() time.Duration {
	var total time.Duration
	for i := range s {
		total += s.Delay(i)
	}

	return total
}
