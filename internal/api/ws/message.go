package ws

import (
	"time"

	"github.com/oshokin/autoclicker/internal/service/status"
)

// Message is the JSON form of a status event.
type Message struct {
	Time      time.Time `json:"time"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Slot      *int      `json:"slot,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	ElapsedMS *int64    `json:"elapsed_ms,omitempty"`
	X         *int      `json:"x,omitempty"`
	Y         *int      `json:"y,omitempty"`
	Repeat    int       `json:"repeat,omitempty"`
	Step      int       `json:"step,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NewMessage converts a status event. Slots become 1-based.
func NewMessage(e status.Event) Message {
	msg := Message{
		Time:    e.Time,
		Kind:    string(e.Kind),
		Message: e.Message,
		RunID:   e.RunID,
		Repeat:  e.Repeat,
		Step:    e.Step,
	}

	if e.Slot != status.NoSlot {
		slot := e.Slot + 1
		msg.Slot = &slot
	}

	if e.Kind == status.EmitterFired || e.Kind == status.EmitterFailed {
		elapsed := e.Elapsed.Milliseconds()
		msg.ElapsedMS = &elapsed
	}

	if e.Coordinate != nil {
		x, y := e.Coordinate.X, e.Coordinate.Y
		msg.X, msg.Y = &x, &y
	}

	if e.Err != nil {
		msg.Error = e.Err.Error()
	}

	return msg
}
