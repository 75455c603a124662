package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
)

// FormatStatus renders a status snapshot for the terminal.
func FormatStatus(st *control.Status) string {
	if st == nil {
		return "<no status>\n"
	}

	var b strings.Builder

	if st.Message != "" {
		fmt.Fprintln(&b, st.Message)
	}

	if st.ReferenceStart.IsZero() {
		fmt.Fprintln(&b, "Reference start: none")
	} else {
		fmt.Fprintf(&b, "Reference start: %s\n", st.ReferenceStart.Local().Format(time.TimeOnly))
	}

	for _, s := range st.Slots {
		if !s.Armed {
			fmt.Fprintf(&b, "  slot %d: idle (fires %d, failures %d)\n", s.Slot, s.Fires, s.Failures)

			continue
		}

		fmt.Fprintf(&b, "  slot %d: every %s, %s (fires %d, failures %d)\n",
			s.Slot, s.Interval, s.Target, s.Fires, s.Failures)
	}

	recording := "idle"
	if st.Recording {
		recording = "recording"
	}

	fmt.Fprintf(&b, "Recorder: %s, %d events\n", recording, st.RecordedEvents)

	if p := st.Playback; p != nil {
		fmt.Fprintf(&b, "Playback %s: repeat %d/%d, step %d/%d\n", p.RunID, p.Repeat, p.RepeatCount, p.Step, p.Length)
	} else {
		fmt.Fprintln(&b, "Playback: idle")
	}

	return b.String()
}
