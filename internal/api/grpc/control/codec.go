package control

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/autoclicker/internal/domain/click"
)

// Wire field names.
const (
	fieldSlot           = "slot"
	fieldIntervalSecs   = "interval_seconds"
	fieldMode           = "mode"
	fieldX              = "x"
	fieldY              = "y"
	fieldRepeatCount    = "repeat_count"
	fieldPauseSeconds   = "pause_seconds"
	fieldMessage        = "message"
	fieldReferenceStart = "reference_start"
	fieldSlots          = "slots"
	fieldArmed          = "armed"
	fieldFires          = "fires"
	fieldFailures       = "failures"
	fieldRecording      = "recording"
	fieldRecorded       = "recorded_events"
	fieldPlayback       = "playback"
	fieldRunID          = "run_id"
	fieldRepeat         = "repeat"
	fieldStep           = "step"
	fieldLength         = "length"
)

// EncodeStartEmitter builds a StartEmitter request. A nil cfg asks for the
// slot's configured default. Slot is 1-based.
func EncodeStartEmitter(slot int, cfg *click.EmitterConfig) (*structpb.Struct, error) {
	fields := map[string]any{fieldSlot: slot}

	if cfg != nil {
		fields[fieldIntervalSecs] = cfg.Interval.Seconds()
		fields[fieldMode] = string(cfg.Target.Mode)
		fields[fieldX] = cfg.Target.Coordinate.X
		fields[fieldY] = cfg.Target.Coordinate.Y
	}

	return structpb.NewStruct(fields)
}

// DecodeStartEmitter parses a StartEmitter request into a 1-based slot and an
// optional configuration.
func DecodeStartEmitter(req *structpb.Struct) (int, *click.EmitterConfig, error) {
	slot, err := decodeSlot(req)
	if err != nil {
		return 0, nil, err
	}

	fields := req.GetFields()

	_, hasInterval := fields[fieldIntervalSecs]
	_, hasMode := fields[fieldMode]

	if !hasInterval && !hasMode {
		return slot, nil, nil
	}

	interval, err := durationField(fields, fieldIntervalSecs)
	if err != nil {
		return 0, nil, err
	}

	mode := click.TargetMode(str(fields, fieldMode))
	if mode == "" {
		mode = click.TargetPointer
	}

	cfg := &click.EmitterConfig{
		Interval: interval,
		Target:   click.Target{Mode: mode},
	}

	if cfg.Target.IsFixed() {
		x, err := intField(fields, fieldX)
		if err != nil {
			return 0, nil, err
		}

		y, err := intField(fields, fieldY)
		if err != nil {
			return 0, nil, err
		}

		cfg.Target.Coordinate = click.Coordinate{X: x, Y: y}
	}

	if err := cfg.Validate(); err != nil {
		return 0, nil, err
	}

	return slot, cfg, nil
}

// EncodeSlot builds a StopEmitter request. Slot is 1-based.
func EncodeSlot(slot int) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{fieldSlot: slot})
}

// DecodeSlot parses a StopEmitter request into a 1-based slot.
func DecodeSlot(req *structpb.Struct) (int, error) {
	return decodeSlot(req)
}

// EncodeStartPlayback builds a StartPlayback request. A nil cfg asks for the
// configured default.
func EncodeStartPlayback(cfg *click.PlaybackConfig) (*structpb.Struct, error) {
	fields := map[string]any{}

	if cfg != nil {
		fields[fieldRepeatCount] = cfg.RepeatCount
		fields[fieldPauseSeconds] = cfg.InterRepeatPause.Seconds()
	}

	return structpb.NewStruct(fields)
}

// DecodeStartPlayback parses a StartPlayback request.
func DecodeStartPlayback(req *structpb.Struct) (*click.PlaybackConfig, error) {
	fields := req.GetFields()
	if _, ok := fields[fieldRepeatCount]; !ok {
		return nil, nil //nolint:nilnil // Absent configuration selects the daemon default.
	}

	repeat, err := intField(fields, fieldRepeatCount)
	if err != nil {
		return nil, err
	}

	pause, err := durationField(fields, fieldPauseSeconds)
	if err != nil {
		return nil, err
	}

	cfg := &click.PlaybackConfig{RepeatCount: repeat, InterRepeatPause: pause}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EncodeStatus converts a status snapshot to its wire form.
func EncodeStatus(st *Status) (*structpb.Struct, error) {
	if st == nil {
		st = new(Status)
	}

	slots := make([]any, 0, len(st.Slots))
	for _, s := range st.Slots {
		slots = append(slots, map[string]any{
			fieldSlot:         s.Slot,
			fieldArmed:        s.Armed,
			fieldIntervalSecs: s.Interval.Seconds(),
			fieldMode:         string(s.Target.Mode),
			fieldX:            s.Target.Coordinate.X,
			fieldY:            s.Target.Coordinate.Y,
			fieldFires:        s.Fires,
			fieldFailures:     s.Failures,
		})
	}

	fields := map[string]any{
		fieldMessage:   st.Message,
		fieldSlots:     slots,
		fieldRecording: st.Recording,
		fieldRecorded:  st.RecordedEvents,
	}

	if !st.ReferenceStart.IsZero() {
		fields[fieldReferenceStart] = st.ReferenceStart.Format(time.RFC3339Nano)
	}

	if p := st.Playback; p != nil {
		fields[fieldPlayback] = map[string]any{
			fieldRunID:        p.RunID,
			fieldRepeat:       p.Repeat,
			fieldRepeatCount:  p.RepeatCount,
			fieldStep:         p.Step,
			fieldLength:       p.Length,
			fieldPauseSeconds: p.Pause.Seconds(),
		}
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}

	return out, nil
}

// DecodeStatus converts the wire form back to a status snapshot.
func DecodeStatus(in *structpb.Struct) (*Status, error) {
	fields := in.GetFields()

	st := &Status{
		Message:        str(fields, fieldMessage),
		Recording:      fields[fieldRecording].GetBoolValue(),
		RecordedEvents: int(number(fields, fieldRecorded)),
	}

	if ref := str(fields, fieldReferenceStart); ref != "" {
		at, err := time.Parse(time.RFC3339Nano, ref)
		if err != nil {
			return nil, fmt.Errorf("decode reference start: %w", err)
		}

		st.ReferenceStart = at
	}

	for _, v := range fields[fieldSlots].GetListValue().GetValues() {
		slot := v.GetStructValue().GetFields()

		st.Slots = append(st.Slots, SlotStatus{
			Slot:     int(number(slot, fieldSlot)),
			Armed:    slot[fieldArmed].GetBoolValue(),
			Interval: seconds2duration(number(slot, fieldIntervalSecs)),
			Target: click.Target{
				Mode: click.TargetMode(str(slot, fieldMode)),
				Coordinate: click.Coordinate{
					X: int(number(slot, fieldX)),
					Y: int(number(slot, fieldY)),
				},
			},
			Fires:    uint64(number(slot, fieldFires)),
			Failures: uint64(number(slot, fieldFailures)),
		})
	}

	if run := fields[fieldPlayback].GetStructValue(); run != nil {
		p := run.GetFields()

		st.Playback = &PlaybackStatus{
			RunID:       str(p, fieldRunID),
			Repeat:      int(number(p, fieldRepeat)),
			RepeatCount: int(number(p, fieldRepeatCount)),
			Step:        int(number(p, fieldStep)),
			Length:      int(number(p, fieldLength)),
			Pause:       seconds2duration(number(p, fieldPauseSeconds)),
		}
	}

	return st, nil
}

// decodeSlot reads a required positive integer slot.
func decodeSlot(req *structpb.Struct) (int, error) {
	v, ok := req.GetFields()[fieldSlot]
	if !ok {
		return 0, &click.ConfigError{Field: fieldSlot, Value: nil, Reason: "is required"}
	}

	n := v.GetNumberValue()
	if n < 1 || n != math.Trunc(n) {
		return 0, &click.ConfigError{Field: fieldSlot, Value: n, Reason: "must be a positive integer"}
	}

	return int(n), nil
}

// number returns a numeric field or zero.
func number(fields map[string]*structpb.Value, key string) float64 {
	return fields[key].GetNumberValue()
}

// str returns a string field or "".
func str(fields map[string]*structpb.Value, key string) string {
	return fields[key].GetStringValue()
}

// maxMillis is the largest millisecond count a time.Duration holds.
const maxMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// durationField reads fractional seconds from a request, rejecting values a
// time.Duration cannot hold.
func durationField(fields map[string]*structpb.Value, key string) (time.Duration, error) {
	seconds := number(fields, key)

	ms := math.Round(seconds * 1000)
	if math.IsNaN(ms) || math.Abs(ms) > maxMillis {
		return 0, &click.ConfigError{Field: key, Value: seconds, Reason: "is out of range"}
	}

	return time.Duration(ms) * time.Millisecond, nil
}

// intField reads an integer from a request, rejecting fractions and values
// outside the int range.
func intField(fields map[string]*structpb.Value, key string) (int, error) {
	n := number(fields, key)
	if n != math.Trunc(n) || n >= float64(math.MaxInt) || n < float64(math.MinInt) {
		return 0, &click.ConfigError{Field: key, Value: n, Reason: "must be an integer in range"}
	}

	return int(n), nil
}

// seconds2duration converts fractional seconds, rounding to the millisecond.
func seconds2duration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}
