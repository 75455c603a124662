package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/autoclicker/internal/clock"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/emitter"
	"github.com/oshokin/autoclicker/internal/service/sink"
	"github.com/oshokin/autoclicker/internal/service/status"
)

// DefaultSlots is the number of emitter slots when none is configured.
const DefaultSlots = 3

// Options configures a Controller.
type Options struct {
	// Slots is the number of emitter slots; zero means DefaultSlots.
	Slots int
	// Sink is shared by every emitter.
	Sink sink.Sink
	// Pointer resolves follow-pointer targets.
	Pointer sink.Pointer
	// Publisher receives status events.
	Publisher status.Publisher
	// Clock is the time source.
	Clock clock.Clock
	// PollInterval is passed to every emitter.
	PollInterval time.Duration
	// Tolerance is passed to every emitter.
	Tolerance time.Duration
}

// Controller starts and stops emitter slots without disturbing each other.
type Controller struct {
	clock    clock.Clock
	emitters []*emitter.Emitter

	// mu serializes slot transitions. Running emitters never take it.
	mu sync.Mutex

	// refMu guards reference and hasReference for readers outside transitions.
	refMu        sync.RWMutex
	reference    time.Time
	hasReference bool
}

// New creates a controller with opts.Slots idle emitters.
func New(opts Options) (*Controller, error) {
	if opts.Slots <= 0 {
		opts.Slots = DefaultSlots
	}

	c := &Controller{
		clock:    clock.OrSystem(opts.Clock),
		emitters: make([]*emitter.Emitter, opts.Slots),
	}

	for i := range c.emitters {
		e, err := emitter.New(emitter.Options{
			Slot:         i,
			Sink:         opts.Sink,
			Pointer:      opts.Pointer,
			Publisher:    opts.Publisher,
			Clock:        c.clock,
			PollInterval: opts.PollInterval,
			Tolerance:    opts.Tolerance,
		})
		if err != nil {
			return nil, fmt.Errorf("create emitter %d: %w", i+1, err)
		}

		c.emitters[i] = e
	}

	return c, nil
}

// Len returns the number of slots.
func (c *Controller) Len() int {
	return len(c.emitters)
}

// StartSlot arms slot i with cfg, setting the reference start if no slot is armed.
// Starting an armed slot reconfigures it against the same reference start.
func (c *Controller) StartSlot(ctx context.Context, i int, cfg click.EmitterConfig) error {
	if err := c.checkSlot(i); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.startLocked(ctx, i, cfg)
}

// StopSlot disarms slot i and clears the reference start if it was the last one.
func (c *Controller) StopSlot(ctx context.Context, i int) error {
	if err := c.checkSlot(i); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked(ctx, i)

	return nil
}

// ToggleSlot starts slot i with cfg when idle and stops it when armed.
// It returns whether the slot is armed afterwards.
func (c *Controller) ToggleSlot(ctx context.Context, i int, cfg click.EmitterConfig) (bool, error) {
	if err := c.checkSlot(i); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.emitters[i].Armed() {
		c.stopLocked(ctx, i)

		return false, nil
	}

	if err := cfg.Validate(); err != nil {
		return false, err
	}

	if err := c.startLocked(ctx, i, cfg); err != nil {
		return false, err
	}

	return true, nil
}

// startLocked arms slot i against the shared reference, setting it first if needed.
func (c *Controller) startLocked(ctx context.Context, i int, cfg click.EmitterConfig) error {
	reference, ok := c.Reference()
	if !ok {
		reference = c.clock.Now()
		c.setReference(reference, true)

		logger.DebugKV(ctx, "Reference start set", "slot", i+1)
	}

	if err := c.emitters[i].Arm(ctx, cfg, reference); err != nil {
		if !c.anyArmedLocked() {
			c.setReference(time.Time{}, false)
		}

		return err
	}

	return nil
}

// stopLocked disarms slot i and clears the reference after the last one.
func (c *Controller) stopLocked(ctx context.Context, i int) {
	c.emitters[i].Disarm(ctx)

	if !c.anyArmedLocked() {
		c.setReference(time.Time{}, false)
	}
}

// StopAll disarms every armed slot and clears the reference start.
// It is a no-op when nothing is armed.
func (c *Controller) StopAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.emitters {
		e.Disarm(ctx)
	}

	c.setReference(time.Time{}, false)
}

// Reference returns the shared reference start and whether one is set.
func (c *Controller) Reference() (time.Time, bool) {
	c.refMu.RLock()
	defer c.refMu.RUnlock()

	return c.reference, c.hasReference
}

// Slots returns a snapshot of every slot in index order.
func (c *Controller) Slots() []emitter.Snapshot {
	out := make([]emitter.Snapshot, len(c.emitters))
	for i, e := range c.emitters {
		out[i] = e.Snapshot()
	}

	return out
}

// ArmedCount returns how many slots are armed.
func (c *Controller) ArmedCount() int {
	var n int

	for _, e := range c.emitters {
		if e.Armed() {
			n++
		}
	}

	return n
}

// checkSlot rejects out-of-range slot indexes.
func (c *Controller) checkSlot(i int) error {
	if i < 0 || i >= len(c.emitters) {
		return &click.ConfigError{
			Field:  "slot",
			Value:  i + 1,
			Reason: fmt.Sprintf("must be between 1 and %d", len(c.emitters)),
		}
	}

	return nil
}

// anyArmedLocked reports whether any slot is armed. Callers hold c.mu.
func (c *Controller) anyArmedLocked() bool {
	for _, e := range c.emitters {
		if e.Armed() {
			return true
		}
	}

	return false
}

// setReference updates the shared reference start.
func (c *Controller) setReference(at time.Time, ok bool) {
	c.refMu.Lock()
	c.reference = at
	c.hasReference = ok
	c.refMu.Unlock()
}
