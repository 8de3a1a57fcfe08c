// Package playback drives the playhead over time. The clock ticks on its
// own goroutine while playing and pushes positions through the timeline
// model, so every observer sees the same seek events whether time came
// from the ticker, a scrub or an external source.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aklerup/keyline/internal/events"
	"github.com/aklerup/keyline/internal/logging"
	"github.com/aklerup/keyline/internal/models"
	"github.com/aklerup/keyline/internal/timeline"
)

// State is the transport state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Source selects who advances time while playing.
type Source int

const (
	// SourceInternal advances time from the clock's own ticker.
	SourceInternal Source = iota

	// SourceExternal disables the ticker; the host feeds positions in
	// through SetExternalTime, typically from an audio or video clock.
	SourceExternal
)

const (
	// TickInterval is the internal ticker period.
	TickInterval = 50 * time.Millisecond

	// MinSpeed and MaxSpeed bound the playback rate multiplier.
	MinSpeed = 0.25
	MaxSpeed = 2.0
)

// ErrInvalidSpeed is returned for non-positive speed values.
var ErrInvalidSpeed = errors.New("playback speed must be positive")

// Clock owns the transport state and advances the model's playhead.
type Clock struct {
	mu sync.Mutex

	model     *timeline.Model
	publisher events.Publisher
	logger    zerolog.Logger

	state  State
	speed  float64
	loop   bool
	source Source

	cancel context.CancelFunc
}

// Option configures a Clock.
type Option func(*Clock)

// WithClockPublisher wires transport event notifications.
func WithClockPublisher(p events.Publisher) Option {
	return func(c *Clock) {
		c.publisher = p
	}
}

// WithSource selects the time source.
func WithSource(s Source) Option {
	return func(c *Clock) {
		c.source = s
	}
}

// NewClock builds a stopped clock at speed 1.0 over the given model.
func NewClock(model *timeline.Model, opts ...Option) *Clock {
	c := &Clock{
		model:  model,
		speed:  1.0,
		logger: logging.Component("playback"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) publish(eventType models.EventType, speed float64) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(context.Background(), models.NewEvent(
		eventType, models.EntityTypePlayback, "clock",
		models.PlaybackPayload{Time: c.model.CurrentTime(), Speed: speed}))
}

// Play starts (or resumes) playback. With SourceInternal a ticker
// goroutine runs until Pause, Stop, end-of-timeline or ctx cancellation.
func (c *Clock) Play(ctx context.Context) {
	c.mu.Lock()
	if c.state == StatePlaying {
		c.mu.Unlock()
		return
	}
	c.state = StatePlaying
	speed := c.speed

	if c.source == SourceInternal {
		tickCtx, cancel := context.WithCancel(ctx)
		c.cancel = cancel
		go c.run(tickCtx)
	}
	c.mu.Unlock()

	c.logger.Debug().Float64("speed", speed).Msg("playback started")
	c.publish(models.EventTypePlaybackStarted, speed)
}

// Pause halts playback, keeping the playhead in place.
func (c *Clock) Pause() {
	c.mu.Lock()
	if c.state != StatePlaying {
		c.mu.Unlock()
		return
	}
	c.state = StatePaused
	c.stopTickerLocked()
	speed := c.speed
	c.mu.Unlock()

	c.publish(models.EventTypePlaybackPaused, speed)
}

// Stop halts playback and rewinds the playhead to zero.
func (c *Clock) Stop() {
	c.mu.Lock()
	c.state = StateStopped
	c.stopTickerLocked()
	speed := c.speed
	c.mu.Unlock()

	c.model.Seek(0)
	c.publish(models.EventTypePlaybackStopped, speed)
}

func (c *Clock) stopTickerLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// run advances the playhead on TickInterval boundaries using measured
// wall time, so a stalled goroutine catches up instead of drifting.
func (c *Clock) run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds()
			last = now
			if !c.Advance(elapsed) {
				return
			}
		}
	}
}

// Advance moves the playhead by delta (in seconds) scaled by the current
// speed. With looping enabled the position wraps into [0, duration);
// otherwise reaching the end clamps and stops the transport. Returns
// false once playback has stopped.
func (c *Clock) Advance(delta float64) bool {
	c.mu.Lock()
	if c.state != StatePlaying {
		c.mu.Unlock()
		return false
	}
	speed := c.speed
	loop := c.loop
	c.mu.Unlock()

	duration := c.model.TotalDuration()
	next := c.model.CurrentTime() + delta*speed

	if next < duration {
		c.model.Seek(next)
		return true
	}

	if loop {
		wrapped := math.Mod(next, duration)
		c.model.Seek(wrapped)
		c.publish(models.EventTypePlaybackLooped, speed)
		return true
	}

	c.mu.Lock()
	c.state = StateStopped
	c.stopTickerLocked()
	c.mu.Unlock()

	c.model.Seek(duration)
	c.publish(models.EventTypePlaybackStopped, speed)
	return false
}

// SetExternalTime feeds a position from an external clock. Only honored
// while playing from SourceExternal; positions past the end wrap when
// looping and otherwise clamp and stop, matching the internal ticker.
func (c *Clock) SetExternalTime(t float64) {
	c.mu.Lock()
	if c.state != StatePlaying || c.source != SourceExternal {
		c.mu.Unlock()
		return
	}
	loop := c.loop
	speed := c.speed
	c.mu.Unlock()

	duration := c.model.TotalDuration()
	if t >= duration {
		if loop {
			c.model.Seek(math.Mod(t, duration))
			c.publish(models.EventTypePlaybackLooped, speed)
			return
		}

		// Same end-of-timeline rule as the internal ticker.
		c.mu.Lock()
		c.state = StateStopped
		c.mu.Unlock()

		c.model.Seek(duration)
		c.publish(models.EventTypePlaybackStopped, speed)
		return
	}
	c.model.Seek(t)
}

// SetSpeed changes the rate multiplier, clamped to [MinSpeed, MaxSpeed].
// Non-positive values are rejected.
func (c *Clock) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("%w: %.3f", ErrInvalidSpeed, speed)
	}
	clamped := math.Max(MinSpeed, math.Min(speed, MaxSpeed))

	c.mu.Lock()
	c.speed = clamped
	c.mu.Unlock()
	return nil
}

// Speed returns the current rate multiplier.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetLoop toggles wrap-around at the end of the timeline.
func (c *Clock) SetLoop(loop bool) {
	c.mu.Lock()
	c.loop = loop
	c.mu.Unlock()
}

// Loop reports whether looping is enabled.
func (c *Clock) Loop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop
}

// State returns the transport state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
