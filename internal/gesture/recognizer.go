// Package gesture turns a stream of pointer samples into discrete shake
// events. Only horizontal reversals are counted.
package gesture

import (
	"time"

	"gioui.org/f32"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/notify"
)

// Sample is one pointer reading.
type Sample struct {
	Time time.Time
	Pos  f32.Point
}

// Config tunes the recognizer.
type Config struct {
	// MinVelocity is the horizontal displacement per tick, in pointer
	// units, above which a tick counts as movement.
	MinVelocity float32
	// Threshold is the number of direction changes that fire a shake.
	Threshold int
	// InactivityFrames is how many slow ticks are tolerated before the
	// count is discarded. Slow ticks in between let the velocity cross zero
	// during a reversal.
	InactivityFrames int
}

// DefaultConfig matches a 60 Hz sampler: 10 slow ticks is about 160 ms.
func DefaultConfig() Config {
	return Config{
		MinVelocity:      10,
		Threshold:        3,
		InactivityFrames: 10,
	}
}

// State is the recognizer's per-episode counters.
type State struct {
	LastDirection    int // -1 left, 1 right, 0 none
	DirectionChanges int
	StationaryFrames int
}

// ShakeEvent is emitted once per qualifying gesture.
type ShakeEvent struct {
	Time    time.Time
	Pos     f32.Point
	Changes int
}

// Recognizer is a stateful filter over samples. It is owned by the
// coordinating goroutine and is not safe for concurrent use.
type Recognizer struct {
	cfg     Config
	state   State
	prev    Sample
	hasPrev bool
	shakes  notify.List[ShakeEvent]
}

// NewRecognizer returns a recognizer with zeroed state. Zero fields in cfg
// fall back to DefaultConfig.
func NewRecognizer(cfg Config) *Recognizer {
	def := DefaultConfig()
	if cfg.MinVelocity <= 0 {
		cfg.MinVelocity = def.MinVelocity
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.InactivityFrames <= 0 {
		cfg.InactivityFrames = def.InactivityFrames
	}
	return &Recognizer{cfg: cfg}
}

// OnShake registers fn for shake events.
func (r *Recognizer) OnShake(fn func(ShakeEvent)) (unregister func()) {
	return r.shakes.Register(fn)
}

// Reset discards all counters and the previous sample.
func (r *Recognizer) Reset() {
	r.state = State{}
	r.prev = Sample{}
	r.hasPrev = false
}

// State returns a copy of the current counters.
func (r *Recognizer) State() State { return r.state }

// Config returns the effective configuration.
func (r *Recognizer) Config() Config { return r.cfg }

// Feed processes one sample and reports whether it fired a shake.
func (r *Recognizer) Feed(s Sample) bool {
	var dx float32
	if r.hasPrev {
		dx = s.Pos.X - r.prev.Pos.X
	}
	r.prev = s
	r.hasPrev = true

	debug.Log(debug.GESTURE_TICK, "dx=%.1f state=%+v", dx, r.state)

	if abs(dx) > r.cfg.MinVelocity {
		r.state.StationaryFrames = 0
		dir := 1
		if dx < 0 {
			dir = -1
		}
		if r.state.LastDirection != 0 && dir != r.state.LastDirection {
			r.state.DirectionChanges++
			debug.Log(debug.GESTURE, "Direction change: %d", r.state.DirectionChanges)
		}
		r.state.LastDirection = dir
	} else {
		r.state.StationaryFrames++
		if r.state.StationaryFrames > r.cfg.InactivityFrames {
			if r.state.DirectionChanges > 0 {
				debug.Log(debug.GESTURE, "Resetting due to inactivity")
			}
			r.state.DirectionChanges = 0
			r.state.LastDirection = 0
		}
	}

	if r.state.DirectionChanges < r.cfg.Threshold {
		return false
	}

	ev := ShakeEvent{Time: s.Time, Pos: s.Pos, Changes: r.state.DirectionChanges}
	// Re-arm before notifying so observers see a clean episode.
	r.state.DirectionChanges = 0
	r.state.StationaryFrames = 0
	debug.Log(debug.GESTURE, "Shake threshold reached at (%.0f, %.0f)", s.Pos.X, s.Pos.Y)
	r.shakes.Emit(ev)
	return true
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
