package gesture

import (
	"time"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/platform"
	"github.com/justyntemme/dropshelf/internal/tick"
)

// DefaultSampleHz is the pointer sampling rate.
const DefaultSampleHz = 60

// Consumer receives samples from a Sampler.
type Consumer interface {
	Feed(Sample) bool
	Reset()
}

// Sampler polls the pointer on a fixed period and forwards each reading to
// its consumer. Each tick is a single non-blocking read.
type Sampler struct {
	pointer  platform.Pointer
	consumer Consumer
	task     *tick.Task
}

// NewSampler samples p at hz ticks per second using sources from fn
// (nil selects a real ticker).
func NewSampler(p platform.Pointer, c Consumer, hz int, fn tick.Func) *Sampler {
	if hz <= 0 {
		hz = DefaultSampleHz
	}
	return &Sampler{
		pointer:  p,
		consumer: c,
		task:     tick.NewTask(time.Second/time.Duration(hz), fn),
	}
}

// Start begins sampling with a fresh consumer state. A second Start while
// running is a no-op.
func (s *Sampler) Start() {
	if !s.task.Start() {
		return
	}
	s.consumer.Reset()
	debug.Log(debug.GESTURE, "Sampler started (period %v)", s.task.Period())
}

// Stop cancels the periodic task, drops any pending tick and resets the
// consumer.
func (s *Sampler) Stop() {
	if !s.task.Running() {
		return
	}
	s.task.Stop()
	s.consumer.Reset()
	debug.Log(debug.GESTURE, "Sampler stopped")
}

// Running reports whether the sampler is active.
func (s *Sampler) Running() bool { return s.task.Running() }

// C is the tick channel to select on; nil while stopped.
func (s *Sampler) C() <-chan time.Time { return s.task.C() }

// Tick takes one sample. It is called by the coordinator for every value
// received from C.
func (s *Sampler) Tick(now time.Time) {
	if !s.task.Running() {
		return
	}
	s.consumer.Feed(Sample{Time: now, Pos: s.pointer.Location()})
}
