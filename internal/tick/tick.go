// Package tick abstracts the periodic tasks that drive pointer sampling and
// drag polling, so a coordinator can serve them from one select loop and
// tests can fire ticks by hand.
package tick

import "time"

// Source delivers ticks on C until stopped.
type Source interface {
	C() <-chan time.Time
	Stop()
}

// Func creates a Source firing every d.
type Func func(d time.Duration) Source

// Real is the default Func backed by time.Ticker.
func Real(d time.Duration) Source {
	return &timeTicker{t: time.NewTicker(d)}
}

type timeTicker struct {
	t *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// Task is a restartable periodic task. It is not safe for concurrent use;
// it belongs to the coordinating goroutine.
type Task struct {
	period time.Duration
	newSrc Func
	src    Source
}

// NewTask returns a stopped task. A nil fn selects Real.
func NewTask(period time.Duration, fn Func) *Task {
	if fn == nil {
		fn = Real
	}
	return &Task{period: period, newSrc: fn}
}

// Start begins ticking. It reports false if the task was already running.
func (t *Task) Start() bool {
	if t.src != nil {
		return false
	}
	t.src = t.newSrc(t.period)
	return true
}

// Stop invalidates the source and discards a tick that is already pending.
func (t *Task) Stop() {
	if t.src == nil {
		return
	}
	t.src.Stop()
	select {
	case <-t.src.C():
	default:
	}
	t.src = nil
}

// Running reports whether the task has been started and not stopped.
func (t *Task) Running() bool { return t.src != nil }

// Period returns the tick interval.
func (t *Task) Period() time.Duration { return t.period }

// C returns the tick channel, or nil while stopped. Receiving from a nil
// channel blocks forever, so a stopped task drops out of a select.
func (t *Task) C() <-chan time.Time {
	if t.src == nil {
		return nil
	}
	return t.src.C()
}

// Manual is a Source fired explicitly with Fire. Useful in tests.
type Manual struct {
	ch      chan time.Time
	stopped bool
}

// NewManual returns a Manual source with room for one pending tick.
func NewManual() *Manual {
	return &Manual{ch: make(chan time.Time, 1)}
}

// Func returns a tick.Func that always hands out m.
func (m *Manual) Func() Func {
	return func(time.Duration) Source {
		m.stopped = false
		return m
	}
}

func (m *Manual) C() <-chan time.Time { return m.ch }
func (m *Manual) Stop()               { m.stopped = true }

// Stopped reports whether Stop was called since the last Func hand-out.
func (m *Manual) Stopped() bool { return m.stopped }

// Fire queues a tick unless one is already pending or the source is stopped.
func (m *Manual) Fire(now time.Time) bool {
	if m.stopped {
		return false
	}
	select {
	case m.ch <- now:
		return true
	default:
		return false
	}
}
