package drag

import (
	"time"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/notify"
	"github.com/justyntemme/dropshelf/internal/platform"
	"github.com/justyntemme/dropshelf/internal/tick"
)

// State is the drag session classification.
type State int

const (
	Idle State = iota
	ExternalDragActive
	InternalDragActive
)

func (s State) String() string {
	switch s {
	case ExternalDragActive:
		return "external"
	case InternalDragActive:
		return "internal"
	default:
		return "idle"
	}
}

// EventKind identifies a monitor event.
type EventKind int

const (
	// EventStateChanged is sent on every State transition.
	EventStateChanged EventKind = iota
	// EventHideSurface asks the drop surface to hide.
	EventHideSurface
	// EventInternalDragEnded is sent when an internal drag session ends,
	// explicitly or because the button was released.
	EventInternalDragEnded
)

// HideReason explains an EventHideSurface.
type HideReason int

const (
	ReasonButtonReleased HideReason = iota
	ReasonNoDragContent
)

func (r HideReason) String() string {
	if r == ReasonNoDragContent {
		return "no-drag-content"
	}
	return "button-released"
}

// Event is delivered to monitor subscribers.
type Event struct {
	Kind   EventKind
	From   State
	To     State
	Reason HideReason
	Match  Match
}

// Visibility reports which of the application's own surfaces are showing.
type Visibility interface {
	// SurfaceVisible reports whether the floating drop surface is shown.
	SurfaceVisible() bool
	// ShelfVisible reports whether the main shelf window is shown.
	ShelfVisible() bool
}

// Config tunes the monitor.
type Config struct {
	PollInterval time.Duration
	// InvalidStreakLimit is how many consecutive polls without drag
	// content hide a visible surface.
	InvalidStreakLimit int
}

// DefaultConfig polls at about 12.5 Hz.
func DefaultConfig() Config {
	return Config{
		PollInterval:       80 * time.Millisecond,
		InvalidStreakLimit: 2,
	}
}

// Monitor classifies the current moment as idle, external drag or internal
// drag. Internal drags are entered only through BeginInternalDrag and left
// only through EndInternalDrag or a released button; pasteboard content
// never moves the state away from InternalDragActive.
//
// Monitor belongs to the coordinating goroutine and is not safe for
// concurrent use.
type Monitor struct {
	cfg     Config
	pointer platform.Pointer
	pb      platform.Pasteboard
	vis     Visibility
	task    *tick.Task

	state         State
	internal      bool
	validStreak   int
	invalidStreak int
	lastMatch     Match

	events notify.List[Event]
}

// NewMonitor creates a stopped monitor. vis may be nil when no surfaces
// exist.
func NewMonitor(cfg Config, p platform.Pointer, pb platform.Pasteboard, vis Visibility, fn tick.Func) *Monitor {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.InvalidStreakLimit <= 0 {
		cfg.InvalidStreakLimit = def.InvalidStreakLimit
	}
	return &Monitor{
		cfg:     cfg,
		pointer: p,
		pb:      pb,
		vis:     vis,
		task:    tick.NewTask(cfg.PollInterval, fn),
	}
}

// Subscribe registers fn for monitor events.
func (m *Monitor) Subscribe(fn func(Event)) (unregister func()) {
	return m.events.Register(fn)
}

// Start begins polling from a clean state. Starting twice is a no-op.
func (m *Monitor) Start() {
	if !m.task.Start() {
		return
	}
	m.reset()
	debug.Log(debug.DRAG, "Monitor started (interval %v)", m.task.Period())
}

// Stop cancels polling and tears down session state.
func (m *Monitor) Stop() {
	if !m.task.Running() {
		return
	}
	m.task.Stop()
	m.reset()
	debug.Log(debug.DRAG, "Monitor stopped")
}

func (m *Monitor) reset() {
	m.state = Idle
	m.internal = false
	m.validStreak = 0
	m.invalidStreak = 0
	m.lastMatch = MatchNone
}

// C is the poll channel to select on; nil while stopped.
func (m *Monitor) C() <-chan time.Time { return m.task.C() }

// State returns the current classification.
func (m *Monitor) State() State { return m.state }

// LastMatch returns the rule that matched on the most recent classification.
func (m *Monitor) LastMatch() Match { return m.lastMatch }

// Streaks returns the consecutive valid and invalid poll counts.
func (m *Monitor) Streaks() (valid, invalid int) {
	return m.validStreak, m.invalidStreak
}

// BeginInternalDrag marks the start of a drag the application itself
// initiated.
func (m *Monitor) BeginInternalDrag() {
	m.internal = true
	m.validStreak = 0
	m.invalidStreak = 0
	m.setState(InternalDragActive, MatchNone)
	debug.Log(debug.DRAG, "Internal drag started")
}

// EndInternalDrag ends the application's own drag. It is a no-op when no
// internal drag is active.
func (m *Monitor) EndInternalDrag() {
	if !m.internal {
		return
	}
	m.internal = false
	m.setState(Idle, MatchNone)
	debug.Log(debug.DRAG, "Internal drag ended")
	m.events.Emit(Event{Kind: EventInternalDragEnded, From: InternalDragActive, To: Idle})
}

// Poll runs one classification step and returns the resulting state.
func (m *Monitor) Poll() State {
	if !m.pointer.Pressed() {
		m.EndInternalDrag()
		if m.surfaceVisible() {
			m.hide(ReasonButtonReleased)
		}
		m.validStreak = 0
		m.invalidStreak = 0
		m.setState(Idle, MatchNone)
		return m.state
	}

	if m.internal {
		m.validStreak = 0
		m.invalidStreak = 0
		return m.state
	}
	if m.vis != nil && m.vis.ShelfVisible() {
		m.validStreak = 0
		m.invalidStreak = 0
		m.setState(Idle, MatchNone)
		return m.state
	}

	match := Classify(m.pb)
	debug.Log(debug.DRAG_TICK, "Classified drag content: %s", match)
	if match != MatchNone {
		m.invalidStreak = 0
		m.validStreak++
		m.setState(ExternalDragActive, match)
		return m.state
	}

	m.validStreak = 0
	m.invalidStreak++
	m.setState(Idle, MatchNone)
	if m.invalidStreak >= m.cfg.InvalidStreakLimit && m.surfaceVisible() {
		m.hide(ReasonNoDragContent)
	}
	return m.state
}

func (m *Monitor) surfaceVisible() bool {
	return m.vis != nil && m.vis.SurfaceVisible()
}

func (m *Monitor) hide(reason HideReason) {
	debug.Log(debug.DRAG, "Requesting surface hide: %s", reason)
	m.events.Emit(Event{Kind: EventHideSurface, From: m.state, To: m.state, Reason: reason})
}

func (m *Monitor) setState(s State, match Match) {
	m.lastMatch = match
	if s == m.state {
		return
	}
	from := m.state
	m.state = s
	debug.Log(debug.DRAG, "State %s -> %s (match %s)", from, s, match)
	m.events.Emit(Event{Kind: EventStateChanged, From: from, To: s, Match: match})
}
