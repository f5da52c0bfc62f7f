// Package app wires the drag-coordination engine together and runs it on a
// single coordinating goroutine.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"gioui.org/f32"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dropshelf/internal/config"
	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/drag"
	"github.com/justyntemme/dropshelf/internal/gesture"
	"github.com/justyntemme/dropshelf/internal/ingest"
	"github.com/justyntemme/dropshelf/internal/platform"
	"github.com/justyntemme/dropshelf/internal/registry"
	"github.com/justyntemme/dropshelf/internal/store"
	"github.com/justyntemme/dropshelf/internal/surface"
	"github.com/justyntemme/dropshelf/internal/tick"
)

// cleanupInterval is how often expired shelf entries are swept while idle.
const cleanupInterval = time.Hour

// ShelfWatcher tracks shelf files and reports the ones that disappear.
type ShelfWatcher interface {
	Sync(paths []string)
	Gone() <-chan string
	Close() error
}

// Deps are the collaborators of a Coordinator. Only Config is required;
// nil platform sources fall back to platform.Null and a nil Overlay makes
// shakes log only.
type Deps struct {
	Config     config.Config
	Pointer    platform.Pointer
	Pasteboard platform.Pasteboard
	Overlay    surface.Overlay
	Store      *store.DB    // optional settings store
	Watcher    ShelfWatcher // optional
	TempRoot   string       // overrides Config.Ingest.TempDirName

	SamplerTicks tick.Func // nil selects real tickers
	MonitorTicks tick.Func
}

// ShelfOptions converts the config file's shelf section. Stored settings
// are applied on top once the store answers.
func ShelfOptions(cfg config.ShelfConfig) registry.Options {
	return registry.Options{
		MaxEntries:   cfg.MaxRecentItems,
		ExpiryWindow: cfg.ExpiryWindow(),
		Deduplicate:  cfg.PreventDuplicates,
		AutoCleanup:  cfg.AutoCleanup,
	}
}

// Status is a point-in-time summary for logs and the status line.
type Status struct {
	Entries        int
	Pending        int
	DragState      drag.State
	SurfaceVisible bool
	ShelfVisible   bool
}

// Coordinator owns every state transition of the engine. All of its
// components run on the goroutine executing Run; other goroutines reach
// them only through the exported methods, which post work to that
// goroutine.
type Coordinator struct {
	cfg      config.Config
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once

	recognizer *gesture.Recognizer
	sampler    *gesture.Sampler
	monitor    *drag.Monitor
	surface    *surface.Controller
	registry   *registry.Registry
	pipeline   *ingest.Pipeline
	temp       *ingest.TempDir
	store      *store.DB
	watcher    ShelfWatcher

	baseOptions  registry.Options
	shelfVisible bool
	unsubscribe  []func()

	statusMu sync.RWMutex
	status   Status
}

// NewCoordinator builds the engine. Nothing runs until Run is called.
func NewCoordinator(d Deps) *Coordinator {
	if d.Pointer == nil {
		d.Pointer = platform.Null{}
	}
	if d.Pasteboard == nil {
		d.Pasteboard = platform.Null{}
	}
	cfg := d.Config
	root := d.TempRoot
	if root == "" {
		root = ingest.DefaultTempRoot(cfg.Ingest.TempDirName)
	}

	c := &Coordinator{
		cfg:     cfg,
		tasks:   make(chan func(), 64),
		done:    make(chan struct{}),
		temp:    ingest.NewTempDir(root, nil),
		store:   d.Store,
		watcher: d.Watcher,
	}

	c.baseOptions = ShelfOptions(cfg.Shelf)
	c.registry = registry.New(c.baseOptions, c.temp)
	c.pipeline = ingest.NewPipeline(context.Background(), c.temp, c, func(path string) {
		c.registry.Add(path)
	})

	c.recognizer = gesture.NewRecognizer(gesture.Config{
		MinVelocity:      cfg.Gesture.MinVelocity,
		Threshold:        cfg.Gesture.Threshold,
		InactivityFrames: cfg.Gesture.InactivityFrames,
	})
	c.sampler = gesture.NewSampler(d.Pointer, c.recognizer, cfg.Gesture.SampleHz, d.SamplerTicks)
	c.monitor = drag.NewMonitor(drag.Config{
		PollInterval:       cfg.Drag.PollInterval(),
		InvalidStreakLimit: cfg.Drag.InvalidStreakLimit,
	}, d.Pointer, d.Pasteboard, visibility{c}, d.MonitorTicks)

	overlay := d.Overlay
	if overlay == nil {
		overlay = logOverlay{}
	}
	offset := f32.Point{X: cfg.Surface.OffsetX, Y: cfg.Surface.OffsetY}
	c.surface = surface.NewController(overlay, visibility{c}, d.Pointer, offset)

	c.unsubscribe = append(c.unsubscribe,
		c.surface.Attach(c.recognizer, c.monitor),
		c.registry.Subscribe(c.onRegistryChange),
		c.monitor.Subscribe(c.onDragEvent),
	)
	return c
}

// visibility answers the monitor's and the surface controller's questions
// about which surfaces are up. Only used on the coordinating goroutine.
type visibility struct{ c *Coordinator }

func (v visibility) SurfaceVisible() bool { return v.c.surface.Visible() }
func (v visibility) ShelfVisible() bool   { return v.c.shelfVisible }
func (v visibility) Visible() bool        { return v.c.shelfVisible }

// logOverlay stands in when no window system is available.
type logOverlay struct{}

func (logOverlay) Show(at f32.Point) error {
	log.Printf("Drop surface requested at (%.0f, %.0f)", at.X, at.Y)
	return nil
}
func (logOverlay) Hide() {}

// Post queues fn for the coordinating goroutine. It reports false once the
// coordinator has shut down.
func (c *Coordinator) Post(fn func()) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.tasks <- fn:
		return true
	case <-c.done:
		return false
	}
}

// Run serves the engine until ctx is cancelled. It must be called once.
func (c *Coordinator) Run(ctx context.Context) error {
	debug.Log(debug.APP, "Coordinator starting")

	var storeResp <-chan store.Response
	if c.store != nil {
		go c.store.Start()
		storeResp = c.store.ResponseChan
		c.store.RequestChan <- store.Request{Op: store.FetchSettings}
	}

	c.registry.Cleanup()
	c.sampler.Start()
	c.monitor.Start()
	c.publishStatus()

	var gone <-chan string
	if c.watcher != nil {
		gone = c.watcher.Gone()
	}
	sweep := time.NewTicker(cleanupInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()

		case now := <-c.sampler.C():
			c.sampler.Tick(now)

		case <-c.monitor.C():
			c.monitor.Poll()

		case fn := <-c.tasks:
			fn()

		case path, ok := <-gone:
			if !ok {
				gone = nil
				continue
			}
			debug.Log(debug.WATCH, "Removing vanished shelf file %s", path)
			c.registry.Remove(path)

		case resp := <-storeResp:
			c.handleStoreResponse(resp)

		case <-sweep.C:
			c.registry.Cleanup()
		}
		c.publishStatus()
	}
}

func (c *Coordinator) shutdown() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.sampler.Stop()
		c.monitor.Stop()
		c.surface.Hide()
		for _, off := range c.unsubscribe {
			off()
		}
		if c.watcher != nil {
			if err := c.watcher.Close(); err != nil {
				debug.Log(debug.WATCH, "Watcher close: %v", err)
			}
		}
		if c.store != nil {
			close(c.store.RequestChan)
		}
		debug.Log(debug.APP, "Coordinator stopped (%d pending payloads dropped)", c.pipeline.Pending())
	})
}

func (c *Coordinator) handleStoreResponse(resp store.Response) {
	if resp.Err != nil {
		log.Printf("Store Error: %v", resp.Err)
		return
	}
	if resp.Op != store.FetchSettings {
		return
	}
	opts := store.ApplySettings(c.baseOptions, resp.Settings)
	if opts == c.registry.Options() {
		return
	}
	debug.Log(debug.APP, "Applying shelf settings %+v", opts)
	c.registry.SetOptions(opts)
}

func (c *Coordinator) onRegistryChange(ch registry.Change) {
	if c.watcher == nil {
		return
	}
	paths := make([]string, len(ch.Records))
	for i, r := range ch.Records {
		paths[i] = r.Path
	}
	c.watcher.Sync(paths)
}

func (c *Coordinator) onDragEvent(e drag.Event) {
	if e.Kind == drag.EventInternalDragEnded {
		debug.Log(debug.APP, "Internal drag ended by button release")
	}
}

func (c *Coordinator) publishStatus() {
	s := Status{
		Entries:        c.registry.Len(),
		Pending:        c.pipeline.Pending(),
		DragState:      c.monitor.State(),
		SurfaceVisible: c.surface.Visible(),
		ShelfVisible:   c.shelfVisible,
	}
	c.statusMu.Lock()
	c.status = s
	c.statusMu.Unlock()
}

// Status returns the state as of the last loop iteration. Safe from any
// goroutine.
func (c *Coordinator) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}

// Snapshot returns the shelf, newest first. Safe from any goroutine.
func (c *Coordinator) Snapshot() []registry.Record {
	return c.registry.Snapshot()
}

// Options returns the shelf options in effect. Safe from any goroutine.
func (c *Coordinator) Options() registry.Options {
	return c.registry.Options()
}

// Subscribe registers fn for shelf changes. fn runs on the coordinating
// goroutine.
func (c *Coordinator) Subscribe(fn func(registry.Change)) (unregister func()) {
	return c.registry.Subscribe(fn)
}

// OnDragEvent registers fn for drag monitor events. fn runs on the
// coordinating goroutine.
func (c *Coordinator) OnDragEvent(fn func(drag.Event)) (unregister func()) {
	return c.monitor.Subscribe(fn)
}

// Drop ingests the payloads of one drop.
func (c *Coordinator) Drop(payloads []ingest.Payload) bool {
	return c.Post(func() {
		n := c.pipeline.Ingest(payloads)
		debug.Log(debug.APP, "Drop of %d payloads: %d added now, %d resolving", len(payloads), n, c.pipeline.Pending())
	})
}

// BeginInternalDrag must be called when the shelf starts dragging one of
// its own files out.
func (c *Coordinator) BeginInternalDrag() bool {
	return c.Post(c.monitor.BeginInternalDrag)
}

// EndInternalDrag must be called when that drag finishes.
func (c *Coordinator) EndInternalDrag() bool {
	return c.Post(c.monitor.EndInternalDrag)
}

// Remove takes path off the shelf.
func (c *Coordinator) Remove(path string) bool {
	return c.Post(func() { c.registry.Remove(path) })
}

// ClearAll empties the shelf and deletes the temp area. Promises still
// resolving are discarded when they complete.
func (c *Coordinator) ClearAll() bool {
	return c.Post(func() {
		c.pipeline.Invalidate()
		if files, size, err := c.temp.Usage(); err == nil && files > 0 {
			log.Printf("Clearing shelf: removing %d temp files (%s)", files, humanize.Bytes(uint64(size)))
		}
		c.registry.ClearAll()
	})
}

// SetShelfVisible records whether the main shelf window is on screen.
func (c *Coordinator) SetShelfVisible(visible bool) bool {
	return c.Post(func() {
		c.shelfVisible = visible
		if visible {
			c.surface.Hide()
		}
	})
}

// SurfaceClosed records that the overlay was closed by the window system.
func (c *Coordinator) SurfaceClosed() bool {
	return c.Post(c.surface.MarkHidden)
}

// SaveSetting persists one shelf preference and applies it to the live
// shelf once the store confirms.
func (c *Coordinator) SaveSetting(key, value string) error {
	if err := store.Validate(key, value); err != nil {
		return err
	}
	c.Post(func() {
		if c.store == nil {
			c.registry.SetOptions(store.ApplySettings(c.registry.Options(), map[string]string{key: value}))
			return
		}
		select {
		case c.store.RequestChan <- store.Request{Op: store.SaveSetting, Key: key, Value: value}:
		default:
			log.Printf("Store Error: request queue full, %s not saved", key)
		}
	})
	return nil
}
