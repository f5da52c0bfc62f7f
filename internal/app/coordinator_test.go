package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dropshelf/internal/config"
	"github.com/justyntemme/dropshelf/internal/drag"
	"github.com/justyntemme/dropshelf/internal/ingest"
	"github.com/justyntemme/dropshelf/internal/store"
	"github.com/justyntemme/dropshelf/internal/tick"
)

type fakePointer struct {
	mu      sync.Mutex
	pos     f32.Point
	pressed bool
}

func (p *fakePointer) Location() f32.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *fakePointer) Pressed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pressed
}

func (p *fakePointer) set(x float32, pressed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = f32.Point{X: x, Y: 50}
	p.pressed = pressed
}

type fakePasteboard struct {
	mu    sync.Mutex
	types []string
}

func (p *fakePasteboard) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.types
}

func (p *fakePasteboard) FileURLs() []string { return nil }

func (p *fakePasteboard) set(types ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = types
}

type fakeOverlay struct {
	mu    sync.Mutex
	shows []f32.Point
	hides int
}

func (o *fakeOverlay) Show(at f32.Point) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.shows = append(o.shows, at)
	return nil
}

func (o *fakeOverlay) Hide() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hides++
}

func (o *fakeOverlay) counts() (shows, hides int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.shows), o.hides
}

type fakeWatcher struct {
	mu     sync.Mutex
	synced []string
	gone   chan string
	closed bool
}

func (w *fakeWatcher) Sync(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.synced = append([]string(nil), paths...)
}

func (w *fakeWatcher) Gone() <-chan string { return w.gone }

func (w *fakeWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWatcher) tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.synced
}

type harness struct {
	t          *testing.T
	c          *Coordinator
	pointer    *fakePointer
	pasteboard *fakePasteboard
	overlay    *fakeOverlay
	samples    *tick.Manual
	polls      *tick.Manual
	cancel     context.CancelFunc
	stopped    chan struct{}
}

func newHarness(t *testing.T, mutate func(*Deps)) *harness {
	t.Helper()
	h := &harness{
		t:          t,
		pointer:    &fakePointer{},
		pasteboard: &fakePasteboard{},
		overlay:    &fakeOverlay{},
		samples:    tick.NewManual(),
		polls:      tick.NewManual(),
		stopped:    make(chan struct{}),
	}
	d := Deps{
		Config:       *config.DefaultConfig(),
		Pointer:      h.pointer,
		Pasteboard:   h.pasteboard,
		Overlay:      h.overlay,
		TempRoot:     filepath.Join(t.TempDir(), "Dropshelf"),
		SamplerTicks: h.samples.Func(),
		MonitorTicks: h.polls.Func(),
	}
	if mutate != nil {
		mutate(&d)
	}
	h.c = NewCoordinator(d)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		defer close(h.stopped)
		h.c.Run(ctx)
	}()
	t.Cleanup(h.stop)
	h.sync()
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.stopped
}

// sync returns once everything queued before it has run.
func (h *harness) sync() {
	h.t.Helper()
	done := make(chan struct{})
	require.True(h.t, h.c.Post(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		h.t.Fatal("coordinator did not respond")
	}
}

func (h *harness) fire(m *tick.Manual) {
	h.t.Helper()
	require.True(h.t, m.Fire(time.Now()))
	require.Eventually(h.t, func() bool { return len(m.C()) == 0 }, 5*time.Second, time.Millisecond)
	h.sync()
}

// shake moves the pointer through a left-right pattern with the button
// held, enough for one trigger at the default threshold.
func (h *harness) shake() {
	for _, x := range []float32{100, 120, 100, 120, 100} {
		h.pointer.set(x, true)
		h.fire(h.samples)
	}
}

func TestShakeDuringExternalDragShowsSurface(t *testing.T) {
	h := newHarness(t, nil)
	h.pasteboard.set("public.file-url")
	h.pointer.set(100, true)
	h.fire(h.polls)
	require.Equal(t, drag.ExternalDragActive, h.c.Status().DragState)

	h.shake()

	shows, _ := h.overlay.counts()
	assert.Equal(t, 1, shows)
	assert.True(t, h.c.Status().SurfaceVisible)
	h.overlay.mu.Lock()
	assert.Equal(t, f32.Point{X: 120, Y: 70}, h.overlay.shows[0])
	h.overlay.mu.Unlock()

	h.pointer.set(100, false)
	h.fire(h.polls)

	_, hides := h.overlay.counts()
	assert.Equal(t, 1, hides)
	assert.False(t, h.c.Status().SurfaceVisible)
	assert.Equal(t, drag.Idle, h.c.Status().DragState)
}

func TestShakeWithoutDragContentIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.pointer.set(100, true)
	h.fire(h.polls)

	h.shake()

	shows, _ := h.overlay.counts()
	assert.Zero(t, shows)
}

func TestInternalDragSuppressesSurface(t *testing.T) {
	h := newHarness(t, nil)
	h.pasteboard.set("public.file-url", "NSFilenamesPboardType")
	h.pointer.set(100, true)
	require.True(t, h.c.BeginInternalDrag())
	h.sync()
	h.fire(h.polls)
	require.Equal(t, drag.InternalDragActive, h.c.Status().DragState)

	h.shake()

	shows, _ := h.overlay.counts()
	assert.Zero(t, shows)
	assert.Equal(t, drag.InternalDragActive, h.c.Status().DragState)

	var ended int
	h.c.Post(func() {
		h.c.OnDragEvent(func(e drag.Event) {
			if e.Kind == drag.EventInternalDragEnded {
				ended++
			}
		})
	})
	h.sync()
	h.pointer.set(100, false)
	h.fire(h.polls)

	assert.Equal(t, drag.Idle, h.c.Status().DragState)
	h.sync()
	assert.Equal(t, 1, ended)
}

func TestShelfVisibleKeepsSurfaceAway(t *testing.T) {
	h := newHarness(t, nil)
	h.pasteboard.set("public.file-url")
	h.pointer.set(100, true)
	require.True(t, h.c.SetShelfVisible(true))
	h.sync()
	h.fire(h.polls)

	assert.Equal(t, drag.Idle, h.c.Status().DragState)
	h.shake()
	shows, _ := h.overlay.counts()
	assert.Zero(t, shows)
}

func TestDropReferencesAndPromises(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	promise := ingest.DeferredPromise{Resolver: ingest.ResolverFunc(func(ctx context.Context, dest string) (string, error) {
		path := filepath.Join(dest, "promised.pdf")
		return path, os.WriteFile(path, []byte("%PDF"), 0o644)
	})}

	require.True(t, h.c.Drop([]ingest.Payload{ingest.DirectReference{Path: a}, promise}))
	h.sync()

	require.Eventually(t, func() bool { return len(h.c.Snapshot()) == 2 }, 5*time.Second, time.Millisecond)
	snap := h.c.Snapshot()
	assert.Equal(t, "promised.pdf", filepath.Base(snap[0].Path))
	assert.Equal(t, a, snap[1].Path)
}

func TestClearAllDiscardsLatePromise(t *testing.T) {
	h := newHarness(t, nil)
	gate := make(chan struct{})
	late := ingest.DeferredPromise{Resolver: ingest.ResolverFunc(func(ctx context.Context, dest string) (string, error) {
		<-gate
		return filepath.Join(dest, "late.png"), nil
	})}
	raw := ingest.RawContent{TypeHint: "public.png", Data: []byte("png")}

	h.c.Drop([]ingest.Payload{raw})
	require.Eventually(t, func() bool { return len(h.c.Snapshot()) == 1 }, 5*time.Second, time.Millisecond)

	h.c.Drop([]ingest.Payload{late})
	require.True(t, h.c.ClearAll())
	h.sync()
	assert.Empty(t, h.c.Snapshot())

	close(gate)
	require.Eventually(t, func() bool { return h.c.Status().Pending == 0 }, 5*time.Second, time.Millisecond)
	h.sync()
	assert.Empty(t, h.c.Snapshot())
}

func TestWatcherRemovesVanishedFiles(t *testing.T) {
	w := &fakeWatcher{gone: make(chan string, 1)}
	h := newHarness(t, func(d *Deps) { d.Watcher = w })
	a := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))

	h.c.Drop([]ingest.Payload{ingest.DirectReference{Path: a}})
	h.sync()
	assert.Equal(t, []string{a}, w.tracked())

	w.gone <- a
	require.Eventually(t, func() bool { return len(h.c.Snapshot()) == 0 }, 5*time.Second, time.Millisecond)
	h.sync()
	assert.Empty(t, w.tracked())

	h.stop()
	w.mu.Lock()
	assert.True(t, w.closed)
	w.mu.Unlock()
}

func TestSettingsAppliedFromStore(t *testing.T) {
	db := store.NewDB()
	require.NoError(t, db.Open(filepath.Join(t.TempDir(), "settings.db")))
	t.Cleanup(db.Close)
	require.NoError(t, db.Save(store.KeyMaxRecentItems, "5"))

	h := newHarness(t, func(d *Deps) { d.Store = db })
	require.Eventually(t, func() bool { return h.c.registry.Options().MaxEntries == 5 }, 5*time.Second, time.Millisecond)

	require.NoError(t, h.c.SaveSetting(store.KeyMaxRecentItems, "2"))
	require.Eventually(t, func() bool { return h.c.Options().MaxEntries == 2 }, 5*time.Second, time.Millisecond)

	assert.Error(t, h.c.SaveSetting(store.KeyMaxRecentItems, "many"))
}

func TestPostAfterShutdown(t *testing.T) {
	h := newHarness(t, nil)
	h.stop()

	assert.False(t, h.c.Post(func() {}))
	assert.False(t, h.c.Drop(nil))
	assert.False(t, h.c.ClearAll())
	assert.True(t, h.samples.Stopped())
	assert.True(t, h.polls.Stopped())
}
