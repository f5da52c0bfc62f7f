package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/justyntemme/dropshelf/internal/app"
	"github.com/justyntemme/dropshelf/internal/drag"
	"github.com/justyntemme/dropshelf/internal/ingest"
	"github.com/justyntemme/dropshelf/internal/registry"
	"github.com/justyntemme/dropshelf/internal/store"
)

type fakeShelfSink struct {
	opts    registry.Options
	saved   map[string]string
	saveErr error
}

func (f *fakeShelfSink) Drop([]ingest.Payload) bool             { return true }
func (f *fakeShelfSink) Snapshot() []registry.Record            { return nil }
func (f *fakeShelfSink) Subscribe(func(registry.Change)) func() { return func() {} }
func (f *fakeShelfSink) Remove(string) bool                     { return true }
func (f *fakeShelfSink) ClearAll() bool                         { return true }
func (f *fakeShelfSink) BeginInternalDrag() bool                { return true }
func (f *fakeShelfSink) EndInternalDrag() bool                  { return true }
func (f *fakeShelfSink) OnDragEvent(func(drag.Event)) func()    { return func() {} }
func (f *fakeShelfSink) SetShelfVisible(bool) bool              { return true }
func (f *fakeShelfSink) Status() engine.Status                  { return engine.Status{} }
func (f *fakeShelfSink) Options() registry.Options              { return f.opts }

func (f *fakeShelfSink) SaveSetting(key, value string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[key] = value
	return nil
}

func TestShelfTogglesSaveSettings(t *testing.T) {
	sink := &fakeShelfSink{}
	s := NewShelfWindow(sink)

	s.saveToggle(store.KeyPreventDuplicates, false)
	s.saveToggle(store.KeyAutoCleanup, true)

	assert.Equal(t, map[string]string{
		store.KeyPreventDuplicates: "false",
		store.KeyAutoCleanup:       "true",
	}, sink.saved)

	sink.saveErr = errors.New("queue full")
	s.saveToggle(store.KeyAutoCleanup, false)
	msg, kind, visible := s.toast.Current(time.Now())
	require.True(t, visible)
	assert.Equal(t, ToastError, kind)
	assert.Equal(t, "Cannot save setting", msg)
}

func TestShelfTogglesFollowOptions(t *testing.T) {
	sink := &fakeShelfSink{opts: registry.Options{Deduplicate: true, AutoCleanup: false}}
	s := NewShelfWindow(sink)

	s.handleChange(registry.Change{Kind: registry.OptionsChanged})
	s.syncToggles()
	assert.True(t, s.dedup.Value)
	assert.False(t, s.autoCleanup.Value)

	// A user toggle sticks until the options change again.
	s.dedup.Value = false
	s.syncToggles()
	assert.False(t, s.dedup.Value)

	sink.opts.AutoCleanup = true
	s.handleChange(registry.Change{Kind: registry.OptionsChanged})
	s.syncToggles()
	assert.True(t, s.dedup.Value)
	assert.True(t, s.autoCleanup.Value)
}

func TestShelfInternalDragEnded(t *testing.T) {
	s := NewShelfWindow(&fakeShelfSink{})

	assert.False(t, s.handleDragEvent(drag.Event{Kind: drag.EventStateChanged}))
	assert.False(t, s.takeDragEnded())

	assert.True(t, s.handleDragEvent(drag.Event{Kind: drag.EventInternalDragEnded}))
	assert.True(t, s.takeDragEnded())
	assert.False(t, s.takeDragEnded())
}

func TestHeaderText(t *testing.T) {
	assert.Equal(t, "3 items", headerText(3, engine.Status{}))
	assert.Equal(t, "3 items · 2 resolving", headerText(3, engine.Status{Pending: 2}))
}

func TestDragSourceCancel(t *testing.T) {
	d := DragSource{dragStarted: true}
	d.Cancel()
	assert.False(t, d.Dragging())
}
