package ui

import (
	"fmt"
	"image"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	engine "github.com/justyntemme/dropshelf/internal/app"
	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/drag"
	"github.com/justyntemme/dropshelf/internal/ingest"
	"github.com/justyntemme/dropshelf/internal/platform"
	"github.com/justyntemme/dropshelf/internal/registry"
	"github.com/justyntemme/dropshelf/internal/store"
)

// ShelfSink is what the shelf window drives.
type ShelfSink interface {
	Drop(payloads []ingest.Payload) bool
	Snapshot() []registry.Record
	Subscribe(fn func(registry.Change)) (unregister func())
	Remove(path string) bool
	ClearAll() bool
	BeginInternalDrag() bool
	EndInternalDrag() bool
	OnDragEvent(fn func(drag.Event)) (unregister func())
	SetShelfVisible(visible bool) bool
	Status() engine.Status
	Options() registry.Options
	SaveSetting(key, value string) error
}

// ShelfWindow lists the shelf, newest first. Rows can be dragged out, and
// anything dropped on the window is added.
type ShelfWindow struct {
	sink ShelfSink
	th   *material.Theme

	mu        sync.Mutex
	records   []registry.Record
	opts      registry.Options
	optsDirty bool // opts changed since the toggles were last synced
	dragEnded bool // the monitor ended our drag out

	rows        map[uuid.UUID]*shelfRow
	list        widget.List
	clear       widget.Clickable
	dedup       widget.Bool
	autoCleanup widget.Bool
	target      dropTarget
	toast       Toast
}

type shelfRow struct {
	drag   DragSource
	open   widget.Clickable
	reveal widget.Clickable
	remove widget.Clickable
	size   string
}

// NewShelfWindow returns a shelf window; call Run to open it.
func NewShelfWindow(sink ShelfSink) *ShelfWindow {
	s := &ShelfWindow{
		sink: sink,
		th:   material.NewTheme(),
		rows: make(map[uuid.UUID]*shelfRow),
	}
	s.list.Axis = layout.Vertical
	return s
}

// Run opens the window and blocks until it is closed.
func (s *ShelfWindow) Run() error {
	w := new(app.Window)
	w.Option(app.Title("Dropshelf"), app.Size(unit.Dp(360), unit.Dp(480)))

	s.setRecords(s.sink.Snapshot())
	s.setOptions(s.sink.Options())
	unregister := s.sink.Subscribe(func(ch registry.Change) {
		s.handleChange(ch)
		w.Invalidate()
	})
	defer unregister()
	offDrag := s.sink.OnDragEvent(func(e drag.Event) {
		if s.handleDragEvent(e) {
			w.Invalidate()
		}
	})
	defer offDrag()

	s.sink.SetShelfVisible(true)
	defer s.sink.SetShelfVisible(false)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			debug.Log(debug.UI, "Shelf window closed")
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			s.update(gtx)
			s.layout(gtx)
			e.Frame(gtx.Ops)
		default:
			handleViewEvent(e)
		}
	}
}

func (s *ShelfWindow) setRecords(records []registry.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]registry.Record(nil), records...)
}

func (s *ShelfWindow) snapshot() []registry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

func (s *ShelfWindow) setOptions(opts registry.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
	s.optsDirty = true
}

// handleChange runs on the coordinating goroutine.
func (s *ShelfWindow) handleChange(ch registry.Change) {
	s.setRecords(ch.Records)
	switch ch.Kind {
	case registry.Expired:
		s.toast.Show("Expired items removed", ToastInfo)
	case registry.OptionsChanged:
		s.setOptions(s.sink.Options())
	}
}

// handleDragEvent runs on the coordinating goroutine and reports whether
// the window needs a redraw.
func (s *ShelfWindow) handleDragEvent(e drag.Event) bool {
	if e.Kind != drag.EventInternalDragEnded {
		return false
	}
	s.mu.Lock()
	s.dragEnded = true
	s.mu.Unlock()
	return true
}

// syncToggles copies stored options into the toggles after they change.
func (s *ShelfWindow) syncToggles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.optsDirty {
		return
	}
	s.dedup.Value = s.opts.Deduplicate
	s.autoCleanup.Value = s.opts.AutoCleanup
	s.optsDirty = false
}

// takeDragEnded reports and clears a drag end seen by the monitor.
func (s *ShelfWindow) takeDragEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ended := s.dragEnded
	s.dragEnded = false
	return ended
}

// saveToggle persists one boolean preference.
func (s *ShelfWindow) saveToggle(key string, value bool) {
	if err := s.sink.SaveSetting(key, strconv.FormatBool(value)); err != nil {
		log.Printf("Settings Error: %v", err)
		s.toast.Show("Cannot save setting", ToastError)
	}
}

func (s *ShelfWindow) update(gtx layout.Context) {
	if s.clear.Clicked(gtx) {
		s.sink.ClearAll()
		s.toast.Show("Shelf cleared", ToastInfo)
	}
	if s.dedup.Update(gtx) {
		s.saveToggle(store.KeyPreventDuplicates, s.dedup.Value)
	}
	if s.autoCleanup.Update(gtx) {
		s.saveToggle(store.KeyAutoCleanup, s.autoCleanup.Value)
	}
	s.syncToggles()
	if s.takeDragEnded() {
		for _, r := range s.rows {
			r.drag.Cancel()
		}
	}
	if payloads := s.target.Update(gtx); len(payloads) > 0 {
		s.sink.Drop(payloads)
	}
}

// headerText summarizes the shelf for the window header.
func headerText(n int, st engine.Status) string {
	text := fmt.Sprintf("%d items", n)
	if st.Pending > 0 {
		text += fmt.Sprintf(" · %d resolving", st.Pending)
	}
	return text
}

// row returns the widget state for rec, creating it on first use.
func (s *ShelfWindow) row(rec registry.Record) *shelfRow {
	if r, ok := s.rows[rec.ID]; ok {
		return r
	}
	r := &shelfRow{drag: DragSource{Type: MIMEURIList}}
	if info, err := os.Stat(rec.Path); err == nil {
		r.size = humanize.Bytes(uint64(info.Size()))
	}
	s.rows[rec.ID] = r
	return r
}

// pruneRows drops widget state for records no longer on the shelf.
func (s *ShelfWindow) pruneRows(records []registry.Record) {
	live := make(map[uuid.UUID]bool, len(records))
	for _, rec := range records {
		live[rec.ID] = true
	}
	for id := range s.rows {
		if !live[id] {
			delete(s.rows, id)
		}
	}
}

func (s *ShelfWindow) layout(gtx layout.Context) layout.Dimensions {
	records := s.snapshot()
	s.pruneRows(records)

	paint.Fill(gtx.Ops, colSidebar)
	s.target.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Dimensions{Size: gtx.Constraints.Max}
	})

	layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						lbl := material.Subtitle1(s.th, headerText(len(records), s.sink.Status()))
						lbl.Font.Weight = font.Bold
						return lbl.Layout(gtx)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						btn := material.Button(s.th, &s.clear, "Clear")
						btn.Background = colDanger
						return btn.Layout(gtx)
					}),
				)
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(material.CheckBox(s.th, &s.dedup, "No duplicates").Layout),
					layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
					layout.Rigid(material.CheckBox(s.th, &s.autoCleanup, "Auto-expire").Layout),
				)
			})
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			if len(records) == 0 {
				return layout.Center.Layout(gtx, material.Body1(s.th, "Drop files here").Layout)
			}
			return material.List(s.th, &s.list).Layout(gtx, len(records), func(gtx layout.Context, i int) layout.Dimensions {
				return s.layoutRow(gtx, records[i])
			})
		}),
	)
	return s.toast.Layout(gtx, s.th)
}

func (s *ShelfWindow) layoutRow(gtx layout.Context, rec registry.Record) layout.Dimensions {
	r := s.row(rec)

	if r.remove.Clicked(gtx) {
		s.sink.Remove(rec.Path)
	}
	if r.open.Clicked(gtx) {
		if err := platform.Open(rec.Path); err != nil {
			log.Printf("Error opening file: %v", err)
			s.toast.Show("Cannot open "+filepath.Base(rec.Path), ToastError)
		}
	}
	if r.reveal.Clicked(gtx) {
		if err := platform.Reveal(rec.Path); err != nil {
			log.Printf("Error revealing file: %v", err)
		}
	}
	if mime, ok := r.drag.Update(gtx); ok {
		r.drag.Offer(gtx, mime, io.NopCloser(strings.NewReader(fileURL(rec.Path)+"\r\n")))
	}

	name := filepath.Base(rec.Path)
	detail := humanize.Time(rec.AddedAt)
	if r.size != "" {
		detail = r.size + " · " + detail
	}

	dims, phase := r.drag.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Top: unit.Dp(4), Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							return material.Clickable(gtx, &r.open, material.Body1(s.th, name).Layout)
						}),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							lbl := material.Caption(s.th, detail)
							lbl.Color = colGray
							return lbl.Layout(gtx)
						}),
					)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					btn := material.Button(s.th, &r.reveal, "Show")
					btn.Background = colLightGray
					btn.Color = colGray
					btn.Inset = layout.UniformInset(unit.Dp(4))
					return layout.Inset{Right: unit.Dp(4)}.Layout(gtx, btn.Layout)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					btn := material.Button(s.th, &r.remove, "×")
					btn.Background = colLightGray
					btn.Color = colGray
					btn.Inset = layout.UniformInset(unit.Dp(4))
					return btn.Layout(gtx)
				}),
			)
		})
	}, func(gtx layout.Context) layout.Dimensions {
		return dragShadow(gtx, s.th, name)
	})

	switch phase {
	case DragBegan:
		debug.Log(debug.UI, "Dragging %s out of shelf", name)
		s.sink.BeginInternalDrag()
	case DragEnded:
		s.sink.EndInternalDrag()
	}
	return dims
}

// dragShadow is the label that follows the pointer while a row is dragged.
func dragShadow(gtx layout.Context, th *material.Theme, name string) layout.Dimensions {
	macro := op.Record(gtx.Ops)
	dims := layout.UniformInset(unit.Dp(6)).Layout(gtx, material.Body2(th, name).Layout)
	call := macro.Stop()

	rr := gtx.Dp(unit.Dp(4))
	paint.FillShape(gtx.Ops, colSelected, clip.RRect{
		Rect: image.Rectangle{Max: dims.Size},
		NE:   rr, NW: rr, SE: rr, SW: rr,
	}.Op(gtx.Ops))
	call.Add(gtx.Ops)
	return dims
}

// fileURL renders path as a file:// URL for text/uri-list offers.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
