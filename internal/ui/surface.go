// Package ui holds the Gio windows: the floating drop surface summoned by a
// shake, and the shelf window listing what was dropped.
package ui

import (
	"fmt"
	"image"
	"sync"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/justyntemme/dropshelf/internal/config"
	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/ingest"
	"github.com/justyntemme/dropshelf/internal/registry"
)

// SurfaceSink receives what the floating surface collects.
type SurfaceSink interface {
	Drop(payloads []ingest.Payload) bool
	Snapshot() []registry.Record
	SurfaceClosed() bool
}

// FloatingSurface is a borderless window that accepts drops. Show and Hide
// may be called from any goroutine; each Show after a Hide opens a new
// window.
type FloatingSurface struct {
	sink SurfaceSink
	cfg  config.SurfaceConfig
	th   *material.Theme

	mu  sync.Mutex
	win *app.Window
	at  f32.Point

	target dropTarget
	close  widget.Clickable
	toast  Toast
}

// NewFloatingSurface returns a hidden surface. Bind must be called before
// the first Show.
func NewFloatingSurface(cfg config.SurfaceConfig) *FloatingSurface {
	return &FloatingSurface{
		cfg: cfg,
		th:  material.NewTheme(),
	}
}

// Bind sets where drops and close notifications go.
func (s *FloatingSurface) Bind(sink SurfaceSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Show opens the surface, or raises it if already open. Gio cannot place a
// window at absolute coordinates, so at is recorded and the window is
// centered instead.
func (s *FloatingSurface) Show(at f32.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.at = at
	if s.win != nil {
		s.win.Perform(system.ActionRaise)
		return nil
	}
	w := new(app.Window)
	s.win = w
	go s.loop(w)
	debug.Log(debug.UI, "Surface window opened for pointer (%.0f, %.0f)", at.X, at.Y)
	return nil
}

// Hide closes the surface window.
func (s *FloatingSurface) Hide() {
	s.mu.Lock()
	w := s.win
	s.win = nil
	s.mu.Unlock()
	if w != nil {
		w.Perform(system.ActionClose)
	}
}

// Visible reports whether a surface window is open.
func (s *FloatingSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.win != nil
}

func (s *FloatingSurface) loop(w *app.Window) {
	w.Option(
		app.Title("Dropshelf"),
		app.Size(unit.Dp(s.cfg.Width), unit.Dp(s.cfg.Height)),
		app.Decorated(false),
	)
	w.Perform(system.ActionCenter | system.ActionRaise)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			s.destroyed(w)
			return
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			if s.close.Clicked(gtx) {
				w.Perform(system.ActionClose)
			}
			if payloads := s.target.Update(gtx); len(payloads) > 0 {
				if s.sink.Drop(payloads) {
					s.toast.Show(fmt.Sprintf("Added %d to shelf", len(payloads)), ToastSuccess)
				}
			}
			s.layout(gtx)
			e.Frame(gtx.Ops)
		default:
			handleViewEvent(e)
		}
	}
}

// destroyed runs when w is gone. Windows closed by Hide, or replaced by a
// later Show, are not reported back.
func (s *FloatingSurface) destroyed(w *app.Window) {
	s.mu.Lock()
	ours := s.win == w
	if ours {
		s.win = nil
	}
	s.mu.Unlock()
	if ours {
		debug.Log(debug.UI, "Surface window closed by user")
		s.sink.SurfaceClosed()
	}
}

func (s *FloatingSurface) layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	rr := gtx.Dp(unit.Dp(12))
	shape := clip.RRect{Rect: image.Rectangle{Max: size}, NE: rr, NW: rr, SE: rr, SW: rr}

	fill := colSurfaceBg
	if s.target.active {
		fill = colHoverDrop
	}
	paint.FillShape(gtx.Ops, fill, shape.Op(gtx.Ops))
	paint.FillShape(gtx.Ops, colSurfaceLine, clip.Stroke{
		Path:  shape.Path(gtx.Ops),
		Width: float32(gtx.Dp(unit.Dp(2))),
	}.Op())

	count := len(s.sink.Snapshot())
	layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return s.target.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{Size: gtx.Constraints.Max}
			})
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						lbl := material.H6(s.th, "Drop files here")
						lbl.Color = colAccent
						return lbl.Layout(gtx)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						lbl := material.Caption(s.th, fmt.Sprintf("%d on shelf", count))
						lbl.Color = colGray
						return lbl.Layout(gtx)
					}),
				)
			})
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return layout.NE.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				btn := material.Button(s.th, &s.close, "×")
				btn.Background = colLightGray
				btn.Color = colGray
				btn.Inset = layout.UniformInset(unit.Dp(4))
				return layout.UniformInset(unit.Dp(4)).Layout(gtx, btn.Layout)
			})
		}),
	)
	return s.toast.Layout(gtx, s.th)
}
