package ui

import (
	"io"

	"gioui.org/f32"
	"gioui.org/gesture"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/io/transfer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
)

// DragPhase reports how a DragSource's drag changed during one Layout.
type DragPhase int

const (
	DragNone DragPhase = iota
	DragBegan
	DragEnded
)

// DragSource makes a widget draggable and offers data of Type to drop
// targets. gesture.Drag waits for a small movement threshold before it
// grabs the pointer, so a press alone never starts a drag.
//
// Offers go through Gio's transfer package, which only reaches drop targets
// inside this process. Dragging a row to Finder or Explorer is not
// supported; the shelf's Open and Reveal buttons cover that case.
type DragSource struct {
	// Type contains the MIME type for drag-and-drop transfers
	Type string

	drag gesture.Drag

	clickPos f32.Point // Position where drag started
	dragPos  f32.Point // Current drag position (relative to start)

	pid         pointer.ID
	dragStarted bool
}

// Dragging reports whether a drag is in progress.
func (d *DragSource) Dragging() bool {
	return d.dragStarted
}

// Cancel forgets a started drag whose release this widget will not see,
// for example when the button was let go outside the window.
func (d *DragSource) Cancel() {
	d.dragStarted = false
}

// Pos returns the current drag position relative to the start.
func (d *DragSource) Pos() f32.Point {
	return d.dragPos
}

// Update returns the MIME type of a pending data request, if any.
// Call this before Layout to handle transfer.RequestEvent.
func (d *DragSource) Update(gtx layout.Context) (mime string, requested bool) {
	for {
		ev, ok := gtx.Event(transfer.SourceFilter{Target: d, Type: d.Type})
		if !ok {
			break
		}
		if e, ok := ev.(transfer.RequestEvent); ok {
			return e.Type, true
		}
	}
	return "", false
}

// Offer provides data for a drag-and-drop transfer.
func (d *DragSource) Offer(gtx layout.Context, mime string, data io.ReadCloser) {
	gtx.Execute(transfer.OfferCmd{Tag: d, Type: mime, Data: data})
}

// Layout renders w, and shadow at the pointer while dragging. The returned
// phase is DragBegan on the frame the drag threshold is crossed and
// DragEnded on the frame a started drag is released or cancelled.
func (d *DragSource) Layout(gtx layout.Context, w, shadow layout.Widget) (layout.Dimensions, DragPhase) {
	if !gtx.Enabled() {
		return w(gtx), DragNone
	}

	phase := DragNone
	for {
		e, ok := d.drag.Update(gtx.Metric, gtx.Source, gesture.Both)
		if !ok {
			break
		}
		switch e.Kind {
		case pointer.Press:
			d.clickPos = e.Position
			d.dragPos = f32.Point{}
			d.pid = e.PointerID
			d.dragStarted = false
		case pointer.Drag:
			if e.PointerID == d.pid {
				if !d.dragStarted {
					phase = DragBegan
				}
				d.dragStarted = true
				d.dragPos = e.Position.Sub(d.clickPos)
			}
		case pointer.Release, pointer.Cancel:
			if d.dragStarted {
				phase = DragEnded
			}
			d.dragStarted = false
		}
	}

	dims := w(gtx)

	// Hit area for next frame's events
	defer clip.Rect{Max: dims.Size}.Push(gtx.Ops).Pop()
	d.drag.Add(gtx.Ops)
	event.Op(gtx.Ops, d)

	if shadow != nil && d.drag.Pressed() && d.dragStarted {
		rec := op.Record(gtx.Ops)
		op.Offset(d.dragPos.Round()).Add(gtx.Ops)
		shadow(gtx)
		op.Defer(gtx.Ops, rec.Stop())
	}

	return dims, phase
}
