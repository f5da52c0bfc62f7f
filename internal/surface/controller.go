// Package surface owns the lifecycle of the floating drop surface that a
// shake summons during an external drag.
package surface

import (
	"log"

	"gioui.org/f32"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/drag"
	"github.com/justyntemme/dropshelf/internal/gesture"
	"github.com/justyntemme/dropshelf/internal/platform"
)

// DefaultOffset places the surface down and to the right of the pointer.
var DefaultOffset = f32.Point{X: 20, Y: 20}

// Overlay is the borderless window the controller shows and hides.
type Overlay interface {
	Show(at f32.Point) error
	Hide()
}

// ShelfWindow reports whether the main shelf window is showing. Only one
// surface solicits drops at a time.
type ShelfWindow interface {
	Visible() bool
}

// Controller shows the overlay near the pointer and hides it again.
// It belongs to the coordinating goroutine.
type Controller struct {
	overlay Overlay
	shelf   ShelfWindow
	pointer platform.Pointer
	offset  f32.Point
	visible bool
}

// NewController returns a hidden controller. shelf may be nil.
func NewController(o Overlay, shelf ShelfWindow, p platform.Pointer, offset f32.Point) *Controller {
	return &Controller{overlay: o, shelf: shelf, pointer: p, offset: offset}
}

// Visible reports whether the overlay is showing.
func (c *Controller) Visible() bool { return c.visible }

// Show displays the overlay at the pointer plus the offset. It is a no-op
// while the overlay or the shelf window is already visible.
func (c *Controller) Show() {
	if c.visible {
		return
	}
	if c.shelf != nil && c.shelf.Visible() {
		debug.Log(debug.SURFACE, "Show skipped: shelf window visible")
		return
	}
	at := c.pointer.Location().Add(c.offset)
	if err := c.overlay.Show(at); err != nil {
		log.Printf("Surface Error: %v", err)
		return
	}
	c.visible = true
	debug.Log(debug.SURFACE, "Drop surface shown at (%.0f, %.0f)", at.X, at.Y)
}

// Hide removes the overlay. Hiding a hidden overlay does nothing.
func (c *Controller) Hide() {
	if !c.visible {
		return
	}
	c.overlay.Hide()
	c.visible = false
	debug.Log(debug.SURFACE, "Drop surface hidden")
}

// MarkHidden records that the overlay went away on its own (for example
// the user closed it) without calling Overlay.Hide.
func (c *Controller) MarkHidden() {
	c.visible = false
}

// Attach subscribes the controller to shake events, shown only while the
// monitor reports an external drag, and to the monitor's hide requests.
// The returned function detaches both subscriptions.
func (c *Controller) Attach(r *gesture.Recognizer, m *drag.Monitor) (detach func()) {
	offShake := r.OnShake(func(gesture.ShakeEvent) {
		// The monitor polls slower than the sampler; refresh before gating.
		if m.Poll() != drag.ExternalDragActive {
			debug.Log(debug.SURFACE, "Shake ignored: drag state %s", m.State())
			return
		}
		c.Show()
	})
	offDrag := m.Subscribe(func(e drag.Event) {
		if e.Kind == drag.EventHideSurface {
			c.Hide()
		}
	})
	return func() {
		offShake()
		offDrag()
	}
}
