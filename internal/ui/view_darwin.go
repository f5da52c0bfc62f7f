//go:build darwin && !ios

package ui

import (
	"gioui.org/app"
	"gioui.org/io/event"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/platform"
)

// handleViewEvent hooks native file drops into the window's NSView.
func handleViewEvent(e event.Event) bool {
	switch evt := e.(type) {
	case app.AppKitViewEvent:
		if evt.Valid() {
			debug.Log(debug.UI, "AppKitViewEvent received, view=%v", evt.View)
			platform.SetupExternalDrop(evt.View)
		}
		return true
	}
	return false
}
