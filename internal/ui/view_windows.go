//go:build windows

package ui

import (
	"gioui.org/app"
	"gioui.org/io/event"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/platform"
)

// handleViewEvent hooks WM_DROPFILES into the window.
func handleViewEvent(e event.Event) bool {
	switch evt := e.(type) {
	case app.Win32ViewEvent:
		if evt.Valid() {
			debug.Log(debug.UI, "Win32ViewEvent received, hwnd=%v", evt.HWND)
			platform.SetupExternalDrop(evt.HWND)
		}
		return true
	}
	return false
}
