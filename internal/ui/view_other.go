//go:build (!darwin || ios) && !windows

package ui

import "gioui.org/io/event"

// handleViewEvent is a no-op; native drops are not hooked on this platform.
func handleViewEvent(e event.Event) bool {
	return false
}
