// Package platform exposes the narrow OS surfaces the drag engine polls:
// the global pointer and the system drag pasteboard.
package platform

import "gioui.org/f32"

// Pointer reports the global pointer position and primary button state.
// Both calls must be cheap and non-blocking; they run at 60 Hz.
type Pointer interface {
	Location() f32.Point
	Pressed() bool
}

// Pasteboard describes the content advertised by an in-progress drag.
type Pasteboard interface {
	// Types returns the descriptor tags currently on the drag pasteboard.
	Types() []string
	// FileURLs returns concrete file paths readable from the pasteboard.
	FileURLs() []string
}

// Null is a Pointer and Pasteboard that never reports a drag. It is used on
// platforms without global pointer access.
type Null struct{}

func (Null) Location() f32.Point { return f32.Point{} }
func (Null) Pressed() bool       { return false }
func (Null) Types() []string     { return nil }
func (Null) FileURLs() []string  { return nil }
