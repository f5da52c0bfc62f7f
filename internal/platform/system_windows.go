//go:build windows

package platform

import (
	"unsafe"

	"gioui.org/f32"
	"golang.org/x/sys/windows"
)

const vkLButton = 0x01

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

type point struct {
	X, Y int32
}

// cursor reads the pointer through user32. Windows has no global drag
// pasteboard to inspect, so Types and FileURLs report nothing.
type cursor struct{ Null }

// NewSystem returns the user32-backed pointer and an empty pasteboard.
func NewSystem() (Pointer, Pasteboard) {
	return cursor{}, Null{}
}

func (cursor) Location() f32.Point {
	var p point
	if ret, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p))); ret == 0 {
		return f32.Point{}
	}
	return f32.Point{X: float32(p.X), Y: float32(p.Y)}
}

func (cursor) Pressed() bool {
	state, _, _ := procGetAsyncKeyState.Call(vkLButton)
	return state&0x8000 != 0
}
