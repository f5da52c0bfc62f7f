//go:build windows && !arm64

package platform

// Windows drag-and-drop implementation using WM_DROPFILES.
// This uses DragAcceptFiles + window subclassing to receive dropped files.
// Unlike IDropTarget, this doesn't require external thread callbacks.

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/justyntemme/dropshelf/internal/debug"
	"golang.org/x/sys/windows"
)

const wmDropFiles = 0x0233

// Subclass ID for our handler
const dropSubclassID = 1

var (
	shell32  = windows.NewLazySystemDLL("shell32.dll")
	comctl32 = windows.NewLazySystemDLL("comctl32.dll")

	procDragAcceptFiles   = shell32.NewProc("DragAcceptFiles")
	procDragQueryFileW    = shell32.NewProc("DragQueryFileW")
	procDragFinish        = shell32.NewProc("DragFinish")
	procSetWindowSubclass = comctl32.NewProc("SetWindowSubclass")
	procDefSubclassProc   = comctl32.NewProc("DefSubclassProc")

	// One callback for every window; NewCallback slots are never freed.
	subclassOnce     sync.Once
	subclassCallback uintptr
)

// dropSubclassProc handles WM_DROPFILES messages
// Signature for SetWindowSubclass: SUBCLASSPROC(HWND, UINT, WPARAM, LPARAM, UINT_PTR uIdSubclass, DWORD_PTR dwRefData)
func dropSubclassProc(hwnd uintptr, msg uint32, wParam, lParam, uIdSubclass, dwRefData uintptr) uintptr {
	if msg == wmDropFiles {
		deliverDrop(FileItems(dropFiles(wParam)))
		return 0
	}
	ret, _, _ := procDefSubclassProc.Call(hwnd, uintptr(msg), wParam, lParam)
	return ret
}

// dropFiles extracts file paths from an HDROP and releases it.
func dropFiles(hDrop uintptr) []string {
	defer procDragFinish.Call(hDrop)

	count, _, _ := procDragQueryFileW.Call(hDrop, 0xFFFFFFFF, 0, 0)
	debug.Log(debug.UI, "[Windows DnD] Drop contains %d files", count)

	var paths []string
	for i := uintptr(0); i < count; i++ {
		size, _, _ := procDragQueryFileW.Call(hDrop, i, 0, 0)
		if size == 0 {
			continue
		}
		buf := make([]uint16, size+1)
		procDragQueryFileW.Call(hDrop, i, uintptr(unsafe.Pointer(&buf[0])), size+1)
		paths = append(paths, windows.UTF16ToString(buf))
	}
	return paths
}

// SetupExternalDrop configures the window to accept external file drops.
// Call it when a Win32ViewEvent with a valid HWND arrives.
func SetupExternalDrop(hwnd uintptr) {
	if hwnd == 0 {
		return
	}
	debug.Log(debug.UI, "[Windows DnD] SetupExternalDrop hwnd=0x%x (cgo %v)", hwnd, CgoEnabled())

	procDragAcceptFiles.Call(hwnd, 1)

	subclassOnce.Do(func() {
		subclassCallback = syscall.NewCallback(dropSubclassProc)
	})
	ret, _, err := procSetWindowSubclass.Call(hwnd, subclassCallback, dropSubclassID, 0)
	if ret == 0 {
		debug.Log(debug.UI, "[Windows DnD] SetWindowSubclass failed: %v", err)
	}
}
