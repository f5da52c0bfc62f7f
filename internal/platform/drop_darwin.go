//go:build darwin && !ios

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework Foundation

#include <stdint.h>
#include <stdlib.h>

void dropshelf_setupExternalDrop(uintptr_t viewPtr);
char *dropshelf_receivePromise(uintptr_t handle, const char *destDir, char **errOut);
void dropshelf_releasePromise(uintptr_t handle);
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

var nativeDrop dropBuilder

// SetupExternalDrop configures the NSView to accept external drops of
// files, file promises and image data.
// This should be called when AppKitViewEvent is received with a valid View pointer.
func SetupExternalDrop(viewPtr uintptr) {
	if viewPtr == 0 {
		return
	}
	C.dropshelf_setupExternalDrop(C.uintptr_t(viewPtr))
}

//export dropshelf_dropBegin
func dropshelf_dropBegin() {
	nativeDrop.begin()
}

//export dropshelf_dropFile
func dropshelf_dropFile(path *C.char) {
	nativeDrop.add(DropItem{Path: C.GoString(path)})
}

// dropshelf_dropItem reports a promise receiver (0 for none) together with
// the image data the same pasteboard item carries (NULL for none).
//
//export dropshelf_dropItem
func dropshelf_dropItem(promise C.uintptr_t, dataType *C.char, data unsafe.Pointer, length C.int) {
	item := DropItem{}
	if promise != 0 {
		item.Promise = newNativePromise(uintptr(promise))
	}
	if data != nil && length > 0 {
		item.DataType = C.GoString(dataType)
		item.Data = C.GoBytes(data, length)
	}
	nativeDrop.add(item)
}

//export dropshelf_dropEnd
func dropshelf_dropEnd() {
	nativeDrop.end()
}

func newNativePromise(handle uintptr) *promiseHandle {
	p := &promiseHandle{
		handle:  handle,
		receive: receivePromise,
		release: func(h uintptr) { C.dropshelf_releasePromise(C.uintptr_t(h)) },
	}
	// Receivers the pipeline never asks for, e.g. because an earlier
	// alternative succeeded, are released with the handle.
	runtime.SetFinalizer(p, (*promiseHandle).discard)
	return p
}

// receivePromise blocks until the source app has written the promised file
// into destDir.
func receivePromise(handle uintptr, destDir string) (string, error) {
	cdir := C.CString(destDir)
	defer C.free(unsafe.Pointer(cdir))

	var cerr *C.char
	cpath := C.dropshelf_receivePromise(C.uintptr_t(handle), cdir, &cerr)
	if cpath == nil {
		msg := "no file received"
		if cerr != nil {
			msg = C.GoString(cerr)
			C.free(unsafe.Pointer(cerr))
		}
		return "", fmt.Errorf("file promise: %s", msg)
	}
	defer C.free(unsafe.Pointer(cpath))
	return C.GoString(cpath), nil
}
