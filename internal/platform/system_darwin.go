//go:build darwin && !ios

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework Foundation

#import <AppKit/AppKit.h>
#include <stdlib.h>
#include <string.h>

static void dropshelf_mouseLocation(double *x, double *y) {
	NSPoint p = [NSEvent mouseLocation];
	*x = p.x;
	*y = p.y;
}

static unsigned long dropshelf_pressedButtons(void) {
	return (unsigned long)[NSEvent pressedMouseButtons];
}

// Returned strings are newline-joined and must be freed by the caller.
static char *dropshelf_dragTypes(void) {
	@autoreleasepool {
		NSPasteboard *pb = [NSPasteboard pasteboardWithName:NSPasteboardNameDrag];
		NSArray<NSPasteboardType> *types = [pb types];
		if (types == nil || [types count] == 0) {
			return NULL;
		}
		NSString *joined = [types componentsJoinedByString:@"\n"];
		return strdup([joined UTF8String]);
	}
}

static char *dropshelf_dragFileURLs(void) {
	@autoreleasepool {
		NSPasteboard *pb = [NSPasteboard pasteboardWithName:NSPasteboardNameDrag];
		NSDictionary *opts = @{NSPasteboardURLReadingFileURLsOnlyKey: @YES};
		NSArray *urls = [pb readObjectsForClasses:@[[NSURL class]] options:opts];
		if (urls == nil || [urls count] == 0) {
			return NULL;
		}
		NSMutableArray *paths = [NSMutableArray arrayWithCapacity:[urls count]];
		for (NSURL *u in urls) {
			if ([u isFileURL]) {
				[paths addObject:[u path]];
			}
		}
		if ([paths count] == 0) {
			return NULL;
		}
		return strdup([[paths componentsJoinedByString:@"\n"] UTF8String]);
	}
}
*/
import "C"

import (
	"strings"
	"unsafe"

	"gioui.org/f32"
)

// System reads the pointer and drag pasteboard through AppKit.
type System struct{}

// NewSystem returns the AppKit-backed pointer and pasteboard.
func NewSystem() (Pointer, Pasteboard) {
	return System{}, System{}
}

// Location returns the pointer in screen coordinates (origin bottom-left).
func (System) Location() f32.Point {
	var x, y C.double
	C.dropshelf_mouseLocation(&x, &y)
	return f32.Point{X: float32(x), Y: float32(y)}
}

func (System) Pressed() bool {
	return C.dropshelf_pressedButtons() != 0
}

func (System) Types() []string {
	return takeLines(C.dropshelf_dragTypes())
}

func (System) FileURLs() []string {
	return takeLines(C.dropshelf_dragFileURLs())
}

func takeLines(cstr *C.char) []string {
	if cstr == nil {
		return nil
	}
	defer C.free(unsafe.Pointer(cstr))
	return strings.Split(C.GoString(cstr), "\n")
}
