//go:build windows && !arm64

package platform

// Linking cgo gives the runtime proper thread setup for callbacks that
// arrive on Windows threads it did not create.
// See: https://github.com/golang/go/issues/20823

/*
#include <windows.h>
*/
import "C"

// CgoEnabled returns true if CGO is properly linked.
func CgoEnabled() bool {
	return C.int(1) == 1
}
