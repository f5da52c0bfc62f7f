//go:build (!darwin || ios) && !windows

package platform

// NewSystem returns the platform pointer and pasteboard. Global pointer
// polling is not implemented on this platform, so the drag engine stays idle.
func NewSystem() (Pointer, Pasteboard) {
	return Null{}, Null{}
}
