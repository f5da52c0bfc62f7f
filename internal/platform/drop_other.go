//go:build (!darwin || ios) && (!windows || arm64)

package platform

// SetupExternalDrop configures external file drop handling (no-op on this platform)
func SetupExternalDrop(handle uintptr) {}
