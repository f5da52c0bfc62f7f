//go:build windows

package platform

import "os/exec"

// Open opens the file using the Windows 'start' command.
func Open(path string) error {
	// 'cmd /c start "" "path"' is the standard way to launch files in Windows
	return exec.Command("cmd", "/c", "start", "", path).Start()
}

// Reveal selects the file in Explorer.
func Reveal(path string) error {
	return exec.Command("explorer", "/select,", path).Start()
}
