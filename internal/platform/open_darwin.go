//go:build darwin && !ios

package platform

import "os/exec"

// Open opens the file with its default application.
func Open(path string) error {
	return exec.Command("open", path).Start()
}

// Reveal selects the file in Finder.
func Reveal(path string) error {
	return exec.Command("open", "-R", path).Start()
}
