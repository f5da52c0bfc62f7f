//go:build linux && !android

package platform

import (
	"os/exec"
	"path/filepath"
)

// Open opens the file using 'xdg-open' (default application).
func Open(path string) error {
	return exec.Command("xdg-open", path).Start()
}

// Reveal opens the containing directory. Only some file managers can
// select the file itself, so it is not attempted.
func Reveal(path string) error {
	return exec.Command("xdg-open", filepath.Dir(path)).Start()
}
