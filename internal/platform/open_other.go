//go:build (!darwin || ios) && (!linux || android) && !windows

package platform

import "errors"

// ErrUnsupported is returned where the platform has no file launcher.
var ErrUnsupported = errors.New("platform: not supported")

func Open(path string) error   { return ErrUnsupported }
func Reveal(path string) error { return ErrUnsupported }
