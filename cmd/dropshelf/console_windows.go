//go:build windows && !debug

package main

import "golang.org/x/sys/windows"

// manageConsole detaches from the console in release builds so launching
// from Explorer does not leave a console window behind.
func manageConsole() {
	_ = windows.FreeConsole()
}
