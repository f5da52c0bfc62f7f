//go:build debug

// Package debug provides a centralized, categorized debug logging system.
// Build with -tags debug to enable logging.
package debug

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Enabled indicates whether debug logging is active
const Enabled = true

// Category represents a debug logging category
type Category string

const (
	// Core categories
	APP      Category = "APP"      // Coordinator lifecycle, settings, wiring
	GESTURE  Category = "GESTURE"  // Shake recognition (direction changes, triggers)
	DRAG     Category = "DRAG"     // Drag session state, pasteboard classification
	SURFACE  Category = "SURFACE"  // Floating drop surface show/hide
	INGEST   Category = "INGEST"   // Payload resolution, temp writes
	REGISTRY Category = "REGISTRY" // Shelf additions, removals, expiry
	STORE    Category = "STORE"    // Settings database
	WATCH    Category = "WATCH"    // Shelf file watcher
	UI       Category = "UI"       // Gio windows and drop targets

	// Detailed subcategories (use sparingly - can be verbose)
	GESTURE_TICK Category = "GESTURE_TICK" // Every pointer sample (60 Hz)
	DRAG_TICK    Category = "DRAG_TICK"    // Every drag poll
)

var (
	// enabledCategories controls which categories are active
	// By default, all main categories are enabled
	enabledCategories = map[Category]bool{
		APP:      true,
		GESTURE:  true,
		DRAG:     true,
		SURFACE:  true,
		INGEST:   true,
		REGISTRY: true,
		STORE:    true,
		WATCH:    true,
		UI:       true,
		// Verbose categories disabled by default
		GESTURE_TICK: false,
		DRAG_TICK:    false,
	}
	categoryMu sync.RWMutex

	// Output destination
	logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
)

func init() {
	// Format: DROPSHELF_DEBUG=GESTURE,DRAG or DROPSHELF_DEBUG=all or DROPSHELF_DEBUG=none
	if env := os.Getenv("DROPSHELF_DEBUG"); env != "" {
		categoryMu.Lock()
		defer categoryMu.Unlock()

		env = strings.ToUpper(env)
		switch env {
		case "ALL":
			for cat := range enabledCategories {
				enabledCategories[cat] = true
			}
		case "NONE":
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
		default:
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
			for _, cat := range strings.Split(env, ",") {
				cat = strings.TrimSpace(cat)
				enabledCategories[Category(cat)] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}

	msg := fmt.Sprintf(format, args...)
	logger.Printf("[%s] %s", cat, msg)
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// EnableAll enables all debug categories including verbose ones
func EnableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = true
	}
	categoryMu.Unlock()
}
