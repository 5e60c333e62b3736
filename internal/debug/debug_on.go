//go:build debug

// Package debug provides categorized trace logging that compiles away in
// release builds. Build with -tags debug to turn it on.
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
	APP     Category = "APP"     // Orchestration and UI action dispatch
	FS      Category = "FS"      // Folder scans and outputs removal
	STATE   Category = "STATE"   // View-state transitions
	DETECT  Category = "DETECT"  // Detection engines
	PREVIEW Category = "PREVIEW" // Bitmap decode and cache
	UI      Category = "UI"      // Layout and widget events
	HOTKEY  Category = "HOTKEY"  // Keyboard shortcut matching

	FS_ENTRY Category = "FS_ENTRY" // Per-file scan decisions (very verbose)
)

var (
	enabledCategories = map[Category]bool{
		APP:      true,
		FS:       true,
		STATE:    true,
		DETECT:   true,
		PREVIEW:  true,
		UI:       true,
		HOTKEY:   true,
		FS_ENTRY: false,
	}
	categoryMu sync.RWMutex

	logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
)

func init() {
	// SPOTTER_DEBUG=STATE,DETECT or SPOTTER_DEBUG=all or SPOTTER_DEBUG=none
	env := os.Getenv("SPOTTER_DEBUG")
	if env == "" {
		return
	}
	categoryMu.Lock()
	defer categoryMu.Unlock()

	switch env = strings.ToUpper(env); env {
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
			enabledCategories[Category(strings.TrimSpace(cat))] = true
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
	logger.Printf("[%s] %s", cat, fmt.Sprintf(format, args...))
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
