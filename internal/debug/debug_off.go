//go:build !debug

// Package debug provides categorized trace logging that compiles away in
// release builds. Build with -tags debug to turn it on.
package debug

// Enabled indicates whether debug logging is active
const Enabled = false

// Category represents a debug logging category
type Category string

const (
	APP      Category = "APP"
	FS       Category = "FS"
	STATE    Category = "STATE"
	DETECT   Category = "DETECT"
	PREVIEW  Category = "PREVIEW"
	UI       Category = "UI"
	HOTKEY   Category = "HOTKEY"
	FS_ENTRY Category = "FS_ENTRY"
)

// Log is a no-op in release builds
func Log(cat Category, format string, args ...interface{}) {}

// Enable is a no-op in release builds
func Enable(cat Category) {}

// Disable is a no-op in release builds
func Disable(cat Category) {}

// IsEnabled always returns false in release builds
func IsEnabled(cat Category) bool { return false }
