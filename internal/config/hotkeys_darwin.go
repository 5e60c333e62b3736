//go:build darwin

package config

// DefaultHotkeys returns the default keyboard shortcuts for macOS
// Uses Cmd where the other platforms use Ctrl
func DefaultHotkeys() HotkeysConfig {
	return HotkeysConfig{
		PrevImage:      "Left",
		NextImage:      "Right",
		FocusPath:      "Cmd+O",
		Detect:         "Cmd+D",
		ShowImages:     "Cmd+1",
		ShowDetections: "Cmd+2",
		ClearOutputs:   "Cmd+Shift+Backspace",
		OpenExternal:   "Cmd+E",
		Escape:         "Escape",
	}
}
