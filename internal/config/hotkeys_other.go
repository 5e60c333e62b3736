//go:build !darwin

package config

// DefaultHotkeys returns the default keyboard shortcuts for Windows/Linux
func DefaultHotkeys() HotkeysConfig {
	return HotkeysConfig{
		PrevImage:      "Left",
		NextImage:      "Right",
		FocusPath:      "Ctrl+O",
		Detect:         "Ctrl+D",
		ShowImages:     "Ctrl+1",
		ShowDetections: "Ctrl+2",
		ClearOutputs:   "Ctrl+Shift+Delete",
		OpenExternal:   "Ctrl+E",
		Escape:         "Escape",
	}
}
