package config

import (
	"strings"

	"gioui.org/io/event"
	"gioui.org/io/key"
)

// HotkeysConfig maps each viewer action to a shortcut string such as
// "Ctrl+Shift+Delete". An empty string disables the action's shortcut.
type HotkeysConfig struct {
	PrevImage      string `json:"prevImage"`
	NextImage      string `json:"nextImage"`
	FocusPath      string `json:"focusPath"`
	Detect         string `json:"detect"`
	ShowImages     string `json:"showImages"`
	ShowDetections string `json:"showDetections"`
	ClearOutputs   string `json:"clearOutputs"`
	OpenExternal   string `json:"openExternal"`
	Escape         string `json:"escape"`
}

// Hotkey represents a parsed keyboard shortcut
type Hotkey struct {
	Key       key.Name
	Modifiers key.Modifiers
}

// ParseHotkey parses a hotkey string like "Ctrl+Shift+N" into a Hotkey struct
func ParseHotkey(s string) Hotkey {
	if strings.TrimSpace(s) == "" {
		return Hotkey{}
	}

	var mods key.Modifiers
	var rawKeyPart string

	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		switch strings.ToLower(part) {
		case "ctrl", "control":
			mods |= key.ModCtrl
		case "shift":
			mods |= key.ModShift
		case "alt", "option":
			mods |= key.ModAlt
		case "cmd", "command":
			mods |= key.ModCommand
		case "super", "meta", "win", "windows":
			mods |= key.ModSuper
		default:
			rawKeyPart = part
		}
	}

	keyName := parseKeyName(rawKeyPart)

	// Gio reports the shifted character for number keys (Shift+1 = "!")
	if mods.Contain(key.ModShift) {
		if shifted, ok := shiftedNumbers[string(keyName)]; ok {
			keyName = key.Name(shifted)
		}
	}

	return Hotkey{Key: keyName, Modifiers: mods}
}

// shiftedNumbers maps number keys to their shifted equivalents (US keyboard layout)
var shiftedNumbers = map[string]string{
	"1": "!", "2": "@", "3": "#", "4": "$", "5": "%",
	"6": "^", "7": "&", "8": "*", "9": "(", "0": ")",
}

// unshiftedNumbers is the reverse mapping for display purposes
var unshiftedNumbers = map[string]string{
	"!": "1", "@": "2", "#": "3", "$": "4", "%": "5",
	"^": "6", "&": "7", "*": "8", "(": "9", ")": "0",
}

var namedKeys = map[string]key.Name{
	"left": key.NameLeftArrow, "leftarrow": key.NameLeftArrow,
	"right": key.NameRightArrow, "rightarrow": key.NameRightArrow,
	"up": key.NameUpArrow, "uparrow": key.NameUpArrow,
	"down": key.NameDownArrow, "downarrow": key.NameDownArrow,
	"home": key.NameHome, "end": key.NameEnd,
	"pageup": key.NamePageUp, "pgup": key.NamePageUp,
	"pagedown": key.NamePageDown, "pgdn": key.NamePageDown,
	"enter": key.NameReturn, "return": key.NameReturn,
	"tab": key.NameTab, "space": key.NameSpace,
	"backspace": key.NameDeleteBackward, "back": key.NameDeleteBackward,
	"delete": key.NameDeleteForward, "del": key.NameDeleteForward,
	"escape": key.NameEscape, "esc": key.NameEscape,
	"f1": key.NameF1, "f2": key.NameF2, "f3": key.NameF3, "f4": key.NameF4,
	"f5": key.NameF5, "f6": key.NameF6, "f7": key.NameF7, "f8": key.NameF8,
	"f9": key.NameF9, "f10": key.NameF10, "f11": key.NameF11, "f12": key.NameF12,
}

// parseKeyName converts a key string to Gio's key.Name
func parseKeyName(s string) key.Name {
	// Single letters are case insensitive; key.Name uses uppercase
	if len(s) == 1 {
		return key.Name(strings.ToUpper(s))
	}
	if name, ok := namedKeys[strings.ToLower(s)]; ok {
		return name
	}
	// Unknown names pass through so custom key names still work
	return key.Name(s)
}

// Matches checks if a key event matches this hotkey.
// Modifiers must match exactly so Ctrl+D and Ctrl+Shift+D stay distinct.
func (h Hotkey) Matches(k key.Event) bool {
	if h.Key == "" {
		return false
	}
	return k.Name == h.Key && k.Modifiers == h.Modifiers
}

// IsEmpty returns true if the hotkey is not configured
func (h Hotkey) IsEmpty() bool {
	return h.Key == ""
}

// String returns a human-readable representation of the hotkey
func (h Hotkey) String() string {
	if h.Key == "" {
		return ""
	}

	var parts []string
	if h.Modifiers.Contain(key.ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if h.Modifiers.Contain(key.ModCommand) {
		parts = append(parts, "Cmd")
	}
	if h.Modifiers.Contain(key.ModShift) {
		parts = append(parts, "Shift")
	}
	if h.Modifiers.Contain(key.ModAlt) {
		parts = append(parts, "Alt")
	}
	if h.Modifiers.Contain(key.ModSuper) {
		parts = append(parts, "Super")
	}

	keyStr := string(h.Key)
	if h.Modifiers.Contain(key.ModShift) {
		if original, ok := unshiftedNumbers[keyStr]; ok {
			keyStr = original
		}
	}
	parts = append(parts, keyStr)
	return strings.Join(parts, "+")
}

// Filter returns a key.Filter that matches this hotkey
func (h Hotkey) Filter(focus event.Tag) key.Filter {
	return key.Filter{
		Focus:    focus,
		Name:     h.Key,
		Required: h.Modifiers,
	}
}

// HotkeyMatcher holds the parsed shortcut for every viewer action
type HotkeyMatcher struct {
	PrevImage      Hotkey
	NextImage      Hotkey
	FocusPath      Hotkey
	Detect         Hotkey
	ShowImages     Hotkey
	ShowDetections Hotkey
	ClearOutputs   Hotkey
	OpenExternal   Hotkey
	Escape         Hotkey
}

// NewHotkeyMatcher creates a matcher from config
func NewHotkeyMatcher(cfg HotkeysConfig) *HotkeyMatcher {
	return &HotkeyMatcher{
		PrevImage:      ParseHotkey(cfg.PrevImage),
		NextImage:      ParseHotkey(cfg.NextImage),
		FocusPath:      ParseHotkey(cfg.FocusPath),
		Detect:         ParseHotkey(cfg.Detect),
		ShowImages:     ParseHotkey(cfg.ShowImages),
		ShowDetections: ParseHotkey(cfg.ShowDetections),
		ClearOutputs:   ParseHotkey(cfg.ClearOutputs),
		OpenExternal:   ParseHotkey(cfg.OpenExternal),
		Escape:         ParseHotkey(cfg.Escape),
	}
}

// All returns every configured hotkey, skipping disabled ones.
func (m *HotkeyMatcher) All() []Hotkey {
	all := []Hotkey{
		m.PrevImage, m.NextImage, m.FocusPath, m.Detect, m.ShowImages,
		m.ShowDetections, m.ClearOutputs, m.OpenExternal, m.Escape,
	}
	out := all[:0]
	for _, h := range all {
		if !h.IsEmpty() {
			out = append(out, h)
		}
	}
	return out
}

// Filters returns key filters for every configured hotkey.
func (m *HotkeyMatcher) Filters(focus event.Tag) []event.Filter {
	var filters []event.Filter
	for _, h := range m.All() {
		filters = append(filters, h.Filter(focus))
	}
	return filters
}
