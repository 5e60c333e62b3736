package ui

import (
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"

	"github.com/justyntemme/spotter/internal/debug"
)

// processGlobalInput turns configured hotkeys into actions. The filters are
// bound to keyTag, so typing in the folder editor never triggers them.
func (r *Renderer) processGlobalInput(gtx layout.Context, state *State, keyTag event.Tag) UIEvent {
	if r.hotkeys == nil {
		return UIEvent{}
	}

	var eventOut UIEvent
	filters := r.hotkeys.Filters(keyTag)
	for {
		e, ok := gtx.Event(filters...)
		if !ok {
			break
		}
		k, ok := e.(key.Event)
		if !ok || k.State != key.Press {
			continue
		}
		debug.Log(debug.HOTKEY, "Key pressed: name=%q mods=0x%x", k.Name, k.Modifiers)

		if r.hotkeys.FocusPath.Matches(k) && !state.Busy {
			gtx.Execute(key.FocusCmd{Tag: &r.pathEditor})
			continue
		}
		if evt, ok := r.actionForKey(k, state); ok {
			eventOut = evt
		}
	}
	return eventOut
}

// actionForKey maps a key press to an action, honoring what the current
// state allows.
func (r *Renderer) actionForKey(k key.Event, state *State) (UIEvent, bool) {
	h := r.hotkeys
	switch {
	case h.PrevImage.Matches(k) && state.Count > 0:
		return UIEvent{Action: ActionPrevImage}, true
	case h.NextImage.Matches(k) && state.Count > 0:
		return UIEvent{Action: ActionNextImage}, true
	case h.Detect.Matches(k) && !state.Busy:
		return UIEvent{Action: ActionDetect}, true
	case h.ShowImages.Matches(k):
		return UIEvent{Action: ActionShowImages}, true
	case h.ShowDetections.Matches(k) && !state.Busy:
		return UIEvent{Action: ActionShowDetections}, true
	case h.ClearOutputs.Matches(k) && !state.Busy:
		return UIEvent{Action: ActionClearOutputs}, true
	case h.OpenExternal.Matches(k) && state.Current != "":
		return UIEvent{Action: ActionOpenExternal, Path: state.Current}, true
	}
	return UIEvent{}, false
}
