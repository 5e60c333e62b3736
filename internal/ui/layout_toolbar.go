package ui

import (
	"strings"

	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// layoutToolbar renders the folder editor and the action buttons. Buttons
// that would race with a running detection are disabled while it runs.
func (r *Renderer) layoutToolbar(gtx layout.Context, state *State, keyTag event.Tag, eventOut *UIEvent) layout.Dimensions {
	for {
		evt, ok := r.pathEditor.Update(gtx)
		if !ok {
			break
		}
		if s, ok := evt.(widget.SubmitEvent); ok && !state.Busy {
			*eventOut = UIEvent{Action: ActionLoadFolder, Path: strings.TrimSpace(s.Text)}
			gtx.Execute(key.FocusCmd{Tag: keyTag})
		}
	}
	// Escape leaves the editor without loading
	for r.hotkeys != nil && !r.hotkeys.Escape.IsEmpty() {
		e, ok := gtx.Event(r.hotkeys.Escape.Filter(&r.pathEditor))
		if !ok {
			break
		}
		if k, ok := e.(key.Event); ok && k.State == key.Press {
			gtx.Execute(key.FocusCmd{Tag: keyTag})
		}
	}

	if r.loadBtn.Clicked(gtx) && !state.Busy {
		*eventOut = UIEvent{Action: ActionLoadFolder, Path: strings.TrimSpace(r.pathEditor.Text())}
	}
	if r.detectBtn.Clicked(gtx) && !state.Busy {
		*eventOut = UIEvent{Action: ActionDetect}
	}
	if r.detsBtn.Clicked(gtx) && !state.Busy {
		*eventOut = UIEvent{Action: ActionShowDetections}
	}
	if r.imagesBtn.Clicked(gtx) {
		*eventOut = UIEvent{Action: ActionShowImages}
	}
	if r.clearBtn.Clicked(gtx) && !state.Busy {
		*eventOut = UIEvent{Action: ActionClearOutputs}
	}
	if r.themeBtn.Clicked(gtx) {
		*eventOut = UIEvent{Action: ActionToggleTheme}
	}

	button := func(click *widget.Clickable, label string, disabled bool) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if disabled {
				gtx = gtx.Disabled()
			}
			return layout.Inset{Left: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				btn := material.Button(r.Theme, click, label)
				btn.Inset = layout.Inset{Top: unit.Dp(6), Bottom: unit.Dp(6), Left: unit.Dp(10), Right: unit.Dp(10)}
				return btn.Layout(gtx)
			})
		})
	}

	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			if state.Busy {
				gtx = gtx.Disabled()
			}
			return widget.Border{Color: colLightGray, CornerRadius: unit.Dp(4), Width: unit.Dp(1)}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						ed := material.Editor(r.Theme, &r.pathEditor, "Folder with images")
						ed.Color = colText
						ed.HintColor = colGray
						return ed.Layout(gtx)
					})
				})
		}),
		button(&r.loadBtn, "Load folder", state.Busy),
		button(&r.detectBtn, "Detect objects", state.Busy),
		button(&r.detsBtn, "Show detections", state.Busy),
		button(&r.imagesBtn, "Show images", false),
		button(&r.clearBtn, "Clear all outputs", state.Busy),
		button(&r.themeBtn, themeLabel(r.DarkMode), false),
	)
}

func themeLabel(dark bool) string {
	if dark {
		return "Light"
	}
	return "Dark"
}
