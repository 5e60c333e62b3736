// Package ui draws the viewer window with Gio and turns user input into
// UIEvents for the orchestrator.
package ui

import (
	"image"
	"time"

	"gioui.org/font"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/justyntemme/spotter/internal/config"
	"github.com/justyntemme/spotter/internal/debug"
)

type Renderer struct {
	Theme       *material.Theme
	DarkMode    bool
	ConfigError string

	hotkeys *config.HotkeyMatcher
	keyTag  struct{}
	focused bool

	pathEditor widget.Editor
	loadBtn    widget.Clickable
	detectBtn  widget.Clickable
	imagesBtn  widget.Clickable
	detsBtn    widget.Clickable
	clearBtn   widget.Clickable
	prevBtn    widget.Clickable
	nextBtn    widget.Clickable
	themeBtn   widget.Clickable
	labelList  widget.List

	// The last bitmap handed to Gio; a new ImageOp re-uploads the texture.
	imageSrc *image.RGBA
	imageOp  paint.ImageOp

	toast Toast
}

func NewRenderer() *Renderer {
	r := &Renderer{
		Theme:   material.NewTheme(),
		hotkeys: config.NewHotkeyMatcher(config.DefaultHotkeys()),
	}
	r.pathEditor.SingleLine = true
	r.pathEditor.Submit = true
	r.labelList.Axis = layout.Vertical
	r.SetToastDuration(defaultToastDuration)
	return r
}

// SetHotkeys configures the keyboard shortcuts from config
func (r *Renderer) SetHotkeys(cfg config.HotkeysConfig) {
	r.hotkeys = config.NewHotkeyMatcher(cfg)
	debug.Log(debug.HOTKEY, "Hotkeys configured: Prev=%s Next=%s Detect=%s Clear=%s",
		r.hotkeys.PrevImage, r.hotkeys.NextImage, r.hotkeys.Detect, r.hotkeys.ClearOutputs)
}

// SetConfigError sets the config error message to display in the banner
func (r *Renderer) SetConfigError(err string) {
	r.ConfigError = err
}

// SetDarkMode switches the palette and the material theme colors
func (r *Renderer) SetDarkMode(dark bool) {
	r.DarkMode = dark
	if dark {
		applyDarkPalette()
	} else {
		applyLightPalette()
	}
	r.Theme.Palette.Bg = colBackground
	r.Theme.Palette.Fg = colText
	r.Theme.Palette.ContrastBg = colAccent
}

// SetPath replaces the text of the folder editor
func (r *Renderer) SetPath(path string) {
	r.pathEditor.SetText(path)
}

// Layout draws one frame and returns at most one user action.
func (r *Renderer) Layout(gtx layout.Context, state *State) UIEvent {
	defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, colBackground)

	keyTag := &r.keyTag
	event.Op(gtx.Ops, keyTag)
	if !r.focused {
		gtx.Execute(key.FocusCmd{Tag: keyTag})
		r.focused = true
	}

	eventOut := r.processGlobalInput(gtx, state, keyTag)

	layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return r.layoutToolbar(gtx, state, keyTag, &eventOut)
					})
				}),
				layout.Rigid(r.layoutConfigErrorBanner),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return r.layoutViewer(gtx, state, &eventOut)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return r.layoutStatusBar(gtx, state)
				}),
			)
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return r.layoutToast(gtx, r.Theme)
		}),
	)

	if eventOut.Action != ActionNone {
		debug.Log(debug.UI, "Action: %s path=%q", eventOut.Action, eventOut.Path)
	}
	return eventOut
}

// layoutConfigErrorBanner renders a red error banner when config.json fails to parse
func (r *Renderer) layoutConfigErrorBanner(gtx layout.Context) layout.Dimensions {
	if r.ConfigError == "" {
		return layout.Dimensions{}
	}

	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Bottom: unit.Dp(4)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			height := gtx.Dp(28)
			paint.FillShape(gtx.Ops, colErrorBannerBg, clip.Rect{Max: image.Pt(gtx.Constraints.Max.X, height)}.Op())

			return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(r.Theme, "Config error: "+r.ConfigError+" (using defaults)")
					lbl.Color = colErrorBannerText
					lbl.Font.Weight = font.Bold
					lbl.MaxLines = 1
					return lbl.Layout(gtx)
				})
		})
}

// imageOpFor returns a cached ImageOp for img.
func (r *Renderer) imageOpFor(img *image.RGBA) paint.ImageOp {
	if img != r.imageSrc {
		r.imageSrc = img
		r.imageOp = paint.NewImageOp(img)
	}
	return r.imageOp
}

// pollInterval is how often a frame is scheduled while waiting on a detection
// run or a bitmap load.
const pollInterval = 250 * time.Millisecond
