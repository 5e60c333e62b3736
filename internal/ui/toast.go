package ui

import (
	"image"
	"image/color"
	"sync"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// ToastType is the severity of a status message. It picks the color and how
// long the message stays on screen.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastSuccess
	ToastWarning
	ToastError
)

const defaultToastDuration = 3 * time.Second

// Toast is the single status message shown over the viewer. A new message
// replaces the current one.
type Toast struct {
	mu      sync.Mutex
	message string
	kind    ToastType
	until   time.Time
	base    time.Duration
}

// lifetime scales the configured duration by severity: problems the user
// has to act on stay up twice as long as confirmations.
func (t *Toast) lifetime(kind ToastType) time.Duration {
	d := t.base
	if d <= 0 {
		d = defaultToastDuration
	}
	if kind >= ToastWarning {
		d *= 2
	}
	return d
}

func (t *Toast) show(message string, kind ToastType, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = message
	t.kind = kind
	t.until = now.Add(t.lifetime(kind))
}

// current returns the message visible at now. The message is dropped once it
// has expired.
func (t *Toast) current(now time.Time) (string, ToastType, time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.message == "" {
		return "", ToastInfo, time.Time{}, false
	}
	if !now.Before(t.until) {
		t.message = ""
		return "", ToastInfo, time.Time{}, false
	}
	return t.message, t.kind, t.until, true
}

// ShowToast replaces the status message.
func (r *Renderer) ShowToast(message string, kind ToastType) {
	r.toast.show(message, kind, time.Now())
}

func (r *Renderer) ShowError(message string)   { r.ShowToast(message, ToastError) }
func (r *Renderer) ShowSuccess(message string) { r.ShowToast(message, ToastSuccess) }
func (r *Renderer) ShowInfo(message string)    { r.ShowToast(message, ToastInfo) }

// SetToastDuration sets how long info and success messages stay visible.
// Warnings and errors stay twice as long.
func (r *Renderer) SetToastDuration(d time.Duration) {
	r.toast.mu.Lock()
	r.toast.base = d
	r.toast.mu.Unlock()
}

// CurrentToast returns the visible status message, if any.
func (r *Renderer) CurrentToast() (string, ToastType, bool) {
	msg, kind, _, ok := r.toast.current(time.Now())
	return msg, kind, ok
}

func toastColors(kind ToastType) (bg, fg color.NRGBA) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	switch kind {
	case ToastError:
		return colDanger, white
	case ToastWarning:
		return color.NRGBA{R: 230, G: 165, B: 30, A: 245}, color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	case ToastSuccess:
		return color.NRGBA{R: 40, G: 150, B: 75, A: 245}, white
	default:
		// Inverted against the window so it reads in both palettes.
		return colText, colBackground
	}
}

// layoutToast draws the status message above the status bar.
func (r *Renderer) layoutToast(gtx layout.Context, th *material.Theme) layout.Dimensions {
	msg, kind, until, ok := r.toast.current(time.Now())
	if !ok {
		return layout.Dimensions{}
	}
	gtx.Execute(op.InvalidateCmd{At: until})

	bg, fg := toastColors(kind)
	return layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Bottom: unit.Dp(40)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = 0
			gtx.Constraints.Max.X = min(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(520)))
			return layout.Background{}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					rect := image.Rectangle{Max: gtx.Constraints.Min}
					defer clip.UniformRRect(rect, gtx.Dp(unit.Dp(6))).Push(gtx.Ops).Pop()
					paint.Fill(gtx.Ops, bg)
					return layout.Dimensions{Size: gtx.Constraints.Min}
				},
				func(gtx layout.Context) layout.Dimensions {
					return layout.Inset{
						Top: unit.Dp(10), Bottom: unit.Dp(10),
						Left: unit.Dp(14), Right: unit.Dp(14),
					}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						lbl := material.Body2(th, msg)
						lbl.Color = fg
						return lbl.Layout(gtx)
					})
				},
			)
		})
	})
}
