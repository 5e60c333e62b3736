package ui

import (
	"fmt"
	"image"
	"path/filepath"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/dustin/go-humanize"
)

const labelsPanelWidth = 200

// layoutViewer renders the navigation buttons around the image and, in
// detection mode only, the labels panel.
func (r *Renderer) layoutViewer(gtx layout.Context, state *State, eventOut *UIEvent) layout.Dimensions {
	if r.prevBtn.Clicked(gtx) && state.Count > 0 {
		*eventOut = UIEvent{Action: ActionPrevImage}
	}
	if r.nextBtn.Clicked(gtx) && state.Count > 0 {
		*eventOut = UIEvent{Action: ActionNextImage}
	}

	navButton := func(click *widget.Clickable, label string) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if state.Count == 0 {
				gtx = gtx.Disabled()
			}
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Center.Layout(gtx, material.Button(r.Theme, click, label).Layout)
			})
		})
	}

	children := []layout.FlexChild{
		navButton(&r.prevBtn, "<<"),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return r.layoutImage(gtx, state)
		}),
		navButton(&r.nextBtn, ">>"),
	}
	if state.Detection {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.layoutLabels(gtx, state)
		}))
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

func (r *Renderer) layoutImage(gtx layout.Context, state *State) layout.Dimensions {
	size := gtx.Constraints.Max
	paint.FillShape(gtx.Ops, colCanvas, clip.Rect{Max: size}.Op())

	gtx.Constraints.Min = size
	switch {
	case state.Index < 0:
		msg := "Load a folder to begin"
		if state.Folder != "" {
			msg = "No images to show"
		}
		return r.centeredText(gtx, msg)
	case state.Image != nil:
		return widget.Image{
			Src:      r.imageOpFor(state.Image),
			Fit:      widget.ScaleDown,
			Position: layout.Center,
		}.Layout(gtx)
	case state.ImageErr != "":
		return r.centeredText(gtx, "Cannot display "+filepath.Base(state.Current)+": "+state.ImageErr)
	default:
		gtx.Execute(op.InvalidateCmd{At: gtx.Now.Add(pollInterval)})
		return r.centeredText(gtx, "Loading "+filepath.Base(state.Current)+"...")
	}
}

func (r *Renderer) centeredText(gtx layout.Context, msg string) layout.Dimensions {
	return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		lbl := material.Body1(r.Theme, msg)
		lbl.Color = colGray
		lbl.Alignment = text.Middle
		return lbl.Layout(gtx)
	})
}

// layoutLabels lists the objects detected in the current image.
func (r *Renderer) layoutLabels(gtx layout.Context, state *State) layout.Dimensions {
	width := gtx.Dp(labelsPanelWidth)
	gtx.Constraints.Min.X, gtx.Constraints.Max.X = width, width
	paint.FillShape(gtx.Ops, colPanel, clip.Rect{Max: image.Pt(width, gtx.Constraints.Max.Y)}.Op())

	return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.H6(r.Theme, "Detected objects")
				lbl.Color = colText
				return layout.Inset{Bottom: unit.Dp(8)}.Layout(gtx, lbl.Layout)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				if len(state.Labels) == 0 {
					lbl := material.Body2(r.Theme, "No objects detected")
					lbl.Color = colGray
					return lbl.Layout(gtx)
				}
				return material.List(r.Theme, &r.labelList).Layout(gtx, len(state.Labels), func(gtx layout.Context, i int) layout.Dimensions {
					return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(2)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
							layout.Rigid(func(gtx layout.Context) layout.Dimensions {
								d := gtx.Dp(8)
								paint.FillShape(gtx.Ops, colLabelChip, clip.Rect{Max: image.Pt(d, d)}.Op())
								return layout.Dimensions{Size: image.Pt(d, d)}
							}),
							layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
							layout.Rigid(func(gtx layout.Context) layout.Dimensions {
								lbl := material.Body1(r.Theme, state.Labels[i])
								lbl.Color = colText
								lbl.MaxLines = 1
								return lbl.Layout(gtx)
							}),
						)
					})
				})
			}),
		)
	})
}

func (r *Renderer) layoutStatusBar(gtx layout.Context, state *State) layout.Dimensions {
	return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if !state.Busy {
						return layout.Dimensions{}
					}
					gtx.Constraints.Max = image.Pt(gtx.Dp(16), gtx.Dp(16))
					return layout.Inset{Right: unit.Dp(8)}.Layout(gtx, material.Loader(r.Theme).Layout)
				}),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(r.Theme, statusText(state))
					lbl.Color = colGray
					lbl.MaxLines = 1
					if state.Busy {
						lbl.Font.Weight = font.Bold
					}
					return lbl.Layout(gtx)
				}),
			)
		})
}

// statusText describes the active list, the position in it and the current file.
func statusText(state *State) string {
	if state.Folder == "" {
		return "No folder loaded"
	}
	mode := "Images"
	if state.Detection {
		mode = "Detections"
	}
	var s string
	if state.Index < 0 {
		s = fmt.Sprintf("%s: none in %s", mode, state.Folder)
	} else {
		s = fmt.Sprintf("%s %d/%d  %s", mode, state.Index+1, state.Count, filepath.Base(state.Current))
		if state.Size > 0 {
			s += "  " + humanize.Bytes(uint64(state.Size))
		}
	}
	if state.Busy {
		s += "  (detecting objects...)"
	}
	return s
}
