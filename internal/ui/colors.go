package ui

import "image/color"

// Theme colors - these are variables so they can be modified for dark mode
var (
	colBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colText       = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	colGray       = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	colLightGray  = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	colPanel      = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	colCanvas     = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
	colAccent     = color.NRGBA{R: 66, G: 133, B: 244, A: 255}
	colLabelChip  = color.NRGBA{R: 255, G: 165, B: 0, A: 255} // matches the box color drawn on outputs
	colDanger     = color.NRGBA{R: 220, G: 53, B: 69, A: 255}

	// Config error banner colors
	colErrorBannerBg   = color.NRGBA{R: 220, G: 53, B: 69, A: 255}
	colErrorBannerText = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func applyLightPalette() {
	colBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colText = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	colGray = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	colLightGray = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	colPanel = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	colCanvas = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
}

func applyDarkPalette() {
	colBackground = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	colText = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
	colGray = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	colLightGray = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
	colPanel = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	colCanvas = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
}
