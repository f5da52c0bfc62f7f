package ui

import "image/color"

// Theme colors
var (
	colWhite       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colGray        = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	colLightGray   = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	colSelected    = color.NRGBA{R: 200, G: 220, B: 255, A: 255}
	colSidebar     = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	colAccent      = color.NRGBA{R: 66, G: 133, B: 244, A: 255}
	colDanger      = color.NRGBA{R: 220, G: 53, B: 69, A: 255}
	colSurfaceBg   = color.NRGBA{R: 250, G: 250, B: 252, A: 245}
	colSurfaceLine = color.NRGBA{R: 66, G: 133, B: 244, A: 160}
	colHoverDrop   = color.NRGBA{R: 225, G: 236, B: 255, A: 255}
	colShadow      = color.NRGBA{R: 0, G: 0, B: 0, A: 60}
)
