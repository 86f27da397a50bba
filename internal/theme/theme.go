package theme

import (
	"image/color"
)

// Theme defines the colours used by the mask editor window.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window area outside the image
	Foreground color.RGBA

	// Status bar
	StatusBackground color.RGBA
	StatusText       color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
	MaskOverlay  color.RGBA // Drawn over set mask pixels; alpha sets strength

	// Minimap
	MinimapBorder   color.RGBA
	MinimapViewport color.RGBA

	// Brush cursor outline per tool
	BrushPaint color.RGBA
	BrushErase color.RGBA
}

// Default returns the hardcoded default theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:             "Default",
		Background:       color.RGBA{48, 48, 48, 255},
		Foreground:       color.RGBA{0, 0, 0, 255},
		StatusBackground: color.RGBA{220, 220, 220, 255},
		StatusText:       color.RGBA{0, 0, 0, 255},
		CheckerLight:     color.RGBA{220, 220, 220, 255},
		CheckerDark:      color.RGBA{192, 192, 192, 255},
		MaskOverlay:      color.RGBA{255, 255, 255, 180},
		MinimapBorder:    color.RGBA{0, 0, 0, 255},
		MinimapViewport:  color.RGBA{255, 77, 79, 255},
		BrushPaint:       color.RGBA{24, 144, 255, 255},
		BrushErase:       color.RGBA{255, 77, 79, 255},
	}
}
