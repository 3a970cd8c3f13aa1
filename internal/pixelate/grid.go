package pixelate

import (
	"image"
	"image/color"
	"image/draw"
)

// GridStroke is the color of grid lines: black at 25% opacity.
var GridStroke = color.NRGBA{0, 0, 0, 64}

// DrawGrid overlays 1-pixel lines on every block boundary of img.
//
// Lines sit on columns and rows that are multiples of spacing from the image
// origin, starting at 0. The boundary at the far edge lies outside the buffer
// and is clipped. Vertical lines are drawn first, then horizontal lines, each
// composited over the existing pixels, so intersections are darkened twice.
func DrawGrid(img *image.NRGBA, spacing int) {
	if spacing < 1 {
		return
	}
	bounds := img.Bounds()
	stroke := image.NewUniform(GridStroke)

	// Draw vertical lines
	for x := bounds.Min.X; x < bounds.Max.X; x += spacing {
		draw.Draw(img, image.Rect(x, bounds.Min.Y, x+1, bounds.Max.Y), stroke, image.Point{}, draw.Over)
	}

	// Draw horizontal lines
	for y := bounds.Min.Y; y < bounds.Max.Y; y += spacing {
		draw.Draw(img, image.Rect(bounds.Min.X, y, bounds.Max.X, y+1), stroke, image.Point{}, draw.Over)
	}
}
