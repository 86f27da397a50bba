// Package viewport maps between display and image coordinates under zoom
// and pan.
package viewport

import (
	"image"
	"math"
)

const (
	// MinZoom and MaxZoom bound the zoom factor.
	MinZoom = 0.1
	MaxZoom = 10.0
	// WheelStep is the zoom change per wheel notch.
	WheelStep = 0.1
)

// Point is a display or image space coordinate.
type Point struct {
	X, Y float64
}

// Viewport is the zoom and pan applied when presenting the image. Pan is in
// display units and is measured from the centred position.
type Viewport struct {
	Zoom float64
	Pan  Point
}

// New returns a viewport at 100% with no pan.
func New() Viewport { return Viewport{Zoom: 1} }

// Reset restores the default zoom and pan.
func (v *Viewport) Reset() { *v = New() }

// Clamp limits z to [MinZoom, MaxZoom].
func Clamp(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// ZoomAt changes the zoom to z while keeping the image point under the
// cursor fixed. (mx, my) is the cursor offset from the viewport centre.
func (v *Viewport) ZoomAt(z, mx, my float64) {
	old := v.Zoom
	if old <= 0 {
		old = 1
	}
	z = Clamp(z)
	ratio := z / old
	v.Pan.X = mx - (mx-v.Pan.X)*ratio
	v.Pan.Y = my - (my-v.Pan.Y)*ratio
	v.Zoom = z
}

// Wheel applies notches of WheelStep around the cursor. Positive notches
// zoom in.
func (v *Viewport) Wheel(notches, mx, my float64) {
	// Round so repeated 0.1 steps do not drift.
	z := math.Round((v.Zoom+notches*WheelStep)*1000) / 1000
	v.ZoomAt(z, mx, my)
}

// PanBy translates the view by a display space delta. Pan is not clamped.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Pan.X += dx
	v.Pan.Y += dy
}

// DisplayToImage maps a display point, given as an offset from the display
// surface centre, to image coordinates for an image of size imgW x imgH.
// The image is drawn centred, scaled by Zoom and translated by Pan.
func (v Viewport) DisplayToImage(p Point, imgW, imgH int) Point {
	return Point{
		X: (p.X-v.Pan.X)/v.Zoom + float64(imgW)/2,
		Y: (p.Y-v.Pan.Y)/v.Zoom + float64(imgH)/2,
	}
}

// ImageToDisplay is the inverse of DisplayToImage.
func (v Viewport) ImageToDisplay(p Point, imgW, imgH int) Point {
	return Point{
		X: (p.X-float64(imgW)/2)*v.Zoom + v.Pan.X,
		Y: (p.Y-float64(imgH)/2)*v.Zoom + v.Pan.Y,
	}
}

// ImageRect returns where an imgW x imgH image lands on a surface of the
// given size.
func (v Viewport) ImageRect(surface image.Point, imgW, imgH int) image.Rectangle {
	cx := float64(surface.X) / 2
	cy := float64(surface.Y) / 2
	min := v.ImageToDisplay(Point{}, imgW, imgH)
	max := v.ImageToDisplay(Point{X: float64(imgW), Y: float64(imgH)}, imgW, imgH)
	return image.Rect(
		int(math.Floor(cx+min.X)), int(math.Floor(cy+min.Y)),
		int(math.Floor(cx+max.X)), int(math.Floor(cy+max.Y)),
	)
}

// DisplayScale returns the factors between a displayed surface and its
// backing pixel grid. A zero sized surface maps 1:1. The shiny window host
// reports mouse events in buffer pixels, so it maps 1:1 and goes through
// DisplayToImage only; DisplayScale and ScreenToImage serve hosts that
// stretch the backing grid.
func DisplayScale(surface, backing image.Point) (sx, sy float64) {
	sx, sy = 1, 1
	if backing.X > 0 && surface.X > 0 {
		sx = float64(surface.X) / float64(backing.X)
	}
	if backing.Y > 0 && surface.Y > 0 {
		sy = float64(surface.Y) / float64(backing.Y)
	}
	return sx, sy
}

// ScreenToImage maps a point relative to the surface's top-left corner to a
// backing grid pixel. It is independent of zoom and pan, which are applied
// to the surface as a separate visual transform.
func ScreenToImage(sx, sy, scaleX, scaleY float64) image.Point {
	if scaleX == 0 {
		scaleX = 1
	}
	if scaleY == 0 {
		scaleY = 1
	}
	return image.Pt(int(math.Floor(sx/scaleX)), int(math.Floor(sy/scaleY)))
}
