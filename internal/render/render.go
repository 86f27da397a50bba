// Package render composites the base image and mask overlay and presents
// the result under the viewport transform.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/example/maskproof/internal/raster"
	"github.com/example/maskproof/internal/viewport"
)

// DefaultOverlay is the overlay colour drawn over set mask pixels.
var DefaultOverlay = color.RGBA{255, 255, 255, 180}

// Compositor owns the backing frame: an image sized RGBA holding the base
// image with the mask overlay. It is rebuilt on every state change.
type Compositor struct {
	Overlay color.RGBA
	frame   *image.RGBA
}

// NewCompositor returns a Compositor using overlay for set pixels.
func NewCompositor(overlay color.RGBA) *Compositor {
	return &Compositor{Overlay: overlay}
}

// Frame returns the last composed frame.
func (c *Compositor) Frame() *image.RGBA { return c.frame }

// Compose redraws the whole backing frame.
func (c *Compositor) Compose(img *raster.ImageBuffer, mask *raster.MaskBuffer, showMask bool) *image.RGBA {
	if img == nil {
		return nil
	}
	if c.frame == nil || c.frame.Rect != img.Bounds() {
		c.frame = image.NewRGBA(img.Bounds())
	}
	return c.ComposeRect(img, mask, showMask, img.Bounds())
}

// ComposeRect redraws only r of the backing frame, used after a stamp
// touched a small region.
func (c *Compositor) ComposeRect(img *raster.ImageBuffer, mask *raster.MaskBuffer, showMask bool, r image.Rectangle) *image.RGBA {
	if img == nil {
		return nil
	}
	if c.frame == nil || c.frame.Rect != img.Bounds() {
		c.frame = image.NewRGBA(img.Bounds())
		r = img.Bounds()
	}
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return c.frame
	}
	draw.Draw(c.frame, r, img.Image(), r.Min, draw.Src)
	if showMask && mask != nil && mask.Bounds() == img.Bounds() {
		DrawOverlay(c.frame, mask, c.Overlay, r)
	}
	return c.frame
}

// DrawOverlay blends overlay over every set pixel of mask inside r.
func DrawOverlay(dst *image.RGBA, mask *raster.MaskBuffer, overlay color.RGBA, r image.Rectangle) {
	src := image.NewUniform(overlay)
	// The mask alpha channel is 0 or 255, so it doubles as the draw mask.
	draw.DrawMask(dst, r, src, image.Point{}, mask.RGBA(), r.Min, draw.Over)
}

// Present fills dst with bg and scales frame into it according to v. It
// returns the display rectangle the image occupies.
func Present(dst *image.RGBA, frame *image.RGBA, v viewport.Viewport, bg color.Color) image.Rectangle {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return PresentOver(dst, frame, v)
}

// PresentOver scales frame over whatever dst already holds.
func PresentOver(dst *image.RGBA, frame *image.RGBA, v viewport.Viewport) image.Rectangle {
	if frame == nil {
		return image.Rectangle{}
	}
	size := dst.Bounds().Size()
	target := v.ImageRect(size, frame.Rect.Dx(), frame.Rect.Dy()).Add(dst.Bounds().Min)
	xdraw.NearestNeighbor.Scale(dst, target, frame, frame.Bounds(), draw.Over, nil)
	return target
}

// DrawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func DrawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// DrawBrushCursor outlines the brush footprint centred on the display point
// (x, y). radius is in image pixels and is scaled by zoom.
func DrawBrushCursor(dst *image.RGBA, x, y float64, radius int, zoom float64, col color.Color) {
	r := (float64(radius) + 0.5) * zoom
	if r < 1 {
		r = 1
	}
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(col)
	dc.SetLineWidth(2)
	dc.DrawCircle(x, y, r)
	dc.Stroke()
}
