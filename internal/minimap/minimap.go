// Package minimap draws a downscaled overview of the image and mask with the
// visible viewport region outlined, and maps clicks on it back to a pan.
package minimap

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/example/maskproof/internal/raster"
	"github.com/example/maskproof/internal/viewport"
)

// DefaultSize is the longest side of the thumbnail in pixels.
const DefaultSize = 160

// Rect is an image space rectangle with fractional bounds.
type Rect struct {
	Min, Max viewport.Point
}

// Dx returns the width of r.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the height of r.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of r.
func (r Rect) Center() viewport.Point {
	return viewport.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// ViewportRect returns the part of an imgW x imgH image that is visible on
// a surfW x surfH display under v.
func ViewportRect(imgW, imgH, surfW, surfH int, v viewport.Viewport) Rect {
	z := v.Zoom
	if z <= 0 {
		z = 1
	}
	w := float64(surfW) / z
	h := float64(surfH) / z
	cx := float64(imgW)/2 - v.Pan.X/z
	cy := float64(imgH)/2 - v.Pan.Y/z
	return Rect{
		Min: viewport.Point{X: cx - w/2, Y: cy - h/2},
		Max: viewport.Point{X: cx + w/2, Y: cy + h/2},
	}
}

// Renderer builds thumbnails. The scaled base image is cached between
// renders of the same ImageBuffer.
type Renderer struct {
	Size     int
	Overlay  color.RGBA
	Border   color.RGBA
	Viewport color.RGBA

	src  *raster.ImageBuffer
	base *image.RGBA
	mask *image.RGBA
}

// NewRenderer returns a Renderer with the default size and colours.
func NewRenderer() *Renderer {
	return &Renderer{
		Size:     DefaultSize,
		Overlay:  color.RGBA{255, 255, 255, 180},
		Border:   color.RGBA{64, 64, 64, 255},
		Viewport: color.RGBA{255, 215, 0, 255},
	}
}

// Thumbnail is a rendered minimap together with the scale needed to map
// clicks back into image space.
type Thumbnail struct {
	Image  *image.RGBA
	Scale  float64
	ImageW int
	ImageH int
}

// ThumbSize returns the thumbnail dimensions for an image of w x h with the
// longest side scaled to size. Aspect ratio is preserved.
func ThumbSize(w, h, size int) (tw, th int, scale float64) {
	if w <= 0 || h <= 0 || size <= 0 {
		return 0, 0, 0
	}
	scale = float64(size) / float64(max(w, h))
	tw = max(1, int(math.Round(float64(w)*scale)))
	th = max(1, int(math.Round(float64(h)*scale)))
	return tw, th, scale
}

// Render draws the thumbnail for img and mask with the viewport rectangle
// of v on a display surface of the given size.
func (r *Renderer) Render(img *raster.ImageBuffer, mask *raster.MaskBuffer, showMask bool, v viewport.Viewport, surface image.Point) *Thumbnail {
	if img == nil {
		return nil
	}
	size := r.Size
	if size <= 0 {
		size = DefaultSize
	}
	tw, th, scale := ThumbSize(img.Width(), img.Height(), size)
	bounds := image.Rect(0, 0, tw, th)

	if r.src != img || r.base == nil || r.base.Rect != bounds {
		r.base = image.NewRGBA(bounds)
		xdraw.ApproxBiLinear.Scale(r.base, bounds, img.Image(), img.Bounds(), draw.Src, nil)
		r.src = img
	}

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, r.base, image.Point{}, draw.Src)

	if showMask && mask != nil {
		if r.mask == nil || r.mask.Rect != bounds {
			r.mask = image.NewRGBA(bounds)
		}
		xdraw.NearestNeighbor.Scale(r.mask, bounds, mask.RGBA(), mask.Bounds(), draw.Src, nil)
		draw.DrawMask(out, bounds, image.NewUniform(r.Overlay), image.Point{}, r.mask, image.Point{}, draw.Over)
	}

	vr := ViewportRect(img.Width(), img.Height(), surface.X, surface.Y, v)
	dc := gg.NewContextForRGBA(out)
	dc.SetColor(r.Viewport)
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(vr.Min.X*scale, vr.Min.Y*scale, vr.Dx()*scale, vr.Dy()*scale)
	dc.Stroke()
	dc.SetColor(r.Border)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, float64(tw)-1, float64(th)-1)
	dc.Stroke()

	return &Thumbnail{Image: out, Scale: scale, ImageW: img.Width(), ImageH: img.Height()}
}

// ToImage maps a thumbnail pixel to image coordinates.
func (t *Thumbnail) ToImage(tx, ty float64) viewport.Point {
	if t.Scale == 0 {
		return viewport.Point{}
	}
	return viewport.Point{X: tx / t.Scale, Y: ty / t.Scale}
}

// PanForClick returns the pan that centres the image point under the
// thumbnail click (tx, ty) at the given zoom.
func (t *Thumbnail) PanForClick(tx, ty, zoom float64) viewport.Point {
	p := t.ToImage(tx, ty)
	return PanToCenter(t.ImageW, t.ImageH, p, zoom)
}

// PanToCenter returns the pan that places image point p at the display
// centre.
func PanToCenter(imgW, imgH int, p viewport.Point, zoom float64) viewport.Point {
	return viewport.Point{
		X: (float64(imgW)/2 - p.X) * zoom,
		Y: (float64(imgH)/2 - p.Y) * zoom,
	}
}
