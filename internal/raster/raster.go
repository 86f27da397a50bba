// Package raster holds the pixel buffers edited by maskproof: the immutable
// base image and the binary mask layered over it.
package raster

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	// SetPixel is the value stored for a masked pixel.
	SetPixel = color.RGBA{255, 255, 255, 255}
	// UnsetPixel is the value stored for an unmasked pixel.
	UnsetPixel = color.RGBA{}
)

// ImageBuffer is the base raster. It is loaded once per editing session and
// never mutated.
type ImageBuffer struct {
	img *image.RGBA
}

// NewImageBuffer copies src into a zero based RGBA grid.
func NewImageBuffer(src image.Image) *ImageBuffer {
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return &ImageBuffer{img: rgba}
}

// Width returns the image width in pixels.
func (b *ImageBuffer) Width() int { return b.img.Rect.Dx() }

// Height returns the image height in pixels.
func (b *ImageBuffer) Height() int { return b.img.Rect.Dy() }

// Bounds returns the zero based bounds of the image.
func (b *ImageBuffer) Bounds() image.Rectangle { return b.img.Rect }

// At returns the pixel at (x, y).
func (b *ImageBuffer) At(x, y int) color.RGBA { return b.img.RGBAAt(x, y) }

// Image exposes the pixels for drawing. Callers must treat it as read only.
func (b *ImageBuffer) Image() image.Image { return b.img }

// MaskBuffer is a binary mask stored as RGBA so it can be composited
// directly. Every pixel is either SetPixel or UnsetPixel.
type MaskBuffer struct {
	img *image.RGBA
}

// BlankMask returns a width x height mask with every pixel unset.
func BlankMask(width, height int) *MaskBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &MaskBuffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// maskFrom binarizes src into a new mask. A pixel is set when it is not
// fully transparent and at least one colour channel is non-zero.
func maskFrom(src image.Image) *MaskBuffer {
	b := src.Bounds()
	m := BlankMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a != 0 && (r|g|bl) != 0 {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// Width returns the mask width in pixels.
func (m *MaskBuffer) Width() int { return m.img.Rect.Dx() }

// Height returns the mask height in pixels.
func (m *MaskBuffer) Height() int { return m.img.Rect.Dy() }

// Bounds returns the zero based bounds of the mask.
func (m *MaskBuffer) Bounds() image.Rectangle { return m.img.Rect }

// In reports whether (x, y) lies inside the mask.
func (m *MaskBuffer) In(x, y int) bool {
	return image.Pt(x, y).In(m.img.Rect)
}

// IsSet reports whether the pixel at (x, y) is masked. Out of bounds pixels
// are reported as unset.
func (m *MaskBuffer) IsSet(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.img.Pix[m.img.PixOffset(x, y)+3] != 0
}

// At returns the stored RGBA value at (x, y).
func (m *MaskBuffer) At(x, y int) color.RGBA { return m.img.RGBAAt(x, y) }

// Set marks or clears the pixel at (x, y). Out of bounds writes are ignored.
func (m *MaskBuffer) Set(x, y int, on bool) {
	if !m.In(x, y) {
		return
	}
	i := m.img.PixOffset(x, y)
	v := UnsetPixel
	if on {
		v = SetPixel
	}
	m.img.Pix[i+0] = v.R
	m.img.Pix[i+1] = v.G
	m.img.Pix[i+2] = v.B
	m.img.Pix[i+3] = v.A
}

// SetSpan writes on to the pixels [x0, x1) of row y. The span must already
// be clipped to the mask bounds.
func (m *MaskBuffer) SetSpan(y, x0, x1 int, on bool) {
	v := UnsetPixel
	if on {
		v = SetPixel
	}
	row := m.img.Pix[m.img.PixOffset(x0, y):m.img.PixOffset(x1, y)]
	for i := 0; i < len(row); i += 4 {
		row[i+0] = v.R
		row[i+1] = v.G
		row[i+2] = v.B
		row[i+3] = v.A
	}
}

// Count returns the number of set pixels.
func (m *MaskBuffer) Count() int {
	n := 0
	for i := 3; i < len(m.img.Pix); i += 4 {
		if m.img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *MaskBuffer) Clone() *MaskBuffer {
	out := &MaskBuffer{img: image.NewRGBA(m.img.Rect)}
	copy(out.img.Pix, m.img.Pix)
	return out
}

// CopyFrom overwrites m with the contents of src. It returns false when the
// dimensions differ.
func (m *MaskBuffer) CopyFrom(src *MaskBuffer) bool {
	if src == nil || src.img.Rect != m.img.Rect {
		return false
	}
	copy(m.img.Pix, src.img.Pix)
	return true
}

// Equal reports whether both masks have the same size and pixels.
func (m *MaskBuffer) Equal(o *MaskBuffer) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.img.Rect != o.img.Rect {
		return false
	}
	for i := range m.img.Pix {
		if m.img.Pix[i] != o.img.Pix[i] {
			return false
		}
	}
	return true
}

// RGBA exposes the backing pixels for compositing. Callers must not write
// to it; mutation goes through the brush engine.
func (m *MaskBuffer) RGBA() *image.RGBA { return m.img }
