// Package brush stamps circular regions into a mask.
package brush

import (
	"image"
	"math"

	"github.com/example/maskproof/internal/raster"
)

// Mode selects what a stamp writes.
type Mode int

const (
	// Paint marks pixels.
	Paint Mode = iota
	// Erase clears pixels.
	Erase
)

func (m Mode) String() string {
	switch m {
	case Paint:
		return "paint"
	case Erase:
		return "erase"
	default:
		return "unknown"
	}
}

const (
	// MinRadius and MaxRadius bound the radii offered by the editor.
	MinRadius = 1
	MaxRadius = 64
	// DefaultRadius is the initial radius for both tools.
	DefaultRadius = 5
)

// ClampRadius limits r to [MinRadius, MaxRadius].
func ClampRadius(r int) int {
	if r < MinRadius {
		return MinRadius
	}
	if r > MaxRadius {
		return MaxRadius
	}
	return r
}

// Stamp sets (Paint) or clears (Erase) every pixel whose squared distance
// from (cx, cy) is at most radius². Pixels outside the mask are skipped. A
// non-positive radius touches only the centre pixel. The returned rectangle
// covers the pixels written, clipped to the mask bounds.
func Stamp(m *raster.MaskBuffer, cx, cy, radius int, mode Mode) image.Rectangle {
	if m == nil {
		return image.Rectangle{}
	}
	if radius < 0 {
		radius = 0
	}
	on := mode == Paint
	bounds := m.Bounds()
	r2 := radius * radius
	var dirty image.Rectangle
	for dy := -radius; dy <= radius; dy++ {
		y := cy + dy
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		half := isqrt(r2 - dy*dy)
		x0 := cx - half
		x1 := cx + half + 1
		if x0 < bounds.Min.X {
			x0 = bounds.Min.X
		}
		if x1 > bounds.Max.X {
			x1 = bounds.Max.X
		}
		if x0 >= x1 {
			continue
		}
		m.SetSpan(y, x0, x1, on)
		dirty = dirty.Union(image.Rect(x0, y, x1, y+1))
	}
	return dirty
}

// isqrt returns the largest d with d*d <= n.
func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	d := int(math.Sqrt(float64(n)))
	for d*d > n {
		d--
	}
	for (d+1)*(d+1) <= n {
		d++
	}
	return d
}
