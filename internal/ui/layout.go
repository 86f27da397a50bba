package ui

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/mobile/event/mouse"

	"github.com/example/maskproof/internal/editor"
	"github.com/example/maskproof/internal/minimap"
	"github.com/example/maskproof/internal/viewport"
)

const (
	statusHeight  = 20
	minimapMargin = 8

	minWindowW = 480
	minWindowH = 360
	maxWindowW = 1600
	maxWindowH = 1000
)

// windowSize picks a starting window that shows the image at zoom 1 when
// it fits.
func windowSize(imgW, imgH int) (int, int) {
	w := min(max(imgW, minWindowW), maxWindowW)
	h := min(max(imgH, minWindowH), maxWindowH)
	return w, h + statusHeight
}

// canvasRect is the drawing surface: everything above the status bar.
func canvasRect(width, height int) image.Rectangle {
	h := max(height-statusHeight, 0)
	return image.Rect(0, 0, width, h)
}

// statusRect is the bar along the bottom edge.
func statusRect(width, height int) image.Rectangle {
	return image.Rect(0, max(height-statusHeight, 0), width, height)
}

// canvasPos converts a window pixel to a display position measured from
// the centre of the canvas.
func canvasPos(canvas image.Rectangle, x, y float32) viewport.Point {
	cx := float64(canvas.Min.X) + float64(canvas.Dx())/2
	cy := float64(canvas.Min.Y) + float64(canvas.Dy())/2
	return viewport.Point{X: float64(x) - cx, Y: float64(y) - cy}
}

// canvasPixel is the inverse of canvasPos.
func canvasPixel(canvas image.Rectangle, p viewport.Point) (float64, float64) {
	cx := float64(canvas.Min.X) + float64(canvas.Dx())/2
	cy := float64(canvas.Min.Y) + float64(canvas.Dy())/2
	return cx + p.X, cy + p.Y
}

// wheelNotches returns +1 for a wheel step that zooms in, -1 for one that
// zooms out and 0 for anything else.
func wheelNotches(e mouse.Event) float64 {
	if !e.Button.IsWheel() || e.Direction == mouse.DirRelease {
		return 0
	}
	switch e.Button {
	case mouse.ButtonWheelUp:
		return 1
	case mouse.ButtonWheelDown:
		return -1
	}
	return 0
}

// minimapRect places a thumbnail of imgW x imgH in the top right corner of
// canvas. It is empty when the canvas is too small to hold it.
func minimapRect(canvas image.Rectangle, imgW, imgH, size int) image.Rectangle {
	tw, th, _ := minimap.ThumbSize(imgW, imgH, size)
	if tw == 0 || th == 0 {
		return image.Rectangle{}
	}
	if tw+2*minimapMargin > canvas.Dx() || th+2*minimapMargin > canvas.Dy() {
		return image.Rectangle{}
	}
	x1 := canvas.Max.X - minimapMargin
	y0 := canvas.Min.Y + minimapMargin
	return image.Rect(x1-tw, y0, x1, y0+th)
}

// minimapPan returns the pan that centres the image point under window
// pixel p inside the minimap rectangle r.
func minimapPan(r image.Rectangle, p image.Point, imgW, imgH, size int, zoom float64) viewport.Point {
	_, _, scale := minimap.ThumbSize(imgW, imgH, size)
	t := minimap.Thumbnail{Scale: scale, ImageW: imgW, ImageH: imgH}
	return t.PanForClick(float64(p.X-r.Min.X)+0.5, float64(p.Y-r.Min.Y)+0.5, zoom)
}

// statusText summarises the session for the status bar.
func statusText(s *editor.Session, layer string) string {
	b := s.Brush()
	parts := []string{b.Tool.String()}
	if b.Tool != editor.ToolPan {
		parts[0] = fmt.Sprintf("%s r%d", b.Tool, b.Radius())
	}
	parts = append(parts, fmt.Sprintf("%d%%", int(math.Round(s.Viewport().Zoom*100))))
	if layer != "" {
		parts = append(parts, layer)
	}
	parts = append(parts, fmt.Sprintf("undo %d redo %d", s.UndoLen(), s.RedoLen()))
	if !s.ShowMask() {
		parts = append(parts, "mask hidden")
	}
	return strings.Join(parts, " | ")
}
