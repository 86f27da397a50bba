package viewport

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol = 1e-9

func TestWheelScenario(t *testing.T) {
	v := New()
	v.ZoomAt(2.0, 40, 30)
	assert.InDelta(t, 2.0, v.Zoom, tol)
	assert.InDelta(t, -40, v.Pan.X, tol)
	assert.InDelta(t, -30, v.Pan.Y, tol)
}

func TestZoomKeepsCursorPoint(t *testing.T) {
	const imgW, imgH = 300, 200
	starts := []Viewport{
		{Zoom: 1, Pan: Point{}},
		{Zoom: 0.5, Pan: Point{X: 13, Y: -7}},
		{Zoom: 3.2, Pan: Point{X: -120, Y: 44}},
	}
	targets := []float64{0.1, 0.3, 1, 2.5, 7, 10}
	cursors := []Point{{0, 0}, {40, 30}, {-150, 90}, {3.5, -61.25}}
	for _, s := range starts {
		for _, z := range targets {
			for _, c := range cursors {
				v := s
				before := v.DisplayToImage(c, imgW, imgH)
				v.ZoomAt(z, c.X, c.Y)
				after := v.DisplayToImage(c, imgW, imgH)
				assert.InDelta(t, before.X, after.X, 1e-6)
				assert.InDelta(t, before.Y, after.Y, 1e-6)
			}
		}
	}
}

func TestZoomClamped(t *testing.T) {
	v := New()
	v.ZoomAt(50, 0, 0)
	assert.Equal(t, MaxZoom, v.Zoom)
	v.ZoomAt(0.001, 0, 0)
	assert.Equal(t, MinZoom, v.Zoom)
}

func TestWheelSteps(t *testing.T) {
	v := New()
	for i := 0; i < 10; i++ {
		v.Wheel(1, 0, 0)
	}
	assert.InDelta(t, 2.0, v.Zoom, tol)
	for i := 0; i < 40; i++ {
		v.Wheel(-1, 0, 0)
	}
	assert.InDelta(t, MinZoom, v.Zoom, tol)
}

func TestPanUnclamped(t *testing.T) {
	v := New()
	v.PanBy(1e6, -1e6)
	assert.Equal(t, Point{X: 1e6, Y: -1e6}, v.Pan)
	v.Reset()
	assert.Equal(t, New(), v)
}

func TestDisplayRoundTrip(t *testing.T) {
	v := Viewport{Zoom: 2.5, Pan: Point{X: 11, Y: -3}}
	p := Point{X: 17.25, Y: 99}
	back := v.DisplayToImage(v.ImageToDisplay(p, 64, 48), 64, 48)
	assert.InDelta(t, p.X, back.X, tol)
	assert.InDelta(t, p.Y, back.Y, tol)
}

func TestImageRect(t *testing.T) {
	v := New()
	assert.Equal(t, image.Rect(50, 25, 150, 75), v.ImageRect(image.Pt(200, 100), 100, 50))
	v.Zoom = 2
	v.Pan = Point{X: 10}
	assert.Equal(t, image.Rect(10, 0, 210, 100), v.ImageRect(image.Pt(200, 100), 100, 50))
}

func TestScreenToImage(t *testing.T) {
	sx, sy := DisplayScale(image.Pt(200, 100), image.Pt(100, 100))
	assert.Equal(t, 2.0, sx)
	assert.Equal(t, 1.0, sy)
	assert.Equal(t, image.Pt(20, 33), ScreenToImage(41, 33.9, sx, sy))
	assert.Equal(t, image.Pt(5, 5), ScreenToImage(5, 5, 0, 0))
}
