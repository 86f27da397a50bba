package ui

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/maskproof/internal/editor"
	"github.com/example/maskproof/internal/render"
)

const checkerSize = 8

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 48, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

func (w *Window) drawFrame(ctx context.Context, s screen.Screen, win screen.Window, st paintState) {
	if st.width <= 0 || st.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	w.mu.Lock()
	ok := w.drawCanvas(ctx, dst, canvasRect(st.width, st.height))
	label := ""
	if w.layerLabel != nil {
		label = w.layerLabel()
	}
	status := statusText(w.sess, label)
	w.mu.Unlock()
	if !ok || ctx.Err() != nil {
		return
	}

	w.drawStatus(dst, statusRect(st.width, st.height), status)

	if msg, ok := w.currentMessage(); ok {
		drawMessage(dst, msg)
	}

	if ctx.Err() != nil {
		return
	}

	win.Upload(image.Point{}, b, b.Bounds())
	win.Publish()
}

// drawCanvas draws the image, brush cursor and minimap into canvas.
// Callers hold mu.
func (w *Window) drawCanvas(ctx context.Context, dst *image.RGBA, canvas image.Rectangle) bool {
	if canvas.Empty() {
		return true
	}
	cv := dst.SubImage(canvas).(*image.RGBA)
	draw.Draw(cv, canvas, image.NewUniform(w.theme.Background), image.Point{}, draw.Src)

	frame := w.sess.Frame()
	v := w.sess.Viewport()
	if frame == nil {
		return true
	}
	target := v.ImageRect(canvas.Size(), frame.Rect.Dx(), frame.Rect.Dy()).Add(canvas.Min)
	w.drawBackdrop(cv, target)
	if ctx.Err() != nil {
		return false
	}
	render.PresentOver(cv, frame, v)
	if ctx.Err() != nil {
		return false
	}

	b := w.sess.Brush()
	if w.hover && b.Tool != editor.ToolPan && w.sess.State() != editor.StatePanning {
		x, y := canvasPixel(canvas, w.sess.Cursor())
		col := w.theme.BrushPaint
		if b.Tool == editor.ToolErase {
			col = w.theme.BrushErase
		}
		render.DrawBrushCursor(cv, x, y, b.Radius(), v.Zoom, col)
	}

	if w.minimapSize > 0 {
		img := w.sess.Image()
		mm := minimapRect(canvas, img.Width(), img.Height(), w.minimapSize)
		if !mm.Empty() {
			thumb := w.minimap.Render(img, w.sess.Mask(), w.sess.ShowMask(), v, canvas.Size())
			draw.Draw(cv, mm, thumb.Image, image.Point{}, draw.Src)
		}
	}
	return ctx.Err() == nil
}

// drawBackdrop fills r of dst from a cached checkerboard aligned to dst.
func (w *Window) drawBackdrop(dst *image.RGBA, r image.Rectangle) {
	b := dst.Bounds()
	if w.backdrop == nil || w.backdrop.Bounds() != b {
		w.backdrop = image.NewRGBA(b)
		render.DrawCheckerboard(w.backdrop, b, checkerSize, w.theme.CheckerLight, w.theme.CheckerDark)
	}
	r = r.Intersect(b)
	draw.Draw(dst, r, w.backdrop, r.Min, draw.Src)
}

func (w *Window) drawStatus(dst *image.RGBA, r image.Rectangle, text string) {
	draw.Draw(dst, r, image.NewUniform(w.theme.StatusBackground), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(w.theme.StatusText), Face: basicfont.Face7x13,
		Dot: fixed.P(r.Min.X+4, r.Min.Y+14)}
	d.DrawString(text)
}

func drawMessage(dst *image.RGBA, msg string) {
	b := dst.Bounds()
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: messageFace}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := (b.Dx() - wmsg) / 2
	py := (b.Dy()-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	drawRect(dst, rect, color.Black, 2)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	u := image.NewUniform(col)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thick), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-thick, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thick, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-thick, rect.Min.Y, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
}
