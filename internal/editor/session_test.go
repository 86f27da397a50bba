package editor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/maskproof/internal/brush"
	"github.com/example/maskproof/internal/raster"
	"github.com/example/maskproof/internal/viewport"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 90, 120, 150, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := Load(pngOf(t, 100, 100), nil, opts...)
	require.NoError(t, err)
	return s
}

// at returns the display position over image pixel (x, y) at zoom 1 with
// no pan.
func at(s *Session, x, y int) viewport.Point {
	return viewport.Point{
		X: float64(x) - float64(s.Image().Width())/2 + 0.5,
		Y: float64(y) - float64(s.Image().Height())/2 + 0.5,
	}
}

func left(p viewport.Point) PointerEvent {
	return PointerEvent{Pos: p, Button: mouse.ButtonLeft}
}

func discCount(r int) int {
	n := 0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				n++
			}
		}
	}
	return n
}

func TestLoadStartsBlank(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, 0, s.Mask().Count())
	assert.Equal(t, viewport.New(), s.Viewport())
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, ToolPaint, s.Brush().Tool)
	assert.True(t, s.ShowMask())
}

func TestLoadRejectsMismatchedMask(t *testing.T) {
	mask := pngOf(t, 10, 10)
	_, err := Load(pngOf(t, 100, 100), mask)
	var de *raster.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "mask", de.Input)

	_, err = Load([]byte("not an image"), nil)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "image", de.Input)
}

func TestPaintUndoRedoScenario(t *testing.T) {
	s := newSession(t, WithBrush(BrushState{Tool: ToolPaint, PaintRadius: 10, EraseRadius: 10}))
	s.PointerDown(left(at(s, 50, 50)))
	s.PointerUp(left(at(s, 50, 50)))

	want := discCount(10)
	assert.Equal(t, want, s.Mask().Count())
	assert.True(t, s.Mask().IsSet(60, 50))
	assert.False(t, s.Mask().IsSet(61, 50))

	require.True(t, s.Undo())
	assert.Equal(t, 0, s.Mask().Count())
	require.True(t, s.Redo())
	assert.Equal(t, want, s.Mask().Count())
}

func TestStrokeIsSingleUndoStep(t *testing.T) {
	s := newSession(t)
	s.PointerDown(left(at(s, 10, 10)))
	for x := 11; x < 40; x++ {
		s.PointerMove(left(at(s, x, 10)))
	}
	s.PointerUp(left(at(s, 40, 10)))

	assert.Equal(t, 1, s.UndoLen())
	assert.Greater(t, s.Mask().Count(), 0)
	require.True(t, s.Undo())
	assert.Equal(t, 0, s.Mask().Count())
	assert.False(t, s.Undo())
}

func TestFastMovesLeaveGaps(t *testing.T) {
	s := newSession(t, WithBrush(BrushState{Tool: ToolPaint, PaintRadius: 1, EraseRadius: 1}))
	s.PointerDown(left(at(s, 10, 50)))
	s.PointerMove(left(at(s, 30, 50)))
	s.PointerUp(left(at(s, 30, 50)))

	assert.True(t, s.Mask().IsSet(10, 50))
	assert.True(t, s.Mask().IsSet(30, 50))
	// Samples are stamped individually with nothing drawn between them.
	assert.False(t, s.Mask().IsSet(20, 50))
}

func TestEraseUsesEraseRadius(t *testing.T) {
	s := newSession(t, WithBrush(BrushState{Tool: ToolPaint, PaintRadius: 20, EraseRadius: 3}))
	s.PointerDown(left(at(s, 50, 50)))
	s.PointerUp(left(at(s, 50, 50)))
	require.True(t, s.SetTool(ToolErase))
	s.PointerDown(left(at(s, 50, 50)))
	s.PointerUp(left(at(s, 50, 50)))

	assert.Equal(t, discCount(20)-discCount(3), s.Mask().Count())
	assert.Equal(t, 2, s.UndoLen())
}

func TestToolSwitchIgnoredDuringStroke(t *testing.T) {
	s := newSession(t)
	s.PointerDown(left(at(s, 5, 5)))
	assert.False(t, s.SetTool(ToolErase))
	s.Do(ActionPan)
	assert.Equal(t, ToolPaint, s.Brush().Tool)
	s.PointerUp(left(at(s, 5, 5)))
	assert.True(t, s.SetTool(ToolErase))
	assert.Equal(t, ToolErase, s.Brush().Tool)
}

func TestPanToolDrags(t *testing.T) {
	s := newSession(t)
	require.True(t, s.SetTool(ToolPan))
	s.PointerDown(left(viewport.Point{}))
	assert.Equal(t, StatePanning, s.State())
	s.PointerMove(left(viewport.Point{X: 10, Y: -4}))
	s.PointerMove(left(viewport.Point{X: 15, Y: -5}))
	s.PointerUp(left(viewport.Point{X: 15, Y: -5}))

	assert.Equal(t, viewport.Point{X: 15, Y: -5}, s.Viewport().Pan)
	assert.Equal(t, 0, s.Mask().Count())
	assert.Equal(t, 0, s.UndoLen())
}

func TestMiddleButtonAndControlPan(t *testing.T) {
	s := newSession(t)
	s.PointerDown(PointerEvent{Button: mouse.ButtonMiddle})
	assert.Equal(t, StatePanning, s.State())
	s.PointerUp(PointerEvent{Button: mouse.ButtonMiddle})

	s.PointerDown(PointerEvent{Button: mouse.ButtonLeft, Modifiers: key.ModControl})
	assert.Equal(t, StatePanning, s.State())
	s.PointerMove(PointerEvent{Pos: viewport.Point{X: 3, Y: 4}})
	s.PointerUp(PointerEvent{})
	assert.Equal(t, viewport.Point{X: 3, Y: 4}, s.Viewport().Pan)
	assert.Equal(t, 0, s.Mask().Count())
}

func TestRightButtonIgnored(t *testing.T) {
	s := newSession(t)
	s.PointerDown(PointerEvent{Button: mouse.ButtonRight})
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 0, s.UndoLen())
}

func TestPointerLeaveEndsStroke(t *testing.T) {
	s := newSession(t)
	s.PointerDown(left(at(s, 50, 50)))
	s.PointerLeave()
	assert.Equal(t, StateIdle, s.State())
	before := s.Mask().Count()
	s.PointerMove(left(at(s, 20, 20)))
	assert.Equal(t, before, s.Mask().Count())
}

func TestWheelZoomsAtCursor(t *testing.T) {
	s := newSession(t)
	s.Wheel(10, viewport.Point{X: 40, Y: 30})
	v := s.Viewport()
	assert.InDelta(t, 2.0, v.Zoom, 1e-9)
	assert.InDelta(t, -40, v.Pan.X, 1e-9)
	assert.InDelta(t, -30, v.Pan.Y, 1e-9)

	s.ResetView()
	assert.Equal(t, viewport.New(), s.Viewport())
}

func TestStrokeAfterZoomHitsImagePoint(t *testing.T) {
	s := newSession(t, WithBrush(BrushState{PaintRadius: 1, EraseRadius: 1}))
	s.Wheel(10, viewport.Point{})
	// At zoom 2 the display offset (21, -9) lies over image (60, 45).
	s.PointerDown(left(viewport.Point{X: 21, Y: -9}))
	s.PointerUp(PointerEvent{})
	assert.True(t, s.Mask().IsSet(60, 45))
	assert.Equal(t, image.Pt(60, 45), s.ImagePoint(viewport.Point{X: 21, Y: -9}))
}

func TestSaveHandsPNGToCallback(t *testing.T) {
	var got []byte
	s := newSession(t, WithOnSave(func(mask []byte) error {
		got = mask
		return nil
	}))
	brushAt := at(s, 30, 30)
	s.PointerDown(left(brushAt))
	s.PointerUp(left(brushAt))
	require.NoError(t, s.Save())

	back, err := raster.DecodeMask(got, 100, 100)
	require.NoError(t, err)
	assert.True(t, back.Equal(s.Mask()))
}

func TestModifiedTracksLastSave(t *testing.T) {
	s := newSession(t, WithOnSave(func([]byte) error { return nil }))
	assert.False(t, s.Modified())

	p := at(s, 20, 20)
	s.PointerDown(left(p))
	s.PointerUp(left(p))
	assert.True(t, s.Modified())

	require.NoError(t, s.Save())
	assert.False(t, s.Modified())

	require.True(t, s.Undo())
	assert.True(t, s.Modified(), "undo past a save differs from the saved mask")
	require.True(t, s.Redo())
	assert.False(t, s.Modified())
}

func TestModifiedKeptOnFailedSave(t *testing.T) {
	s := newSession(t, WithOnSave(func([]byte) error { return errors.New("disk full") }))
	p := at(s, 20, 20)
	s.PointerDown(left(p))
	s.PointerUp(left(p))
	require.Error(t, s.Save())
	assert.True(t, s.Modified())
}

func TestSaveFailureKeepsSessionOpen(t *testing.T) {
	boom := errors.New("disk full")
	var failed error
	var messages []string
	s := newSession(t,
		WithOnSave(func([]byte) error { return boom }),
		WithOnSaveFailed(func(err error) { failed = err }),
		WithOnMessage(func(m string) { messages = append(messages, m) }),
	)
	err := s.Save()
	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, failed, boom)
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[len(messages)-1], "disk full")

	s.PointerDown(left(at(s, 50, 50)))
	s.PointerUp(left(at(s, 50, 50)))
	assert.Greater(t, s.Mask().Count(), 0)
}

func TestNavigationCallbacks(t *testing.T) {
	var next, prev int
	s := newSession(t, WithOnNext(func() { next++ }), WithOnPrevious(func() { prev++ }))
	s.HandleKey('d', key.CodeD, 0)
	s.HandleKey(-1, key.CodeRightArrow, 0)
	s.HandleKey('a', key.CodeA, 0)
	assert.Equal(t, 2, next)
	assert.Equal(t, 1, prev)

	s.PointerDown(left(at(s, 1, 1)))
	s.Next()
	assert.Equal(t, 2, next)
}

func TestRenderHookFires(t *testing.T) {
	calls := 0
	s := newSession(t, WithRenderer(func() { calls++ }))
	s.PointerDown(left(at(s, 1, 1)))
	s.PointerMove(left(at(s, 2, 2)))
	s.PointerUp(left(at(s, 2, 2)))
	s.ToggleMask()
	assert.GreaterOrEqual(t, calls, 4)
}

func TestRadiusAdjustsActiveTool(t *testing.T) {
	s := newSession(t)
	s.Do(ActionRadiusUp)
	assert.Equal(t, brush.DefaultRadius+1, s.Brush().PaintRadius)
	assert.Equal(t, brush.DefaultRadius, s.Brush().EraseRadius)

	s.SetTool(ToolErase)
	s.SetRadius(1000)
	assert.Equal(t, brush.MaxRadius, s.Brush().EraseRadius)
	s.SetRadius(-3)
	assert.Equal(t, brush.MinRadius, s.Brush().EraseRadius)
}

func TestReloadResetsViewAndHistory(t *testing.T) {
	s := newSession(t)
	s.PointerDown(left(at(s, 50, 50)))
	s.PointerUp(left(at(s, 50, 50)))
	s.Wheel(3, viewport.Point{X: 5})
	s.SetTool(ToolErase)

	require.NoError(t, s.Reload(pngOf(t, 40, 20), nil, "b"))
	assert.Equal(t, viewport.New(), s.Viewport())
	assert.Zero(t, s.UndoLen())
	assert.Zero(t, s.RedoLen())
	assert.Equal(t, 40, s.Mask().Width())
	assert.Equal(t, ToolErase, s.Brush().Tool)
	assert.Equal(t, "b", s.Name())

	err := s.Reload([]byte("junk"), nil, "c")
	require.Error(t, err)
	assert.Equal(t, 40, s.Image().Width())
	assert.Equal(t, "b", s.Name())
}

func TestFrameFollowsMaskVisibility(t *testing.T) {
	s := newSession(t, WithOverlay(color.RGBA{255, 0, 0, 255}))
	s.PointerDown(left(at(s, 50, 50)))
	s.PointerUp(left(at(s, 50, 50)))

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, s.Frame().RGBAAt(50, 50))
	s.ToggleMask()
	assert.Equal(t, color.RGBA{90, 120, 150, 255}, s.Frame().RGBAAt(50, 50))
}

type fakeClipboard struct {
	png  []byte
	text string
	err  error
}

func (f *fakeClipboard) WritePNG(data []byte) error {
	f.png = data
	return f.err
}

func (f *fakeClipboard) ReadPNG() ([]byte, error) { return f.png, f.err }

func (f *fakeClipboard) WriteText(s string) error {
	f.text = s
	return f.err
}

func (f *fakeClipboard) ReadText() (string, error) { return f.text, f.err }

func TestCopyPasteMask(t *testing.T) {
	clip := &fakeClipboard{}
	copied := 0
	s := newSession(t, WithClipboard(clip), WithOnCopied(func() { copied++ }))
	s.PointerDown(left(at(s, 20, 20)))
	s.PointerUp(left(at(s, 20, 20)))
	painted := s.Mask().Clone()

	require.NoError(t, s.CopyMask())
	assert.Equal(t, 1, copied)
	require.True(t, s.Undo())
	require.NoError(t, s.PasteMask())
	assert.True(t, s.Mask().Equal(painted))
	assert.Zero(t, s.RedoLen())

	require.True(t, s.Undo())
	assert.Zero(t, s.Mask().Count())
}

func TestPasteBase64Text(t *testing.T) {
	src := raster.BlankMask(100, 100)
	brush.Stamp(src, 70, 70, 4, brush.Paint)
	text, err := raster.EncodeBase64(src)
	require.NoError(t, err)

	clip := &fakeClipboard{text: "data:image/png;base64," + string(text)}
	s := newSession(t, WithClipboard(clip))
	require.NoError(t, s.PasteMask())
	assert.True(t, s.Mask().Equal(src))
	assert.Equal(t, 1, s.UndoLen())
}

func TestPasteWrongSizeRejected(t *testing.T) {
	small := raster.BlankMask(5, 5)
	small.Set(1, 1, true)
	data, err := raster.Encode(small)
	require.NoError(t, err)

	s := newSession(t, WithClipboard(&fakeClipboard{png: data}))
	err = s.PasteMask()
	var de *raster.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Zero(t, s.UndoLen())
}

func TestClipboardMissing(t *testing.T) {
	s := newSession(t)
	assert.ErrorIs(t, s.CopyMask(), ErrNoClipboard)
	assert.ErrorIs(t, s.PasteMask(), ErrNoClipboard)
}
