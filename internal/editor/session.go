// Package editor holds the mask editing session: the image and mask
// buffers, brush settings, viewport, history and the input state machine
// that ties pointer and keyboard events to them.
package editor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/example/maskproof/internal/brush"
	"github.com/example/maskproof/internal/history"
	"github.com/example/maskproof/internal/raster"
	"github.com/example/maskproof/internal/render"
	"github.com/example/maskproof/internal/viewport"
)

// Tool selects what a primary pointer drag does.
type Tool int

const (
	ToolPaint Tool = iota
	ToolErase
	ToolPan
)

func (t Tool) String() string {
	switch t {
	case ToolPaint:
		return "paint"
	case ToolErase:
		return "erase"
	case ToolPan:
		return "pan"
	default:
		return fmt.Sprintf("Tool(%d)", int(t))
	}
}

// ParseTool converts a tool name back to a Tool.
func ParseTool(name string) (Tool, error) {
	switch name {
	case "paint":
		return ToolPaint, nil
	case "erase":
		return ToolErase, nil
	case "pan":
		return ToolPan, nil
	}
	return ToolPaint, fmt.Errorf("unknown tool %q", name)
}

// BrushState is the active tool and the radius kept for each brush tool.
type BrushState struct {
	Tool        Tool
	PaintRadius int
	EraseRadius int
}

// DefaultBrush returns the paint tool with both radii at the default.
func DefaultBrush() BrushState {
	return BrushState{Tool: ToolPaint, PaintRadius: brush.DefaultRadius, EraseRadius: brush.DefaultRadius}
}

// Radius returns the radius used by the active tool. The pan tool reports
// the paint radius.
func (b BrushState) Radius() int {
	if b.Tool == ToolErase {
		return b.EraseRadius
	}
	return b.PaintRadius
}

// Mode returns the brush mode for the active tool.
func (b BrushState) Mode() brush.Mode {
	if b.Tool == ToolErase {
		return brush.Erase
	}
	return brush.Paint
}

func (b *BrushState) setRadius(r int) {
	r = brush.ClampRadius(r)
	if b.Tool == ToolErase {
		b.EraseRadius = r
		return
	}
	b.PaintRadius = r
}

func (b *BrushState) normalize() {
	b.PaintRadius = brush.ClampRadius(b.PaintRadius)
	b.EraseRadius = brush.ClampRadius(b.EraseRadius)
	if b.Tool < ToolPaint || b.Tool > ToolPan {
		b.Tool = ToolPaint
	}
}

// Clipboard is the system clipboard as seen by the session.
type Clipboard interface {
	WritePNG(data []byte) error
	ReadPNG() ([]byte, error)
	WriteText(text string) error
	ReadText() (string, error)
}

// ErrNoClipboard is returned by copy and paste when no clipboard was
// configured.
var ErrNoClipboard = errors.New("no clipboard available")

// Session is one open image and mask. It is not safe for concurrent use;
// the window host drives it from its event goroutine.
type Session struct {
	img      *raster.ImageBuffer
	mask     *raster.MaskBuffer
	saved    *raster.MaskBuffer
	view     viewport.Viewport
	hist     *history.History
	brush    BrushState
	showMask bool
	name     string

	state   State
	lastPos viewport.Point

	comp      *render.Compositor
	dirty     image.Rectangle
	fullDirty bool

	depth        int
	clip         Clipboard
	onSave       func(mask []byte) error
	onSaveFailed func(error)
	onSaved      func()
	onNext       func()
	onPrevious   func()
	onRender     func()
	onMessage    func(string)
	onCopied     func()
}

// Option configures a Session during Load.
type Option func(*Session)

// WithOnSave sets the callback receiving the encoded PNG mask on save.
func WithOnSave(fn func(mask []byte) error) Option { return func(s *Session) { s.onSave = fn } }

// WithOnSaveFailed registers a callback for failed saves.
func WithOnSaveFailed(fn func(error)) Option { return func(s *Session) { s.onSaveFailed = fn } }

// WithOnSaved registers a callback invoked after a successful save.
func WithOnSaved(fn func()) Option { return func(s *Session) { s.onSaved = fn } }

// WithOnNext sets the callback for the next layer shortcut.
func WithOnNext(fn func()) Option { return func(s *Session) { s.onNext = fn } }

// WithOnPrevious sets the callback for the previous layer shortcut.
func WithOnPrevious(fn func()) Option { return func(s *Session) { s.onPrevious = fn } }

// WithRenderer sets the hook called after every visible state change.
func WithRenderer(fn func()) Option { return func(s *Session) { s.onRender = fn } }

// WithOnMessage receives transient status messages.
func WithOnMessage(fn func(string)) Option { return func(s *Session) { s.onMessage = fn } }

// WithOnCopied registers a callback invoked after the mask was copied.
func WithOnCopied(fn func()) Option { return func(s *Session) { s.onCopied = fn } }

// WithHistoryDepth bounds the undo stack. Zero keeps every snapshot.
func WithHistoryDepth(depth int) Option { return func(s *Session) { s.depth = depth } }

// WithBrush sets the initial tool and radii.
func WithBrush(b BrushState) Option { return func(s *Session) { s.brush = b } }

// WithShowMask sets the initial overlay visibility.
func WithShowMask(show bool) Option { return func(s *Session) { s.showMask = show } }

// WithOverlay sets the overlay colour drawn over set mask pixels.
func WithOverlay(c color.RGBA) Option { return func(s *Session) { s.comp.Overlay = c } }

// WithClipboard enables mask copy and paste.
func WithClipboard(c Clipboard) Option { return func(s *Session) { s.clip = c } }

// WithName sets the layer name shown by the host.
func WithName(name string) Option { return func(s *Session) { s.name = name } }

// Load decodes the image and mask and opens a session on them. An empty
// mask starts blank. A decode failure returns a *raster.DecodeError and no
// session.
func Load(imageBytes, maskBytes []byte, opts ...Option) (*Session, error) {
	img, mask, err := decodePair(imageBytes, maskBytes)
	if err != nil {
		return nil, err
	}
	s := &Session{
		brush:    DefaultBrush(),
		showMask: true,
		depth:    history.DefaultDepth,
		comp:     render.NewCompositor(render.DefaultOverlay),
	}
	for _, o := range opts {
		o(s)
	}
	s.brush.normalize()
	s.hist = history.New(s.depth)
	s.install(img, mask)
	return s, nil
}

func decodePair(imageBytes, maskBytes []byte) (*raster.ImageBuffer, *raster.MaskBuffer, error) {
	img, err := raster.Decode(imageBytes)
	if err != nil {
		return nil, nil, err
	}
	mask, err := raster.DecodeMask(maskBytes, img.Width(), img.Height())
	if err != nil {
		return nil, nil, err
	}
	return img, mask, nil
}

func (s *Session) install(img *raster.ImageBuffer, mask *raster.MaskBuffer) {
	s.img = img
	s.mask = mask
	s.saved = mask.Clone()
	s.view.Reset()
	s.hist.Reset()
	s.state = StateIdle
	s.fullDirty = true
}

// Reload replaces the image and mask, for example when stepping to another
// layer. Viewport and history are reset; brush settings are kept. On a
// decode error the current buffers are left untouched.
func (s *Session) Reload(imageBytes, maskBytes []byte, name string) error {
	img, mask, err := decodePair(imageBytes, maskBytes)
	if err != nil {
		return err
	}
	s.install(img, mask)
	s.name = name
	s.render()
	return nil
}

// Image returns the base image.
func (s *Session) Image() *raster.ImageBuffer { return s.img }

// Mask returns the live mask. Callers must not keep it across edits.
func (s *Session) Mask() *raster.MaskBuffer { return s.mask }

// Viewport returns the current zoom and pan.
func (s *Session) Viewport() viewport.Viewport { return s.view }

// Brush returns the brush settings.
func (s *Session) Brush() BrushState { return s.brush }

// ShowMask reports whether the overlay is visible.
func (s *Session) ShowMask() bool { return s.showMask }

// Name returns the layer name.
func (s *Session) Name() string { return s.name }

// Modified reports whether the mask differs from the one last loaded or
// saved. Undoing back to that mask clears it.
func (s *Session) Modified() bool {
	return s.mask != nil && !s.mask.Equal(s.saved)
}

// UndoLen returns the number of undo steps available.
func (s *Session) UndoLen() int { return s.hist.UndoLen() }

// RedoLen returns the number of redo steps available.
func (s *Session) RedoLen() int { return s.hist.RedoLen() }

// SetTool switches the active tool. It is ignored while a stroke or pan is
// in progress and reports whether the switch happened.
func (s *Session) SetTool(t Tool) bool {
	if s.state != StateIdle || t < ToolPaint || t > ToolPan {
		return false
	}
	if s.brush.Tool != t {
		s.brush.Tool = t
		s.render()
	}
	return true
}

// SetRadius sets the radius of the active brush tool, clamped to the
// brush limits.
func (s *Session) SetRadius(r int) {
	s.brush.setRadius(r)
	s.render()
}

// AdjustRadius changes the active tool's radius by delta.
func (s *Session) AdjustRadius(delta int) {
	s.SetRadius(s.brush.Radius() + delta)
}

// ToggleMask flips overlay visibility.
func (s *Session) ToggleMask() {
	s.showMask = !s.showMask
	s.fullDirty = true
	s.render()
}

// Undo restores the mask from before the last stroke. It does nothing when
// there is no history or a gesture is active.
func (s *Session) Undo() bool {
	if s.state != StateIdle {
		return false
	}
	prev, ok := s.hist.Undo(s.mask)
	if !ok {
		return false
	}
	s.mask.CopyFrom(prev)
	s.fullDirty = true
	s.render()
	return true
}

// Redo re-applies the last undone stroke.
func (s *Session) Redo() bool {
	if s.state != StateIdle {
		return false
	}
	next, ok := s.hist.Redo(s.mask)
	if !ok {
		return false
	}
	s.mask.CopyFrom(next)
	s.fullDirty = true
	s.render()
	return true
}

// Save encodes the mask and hands it to the save callback. Failures are
// logged and reported but leave the session open.
func (s *Session) Save() error {
	err := s.save()
	if err != nil {
		log.Printf("save: %v", err)
		s.status(fmt.Sprintf("save failed: %v", err))
		if s.onSaveFailed != nil {
			s.onSaveFailed(err)
		}
		return err
	}
	s.saved = s.mask.Clone()
	if s.onSaved != nil {
		s.onSaved()
	}
	if s.name != "" {
		s.status(fmt.Sprintf("saved %s", s.name))
	} else {
		s.status("mask saved")
	}
	return nil
}

func (s *Session) save() error {
	data, err := raster.Encode(s.mask)
	if err != nil {
		return err
	}
	if s.onSave == nil {
		return nil
	}
	return s.onSave(data)
}

// Next asks the host to move to the next layer.
func (s *Session) Next() {
	if s.state == StateIdle && s.onNext != nil {
		s.onNext()
	}
}

// Previous asks the host to move to the previous layer.
func (s *Session) Previous() {
	if s.state == StateIdle && s.onPrevious != nil {
		s.onPrevious()
	}
}

// ZoomStep zooms by notches of viewport.WheelStep around the display
// centre.
func (s *Session) ZoomStep(notches float64) {
	s.view.Wheel(notches, 0, 0)
	s.render()
}

// ResetView restores 100% zoom and no pan.
func (s *Session) ResetView() {
	s.view.Reset()
	s.render()
}

// PanTo sets the pan directly, used by minimap clicks.
func (s *Session) PanTo(p viewport.Point) {
	s.view.Pan = p
	s.render()
}

// CopyMask places the mask on the clipboard as PNG.
func (s *Session) CopyMask() error {
	if s.clip == nil {
		return ErrNoClipboard
	}
	data, err := raster.Encode(s.mask)
	if err != nil {
		return err
	}
	if err := s.clip.WritePNG(data); err != nil {
		log.Printf("copy: %v", err)
		return err
	}
	s.copied("mask copied to clipboard")
	return nil
}

// CopyMaskBase64 places the base64 transport encoding of the mask on the
// clipboard as text.
func (s *Session) CopyMaskBase64() error {
	if s.clip == nil {
		return ErrNoClipboard
	}
	data, err := raster.EncodeBase64(s.mask)
	if err != nil {
		return err
	}
	if err := s.clip.WriteText(string(data)); err != nil {
		log.Printf("copy: %v", err)
		return err
	}
	s.copied("mask copied as base64")
	return nil
}

func (s *Session) copied(msg string) {
	s.status(msg)
	if s.onCopied != nil {
		s.onCopied()
	}
}

// PasteMask replaces the mask with one read from the clipboard. PNG data is
// preferred; text holding base64 or a data URL is accepted. The paste is a
// single undo step.
func (s *Session) PasteMask() error {
	if s.clip == nil {
		return ErrNoClipboard
	}
	if s.state != StateIdle {
		return nil
	}
	data, err := s.clip.ReadPNG()
	if err != nil || len(data) == 0 {
		text, terr := s.clip.ReadText()
		if terr != nil || text == "" {
			if err == nil {
				err = terr
			}
			if err == nil {
				err = errors.New("clipboard is empty")
			}
			log.Printf("paste: %v", err)
			return err
		}
		data = []byte(text)
	}
	pasted, err := raster.DecodeMask(data, s.img.Width(), s.img.Height())
	if err != nil {
		log.Printf("paste: %v", err)
		s.status(fmt.Sprintf("paste failed: %v", err))
		return err
	}
	if pasted.Equal(s.mask) {
		return nil
	}
	s.hist.Begin(s.mask)
	s.mask.CopyFrom(pasted)
	s.fullDirty = true
	s.status("mask pasted")
	s.render()
	return nil
}

// Frame returns the composited backing frame, recomposing only what
// changed since the last call.
func (s *Session) Frame() *image.RGBA {
	switch {
	case s.fullDirty || s.comp.Frame() == nil:
		s.comp.Compose(s.img, s.mask, s.showMask)
	case !s.dirty.Empty():
		s.comp.ComposeRect(s.img, s.mask, s.showMask, s.dirty)
	}
	s.fullDirty = false
	s.dirty = image.Rectangle{}
	return s.comp.Frame()
}

func (s *Session) markDirty(r image.Rectangle) {
	s.dirty = s.dirty.Union(r)
}

func (s *Session) status(msg string) {
	log.Print(msg)
	if s.onMessage != nil {
		s.onMessage(msg)
	}
}

func (s *Session) render() {
	if s.onRender != nil {
		s.onRender()
	}
}
