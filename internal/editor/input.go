package editor

import (
	"image"
	"math"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/maskproof/internal/brush"
	"github.com/example/maskproof/internal/viewport"
)

// State is the pointer gesture in progress.
type State int

const (
	StateIdle State = iota
	StateStroking
	StatePanning
)

func (s State) String() string {
	switch s {
	case StateStroking:
		return "stroking"
	case StatePanning:
		return "panning"
	default:
		return "idle"
	}
}

// PointerEvent is a pointer sample. Pos is measured in display units from
// the centre of the drawing surface.
type PointerEvent struct {
	Pos       viewport.Point
	Button    mouse.Button
	Modifiers key.Modifiers
}

// State returns the current gesture.
func (s *Session) State() State { return s.state }

// ImagePoint maps a display position to the image pixel under it.
func (s *Session) ImagePoint(pos viewport.Point) image.Point {
	p := s.view.DisplayToImage(pos, s.img.Width(), s.img.Height())
	return image.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y)))
}

func (s *Session) wantsPan(ev PointerEvent) bool {
	if ev.Button == mouse.ButtonMiddle {
		return true
	}
	if ev.Modifiers&key.ModControl != 0 {
		return true
	}
	return s.brush.Tool == ToolPan
}

// PointerDown starts a stroke or a pan. Presses during a gesture and
// buttons other than left and middle are ignored.
func (s *Session) PointerDown(ev PointerEvent) {
	if s.state != StateIdle {
		return
	}
	if ev.Button != mouse.ButtonLeft && ev.Button != mouse.ButtonMiddle {
		return
	}
	s.lastPos = ev.Pos
	if s.wantsPan(ev) {
		s.state = StatePanning
		return
	}
	s.state = StateStroking
	s.hist.Begin(s.mask)
	s.stamp(ev.Pos)
}

// PointerMove continues the active gesture. Each move applies exactly one
// stamp; there is no interpolation between samples.
func (s *Session) PointerMove(ev PointerEvent) {
	switch s.state {
	case StateStroking:
		s.stamp(ev.Pos)
	case StatePanning:
		s.view.PanBy(ev.Pos.X-s.lastPos.X, ev.Pos.Y-s.lastPos.Y)
		s.lastPos = ev.Pos
		s.render()
	default:
		// Hover still moves the brush cursor.
		s.lastPos = ev.Pos
	}
}

// PointerUp ends the active gesture.
func (s *Session) PointerUp(PointerEvent) {
	s.endGesture()
}

// PointerLeave ends the active gesture as if the button was released.
func (s *Session) PointerLeave() {
	s.endGesture()
}

func (s *Session) endGesture() {
	if s.state == StateIdle {
		return
	}
	s.state = StateIdle
	s.render()
}

// Wheel zooms by notches around the pointer position.
func (s *Session) Wheel(notches float64, pos viewport.Point) {
	if notches == 0 {
		return
	}
	s.view.Wheel(notches, pos.X, pos.Y)
	s.render()
}

// Cursor returns the last pointer position in display units.
func (s *Session) Cursor() viewport.Point { return s.lastPos }

func (s *Session) stamp(pos viewport.Point) {
	p := s.ImagePoint(pos)
	r := brush.Stamp(s.mask, p.X, p.Y, s.brush.Radius(), s.brush.Mode())
	s.markDirty(r)
	s.lastPos = pos
	s.render()
}
