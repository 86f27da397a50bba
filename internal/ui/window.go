// Package ui hosts an editor session in a shiny window.
package ui

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/maskproof/internal/editor"
	"github.com/example/maskproof/internal/minimap"
	"github.com/example/maskproof/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const messageDuration = 2 * time.Second

// Window owns the shiny window for one session. Session calls happen on
// the event goroutine or inside drawFrame, always under mu.
type Window struct {
	mu   sync.Mutex
	sess *editor.Session

	theme       *theme.Theme
	title       string
	width       int
	height      int
	minimapSize int
	minimap     *minimap.Renderer
	layerLabel  func() string

	hover       bool
	minimapDrag bool
	backdrop    *image.RGBA

	msgMu        sync.Mutex
	message      string
	messageUntil time.Time

	updateCh  chan struct{}
	onClose   func()
	closeOnce sync.Once
}

// Option modifies a Window during creation.
type Option func(*Window)

// WithTheme sets the colours used for the window chrome.
func WithTheme(t *theme.Theme) Option { return func(w *Window) { w.theme = t } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(w *Window) { w.title = title } }

// WithSize sets the starting window size in pixels.
func WithSize(width, height int) Option {
	return func(w *Window) { w.width, w.height = width, height }
}

// WithMinimapSize sets the longest side of the minimap. Zero hides it.
func WithMinimapSize(n int) Option { return func(w *Window) { w.minimapSize = n } }

// WithLayerLabel supplies the layer description shown in the status bar.
func WithLayerLabel(fn func() string) Option { return func(w *Window) { w.layerLabel = fn } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(w *Window) { w.onClose = fn } }

// New creates a Window for sess.
func New(sess *editor.Session, opts ...Option) *Window {
	w := &Window{
		sess:        sess,
		theme:       theme.Default(),
		title:       "maskproof",
		minimapSize: minimap.DefaultSize,
		updateCh:    make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(w)
	}
	w.minimap = minimap.NewRenderer()
	w.minimap.Size = w.minimapSize
	w.minimap.Overlay = w.theme.MaskOverlay
	w.minimap.Border = w.theme.MinimapBorder
	w.minimap.Viewport = w.theme.MinimapViewport
	return w
}

// Refresh requests a repaint. It never blocks and is safe to call from any
// goroutine, so it can be handed to editor.WithRenderer.
func (w *Window) Refresh() {
	select {
	case w.updateCh <- struct{}{}:
	default:
	}
}

// Message shows msg over the canvas for a short while.
func (w *Window) Message(msg string) {
	w.msgMu.Lock()
	w.message = msg
	w.messageUntil = time.Now().Add(messageDuration)
	w.msgMu.Unlock()
	w.Refresh()
	time.AfterFunc(messageDuration, w.Refresh)
}

func (w *Window) currentMessage() (string, bool) {
	w.msgMu.Lock()
	defer w.msgMu.Unlock()
	if w.message == "" || !time.Now().Before(w.messageUntil) {
		return "", false
	}
	return w.message, true
}

func (w *Window) dismissMessage() {
	w.msgMu.Lock()
	w.messageUntil = time.Time{}
	w.msgMu.Unlock()
}

func (w *Window) notifyClose() {
	w.closeOnce.Do(func() {
		if w.onClose != nil {
			w.onClose()
		}
	})
}

type paintState struct {
	width  int
	height int
}

// Run executes the UI loop using shiny's driver.
func (w *Window) Run() { driver.Main(w.Main) }

// Main runs the window on s until it is closed.
func (w *Window) Main(s screen.Screen) {
	width, height := w.width, w.height
	if width <= 0 || height <= 0 {
		w.mu.Lock()
		img := w.sess.Image()
		width, height = windowSize(img.Width(), img.Height())
		w.mu.Unlock()
	}

	win, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: w.title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer win.Release()
	defer w.notifyClose()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-w.updateCh:
				win.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			w.drawFrame(ctx, s, win, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	stop := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		e := win.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stop()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			win.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()
			st := paintState{width: width, height: height}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			w.pointer(e, width, height)
			win.Send(paint.Event{})
		case key.Event:
			if e.Direction == key.DirRelease {
				continue
			}
			w.mu.Lock()
			handled := w.sess.HandleKey(e.Rune, e.Code, e.Modifiers)
			idle := w.sess.State() == editor.StateIdle
			w.mu.Unlock()
			if !handled && idle && isQuit(e) {
				stop()
				return
			}
			win.Send(paint.Event{})
		case error:
			log.Print(e)
		}
	}
}

func isQuit(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	if e.Modifiers&(key.ModControl|key.ModMeta) != 0 {
		return e.Rune == 'q' || e.Rune == 'Q'
	}
	return e.Rune == 'q' || e.Code == key.CodeEscape
}

// handleMouse translates a window mouse event into session input. Callers
// hold mu.
// pointer handles a mouse event from the event loop. A press also clears
// any status message; the press itself still reaches the session.
func (w *Window) pointer(e mouse.Event, width, height int) {
	if e.Direction == mouse.DirPress {
		w.dismissMessage()
	}
	w.mu.Lock()
	w.handleMouse(e, width, height)
	w.mu.Unlock()
}

func (w *Window) handleMouse(e mouse.Event, width, height int) {
	canvas := canvasRect(width, height)
	pt := image.Pt(int(e.X), int(e.Y))
	pos := canvasPos(canvas, e.X, e.Y)

	if e.Button.IsWheel() {
		if n := wheelNotches(e); n != 0 && pt.In(canvas) {
			w.sess.Wheel(n, pos)
		}
		return
	}

	img := w.sess.Image()
	var mm image.Rectangle
	if w.minimapSize > 0 {
		mm = minimapRect(canvas, img.Width(), img.Height(), w.minimapSize)
	}
	ev := editor.PointerEvent{Pos: pos, Button: e.Button, Modifiers: e.Modifiers}

	switch e.Direction {
	case mouse.DirPress:
		if e.Button == mouse.ButtonLeft && pt.In(mm) && w.sess.State() == editor.StateIdle {
			w.minimapDrag = true
			w.sess.PanTo(minimapPan(mm, pt, img.Width(), img.Height(), w.minimapSize, w.sess.Viewport().Zoom))
			return
		}
		if pt.In(canvas) {
			w.sess.PointerDown(ev)
		}
	case mouse.DirRelease:
		if w.minimapDrag {
			w.minimapDrag = false
			return
		}
		w.sess.PointerUp(ev)
	default:
		w.hover = pt.In(canvas) && !pt.In(mm)
		if w.minimapDrag {
			pt.X = min(max(pt.X, mm.Min.X), mm.Max.X-1)
			pt.Y = min(max(pt.Y, mm.Min.Y), mm.Max.Y-1)
			w.sess.PanTo(minimapPan(mm, pt, img.Width(), img.Height(), w.minimapSize, w.sess.Viewport().Zoom))
			return
		}
		if !pt.In(canvas) {
			w.sess.PointerLeave()
			return
		}
		w.sess.PointerMove(ev)
	}
}
