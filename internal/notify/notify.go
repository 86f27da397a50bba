// Package notify announces mask saves, save failures and clipboard copies
// on the desktop.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/example/maskproof/internal/minimap"
	"github.com/example/maskproof/internal/platform"
	"github.com/example/maskproof/internal/raster"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when a mask is written.
	EventSave Event = "save"
	// EventSaveFailed fires when writing a mask fails.
	EventSaveFailed Event = "save-failed"
	// EventCopy fires when a mask is copied to the clipboard.
	EventCopy Event = "copy"
)

// DefaultPreviewSize is the longest side of the mask thumbnail attached to
// notifications.
const DefaultPreviewSize = 64

// Report describes the mask an event is about. Templates may refer to its
// fields as {layer}, {path}, {coverage} and {error}.
type Report struct {
	Layer string
	Path  string
	Mask  *raster.MaskBuffer
	Err   error
}

func (r Report) layer() string {
	if r.Layer != "" {
		return r.Layer
	}
	if r.Path != "" {
		base := filepath.Base(r.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "mask"
}

func (r Report) coverage() string {
	if r.Mask == nil {
		return "?"
	}
	total := r.Mask.Width() * r.Mask.Height()
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(r.Mask.Count())*100/float64(total))
}

func (r Report) expand(template string) string {
	errText := ""
	if r.Err != nil {
		errText = r.Err.Error()
	}
	return strings.NewReplacer(
		"{layer}", r.layer(),
		"{path}", r.Path,
		"{coverage}", r.coverage(),
		"{error}", errText,
	).Replace(template)
}

// Preferences holds the title and per-event body templates.
type Preferences struct {
	Title       string
	Events      map[Event]string
	PreviewSize int
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "maskproof",
		Events: map[Event]string{
			EventSave:       "Saved {layer} ({coverage} set)",
			EventSaveFailed: "Could not save {layer}: {error}",
			EventCopy:       "Copied {layer} to clipboard",
		},
		PreviewSize: DefaultPreviewSize,
	}
}

// LoadPreferences applies MASKPROOF_NOTIFY_* environment overrides to the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("MASKPROOF_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for key, event := range map[string]Event{
		"MASKPROOF_NOTIFY_SAVE_TEXT":   EventSave,
		"MASKPROOF_NOTIFY_FAILED_TEXT": EventSaveFailed,
		"MASKPROOF_NOTIFY_COPY_TEXT":   EventCopy,
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Events[event] = v
		}
	}
	return prefs
}

// Sender delivers a notification. platform.Notify is the default.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends desktop notifications for enabled events. A nil Notifier
// is silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	events := make(map[Event]string, len(prefs.Events))
	for k, v := range prefs.Events {
		events[k] = v
	}
	prefs.Events = events
	if prefs.PreviewSize <= 0 {
		prefs.PreviewSize = DefaultPreviewSize
	}
	return &Notifier{prefs: prefs, enabled: make(map[Event]bool), send: platform.Notify}
}

// SetSender replaces the delivery function.
func (n *Notifier) SetSender(s Sender) {
	if n != nil && s != nil {
		n.send = s
	}
}

// Enable toggles an event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Saved announces a written mask.
func (n *Notifier) Saved(r Report) {
	if r.Path != "" {
		if abs, err := filepath.Abs(r.Path); err == nil {
			r.Path = abs
		}
	}
	n.dispatch(EventSave, r, platform.UrgencyLow)
}

// SaveFailed announces a failed write. It stays on screen until dismissed.
func (n *Notifier) SaveFailed(r Report) {
	n.dispatch(EventSaveFailed, r, platform.UrgencyCritical)
}

// Copied announces a clipboard copy.
func (n *Notifier) Copied(r Report) {
	n.dispatch(EventCopy, r, platform.UrgencyLow)
}

func (n *Notifier) dispatch(event Event, r Report, urgency platform.Urgency) {
	if n == nil || !n.enabled[event] {
		return
	}
	body := strings.TrimSpace(r.expand(n.prefs.Events[event]))
	if body == "" {
		return
	}
	opts := platform.Options{Subtitle: r.layer(), Urgency: urgency}
	if r.Mask != nil {
		path, cleanup, err := writePreview(r.Mask, n.prefs.PreviewSize)
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

// preview scales the mask down so its longest side is size.
func preview(m *raster.MaskBuffer, size int) *image.RGBA {
	w, h, _ := minimap.ThumbSize(m.Width(), m.Height(), size)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), m.RGBA(), m.Bounds(), xdraw.Src, nil)
	return dst
}

func writePreview(m *raster.MaskBuffer, size int) (string, func(), error) {
	f, err := os.CreateTemp("", "maskproof-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, preview(m, size)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("encode preview: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
