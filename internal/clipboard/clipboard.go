// Package clipboard exchanges mask PNG data and base64 text with the system
// clipboard.
package clipboard

import (
	"errors"
	"os"
)

var (
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	// ErrEmpty is returned when the clipboard holds nothing of the
	// requested kind.
	ErrEmpty = errors.New("clipboard does not contain the requested data")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// System is the process wide clipboard. It satisfies the editor's
// clipboard interface.
type System struct{}

func (System) WritePNG(data []byte) error  { return WritePNG(data) }
func (System) ReadPNG() ([]byte, error)    { return ReadPNG() }
func (System) WriteText(text string) error { return WriteText(text) }
func (System) ReadText() (string, error)   { return ReadText() }
