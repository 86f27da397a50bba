package editor

import (
	"sort"
	"unicode"

	"golang.org/x/mobile/event/key"
)

// Action names understood by Session.Do.
const (
	ActionPaint      = "paint"
	ActionErase      = "erase"
	ActionPan        = "pan"
	ActionUndo       = "undo"
	ActionRedo       = "redo"
	ActionSave       = "save"
	ActionPrevious   = "previous"
	ActionNext       = "next"
	ActionToggleMask = "toggle-mask"
	ActionRadiusDown = "radius-down"
	ActionRadiusUp   = "radius-up"
	ActionResetView  = "reset-view"
	ActionZoomIn     = "zoom-in"
	ActionZoomOut    = "zoom-out"
	ActionCopy       = "copy"
	ActionCopyBase64 = "copy-base64"
	ActionPaste      = "paste"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// command registers a shortcut on both Ctrl and Cmd.
func command(r rune, extra key.Modifiers) shortcutList {
	return shortcutList{
		{Rune: r, Modifiers: key.ModControl | extra},
		{Rune: r, Modifiers: key.ModMeta | extra},
	}
}

var defaultShortcuts = map[string]KeyboardShortcuts{
	ActionPaint:      shortcutList{{Rune: 'p'}},
	ActionErase:      shortcutList{{Rune: 'e'}},
	ActionPan:        shortcutList{{Rune: 'h'}},
	ActionUndo:       command('z', 0),
	ActionRedo:       append(command('z', key.ModShift), command('y', 0)...),
	ActionSave:       command('s', 0),
	ActionPrevious:   shortcutList{{Rune: 'a'}, {Code: key.CodeLeftArrow}},
	ActionNext:       shortcutList{{Rune: 'd'}, {Code: key.CodeRightArrow}},
	ActionToggleMask: shortcutList{{Rune: 'm'}},
	ActionRadiusDown: shortcutList{{Rune: '['}},
	ActionRadiusUp:   shortcutList{{Rune: ']'}},
	ActionResetView:  shortcutList{{Rune: '0'}},
	ActionZoomIn:     shortcutList{{Rune: '+'}, {Rune: '='}},
	ActionZoomOut:    shortcutList{{Rune: '-'}},
	ActionCopy:       command('c', 0),
	ActionCopyBase64: command('c', key.ModShift),
	ActionPaste:      command('v', 0),
}

// keyboardAction maps each shortcut to its action name.
var keyboardAction = func() map[KeyShortcut]string {
	m := map[KeyShortcut]string{}
	for name, keys := range defaultShortcuts {
		for _, sc := range keys.KeyboardShortcuts() {
			m[sc] = name
		}
	}
	return m
}()

// Shortcuts returns the shortcuts of action, or nil when it has none.
func Shortcuts(action string) []KeyShortcut {
	if keys, ok := defaultShortcuts[action]; ok {
		return keys.KeyboardShortcuts()
	}
	return nil
}

// Actions lists every action name in a stable order.
func Actions() []string {
	names := make([]string, 0, len(defaultShortcuts))
	for name := range defaultShortcuts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a key press to an action. Letters are matched case
// insensitively. An exact binding wins; otherwise Shift is ignored, so
// Shift+P still selects paint while Ctrl+Shift+Z stays redo.
func Lookup(r rune, code key.Code, mods key.Modifiers) (string, bool) {
	mods &= key.ModShift | key.ModControl | key.ModMeta
	for _, m := range []key.Modifiers{mods, mods &^ key.ModShift} {
		if r > 0 {
			if name, ok := keyboardAction[KeyShortcut{Rune: unicode.ToLower(r), Modifiers: m}]; ok {
				return name, true
			}
		}
		if code != key.CodeUnknown {
			if name, ok := keyboardAction[KeyShortcut{Code: code, Modifiers: m}]; ok {
				return name, true
			}
		}
	}
	return "", false
}

// HandleKey runs the action bound to a key press and reports whether one
// was found.
func (s *Session) HandleKey(r rune, code key.Code, mods key.Modifiers) bool {
	name, ok := Lookup(r, code, mods)
	if !ok {
		return false
	}
	s.Do(name)
	return true
}

// Do runs a named action. Unknown names are ignored.
func (s *Session) Do(action string) {
	switch action {
	case ActionPaint:
		s.SetTool(ToolPaint)
	case ActionErase:
		s.SetTool(ToolErase)
	case ActionPan:
		s.SetTool(ToolPan)
	case ActionUndo:
		s.Undo()
	case ActionRedo:
		s.Redo()
	case ActionSave:
		if s.state == StateIdle {
			_ = s.Save()
		}
	case ActionPrevious:
		s.Previous()
	case ActionNext:
		s.Next()
	case ActionToggleMask:
		s.ToggleMask()
	case ActionRadiusDown:
		s.AdjustRadius(-1)
	case ActionRadiusUp:
		s.AdjustRadius(1)
	case ActionResetView:
		s.ResetView()
	case ActionZoomIn:
		s.ZoomStep(1)
	case ActionZoomOut:
		s.ZoomStep(-1)
	case ActionCopy:
		_ = s.CopyMask()
	case ActionCopyBase64:
		_ = s.CopyMaskBase64()
	case ActionPaste:
		_ = s.PasteMask()
	}
}
