// Package history keeps snapshot based undo and redo stacks for a mask.
package history

import "github.com/example/maskproof/internal/raster"

// DefaultDepth is the number of undo snapshots kept before the oldest is
// discarded.
const DefaultDepth = 100

// History holds mask snapshots. The zero value is unbounded.
type History struct {
	depth int
	undo  []*raster.MaskBuffer
	redo  []*raster.MaskBuffer
}

// New returns a History keeping at most depth undo snapshots. A depth of
// zero or less keeps every snapshot.
func New(depth int) *History {
	return &History{depth: depth}
}

// Depth returns the configured bound, 0 when unbounded.
func (h *History) Depth() int {
	if h.depth < 0 {
		return 0
	}
	return h.depth
}

// Begin records the state before an edit. It must be called once per
// stroke, before the first stamp. Redo is cleared.
func (h *History) Begin(current *raster.MaskBuffer) {
	if current == nil {
		return
	}
	h.undo = push(h.undo, current.Clone(), h.depth)
	clear(h.redo)
	h.redo = h.redo[:0]
}

// Undo returns the snapshot to install in place of current. current is
// pushed onto the redo stack. ok is false when there is nothing to undo.
func (h *History) Undo(current *raster.MaskBuffer) (prev *raster.MaskBuffer, ok bool) {
	if len(h.undo) == 0 || current == nil {
		return nil, false
	}
	prev, h.undo = pop(h.undo)
	h.redo = push(h.redo, current.Clone(), h.depth)
	return prev, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current *raster.MaskBuffer) (next *raster.MaskBuffer, ok bool) {
	if len(h.redo) == 0 || current == nil {
		return nil, false
	}
	next, h.redo = pop(h.redo)
	h.undo = push(h.undo, current.Clone(), h.depth)
	return next, true
}

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

// UndoLen returns the number of undo snapshots.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the number of redo snapshots.
func (h *History) RedoLen() int { return len(h.redo) }

func push(stack []*raster.MaskBuffer, m *raster.MaskBuffer, depth int) []*raster.MaskBuffer {
	stack = append(stack, m)
	if depth > 0 && len(stack) > depth {
		n := len(stack) - depth
		clear(stack[:n])
		stack = append(stack[:0], stack[n:]...)
	}
	return stack
}

func pop(stack []*raster.MaskBuffer) (*raster.MaskBuffer, []*raster.MaskBuffer) {
	last := len(stack) - 1
	m := stack[last]
	stack[last] = nil
	return m, stack[:last]
}
