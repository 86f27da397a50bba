package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/maskproof/internal/brush"
	"github.com/example/maskproof/internal/raster"
)

func TestUndoRedoInverse(t *testing.T) {
	h := New(DefaultDepth)
	m := raster.BlankMask(32, 32)
	brush.Stamp(m, 3, 3, 2, brush.Paint)
	original := m.Clone()

	h.Begin(m)
	brush.Stamp(m, 16, 16, 6, brush.Paint)
	stamped := m.Clone()

	prev, ok := h.Undo(m)
	require.True(t, ok)
	assert.True(t, prev.Equal(original))
	m = prev

	next, ok := h.Redo(m)
	require.True(t, ok)
	assert.True(t, next.Equal(stamped))
}

func TestEmptyStacksAreNoops(t *testing.T) {
	h := New(0)
	m := raster.BlankMask(2, 2)
	_, ok := h.Undo(m)
	assert.False(t, ok)
	_, ok = h.Redo(m)
	assert.False(t, ok)
	assert.Zero(t, h.UndoLen())
	assert.Zero(t, h.RedoLen())
}

func TestNewStrokeClearsRedo(t *testing.T) {
	h := New(0)
	m := raster.BlankMask(10, 10)
	for i := 0; i < 5; i++ {
		h.Begin(m)
		brush.Stamp(m, i, i, 1, brush.Paint)
	}
	for i := 0; i < 3; i++ {
		prev, ok := h.Undo(m)
		require.True(t, ok)
		m = prev
	}
	assert.Equal(t, 3, h.RedoLen())

	h.Begin(m)
	brush.Stamp(m, 9, 9, 1, brush.Paint)
	assert.Zero(t, h.RedoLen())
	assert.Equal(t, 3, h.UndoLen())
}

func TestSnapshotsAreCopies(t *testing.T) {
	h := New(0)
	m := raster.BlankMask(4, 4)
	h.Begin(m)
	m.Set(1, 1, true)
	prev, ok := h.Undo(m)
	require.True(t, ok)
	assert.False(t, prev.IsSet(1, 1))
}

func TestDepthDiscardsOldest(t *testing.T) {
	h := New(3)
	m := raster.BlankMask(8, 1)
	for x := 0; x < 6; x++ {
		h.Begin(m)
		m.Set(x, 0, true)
	}
	assert.Equal(t, 3, h.UndoLen())

	for i := 0; i < 3; i++ {
		prev, ok := h.Undo(m)
		require.True(t, ok)
		m = prev
	}
	_, ok := h.Undo(m)
	assert.False(t, ok)
	// Oldest surviving snapshot was taken before pixel 3 was painted.
	assert.Equal(t, 3, m.Count())
	assert.False(t, m.IsSet(3, 0))
}

func TestReset(t *testing.T) {
	h := New(0)
	m := raster.BlankMask(1, 1)
	h.Begin(m)
	h.Begin(m)
	_, _ = h.Undo(m)
	h.Reset()
	assert.Zero(t, h.UndoLen())
	assert.Zero(t, h.RedoLen())
}
