package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/maskproof/internal/config"
	"github.com/example/maskproof/internal/editor"
	"github.com/example/maskproof/internal/layers"
	"github.com/example/maskproof/internal/raster"
	"github.com/example/maskproof/internal/viewport"
)

func testRoot(t *testing.T) (*root, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv(config.ThemeEnv, "")
	var out, errb bytes.Buffer
	r := &root{
		fs:      flag.NewFlagSet("maskproof", flag.ContinueOnError),
		program: "maskproof",
		config:  config.New(),
		stdout:  &out,
		stderr:  &errb,
	}
	r.fs.SetOutput(&errb)
	r.fs.StringVar(&r.themeName, "theme", "", "color theme")
	return r, &out, &errb
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readMask(t *testing.T, path string) *raster.MaskBuffer {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read mask: %v", err)
	}
	m, err := raster.ParseMask(data)
	if err != nil {
		t.Fatalf("parse mask: %v", err)
	}
	return m
}

func TestRootDispatch(t *testing.T) {
	r, out, _ := testRoot(t)
	if err := r.Run([]string{"bogus"}); err == nil {
		t.Fatal("expected usage error")
	} else {
		var uerr *UsageError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected UsageError, got %T", err)
		}
		if !strings.Contains(uerr.Error(), "stamp") {
			t.Fatalf("root help should list commands, got %q", uerr.Error())
		}
	}

	r, out, _ = testRoot(t)
	if err := r.Run([]string{"version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "maskproof version dev") {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestRootThemeFlag(t *testing.T) {
	r, out, _ := testRoot(t)
	if err := r.Run([]string{"-theme", "dark", "keys"}); err != nil {
		t.Fatal(err)
	}
	if r.activeTheme == nil || r.activeTheme.Name != "Dark" {
		t.Fatalf("theme = %+v", r.activeTheme)
	}
	if !strings.Contains(out.String(), "Ctrl+Z, Cmd+Z") {
		t.Fatalf("keys output missing undo: %q", out.String())
	}

	r, _, errb := testRoot(t)
	if err := r.Run([]string{"-theme", "no-such-theme", "version"}); err != nil {
		t.Fatal(err)
	}
	if r.activeTheme.Name != "Default" {
		t.Fatalf("unknown theme should fall back, got %q", r.activeTheme.Name)
	}
	if !strings.Contains(errb.String(), "warning") {
		t.Fatalf("expected a warning, got %q", errb.String())
	}
}

func TestDescribeShortcut(t *testing.T) {
	cases := []struct {
		sc   editor.KeyShortcut
		want string
	}{
		{editor.KeyShortcut{Rune: 'z', Modifiers: key.ModControl | key.ModShift}, "Ctrl+Shift+Z"},
		{editor.KeyShortcut{Rune: 'p'}, "P"},
		{editor.KeyShortcut{Rune: '['}, "["},
		{editor.KeyShortcut{Code: key.CodeLeftArrow}, "Left"},
	}
	for _, c := range cases {
		if got := describeShortcut(c.sc); got != c.want {
			t.Errorf("describeShortcut(%+v) = %q, want %q", c.sc, got, c.want)
		}
	}
}

func TestParseStampOps(t *testing.T) {
	ops, err := parseStampOps([]string{"paint", "1", "2", "3", "ERASE", "-4", "5", "64"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 2 || ops[1].x != -4 || ops[1].radius != 64 {
		t.Fatalf("ops = %+v", ops)
	}
	bad := [][]string{
		{"paint", "1", "2"},
		{"fill", "1", "2", "3"},
		{"paint", "1", "2", "0"},
		{"paint", "1", "2", "65"},
		{"paint", "x", "2", "3"},
	}
	for _, args := range bad {
		if _, err := parseStampOps(args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestParseStampFlagsAfterStamps(t *testing.T) {
	r, _, _ := testRoot(t)
	s, err := parseStampCmd([]string{"paint", "-1", "2", "3", "-size", "10x4", "-output", "m.png"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if s.width != 10 || s.height != 4 || s.output != "m.png" {
		t.Fatalf("flags not parsed: %+v", s)
	}
	if len(s.ops) != 1 || s.ops[0].x != -1 {
		t.Fatalf("negative coordinate lost: %+v", s.ops)
	}

	if _, err := parseStampCmd([]string{"paint", "1", "2", "3"}, r); err == nil {
		t.Fatal("expected error without an output")
	}
	_, err = parseStampCmd(nil, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) || !strings.Contains(uerr.Error(), "paint|erase X Y RADIUS") {
		t.Fatalf("expected stamp help, got %v", err)
	}
}

func TestStampRun(t *testing.T) {
	dir := t.TempDir()
	maskPath := filepath.Join(dir, "mask.png")
	r, _, errb := testRoot(t)

	s, err := parseStampCmd([]string{"-mask", maskPath, "-size", "20x10", "paint", "5", "5", "2"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	m := readMask(t, maskPath)
	if m.Width() != 20 || m.Height() != 10 {
		t.Fatalf("size = %dx%d", m.Width(), m.Height())
	}
	if m.Count() != 13 || !m.IsSet(5, 5) {
		t.Fatalf("count = %d", m.Count())
	}
	if !strings.Contains(errb.String(), "saved") {
		t.Fatalf("stderr = %q", errb.String())
	}

	// A second run edits the existing file.
	s, err = parseStampCmd([]string{"-mask", maskPath, "erase", "5", "5", "1"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	m = readMask(t, maskPath)
	if m.Count() != 8 || m.IsSet(5, 5) {
		t.Fatalf("after erase count = %d", m.Count())
	}
}

func TestStampRunErrors(t *testing.T) {
	dir := t.TempDir()
	r, _, _ := testRoot(t)

	s, err := parseStampCmd([]string{"-mask", filepath.Join(dir, "new.png"), "paint", "1", "1", "1"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err == nil || !strings.Contains(err.Error(), "-image or -size") {
		t.Fatalf("expected size error, got %v", err)
	}

	imgPath := filepath.Join(dir, "img.png")
	writePNG(t, imgPath, 5, 5)
	maskPath := filepath.Join(dir, "small.png")
	data, err := raster.Encode(raster.BlankMask(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(maskPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err = parseStampCmd([]string{"-image", imgPath, "-mask", maskPath, "paint", "1", "1", "1"}, r)
	if err != nil {
		t.Fatal(err)
	}
	err = s.Run()
	var derr *raster.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	m := raster.BlankMask(4, 2)
	m.Set(0, 0, true)
	m.Set(3, 1, true)
	data, err := raster.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "a.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	r, out, _ := testRoot(t)
	s, err := parseStatsCmd([]string{"-dir", dir}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	want := path + ": 4x2 2/8 set (25.00%)\n"
	if out.String() != want {
		t.Fatalf("stats = %q, want %q", out.String(), want)
	}

	s, err = parseStatsCmd([]string{filepath.Join(dir, "missing.png")}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err == nil {
		t.Fatal("expected error for a missing mask")
	}
}

func TestParseEditCmd(t *testing.T) {
	r, _, _ := testRoot(t)
	e, err := parseEditCmd([]string{"-radius", "9", "img.png", "mask.png"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if e.imagePath != "img.png" || e.maskPath != "mask.png" || e.radius != 9 {
		t.Fatalf("parsed = %+v", e)
	}

	if _, err := parseEditCmd([]string{"-images", "dir", "img.png"}, r); err == nil {
		t.Fatal("expected error mixing -images and an image")
	}
	if _, err := parseEditCmd([]string{"-tool", "lasso", "img.png"}, r); err == nil {
		t.Fatal("expected error for an unknown tool")
	}

	r.config.SaveDir = "/out"
	e, err = parseEditCmd([]string{"shots/cat.png"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if e.output != filepath.Join("/out", "cat_mask.png") {
		t.Fatalf("output = %q", e.output)
	}
	e, err = parseEditCmd([]string{"-images", "shots"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if e.maskDir != "/out" {
		t.Fatalf("mask dir = %q", e.maskDir)
	}
}

func TestFindLayer(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.png", "a.png", "c.png"} {
		writePNG(t, filepath.Join(dir, n), 2, 2)
	}
	stack, err := layers.Open(dir, filepath.Join(dir, "masks"))
	if err != nil {
		t.Fatal(err)
	}
	if i, err := findLayer(stack, "c"); err != nil || i != 2 {
		t.Fatalf("by name = %d, %v", i, err)
	}
	if i, err := findLayer(stack, "2"); err != nil || i != 1 {
		t.Fatalf("by index = %d, %v", i, err)
	}
	if _, err := findLayer(stack, "9"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEditHostStepsThroughLayers(t *testing.T) {
	dir := t.TempDir()
	maskDir := filepath.Join(dir, "masks")
	writePNG(t, filepath.Join(dir, "a.png"), 20, 20)
	writePNG(t, filepath.Join(dir, "b.png"), 30, 10)

	r, _, _ := testRoot(t)
	e, err := parseEditCmd([]string{"-images", dir, "-masks", maskDir}, r)
	if err != nil {
		t.Fatal(err)
	}
	stack, err := e.openStack()
	if err != nil {
		t.Fatal(err)
	}
	img, mask, err := stack.Load(stack.Index())
	if err != nil {
		t.Fatal(err)
	}
	h := &editHost{stack: stack, root: r, autosave: true}
	sess, err := editor.Load(img, mask, e.sessionOptions(h)...)
	if err != nil {
		t.Fatal(err)
	}
	h.sess = sess

	sess.PointerDown(editor.PointerEvent{Pos: viewport.Point{}, Button: mouse.ButtonLeft})
	sess.PointerUp(editor.PointerEvent{})
	if !sess.Mask().IsSet(10, 10) {
		t.Fatal("stroke missing")
	}
	if got := h.layerLabel(); got != "1/2 a" {
		t.Fatalf("label = %q", got)
	}

	sess.Next()
	if stack.Index() != 1 || sess.Name() != "b" || sess.Image().Width() != 30 {
		t.Fatalf("next did not load layer b: index %d name %q", stack.Index(), sess.Name())
	}
	if saved := readMask(t, filepath.Join(maskDir, "a.png")); !saved.IsSet(10, 10) {
		t.Fatal("autosave did not write layer a")
	}

	sess.Next()
	if stack.Index() != 1 {
		t.Fatal("next past the last layer should stay put")
	}

	sess.Previous()
	if stack.Index() != 0 || !sess.Mask().IsSet(10, 10) {
		t.Fatal("previous should reload the saved mask of layer a")
	}
	if sess.UndoLen() != 0 {
		t.Fatalf("history should reset on layer change, undo = %d", sess.UndoLen())
	}
}

func TestEditHostAutosavesUndoneStroke(t *testing.T) {
	dir := t.TempDir()
	maskDir := filepath.Join(dir, "masks")
	writePNG(t, filepath.Join(dir, "a.png"), 20, 20)
	writePNG(t, filepath.Join(dir, "b.png"), 20, 20)

	r, _, _ := testRoot(t)
	e, err := parseEditCmd([]string{"-images", dir, "-masks", maskDir}, r)
	if err != nil {
		t.Fatal(err)
	}
	stack, err := e.openStack()
	if err != nil {
		t.Fatal(err)
	}
	img, mask, err := stack.Load(0)
	if err != nil {
		t.Fatal(err)
	}
	h := &editHost{stack: stack, root: r, autosave: true}
	sess, err := editor.Load(img, mask, e.sessionOptions(h)...)
	if err != nil {
		t.Fatal(err)
	}
	h.sess = sess

	sess.PointerDown(editor.PointerEvent{Pos: viewport.Point{}, Button: mouse.ButtonLeft})
	sess.PointerUp(editor.PointerEvent{})
	sess.Do(editor.ActionSave)
	sess.Do(editor.ActionUndo)
	if sess.Mask().IsSet(10, 10) {
		t.Fatal("undo did not remove the stroke")
	}

	sess.Next()
	if stack.Index() != 1 {
		t.Fatalf("index = %d", stack.Index())
	}
	if saved := readMask(t, filepath.Join(maskDir, "a.png")); saved.IsSet(10, 10) {
		t.Fatal("autosave kept the undone stroke on disk")
	}

	// An untouched layer is not rewritten.
	sess.Previous()
	bPath := filepath.Join(maskDir, "b.png")
	if _, err := os.Stat(bPath); !os.IsNotExist(err) {
		t.Fatalf("unchanged layer b was saved: %v", err)
	}
}
