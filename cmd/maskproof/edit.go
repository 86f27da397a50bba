package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/maskproof/internal/clipboard"
	"github.com/example/maskproof/internal/editor"
	"github.com/example/maskproof/internal/layers"
	"github.com/example/maskproof/internal/notify"
	"github.com/example/maskproof/internal/ui"
)

// editCmd opens the mask editor window on one image or a directory of
// layers.
type editCmd struct {
	imagePath   string
	maskPath    string
	output      string
	imageDir    string
	maskDir     string
	layer       string
	tool        string
	radius      int
	eraseRadius int
	history     int
	minimap     int
	hideMask    bool
	autosave    bool
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func (e *editCmd) Program() string {
	return e.root.subcommand("edit")
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	cfg := r.cfg()
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.maskPath, "mask", "", "mask PNG to start from (blank when missing)")
	fs.StringVar(&e.output, "output", "", "where to save the mask (defaults to -mask, then <image>_mask.png)")
	fs.StringVar(&e.imageDir, "images", "", "directory of layer images to step through")
	fs.StringVar(&e.maskDir, "masks", cfg.SaveDir, "directory holding one mask per layer image")
	fs.StringVar(&e.layer, "layer", "", "layer name or 1-based index to open first")
	fs.StringVar(&e.tool, "tool", editor.ToolPaint.String(), "starting tool: paint, erase or pan")
	fs.IntVar(&e.radius, "radius", cfg.Brush.PaintRadius, "paint brush radius in pixels")
	fs.IntVar(&e.eraseRadius, "erase-radius", cfg.Brush.EraseRadius, "erase brush radius in pixels")
	fs.IntVar(&e.history, "history", cfg.History.Depth, "undo depth, 0 for unbounded")
	fs.IntVar(&e.minimap, "minimap", cfg.View.MinimapSize, "minimap size in pixels, 0 hides it")
	fs.BoolVar(&e.hideMask, "hide-mask", !cfg.View.ShowMask, "start with the mask overlay hidden")
	fs.BoolVar(&e.autosave, "autosave", true, "save an edited mask before switching layers")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if e.imageDir != "" {
		if len(rest) > 0 {
			return nil, fmt.Errorf("image arguments cannot be combined with -images")
		}
		if e.maskDir == "" {
			e.maskDir = filepath.Join(e.imageDir, "masks")
		}
	} else {
		if len(rest) < 1 || len(rest) > 2 {
			return nil, &UsageError{of: e}
		}
		e.imagePath = rest[0]
		if len(rest) == 2 {
			if e.maskPath != "" {
				return nil, fmt.Errorf("mask given both as -mask and as an argument")
			}
			e.maskPath = rest[1]
		}
		if e.output == "" && e.maskPath == "" && cfg.SaveDir != "" {
			base := filepath.Base(e.imagePath)
			e.output = filepath.Join(cfg.SaveDir, strings.TrimSuffix(base, filepath.Ext(base))+"_mask.png")
		}
	}
	if _, err := editor.ParseTool(e.tool); err != nil {
		return nil, err
	}
	if e.history < 0 {
		return nil, fmt.Errorf("history must be 0 or more")
	}
	return e, nil
}

func (e *editCmd) openStack() (*layers.Stack, error) {
	if e.imageDir == "" {
		return layers.Single(e.imagePath, e.maskPath, e.output), nil
	}
	stack, err := layers.Open(e.imageDir, e.maskDir)
	if err != nil {
		return nil, err
	}
	if e.layer != "" {
		i, err := findLayer(stack, e.layer)
		if err != nil {
			return nil, err
		}
		if err := stack.Seek(i); err != nil {
			return nil, err
		}
	}
	return stack, nil
}

// findLayer resolves a layer by name, then by 1-based index.
func findLayer(stack *layers.Stack, ref string) (int, error) {
	for i := 0; i < stack.Len(); i++ {
		l, _ := stack.Layer(i)
		if l.Name == ref {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= stack.Len() {
		return n - 1, nil
	}
	return 0, fmt.Errorf("layer %q not found", ref)
}

func (e *editCmd) sessionOptions(h *editHost) []editor.Option {
	tool, _ := editor.ParseTool(e.tool)
	t := e.root.theme()
	return []editor.Option{
		editor.WithBrush(editor.BrushState{Tool: tool, PaintRadius: e.radius, EraseRadius: e.eraseRadius}),
		editor.WithHistoryDepth(e.history),
		editor.WithShowMask(!e.hideMask),
		editor.WithOverlay(t.MaskOverlay),
		editor.WithClipboard(clipboard.System{}),
		editor.WithName(h.stack.Current().Name),
		editor.WithOnSave(h.save),
		editor.WithOnSaveFailed(h.saveFailed),
		editor.WithOnNext(h.next),
		editor.WithOnPrevious(h.previous),
		editor.WithOnCopied(h.copied),
		editor.WithRenderer(h.refresh),
		editor.WithOnMessage(h.say),
	}
}

func (e *editCmd) Run() error {
	stack, err := e.openStack()
	if err != nil {
		return err
	}
	img, mask, err := stack.Load(stack.Index())
	if err != nil {
		return err
	}
	h := &editHost{stack: stack, root: e.root, autosave: e.autosave}
	sess, err := editor.Load(img, mask, e.sessionOptions(h)...)
	if err != nil {
		return fmt.Errorf("open %s: %w", stack.Current().ImagePath, err)
	}
	h.sess = sess
	h.win = ui.New(sess,
		ui.WithTheme(e.root.theme()),
		ui.WithTitle("maskproof"),
		ui.WithMinimapSize(e.minimap),
		ui.WithLayerLabel(h.layerLabel),
	)
	h.win.Run()
	return nil
}

// editHost connects a session to the layer stack and the window.
type editHost struct {
	stack    *layers.Stack
	sess     *editor.Session
	win      *ui.Window
	root     *root
	autosave bool
}

func (h *editHost) save(data []byte) error {
	i := h.stack.Index()
	if err := h.stack.SaveMask(i, data); err != nil {
		return err
	}
	path := h.stack.Current().OutPath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	log.Printf("saved %s", path)
	h.root.alerts().Saved(notify.Report{Layer: h.stack.Current().Name, Path: path, Mask: h.sess.Mask()})
	return nil
}

func (h *editHost) saveFailed(err error) {
	h.root.alerts().SaveFailed(notify.Report{Layer: h.stack.Current().Name, Path: h.stack.Current().OutPath, Err: err})
}

func (h *editHost) next() {
	h.step(h.stack.Next, "already at the last layer")
}

func (h *editHost) previous() {
	h.step(h.stack.Previous, "already at the first layer")
}

func (h *editHost) step(move func() bool, edge string) {
	if h.autosave && h.sess.Modified() {
		if err := h.sess.Save(); err != nil {
			return
		}
	}
	prev := h.stack.Index()
	if !move() {
		h.say(edge)
		return
	}
	if err := h.load(); err != nil {
		log.Printf("load: %v", err)
		h.say(fmt.Sprintf("cannot open layer: %v", err))
		_ = h.stack.Seek(prev)
	}
}

func (h *editHost) load() error {
	i := h.stack.Index()
	img, mask, err := h.stack.Load(i)
	if err != nil {
		return err
	}
	return h.sess.Reload(img, mask, h.stack.Current().Name)
}

func (h *editHost) copied() {
	h.root.alerts().Copied(notify.Report{Layer: h.sess.Name(), Mask: h.sess.Mask()})
}

func (h *editHost) refresh() {
	if h.win != nil {
		h.win.Refresh()
	}
}

func (h *editHost) say(msg string) {
	if h.win != nil {
		h.win.Message(msg)
	}
}

func (h *editHost) layerLabel() string {
	return fmt.Sprintf("%d/%d %s", h.stack.Index()+1, h.stack.Len(), h.stack.Current().Name)
}
