package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/maskproof/internal/brush"
	"github.com/example/maskproof/internal/clipboard"
	"github.com/example/maskproof/internal/notify"
	"github.com/example/maskproof/internal/raster"
)

// stampOp is one brush stamp applied by the stamp command.
type stampOp struct {
	mode   brush.Mode
	x, y   int
	radius int
}

// stampCmd applies brush stamps to a mask file without opening a window.
type stampCmd struct {
	maskPath      string
	imagePath     string
	size          string
	output        string
	fromClipboard bool
	toClipboard   bool
	base64        bool
	width, height int
	ops           []stampOp
	*root
	fs *flag.FlagSet
}

func (s *stampCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func (s *stampCmd) Program() string {
	return s.root.subcommand("stamp")
}

func parseStampCmd(args []string, r *root) (*stampCmd, error) {
	fs := flag.NewFlagSet("stamp", flag.ExitOnError)
	s := &stampCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	fs.StringVar(&s.maskPath, "mask", "", "mask PNG to edit (created blank when missing)")
	fs.StringVar(&s.imagePath, "image", "", "base image that sets the mask size")
	fs.StringVar(&s.size, "size", "", "mask size as WIDTHxHEIGHT when no image is given")
	fs.StringVar(&s.output, "output", "", "output file path (defaults to -mask)")
	fs.BoolVar(&s.fromClipboard, "from-clipboard", false, "read the starting mask from the clipboard")
	fs.BoolVar(&s.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&s.base64, "base64", false, "write base64 PNG text instead of PNG bytes")

	flagArgs, positionals, err := splitArgs(args, stampFlagNames, stampBoolFlags)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: s}
	}
	s.ops, err = parseStampOps(positionals)
	if err != nil {
		return nil, err
	}
	if s.output == "" {
		s.output = s.maskPath
	}
	if s.output == "" && !s.toClipboard {
		return nil, fmt.Errorf("output file is required when no -mask is given")
	}
	if s.size != "" {
		s.width, s.height, err = parseSize(s.size)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// parseStampOps reads groups of "paint|erase x y radius".
func parseStampOps(args []string) ([]stampOp, error) {
	if len(args)%4 != 0 {
		return nil, fmt.Errorf("stamps are given as groups of: paint|erase x y radius")
	}
	var ops []stampOp
	for i := 0; i < len(args); i += 4 {
		var op stampOp
		switch strings.ToLower(args[i]) {
		case "paint":
			op.mode = brush.Paint
		case "erase":
			op.mode = brush.Erase
		default:
			return nil, fmt.Errorf("unknown stamp mode %q", args[i])
		}
		vals, err := expectInts(args[i+1:i+4], 3, args[i])
		if err != nil {
			return nil, err
		}
		op.x, op.y = vals[0], vals[1]
		if vals[2] < brush.MinRadius || vals[2] > brush.MaxRadius {
			return nil, fmt.Errorf("radius %d outside %d..%d", vals[2], brush.MinRadius, brush.MaxRadius)
		}
		op.radius = vals[2]
		ops = append(ops, op)
	}
	return ops, nil
}

func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	return width, height, nil
}

func expectInts(args []string, n int, what string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d integer arguments", what, n)
	}
	vals := make([]int, n)
	for i, raw := range args {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}

func (s *stampCmd) Run() error {
	mask, err := s.loadMask()
	if err != nil {
		return err
	}
	for _, op := range s.ops {
		brush.Stamp(mask, op.x, op.y, op.radius, op.mode)
	}

	var data []byte
	if s.base64 {
		data, err = raster.EncodeBase64(mask)
	} else {
		data, err = raster.Encode(mask)
	}
	if err != nil {
		return err
	}

	if s.output != "" {
		if err := os.WriteFile(s.output, data, 0o644); err != nil {
			return fmt.Errorf("write mask: %w", err)
		}
		saved := s.output
		if abs, err := filepath.Abs(s.output); err == nil {
			saved = abs
		}
		fmt.Fprintf(s.root.errOut(), "saved %s\n", saved)
		s.root.alerts().Saved(notify.Report{Path: saved, Mask: mask})
	}
	if s.toClipboard {
		if s.base64 {
			err = clipboard.WriteText(string(data))
		} else {
			err = clipboard.WritePNG(data)
		}
		if err != nil {
			return fmt.Errorf("copy mask to clipboard: %w", err)
		}
		fmt.Fprintln(s.root.errOut(), "copied mask to clipboard")
		s.root.alerts().Copied(notify.Report{Path: s.output, Mask: mask})
	}
	return nil
}

// loadMask returns the starting mask: clipboard, then the -mask file, then a
// blank mask sized from -image or -size.
func (s *stampCmd) loadMask() (*raster.MaskBuffer, error) {
	width, height := s.width, s.height
	if s.imagePath != "" {
		data, err := os.ReadFile(s.imagePath)
		if err != nil {
			return nil, err
		}
		img, err := raster.Decode(data)
		if err != nil {
			return nil, err
		}
		width, height = img.Width(), img.Height()
	}

	var data []byte
	switch {
	case s.fromClipboard:
		png, err := clipboard.ReadPNG()
		if err != nil || len(png) == 0 {
			text, terr := clipboard.ReadText()
			if terr != nil {
				return nil, fmt.Errorf("read clipboard mask: %w", errors.Join(err, terr))
			}
			png = []byte(text)
		}
		data = png
	case s.maskPath != "":
		var err error
		data, err = os.ReadFile(s.maskPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if len(data) == 0 {
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("a new mask needs -image or -size")
		}
		return raster.BlankMask(width, height), nil
	}
	if width > 0 && height > 0 {
		return raster.DecodeMask(data, width, height)
	}
	return raster.ParseMask(data)
}

var stampFlagNames = map[string]struct{}{
	"mask":           {},
	"image":          {},
	"size":           {},
	"output":         {},
	"from-clipboard": {},
	"to-clipboard":   {},
	"base64":         {},
}

var stampBoolFlags = map[string]struct{}{
	"from-clipboard": {},
	"to-clipboard":   {},
	"base64":         {},
}

// splitArgs separates known flags from positionals so flags may follow the
// stamp list.
func splitArgs(args []string, names, bools map[string]struct{}) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if name == "" {
			positionals = append(positionals, arg)
			continue
		}
		parts := strings.SplitN(name, "=", 2)
		base := strings.ToLower(parts[0])
		if _, ok := names[base]; !ok {
			// Negative coordinates look like flags.
			positionals = append(positionals, arg)
			continue
		}
		norm := "-" + base
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if _, ok := bools[base]; ok {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}
