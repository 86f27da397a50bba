package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/maskproof/internal/raster"
)

// statsCmd reports how much of each mask is set.
type statsCmd struct {
	dir   string
	paths []string
	*root
	fs *flag.FlagSet
}

func (s *statsCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func (s *statsCmd) Program() string {
	return s.root.subcommand("stats")
}

func parseStatsCmd(args []string, r *root) (*statsCmd, error) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	s := &statsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	fs.StringVar(&s.dir, "dir", "", "report every PNG mask in this directory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	s.paths = fs.Args()
	if s.dir == "" && len(s.paths) == 0 {
		return nil, &UsageError{of: s}
	}
	return s, nil
}

// maskStats is the coverage of one mask.
type maskStats struct {
	Width, Height int
	Set           int
}

// Coverage returns the set fraction as a percentage.
func (m maskStats) Coverage() float64 {
	total := m.Width * m.Height
	if total == 0 {
		return 0
	}
	return float64(m.Set) * 100 / float64(total)
}

func (m maskStats) String() string {
	return fmt.Sprintf("%dx%d %d/%d set (%.2f%%)", m.Width, m.Height, m.Set, m.Width*m.Height, m.Coverage())
}

func readMaskStats(path string) (maskStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return maskStats{}, err
	}
	m, err := raster.ParseMask(data)
	if err != nil {
		return maskStats{}, fmt.Errorf("%s: %w", path, err)
	}
	return maskStats{Width: m.Width(), Height: m.Height(), Set: m.Count()}, nil
}

func (s *statsCmd) Run() error {
	paths := append([]string(nil), s.paths...)
	if s.dir != "" {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".png") {
				paths = append(paths, filepath.Join(s.dir, e.Name()))
			}
		}
	}
	out := s.root.out()
	var failed int
	for _, p := range paths {
		st, err := readMaskStats(p)
		if err != nil {
			fmt.Fprintf(s.root.errOut(), "%v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", p, st)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d masks could not be read", failed, len(paths))
	}
	return nil
}
