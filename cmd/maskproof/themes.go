package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mobile/event/key"

	"github.com/example/maskproof/internal/editor"
	"github.com/example/maskproof/internal/theme"
)

// themesCmd lists the available themes or prints one.
type themesCmd struct {
	show string
	*root
	fs *flag.FlagSet
}

func (t *themesCmd) FlagSet() *flag.FlagSet {
	return t.fs
}

func (t *themesCmd) Program() string {
	return t.root.subcommand("themes")
}

func parseThemesCmd(args []string, r *root) (*themesCmd, error) {
	fs := flag.NewFlagSet("themes", flag.ExitOnError)
	t := &themesCmd{root: r, fs: fs}
	fs.Usage = usageFunc(t)
	fs.StringVar(&t.show, "show", "", "print the colours of the named theme")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *themesCmd) Run() error {
	cfg := t.root.cfg()
	out := t.root.out()
	if t.show != "" {
		th, err := cfg.LoadTheme(t.show, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Name = %s\n", th.Name)
		for _, f := range theme.Fields(th) {
			fmt.Fprintf(out, "%s = %s\n", f.Name, theme.Hex(f.Color))
		}
		return nil
	}

	seen := map[string]bool{}
	var names []string
	for _, n := range theme.NewLoader().Names() {
		seen[n] = true
		names = append(names, n)
	}
	var custom []string
	for n := range cfg.Themes {
		if !seen[n] {
			custom = append(custom, n)
		}
	}
	sort.Strings(custom)
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	for _, n := range custom {
		fmt.Fprintf(out, "%s (config)\n", n)
	}
	return nil
}

// keysCmd prints the editor keyboard shortcuts.
type keysCmd struct {
	*root
}

func (k *keysCmd) FlagSet() *flag.FlagSet { return nil }

func (k *keysCmd) Program() string { return k.root.subcommand("keys") }

func (k *keysCmd) Run() error {
	out := k.root.out()
	for _, row := range shortcutRows() {
		fmt.Fprintf(out, "%-12s %s\n", row.Action, row.Keys)
	}
	return nil
}

var codeNames = map[key.Code]string{
	key.CodeLeftArrow:  "Left",
	key.CodeRightArrow: "Right",
	key.CodeUpArrow:    "Up",
	key.CodeDownArrow:  "Down",
	key.CodeEscape:     "Esc",
}

func describeShortcut(sc editor.KeyShortcut) string {
	var parts []string
	if sc.Modifiers&key.ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if sc.Modifiers&key.ModMeta != 0 {
		parts = append(parts, "Cmd")
	}
	if sc.Modifiers&key.ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if sc.Modifiers&key.ModShift != 0 {
		parts = append(parts, "Shift")
	}
	switch {
	case sc.Rune > 0:
		parts = append(parts, strings.ToUpper(string(sc.Rune)))
	case codeNames[sc.Code] != "":
		parts = append(parts, codeNames[sc.Code])
	default:
		parts = append(parts, fmt.Sprintf("code %d", sc.Code))
	}
	return strings.Join(parts, "+")
}

func describeShortcuts(scs []editor.KeyShortcut) string {
	out := make([]string, 0, len(scs))
	for _, sc := range scs {
		out = append(out, describeShortcut(sc))
	}
	return strings.Join(out, ", ")
}
