package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/example/maskproof/internal/brush"
	"github.com/example/maskproof/internal/history"
	"github.com/example/maskproof/internal/minimap"
	"github.com/example/maskproof/internal/theme"
)

// ThemeEnv names the environment variable selecting a theme.
const ThemeEnv = "MASKPROOF_THEME"

// Brush holds the starting radius of each brush tool.
type Brush struct {
	PaintRadius int
	EraseRadius int
}

// View holds display settings.
type View struct {
	ShowMask    bool
	MinimapSize int
}

// History holds undo settings.
type History struct {
	Depth int
}

// Notify holds notification settings.
type Notify struct {
	Save bool
	Copy bool
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Brush   Brush
	View    View
	History History
	Notify  Notify
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // empty lets the env var and built in default apply
		Brush: Brush{
			PaintRadius: brush.DefaultRadius,
			EraseRadius: brush.DefaultRadius,
		},
		View: View{
			ShowMask:    true,
			MinimapSize: minimap.DefaultSize,
		},
		History: History{Depth: history.DefaultDepth},
		Themes:  make(map[string]*theme.Theme),
	}
}

// ThemeName picks the theme to use: flag, then MASKPROOF_THEME, then the
// config file, then "default".
func (c *Config) ThemeName(flag string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(ThemeEnv)); v != "" {
		return v
	}
	if c.Theme != "" {
		return c.Theme
	}
	return "default"
}

// LoadTheme resolves name against the themes defined in the config file
// before falling back to l.
func (c *Config) LoadTheme(name string, l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[name]; ok {
		return t, nil
	}
	if l == nil {
		l = theme.NewLoader()
	}
	t, err := l.Load(name)
	if err != nil {
		return nil, fmt.Errorf("theme %q: %w", name, err)
	}
	return t, nil
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[brush]\n")
	fmt.Fprintf(&sb, "paint_radius = %d\n", c.Brush.PaintRadius)
	fmt.Fprintf(&sb, "erase_radius = %d\n", c.Brush.EraseRadius)
	sb.WriteString("\n")

	sb.WriteString("[view]\n")
	fmt.Fprintf(&sb, "show_mask = %v\n", c.View.ShowMask)
	fmt.Fprintf(&sb, "minimap_size = %d\n", c.View.MinimapSize)
	sb.WriteString("\n")

	sb.WriteString("[history]\n")
	fmt.Fprintf(&sb, "depth = %d\n", c.History.Depth)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sorted for deterministic output.
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name = %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s = %s\n", f.Name, theme.Hex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
