// Package theme defines the preset catalog and resolves a theme selection
// into a concrete, displayable color set.
package theme

import (
	"fmt"
	"strings"

	"kaleido/internal/color"
)

// Name identifies a theme selection: a preset key, or one of the special
// values Auto (follow the system preference) and Custom (user-supplied
// palette).
type Name string

const (
	Light  Name = "light"
	Dark   Name = "dark"
	Ocean  Name = "ocean"
	Forest Name = "forest"
	Sunset Name = "sunset"
	Auto   Name = "auto"
	Custom Name = "custom"
)

// DefaultName is the fallback when no preference exists or a stored value
// is unrecognized.
const DefaultName = Light

// Colors is the fixed-shape palette record. Every role must be populated
// for a palette to be valid; consumers may assume no role is empty.
type Colors struct {
	BgPrimary       string `json:"bgPrimary"`
	BgSecondary     string `json:"bgSecondary"`
	BgTertiary      string `json:"bgTertiary"`
	TextPrimary     string `json:"textPrimary"`
	TextSecondary   string `json:"textSecondary"`
	TextMuted       string `json:"textMuted"`
	AccentPrimary   string `json:"accentPrimary"`
	AccentSecondary string `json:"accentSecondary"`
	AccentHover     string `json:"accentHover"`
	BorderPrimary   string `json:"borderPrimary"`
	BorderSecondary string `json:"borderSecondary"`
	Success         string `json:"success"`
	Warning         string `json:"warning"`
	Error           string `json:"error"`
	Info            string `json:"info"`
}

// Theme is a resolved, displayable unit. It is always recomputed from a
// Name plus an optional custom palette, never mutated in place.
type Theme struct {
	Name        Name
	Label       string
	Description string
	IsDark      bool
	Colors      Colors
}

var catalog = map[Name]Theme{
	Light: {
		Name:        Light,
		Label:       "Light",
		Description: "Bright surfaces with slate typography.",
		IsDark:      false,
		Colors: Colors{
			BgPrimary:       "#ffffff",
			BgSecondary:     "#f8fafc",
			BgTertiary:      "#f1f5f9",
			TextPrimary:     "#0f172a",
			TextSecondary:   "#475569",
			TextMuted:       "#94a3b8",
			AccentPrimary:   "#2563eb",
			AccentSecondary: "#3b82f6",
			AccentHover:     "#1d4ed8",
			BorderPrimary:   "#e2e8f0",
			BorderSecondary: "#cbd5e1",
			Success:         "#16a34a",
			Warning:         "#d97706",
			Error:           "#dc2626",
			Info:            "#0284c7",
		},
	},
	Dark: {
		Name:        Dark,
		Label:       "Dark",
		Description: "Deep slate surfaces with soft contrast.",
		IsDark:      true,
		Colors: Colors{
			BgPrimary:       "#0f172a",
			BgSecondary:     "#1e293b",
			BgTertiary:      "#334155",
			TextPrimary:     "#f8fafc",
			TextSecondary:   "#cbd5e1",
			TextMuted:       "#64748b",
			AccentPrimary:   "#3b82f6",
			AccentSecondary: "#60a5fa",
			AccentHover:     "#93c5fd",
			BorderPrimary:   "#334155",
			BorderSecondary: "#475569",
			Success:         "#4ade80",
			Warning:         "#fbbf24",
			Error:           "#f87171",
			Info:            "#38bdf8",
		},
	},
	Ocean: {
		Name:        Ocean,
		Label:       "Ocean",
		Description: "Cool teal surfaces over deep navy.",
		IsDark:      true,
		Colors: Colors{
			BgPrimary:       "#0c1f2c",
			BgSecondary:     "#12303f",
			BgTertiary:      "#1a4254",
			TextPrimary:     "#e0f2fe",
			TextSecondary:   "#a5d8ef",
			TextMuted:       "#5e8ca3",
			AccentPrimary:   "#06b6d4",
			AccentSecondary: "#22d3ee",
			AccentHover:     "#67e8f9",
			BorderPrimary:   "#1a4254",
			BorderSecondary: "#2a5a70",
			Success:         "#34d399",
			Warning:         "#fbbf24",
			Error:           "#fb7185",
			Info:            "#38bdf8",
		},
	},
	Forest: {
		Name:        Forest,
		Label:       "Forest",
		Description: "Muted greens on warm parchment.",
		IsDark:      false,
		Colors: Colors{
			BgPrimary:       "#f7f6f0",
			BgSecondary:     "#edeae0",
			BgTertiary:      "#e0dccb",
			TextPrimary:     "#1f2d1f",
			TextSecondary:   "#3f513f",
			TextMuted:       "#7a8a7a",
			AccentPrimary:   "#2f6b3a",
			AccentSecondary: "#3f8a4d",
			AccentHover:     "#24562e",
			BorderPrimary:   "#d5d0bc",
			BorderSecondary: "#bcb69e",
			Success:         "#2f8a43",
			Warning:         "#b7791f",
			Error:           "#b83838",
			Info:            "#2c6e8f",
		},
	},
	Sunset: {
		Name:        Sunset,
		Label:       "Sunset",
		Description: "Warm amber accents over dusk purple.",
		IsDark:      true,
		Colors: Colors{
			BgPrimary:       "#241b2f",
			BgSecondary:     "#332645",
			BgTertiary:      "#443259",
			TextPrimary:     "#fdf4e7",
			TextSecondary:   "#e4cdb8",
			TextMuted:       "#9a8294",
			AccentPrimary:   "#f59e0b",
			AccentSecondary: "#fbbf24",
			AccentHover:     "#fcd34d",
			BorderPrimary:   "#443259",
			BorderSecondary: "#5a4375",
			Success:         "#4ade80",
			Warning:         "#fb923c",
			Error:           "#f87171",
			Info:            "#818cf8",
		},
	},
}

// Presets returns the preset names in a stable display order.
func Presets() []Name {
	return []Name{Light, Dark, Ocean, Forest, Sunset}
}

// Preset returns the named preset theme. The second return is false for
// auto, custom, and unrecognized names.
func Preset(name Name) (Theme, bool) {
	preset, ok := catalog[name]
	return preset, ok
}

// Known reports whether the name is a preset or one of the special
// selectors.
func Known(name Name) bool {
	if name == Auto || name == Custom {
		return true
	}
	_, ok := catalog[name]
	return ok
}

// Normalize lowercases and trims a raw theme value.
func Normalize(raw string) Name {
	return Name(strings.ToLower(strings.TrimSpace(raw)))
}

// Validate checks that every color role is populated with parseable hex.
func (c Colors) Validate() error {
	for _, role := range []struct {
		name  string
		value string
	}{
		{"bgPrimary", c.BgPrimary},
		{"bgSecondary", c.BgSecondary},
		{"bgTertiary", c.BgTertiary},
		{"textPrimary", c.TextPrimary},
		{"textSecondary", c.TextSecondary},
		{"textMuted", c.TextMuted},
		{"accentPrimary", c.AccentPrimary},
		{"accentSecondary", c.AccentSecondary},
		{"accentHover", c.AccentHover},
		{"borderPrimary", c.BorderPrimary},
		{"borderSecondary", c.BorderSecondary},
		{"success", c.Success},
		{"warning", c.Warning},
		{"error", c.Error},
		{"info", c.Info},
	} {
		if _, err := color.ParseHex(role.value); err != nil {
			return fmt.Errorf("theme: role %s: %w", role.name, err)
		}
	}
	return nil
}

// Resolve turns a theme selection into a concrete Theme.
//
// Custom palettes are classified dark when the primary background sits below
// mid-gray perceived brightness. Auto re-queries systemDark on every call;
// resolution is deliberately not memoized since the system preference can
// change between calls. Unknown names fall back to the light preset.
func Resolve(name Name, custom *Colors, systemDark func() bool) Theme {
	switch name {
	case Custom:
		if custom != nil {
			return customTheme(*custom)
		}
	case Auto:
		if systemDark != nil && systemDark() {
			return catalog[Dark]
		}
		return catalog[Light]
	}

	if preset, ok := catalog[name]; ok {
		return preset
	}
	return catalog[DefaultName]
}

func customTheme(colors Colors) Theme {
	isDark := false
	if bg, err := color.ParseHex(colors.BgPrimary); err == nil {
		isDark = color.PerceivedBrightness(bg) < 0.5
	}
	return Theme{
		Name:        Custom,
		Label:       "Custom",
		Description: "User-defined palette.",
		IsDark:      isDark,
		Colors:      colors,
	}
}

var (
	darkChartColors  = [5]string{"#60a5fa", "#4ade80", "#fbbf24", "#f87171", "#c084fc"}
	lightChartColors = [5]string{"#2563eb", "#16a34a", "#d97706", "#dc2626", "#9333ea"}
)

// DefaultChartColors returns the five-color series palette used by chart
// consumers: brighter hues on dark themes, more saturated ones on light.
func DefaultChartColors(name Name, custom *Colors, systemDark func() bool) [5]string {
	if Resolve(name, custom, systemDark).IsDark {
		return darkChartColors
	}
	return lightChartColors
}
