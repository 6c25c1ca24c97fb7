// Package color provides the color math used by the theming system:
// hex parsing, WCAG contrast calculations, and coarse dark/light
// classification.
package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidFormat reports a color string that is not a six-digit hex value.
var ErrInvalidFormat = errors.New("color: invalid hex format")

// RGB is a color with 8-bit channels.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Level selects a WCAG conformance target for contrast checks.
type Level int

const (
	LevelAA Level = iota
	LevelAAA
)

var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
)

// ParseHex parses a six-digit hex color, with or without a leading "#".
func ParseHex(hex string) (RGB, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(trimmed) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidFormat, hex)
	}
	value, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidFormat, hex)
	}
	return RGB{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
	}, nil
}

// Hex encodes the color as a lower-case "#rrggbb" string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RelativeLuminance returns the WCAG relative luminance in [0, 1].
// Channels are linearized with the sRGB piecewise function and weighted
// 0.2126 / 0.7152 / 0.0722.
func RelativeLuminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(channel uint8) float64 {
	v := float64(channel) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// PerceivedBrightness returns the ITU-R BT.601 luminance in [0, 1],
// computed on the gamma-encoded channels. It is used for coarse dark/light
// classification and is intentionally distinct from RelativeLuminance; the
// two formulas disagree for borderline colors and must not be unified.
func PerceivedBrightness(c RGB) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// ContrastRatio returns the WCAG contrast ratio between two colors,
// always >= 1. Symmetric in its arguments.
func ContrastRatio(a, b RGB) float64 {
	la := RelativeLuminance(a)
	lb := RelativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// MeetsAA reports whether fg on bg satisfies WCAG AA: ratio >= 4.5, or
// >= 3 for large text.
func MeetsAA(fg, bg RGB, largeText bool) bool {
	threshold := 4.5
	if largeText {
		threshold = 3
	}
	return ContrastRatio(fg, bg) >= threshold
}

// MeetsAAA reports whether fg on bg satisfies WCAG AAA: ratio >= 7, or
// >= 4.5 for large text.
func MeetsAAA(fg, bg RGB, largeText bool) bool {
	threshold := 7.0
	if largeText {
		threshold = 4.5
	}
	return ContrastRatio(fg, bg) >= threshold
}

func meetsLevel(fg, bg RGB, level Level, largeText bool) bool {
	if level == LevelAAA {
		return MeetsAAA(fg, bg, largeText)
	}
	return MeetsAA(fg, bg, largeText)
}

// EnsureContrast returns fg unchanged when it already satisfies the requested
// level against bg. Otherwise it walks fg's brightness in 10% steps, darkening
// on light backgrounds and brightening on dark ones, for up to 10 iterations.
// If no step satisfies the requirement it falls back to pure black or white
// chosen by background lightness. Greedy readability heuristic, not exact
// colorimetry.
func EnsureContrast(fg, bg RGB, level Level, largeText bool) RGB {
	if meetsLevel(fg, bg, level, largeText) {
		return fg
	}

	step := 10
	if PerceivedBrightness(bg) > 0.5 {
		step = -10
	}

	adjusted := fg
	for i := 0; i < 10; i++ {
		adjusted = AdjustBrightness(adjusted, step)
		if meetsLevel(adjusted, bg, level, largeText) {
			return adjusted
		}
	}

	if PerceivedBrightness(bg) > 0.5 {
		return Black
	}
	return White
}

// AdjustBrightness shifts every channel by round(2.55 * percent), clamped
// to [0, 255]. Negative percentages darken.
func AdjustBrightness(c RGB, percent int) RGB {
	delta := int(math.Round(2.55 * float64(percent)))
	return RGB{
		R: clampChannel(int(c.R) + delta),
		G: clampChannel(int(c.G) + delta),
		B: clampChannel(int(c.B) + delta),
	}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// WithOpacity renders the color as a CSS rgba() string with the given
// opacity percentage.
func WithOpacity(c RGB, opacityPercent int) string {
	alpha := float64(opacityPercent) / 100
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatAlpha(alpha))
}

func formatAlpha(alpha float64) string {
	return strconv.FormatFloat(alpha, 'f', -1, 64)
}

// ContrastText picks black or white for text on the given background,
// using perceived brightness.
func ContrastText(bg RGB) RGB {
	if PerceivedBrightness(bg) > 0.5 {
		return Black
	}
	return White
}
