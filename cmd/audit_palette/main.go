package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"kaleido/internal/color"
	"kaleido/internal/theme"
)

// pairing is a foreground/background combination whose contrast matters in
// the rendered UI.
type pairing struct {
	Label      string
	Foreground string
	Background string
	LargeText  bool
}

// auditPairings lists the role combinations the dashboard actually draws.
func auditPairings(c theme.Colors) []pairing {
	return []pairing{
		{"text primary on bg primary", c.TextPrimary, c.BgPrimary, false},
		{"text primary on bg secondary", c.TextPrimary, c.BgSecondary, false},
		{"text secondary on bg primary", c.TextSecondary, c.BgPrimary, false},
		{"text secondary on bg secondary", c.TextSecondary, c.BgSecondary, false},
		{"text muted on bg primary", c.TextMuted, c.BgPrimary, true},
		{"accent primary on bg primary", c.AccentPrimary, c.BgPrimary, false},
		{"accent hover on bg primary", c.AccentHover, c.BgPrimary, false},
		{"success on bg primary", c.Success, c.BgPrimary, false},
		{"warning on bg primary", c.Warning, c.BgPrimary, false},
		{"error on bg primary", c.Error, c.BgPrimary, false},
		{"info on bg primary", c.Info, c.BgPrimary, false},
	}
}

type auditRow struct {
	Label     string
	Ratio     float64
	PassesAA  bool
	PassesAAA bool
	Suggested string
}

// auditPalette measures each pairing and proposes an adjusted foreground
// for rows that miss AA.
func auditPalette(c theme.Colors) ([]auditRow, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rows := make([]auditRow, 0, 11)
	for _, p := range auditPairings(c) {
		fg, err := color.ParseHex(p.Foreground)
		if err != nil {
			return nil, fmt.Errorf("parse %s foreground: %w", p.Label, err)
		}
		bg, err := color.ParseHex(p.Background)
		if err != nil {
			return nil, fmt.Errorf("parse %s background: %w", p.Label, err)
		}

		row := auditRow{
			Label:     p.Label,
			Ratio:     color.ContrastRatio(fg, bg),
			PassesAA:  color.MeetsAA(fg, bg, p.LargeText),
			PassesAAA: color.MeetsAAA(fg, bg, p.LargeText),
		}
		if !row.PassesAA {
			row.Suggested = color.EnsureContrast(fg, bg, color.LevelAA, p.LargeText).Hex()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func loadPalette(path string) (theme.Colors, error) {
	var colors theme.Colors

	data, err := os.ReadFile(path)
	if err != nil {
		return colors, fmt.Errorf("read palette: %w", err)
	}
	if err := json.Unmarshal(data, &colors); err != nil {
		return colors, fmt.Errorf("decode palette: %w", err)
	}
	return colors, nil
}

func writeReport(w io.Writer, name string, rows []auditRow) {
	fmt.Fprintf(w, "palette %q\n", name)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAIRING\tRATIO\tAA\tAAA\tSUGGESTED")
	for _, row := range rows {
		suggested := row.Suggested
		if suggested == "" {
			suggested = "-"
		}
		fmt.Fprintf(tw, "%s\t%.2f:1\t%s\t%s\t%s\n", row.Label, row.Ratio, passMark(row.PassesAA), passMark(row.PassesAAA), suggested)
	}
	tw.Flush()
}

func passMark(ok bool) string {
	if ok {
		return "pass"
	}
	return "FAIL"
}

func main() {
	palettePath := flag.String("palette", "", "path to a palette JSON file; omit to audit the built-in presets")
	presetName := flag.String("preset", "", "audit a single preset by name")
	flag.Parse()

	if err := run(os.Stdout, *palettePath, *presetName); err != nil {
		fmt.Fprintf(os.Stderr, "audit failed: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, palettePath, presetName string) error {
	if palettePath != "" {
		colors, err := loadPalette(palettePath)
		if err != nil {
			return err
		}
		rows, err := auditPalette(colors)
		if err != nil {
			return err
		}
		writeReport(w, palettePath, rows)
		return reportFailures(rows)
	}

	names := theme.Presets()
	if presetName != "" {
		names = []theme.Name{theme.Normalize(presetName)}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var failed []string
	for i, name := range names {
		preset, ok := theme.Preset(name)
		if !ok {
			return fmt.Errorf("unknown preset %q", name)
		}
		rows, err := auditPalette(preset.Colors)
		if err != nil {
			return fmt.Errorf("audit %s: %w", name, err)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeReport(w, string(name), rows)
		if reportFailures(rows) != nil {
			failed = append(failed, string(name))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("presets below AA: %s", strings.Join(failed, ", "))
	}
	return nil
}

func reportFailures(rows []auditRow) error {
	count := 0
	for _, row := range rows {
		if !row.PassesAA {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("%d pairings below AA", count)
	}
	return nil
}
