// Package render emits the diagram artifacts: a self-contained SVG in the
// default timeline view, and an alternative Graphviz node-link view.
//
// All output is deterministic for a given graph and theme: decorative
// randomization (the star field) is driven by a fixed seed, and every
// element is emitted in a stable order.
package render

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ZUXTUO/commit-view/pkg/errors"
)

// DefaultSeed drives the decorative randomization, fixed for reproducible
// output.
const DefaultSeed = uint64(42)

// Theme holds every color and spacing constant used by the timeline
// renderer. The zero value is not usable - start from [DefaultTheme] and
// override fields, or load overrides from a TOML file with [LoadTheme].
type Theme struct {
	// Node geometry (pixels).
	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
	LaneGap    float64 `toml:"lane_gap"` // horizontal gap between lanes
	RowGap     float64 `toml:"row_gap"`  // vertical gap between rows
	Margin     float64 `toml:"margin"`   // canvas margin on all sides

	// Colors.
	MainColor    string   `toml:"main_color"`    // fill for main-branch nodes
	LanePalette  []string `toml:"lane_palette"`  // fills for non-main lanes, cycled
	EdgeColor    string   `toml:"edge_color"`    // fallback connector color
	TextColor    string   `toml:"text_color"`    // node text
	AddedColor   string   `toml:"added_color"`   // "+n" stat tint
	RemovedColor string   `toml:"removed_color"` // "-n" stat tint
	TipColor     string   `toml:"tip_color"`     // childless tip nodes

	// MergeColors tints merge commits by parent count: index 0 is used
	// for 2 parents, the last entry for that count and above.
	MergeColors []string `toml:"merge_colors"`

	// Background.
	BackgroundTop    string `toml:"background_top"`
	BackgroundBottom string `toml:"background_bottom"`
	StarCount        int    `toml:"star_count"`

	// Text.
	FontFamily   string `toml:"font_family"`
	MessageLimit int    `toml:"message_limit"` // max chars of the message line
}

// DefaultTheme returns the built-in dark theme.
func DefaultTheme() Theme {
	return Theme{
		NodeWidth:  350,
		NodeHeight: 80,
		LaneGap:    100,
		RowGap:     50,
		Margin:     100,

		MainColor:    "#102a6e",
		LanePalette:  []string{"#5b2a86", "#1d6d5e", "#7a4a1d", "#70265c"},
		EdgeColor:    "#c8a2ff",
		TextColor:    "#ffffff",
		AddedColor:   "#00ffaa",
		RemovedColor: "#ff5555",
		TipColor:     "#9370db",

		MergeColors: []string{"#006400", "#ff7f50", "#8b0000", "#000000"},

		BackgroundTop:    "#0a0f1e",
		BackgroundBottom: "#000000",
		StarCount:        120,

		FontFamily:   "Consolas, Menlo, monospace",
		MessageLimit: 60,
	}
}

// LoadTheme reads TOML overrides from path on top of the default theme.
// Fields absent from the file keep their defaults.
func LoadTheme(path string) (Theme, error) {
	th := DefaultTheme()
	data, err := os.ReadFile(path)
	if err != nil {
		return th, errors.Wrap(errors.ErrCodeInvalidTheme, err, "reading theme file %s", path)
	}
	if err := toml.Unmarshal(data, &th); err != nil {
		return th, errors.Wrap(errors.ErrCodeInvalidTheme, err, "parsing theme file %s", path)
	}
	return th, nil
}

/// LaneColor returns the node fill for a lane: main color for lane 0,
// palette colors cycled for the rest.
func (t Theme) LaneColor(lane int) string {
	if lane <= 0 || len(t.LanePalette) == 0 {
		return t.MainColor
	}
	return t.LanePalette[(lane-1)%len(t.LanePalette)]
}

// MergeColor returns the fill tint for a merge commit with the given
// parent count, or "" when no tint applies.
func (t Theme) MergeColor(parents int) string {
	if parents < 2 || len(t.MergeColors) == 0 {
		return ""
	}
	idx := parents - 2
	if idx >= len(t.MergeColors) {
		idx = len(t.MergeColors) - 1
	}
	return t.MergeColors[idx]
}
