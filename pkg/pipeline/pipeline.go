// Package pipeline provides the core visualization pipeline.
//
// This package implements the complete read → build → layout → render
// pipeline shared by every entry point. Centralizing the staging keeps
// the CLI thin and makes the whole run testable without a filesystem.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Read: Walk the repository's branches and collect every commit
//  2. Build: Assemble the commit DAG with branch attribution
//  3. Layout: Assign each commit a (row, lane) grid cell
//  4. Render: Emit the diagram artifacts (timeline SVG, node-link views)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{Path: "."}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ZUXTUO/commit-view/pkg/dag"
	"github.com/ZUXTUO/commit-view/pkg/errors"
	"github.com/ZUXTUO/commit-view/pkg/gitrepo"
	"github.com/ZUXTUO/commit-view/pkg/layout"
	"github.com/ZUXTUO/commit-view/pkg/render"
)

const (
	// DefaultOutput is the artifact written next to the repository when
	// no output path is given.
	DefaultOutput = "git_history.svg"

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = render.DefaultSeed

	// ThemeFilename is the optional per-repository theme override file.
	ThemeFilename = "commit-view.toml"
)

// Visualization types.
const (
	VizTypeTimeline = "timeline"
	VizTypeNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeTimeline: true,
	VizTypeNodelink: true,
}

// validFormats lists the supported formats per visualization type. The
// timeline view is hand-emitted SVG; the node-link view goes through
// Graphviz and can also produce raster and raw DOT output. Both support
// a machine-readable JSON dump of the laid-out graph.
var validFormats = map[string][]string{
	VizTypeTimeline: {FormatSVG, FormatJSON},
	VizTypeNodelink: {FormatSVG, FormatPNG, FormatDOT, FormatJSON},
}

// Options contains all configuration for the visualization pipeline.
type Options struct {
	// Read options
	Path    string `json:"path,omitempty"`     // repository path, defaults to "."
	NoCache bool   `json:"no_cache,omitempty"` // skip the diff-stat cache

	// Layout / render options
	VizType      string   `json:"viz_type,omitempty"`
	Formats      []string `json:"formats,omitempty"`
	ThemePath    string   `json:"theme_path,omitempty"`
	Seed         uint64   `json:"seed,omitempty"`
	MessageLimit int      `json:"message_limit,omitempty"`

	// Output is the artifact path for the first format. Other formats
	// swap the extension. Empty means DefaultOutput inside Path.
	Output string `json:"output,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// Snapshot bypasses the repository read stage when set. Used by
	// tests to run the pipeline against a fabricated history.
	Snapshot *gitrepo.Snapshot `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Path == "" {
		o.Path = "."
	}
	if o.VizType == "" {
		o.VizType = VizTypeTimeline
	}
	if !ValidVizTypes[o.VizType] {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid type: %q (must be one of: timeline, nodelink)", o.VizType)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if !slices.Contains(validFormats[o.VizType], f) {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format %q for type %q (supported: %v)", f, o.VizType, validFormats[o.VizType])
		}
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// OutputFile returns the path the given format's artifact should be
// written to. The first configured format gets the Output path verbatim;
// the rest swap its extension.
func (o *Options) OutputFile(format string) string {
	out := o.Output
	if out == "" {
		out = filepath.Join(o.Path, DefaultOutput)
	}
	if len(o.Formats) > 0 && format == o.Formats[0] {
		return out
	}
	ext := filepath.Ext(out)
	return out[:len(out)-len(ext)] + "." + format
}

// themeFor resolves the theme for a run: an explicit --theme path wins,
// otherwise a commit-view.toml next to the repository is picked up, and
// absent both the compiled-in defaults apply.
func (o *Options) themeFor() (render.Theme, error) {
	path := o.ThemePath
	if path == "" {
		candidate := filepath.Join(o.Path, ThemeFilename)
		if !fileExists(candidate) {
			th := render.DefaultTheme()
			o.applyOverrides(&th)
			return th, nil
		}
		path = candidate
	}
	th, err := render.LoadTheme(path)
	if err != nil {
		return th, err
	}
	o.applyOverrides(&th)
	return th, nil
}

func (o *Options) applyOverrides(th *render.Theme) {
	if o.MessageLimit > 0 {
		th.MessageLimit = o.MessageLimit
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the raw commit data read from the repository.
	Snapshot *gitrepo.Snapshot

	// Graph is the commit DAG with branch attribution.
	Graph *dag.DAG

	// Layout maps each commit to its grid cell.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CommitCount int
	BranchCount int
	NodeCount   int
	EdgeCount   int
	Lanes       int
	ReadTime    time.Duration
	BuildTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}
