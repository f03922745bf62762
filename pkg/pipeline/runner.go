package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/ZUXTUO/commit-view/pkg/cache"
	"github.com/ZUXTUO/commit-view/pkg/dag"
	"github.com/ZUXTUO/commit-view/pkg/errors"
	"github.com/ZUXTUO/commit-view/pkg/gitrepo"
	"github.com/ZUXTUO/commit-view/pkg/graph"
	"github.com/ZUXTUO/commit-view/pkg/layout"
	"github.com/ZUXTUO/commit-view/pkg/render"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (diff-stat caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete read → build → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	readStart := time.Now()
	snap, err := r.Read(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap
	result.Stats.ReadTime = time.Since(readStart)
	result.Stats.CommitCount = len(snap.Commits)
	result.Stats.BranchCount = len(snap.Branches)

	if snap.Empty() {
		opts.Logger.Warn("repository has no commits, rendering empty diagram")
	} else {
		opts.Logger.Info("loaded commits",
			"commits", len(snap.Commits),
			"branches", len(snap.Branches),
			"duration", result.Stats.ReadTime)
	}

	buildStart := time.Now()
	g, err := dag.Build(snap)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	layoutStart := time.Now()
	l := layout.Compute(g)
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Lanes = l.Lanes

	opts.Logger.Info("computed layout",
		"rows", l.Rows,
		"lanes", l.Lanes,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, g, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Read collects the repository's commits and branches. A pre-built
// Snapshot in the options short-circuits the repository walk.
func (r *Runner) Read(ctx context.Context, opts Options) (*gitrepo.Snapshot, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Snapshot != nil {
		return opts.Snapshot, nil
	}

	if info, err := os.Stat(opts.Path); err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", opts.Path)
	}

	statCache := r.Cache
	if opts.NoCache {
		statCache = cache.NewNullCache()
	}
	reader, err := gitrepo.Open(opts.Path,
		gitrepo.WithCache(statCache),
		gitrepo.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	return reader.Snapshot(ctx)
}

// Render emits every requested format for the configured visualization
// type, keyed by format.
func (r *Runner) Render(ctx context.Context, g *dag.DAG, l layout.Layout, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	th, err := opts.themeFor()
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		if format == FormatJSON {
			data, err := graph.Marshal(g, l)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "serializing graph")
			}
			artifacts[format] = data
			continue
		}

		switch opts.VizType {
		case VizTypeNodelink:
			if dot == "" {
				dot = render.ToDOT(g, l, th)
			}
			switch format {
			case FormatDOT:
				artifacts[format] = []byte(dot)
			case FormatSVG:
				data, err := render.RenderDOT(ctx, dot, graphviz.SVG)
				if err != nil {
					return nil, err
				}
				artifacts[format] = data
			case FormatPNG:
				data, err := render.RenderDOT(ctx, dot, graphviz.PNG)
				if err != nil {
					return nil, err
				}
				artifacts[format] = data
			}
		default:
			artifacts[format] = render.RenderSVG(g, l,
				render.WithTheme(th),
				render.WithSeed(opts.Seed))
		}
	}
	return artifacts, nil
}

// WriteArtifacts writes every rendered artifact to its output path and
// returns the paths written. Existing files are overwritten. Nothing is
// written unless the whole pipeline has already succeeded, so a failed
// run never clobbers a previous diagram.
func (r *Runner) WriteArtifacts(result *Result, opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := opts.OutputFile(format)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, errors.Wrap(errors.ErrCodeWriteFailed, err, "creating output directory %s", dir)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeWriteFailed, err, "writing %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
