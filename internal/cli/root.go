package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ZUXTUO/commit-view/pkg/buildinfo"
	"github.com/ZUXTUO/commit-view/pkg/cache"
	"github.com/ZUXTUO/commit-view/pkg/pipeline"
)

// Execute runs the commit-view CLI. This is the main entry point for
// the application; ctx cancellation (SIGINT) aborts the run.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

type rootOptions struct {
	output  string
	vizType string
	formats []string
	theme   string
	noCache bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:   "commit-view [path]",
		Short: "commit-view renders a Git repository's history as an SVG diagram",
		Long: `commit-view reads a local Git repository's commit graph and writes a
static SVG visualization: every branch gets its own color-coded lane,
every commit a box with message, author, date and line stats, and every
parent-child relationship an arrow.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default git_history.svg in the repository)")
	root.Flags().StringVarP(&opts.vizType, "type", "t", pipeline.VizTypeTimeline, "visualization type (timeline, nodelink)")
	root.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "output formats (svg, json; nodelink also png, dot)")
	root.Flags().StringVar(&opts.theme, "theme", "", "path to a TOML theme override file")
	root.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the diff-stat cache")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	return root
}

func run(ctx context.Context, args []string, opts rootOptions) error {
	logger := loggerFromContext(ctx)

	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	var statCache cache.Cache
	if !opts.noCache {
		dir, err := cache.DefaultDir()
		if err == nil {
			statCache, err = cache.NewFileCache(dir)
		}
		if err != nil {
			logger.Warn("diff-stat cache unavailable, continuing without", "error", err)
			statCache = nil
		}
	}

	runner := pipeline.NewRunner(statCache, logger)
	defer runner.Close()

	popts := pipeline.Options{
		Path:      path,
		Output:    opts.output,
		VizType:   opts.vizType,
		Formats:   opts.formats,
		ThemePath: opts.theme,
		NoCache:   opts.noCache,
		Logger:    logger,
	}

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "reading commit history")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := runner.WriteArtifacts(result, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("rendered %d commits across %d branches",
		result.Stats.CommitCount, result.Stats.BranchCount))

	printSuccess("wrote commit history diagram")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Lanes)
	return nil
}
