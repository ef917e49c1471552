package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/Singularity-ng/singularity-analysis/internal/cache"
	"github.com/Singularity-ng/singularity-analysis/internal/output"
	"github.com/Singularity-ng/singularity-analysis/internal/progress"
	"github.com/Singularity-ng/singularity-analysis/internal/service/analysis"
	"github.com/Singularity-ng/singularity-analysis/internal/store"
	"github.com/Singularity-ng/singularity-analysis/internal/watch"
	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/config"
)

// exitViolations is returned by analyze --fail-on-violations.
const exitViolations = 2

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Compute metrics for every source file under the given paths",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "spaces",
				Usage: "Show the space tree of every file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "tolerate",
				Usage: "Analyze files with syntax errors instead of skipping them",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of files analyzed concurrently (0 = 2x CPUs)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Record the run in this SQLite database",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Do not show a progress bar",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and re-analyze files as they change",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before a changed file is re-analyzed (with --watch)",
			},
			&cli.BoolFlag{
				Name:  "fail-on-violations",
				Usage: fmt.Sprintf("Exit with status %d when a threshold is exceeded", exitViolations),
			},
		},
		Action: runAnalyzeCmd,
	}
}

// applyFlags overrides config values with the flags the user set.
func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("tolerate") {
		cfg.Analysis.TolerateSyntaxErrors = c.Bool("tolerate")
	}
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if c.IsSet("store") {
		cfg.Store.Path = c.String("store")
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	return cfg.Validate()
}

func runAnalyzeCmd(c *cli.Context) error {
	if c.Bool("watch") && c.Bool("fail-on-violations") {
		return errors.New("--watch and --fail-on-violations cannot be combined")
	}
	cfg := appConfig(c)
	if err := applyFlags(c, cfg); err != nil {
		return err
	}
	logger := appLogger(c)

	opts := []analysis.Option{analysis.WithConfig(cfg), analysis.WithLogger(logger)}
	if cfg.Cache.Enabled {
		ch, err := cache.New(cfg.Cache.Dir, cfg.CacheTTL(), true)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		opts = append(opts, analysis.WithCache(ch))
	}
	if cfg.Store.Path != "" {
		st, err := store.NewStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, analysis.WithStore(st))
	}
	svc := analysis.New(opts...)

	paths := getPaths(c)
	scan, err := svc.ScanPaths(paths)
	if err != nil {
		return err
	}
	if len(scan.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	ctx := c.Context
	var bar *progress.Bar
	if !c.Bool("no-progress") && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progress.NewBar(c.App.ErrWriter, "Analyzing", 0)
		ctx = analyzer.WithTracker(ctx, bar.Tracker())
	}

	opts := analysis.Options{Root: strings.Join(paths, " ")}
	report, err := svc.AnalyzeFiles(ctx, scan.Files, opts)
	if bar != nil {
		if err != nil {
			bar.FinishError(err)
		} else {
			bar.FinishSuccess()
		}
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeReport(c, cfg, report); err != nil {
		return err
	}
	if report.RunID > 0 {
		logger.Info("run recorded", "run_id", report.RunID, "store", cfg.Store.Path)
	}
	if c.Bool("watch") {
		return watchPaths(c, cfg, svc, paths, opts)
	}
	if c.Bool("fail-on-violations") && report.Summary.Violations > 0 {
		return cli.Exit(fmt.Sprintf("%d threshold violations", report.Summary.Violations), exitViolations)
	}
	return nil
}

func writeReport(c *cli.Context, cfg *config.Config, report *analysis.Report) error {
	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.App.Writer, c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.NewAnalysisReport(report.ReportInput(c.Bool("spaces")))); err != nil {
		return err
	}
	if c.String("output") != "" {
		color.Green("Report written to %s", c.String("output"))
	}
	return nil
}

// watchPaths re-analyzes changed files until the context is canceled.
func watchPaths(c *cli.Context, cfg *config.Config, svc *analysis.Service, paths []string, opts analysis.Options) error {
	logger := appLogger(c)
	w, err := watch.New(cfg, paths, watch.WithDebounce(c.Duration("debounce")), watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()

	color.Cyan("Watching for changes in %s...", strings.Join(paths, " "))
	color.Cyan("Press Ctrl+C to stop")

	err = w.Run(c.Context, func(ctx context.Context, changed []string) {
		for _, p := range changed {
			color.Yellow("File changed: %s", p)
		}
		report, err := svc.AnalyzeFiles(ctx, changed, opts)
		if err != nil {
			logger.Error("analysis failed", "error", err)
			return
		}
		if err := writeReport(c, cfg, report); err != nil {
			logger.Error("failed to write report", "error", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
