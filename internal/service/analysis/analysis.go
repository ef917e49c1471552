// Package analysis runs batch metric analysis over files and directories.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Singularity-ng/singularity-analysis/internal/cache"
	"github.com/Singularity-ng/singularity-analysis/internal/fileproc"
	"github.com/Singularity-ng/singularity-analysis/internal/output"
	"github.com/Singularity-ng/singularity-analysis/internal/scanner"
	"github.com/Singularity-ng/singularity-analysis/internal/store"
	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/config"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
	"github.com/Singularity-ng/singularity-analysis/pkg/source"
)

// Service orchestrates batch analysis.
type Service struct {
	config *config.Config
	logger *slog.Logger
	source source.ContentSource
	cache  *cache.Cache
	store  *store.Store
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSource sets where file content is read from (for testing).
func WithSource(src source.ContentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithCache sets the result cache. Without one, results are always computed.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithStore sets the run history store. Without one, runs are not persisted.
func WithStore(st *store.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: slog.Default(),
		source: source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Options configures one batch.
type Options struct {
	// NoCache bypasses the cache for reads and writes.
	NoCache bool
	// Root is recorded with a persisted run. Defaults to the scanned paths.
	Root string
}

// Report is the outcome of a batch.
type Report struct {
	RunID      int64
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []*analyzer.Result
	Failures   []output.Failure
	Summary    analyzer.Summary
	Thresholds models.Thresholds
	CacheHits  int
}

// ScanResult contains the files found for a set of paths.
type ScanResult struct {
	Files          []string
	LanguageGroups map[parser.Language][]string
}

// ScanPaths expands paths into analyzable files.
func (s *Service) ScanPaths(paths []string) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := scanner.NewScanner(s.config).Scan(paths)
	if err != nil {
		return nil, err
	}
	return &ScanResult{
		Files:          files,
		LanguageGroups: scanner.GroupByLanguage(files),
	}, nil
}

// AnalyzePaths scans paths and analyzes every file found.
func (s *Service) AnalyzePaths(ctx context.Context, paths []string, opts Options) (*Report, error) {
	scan, err := s.ScanPaths(paths)
	if err != nil {
		return nil, err
	}
	if opts.Root == "" {
		opts.Root = strings.Join(paths, " ")
		if opts.Root == "" {
			opts.Root = "."
		}
	}
	return s.AnalyzeFiles(ctx, scan.Files, opts)
}

type fileResult struct {
	result *analyzer.Result
	hash   string
	cached bool
}

// AnalyzeFiles analyzes files concurrently. A file that fails is reported in
// Report.Failures and does not stop the batch. Only a failure to persist the
// run is returned as an error.
func (s *Service) AnalyzeFiles(ctx context.Context, files []string, opts Options) (*Report, error) {
	report := &Report{
		StartedAt:  time.Now(),
		Thresholds: s.config.ModelThresholds(),
	}

	az := analyzer.New(
		analyzer.WithMaxFileSize(s.config.Analysis.MaxFileSize),
		analyzer.WithTolerateSyntaxErrors(s.config.Analysis.TolerateSyntaxErrors),
		analyzer.WithLogger(s.logger),
	)
	useCache := s.cache != nil && s.cache.Enabled() && !opts.NoCache
	fingerprint := s.fingerprint()

	analyze := func(ctx context.Context, path string) (fileResult, error) {
		language := parser.DetectLanguage(path)
		if language == parser.LangUnknown {
			return fileResult{}, &analyzer.UnsupportedLanguageError{Tag: path}
		}
		content, err := s.source.Read(path)
		if err != nil {
			return fileResult{}, fmt.Errorf("read %s: %w", path, err)
		}
		hash := cache.HashBytes(content)
		key := cache.Key(path, language, fingerprint)

		if useCache {
			if res, ok := s.cache.Get(key, hash); ok {
				return fileResult{result: res, hash: hash, cached: true}, nil
			}
		}

		res, err := az.AnalyzeSource(ctx, language, path, content)
		if err != nil {
			return fileResult{}, err
		}
		if useCache {
			if err := s.cache.Put(key, hash, res); err != nil {
				s.logger.Warn("cache write failed", slog.String("path", path), slog.Any("error", err))
			}
		}
		return fileResult{result: res, hash: hash}, nil
	}

	results, errs := fileproc.MapFiles(ctx, files, analyze, fileproc.WithWorkers(s.config.Analysis.Workers))

	entries := make([]store.Entry, 0, len(results))
	for _, r := range results {
		report.Results = append(report.Results, r.result)
		entries = append(entries, store.Entry{Result: r.result, Hash: r.hash})
		if r.cached {
			report.CacheHits++
		}
	}
	if errs != nil {
		for _, e := range errs.Errors {
			report.Failures = append(report.Failures, output.Failure{Path: e.Path, Error: e.Err.Error()})
			s.logger.Info("file skipped", slog.String("path", e.Path), slog.Any("error", e.Err))
		}
	}

	report.Summary = analyzer.Summarize(report.Results, report.Thresholds)
	report.FinishedAt = time.Now()

	s.logger.Debug("batch complete",
		slog.Int("files", len(files)),
		slog.Int("analyzed", len(report.Results)),
		slog.Int("failed", len(report.Failures)),
		slog.Int("cache_hits", report.CacheHits),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))

	if s.store != nil {
		run := &store.Run{
			StartedAt:  report.StartedAt,
			FinishedAt: report.FinishedAt,
			Root:       opts.Root,
			Files:      len(report.Results),
			Failed:     len(report.Failures),
			Summary:    report.Summary,
		}
		if err := s.store.SaveRun(ctx, run, entries); err != nil {
			return report, err
		}
		report.RunID = run.ID
	}
	return report, nil
}

// fingerprint identifies the options that change an analysis result, so a
// cached result is only reused under the same options.
func (s *Service) fingerprint() string {
	return "tolerate=" + strconv.FormatBool(s.config.Analysis.TolerateSyntaxErrors)
}

// ReportInput converts the batch into the input of an output report.
func (r *Report) ReportInput(spaces bool) output.ReportInput {
	return output.ReportInput{
		Results:    r.Results,
		Summary:    r.Summary,
		Failures:   r.Failures,
		Thresholds: r.Thresholds,
		Spaces:     spaces,
	}
}
