// Package analyzer computes per-scope code metrics for a single source buffer.
//
// An Analyzer resolves a language to its grammar and classifier, parses the
// buffer, builds the Space tree and computes own and aggregate metrics:
//
//	a := analyzer.New()
//	res, err := a.Analyze(ctx, parser.LangGo, src)
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Root.Metrics.Cyclomatic)
//
// Each call creates its own parser and releases the syntax tree before
// returning, so an Analyzer is safe for concurrent use. Only plain data
// escapes a call.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer/metrics"
	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer/spaces"
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/lang"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
	"github.com/Singularity-ng/singularity-analysis/pkg/source"
)

// WarnFileSize is the input size above which a warning is logged.
const WarnFileSize = 1 << 20

// Analyzer computes metrics for source buffers.
type Analyzer struct {
	maxFileSize          int64
	tolerateSyntaxErrors bool
	logger               *slog.Logger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxFileSize sets the maximum input size in bytes (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithTolerateSyntaxErrors accepts trees with error or missing nodes. By
// default any syntax error is reported as a ParseError.
func WithTolerateSyntaxErrors(tolerate bool) Option {
	return func(a *Analyzer) {
		a.tolerateSyntaxErrors = tolerate
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates a new analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of analyzing one buffer.
type Result struct {
	Path     string          `json:"path"`
	Language parser.Language `json:"language"`
	Root     *models.Space   `json:"root"`
}

// ContentSource provides file content.
type ContentSource = source.ContentSource

// Languages returns the languages that can be analyzed, sorted.
func Languages() []parser.Language {
	return lang.Supported()
}

// CheckClassifiers binds every language classifier to its grammar and joins
// the failures.
func CheckClassifiers() error {
	return lang.ResolveAll()
}

// Analyze computes metrics for src in the given language. The result path is
// a virtual "memory.<language>" name.
func (a *Analyzer) Analyze(ctx context.Context, language parser.Language, src []byte) (*Result, error) {
	return a.AnalyzeSource(ctx, language, "memory."+string(language), src)
}

// AnalyzeNamed resolves a free-form language name ("Go", "c++", "ts") and
// analyzes src. Unknown names fail with an UnsupportedLanguageError.
func (a *Analyzer) AnalyzeNamed(ctx context.Context, name string, src []byte) (*Result, error) {
	language, ok := parser.ParseLanguage(name)
	if !ok {
		return nil, &UnsupportedLanguageError{Tag: name}
	}
	return a.Analyze(ctx, language, src)
}

// AnalyzeFile reads path and analyzes it in the language its name implies.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	return a.AnalyzeFromSource(ctx, source.NewFilesystem(), path)
}

// AnalyzeFromSource reads path from src and analyzes it in the language its
// name implies.
func (a *Analyzer) AnalyzeFromSource(ctx context.Context, src ContentSource, path string) (*Result, error) {
	language := parser.DetectLanguage(path)
	if language == parser.LangUnknown {
		return nil, &UnsupportedLanguageError{Tag: path}
	}
	content, err := src.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return a.AnalyzeSource(ctx, language, path, content)
}

// AnalyzeSource analyzes content already in memory under the given path.
// The context carries tracing only; a started analysis runs to completion.
func (a *Analyzer) AnalyzeSource(ctx context.Context, language parser.Language, path string, content []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := startAnalyzeSpan(ctx, string(language), path, len(content))
	start := time.Now()

	res, err := a.analyze(language, path, content)

	count := 0
	if res != nil {
		count = res.Root.Count()
	}
	endAnalyzeSpan(span, count, err)
	recordAnalysis(ctx, string(language), time.Since(start), count, err)

	if err != nil {
		a.logger.Debug("analysis failed",
			slog.String("path", path),
			slog.String("language", string(language)),
			slog.Any("error", err))
		return nil, err
	}
	a.logger.Debug("analysis complete",
		slog.String("path", path),
		slog.String("language", string(language)),
		slog.Int("spaces", count),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (a *Analyzer) analyze(language parser.Language, path string, content []byte) (*Result, error) {
	tree, cls, err := a.parse(language, path, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	unit := spaces.Build(tree.Root(), content, cls)
	metrics.Compute(unit)

	return &Result{Path: path, Language: language, Root: unit}, nil
}

// parse checks content against the analyzer's limits and returns its syntax
// tree with the language classifier. The caller closes the tree.
func (a *Analyzer) parse(language parser.Language, path string, content []byte) (*ast.Tree, lang.Classifier, error) {
	cls, err := lang.Lookup(language)
	if err != nil {
		if errors.Is(err, lang.ErrUnknownLanguage) {
			return nil, nil, &UnsupportedLanguageError{Tag: string(language)}
		}
		return nil, nil, err
	}

	if a.maxFileSize > 0 && int64(len(content)) > a.maxFileSize {
		return nil, nil, fmt.Errorf("%w: %s (%d bytes, limit %d)", ErrFileTooLarge, path, len(content), a.maxFileSize)
	}
	if len(content) > WarnFileSize {
		a.logger.Warn("analyzing large input",
			slog.String("path", path),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, nil, fmt.Errorf("%w: %s", ErrDecodeFailure, path)
	}

	psr := parser.New()
	defer psr.Close()

	parsed, err := psr.Parse(content, language, path)
	if err != nil {
		return nil, nil, &ParseError{Language: language, Path: path, Reason: err.Error(), Err: err}
	}
	tree := ast.NewTree(parsed.Tree)

	if !a.tolerateSyntaxErrors {
		if bad, ok := ast.FirstError(tree.Root()); ok {
			reason := describeError(bad)
			tree.Close()
			return nil, nil, &ParseError{Language: language, Path: path, Reason: reason}
		}
	}
	return tree, cls, nil
}

func describeError(n ast.Node) string {
	line := n.StartRow() + 1
	if n.IsMissing() {
		return fmt.Sprintf("missing %s at line %d", n.Kind(), line)
	}
	return fmt.Sprintf("syntax error at line %d", line)
}
