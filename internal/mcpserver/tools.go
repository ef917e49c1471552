package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Singularity-ng/singularity-analysis/internal/output"
	"github.com/Singularity-ng/singularity-analysis/internal/service/analysis"
	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// SourceInput is the input of analyze_source.
type SourceInput struct {
	Language string `json:"language" jsonschema:"Language tag or alias, e.g. go, python, ts, c++."`
	Content  string `json:"content" jsonschema:"Source code to analyze."`
	Path     string `json:"path,omitempty" jsonschema:"Optional file name reported with the result."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// PathsInput is the input of analyze_paths.
type PathsInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	Spaces *bool    `json:"spaces,omitempty" jsonschema:"Include the space tree of every file. Default true."`
}

// LanguagesInput is the input of list_languages.
type LanguagesInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

// getFormat defaults to TOON, which is the most compact for LLM context.
func getFormat(s string) output.Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(r output.Renderable, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(r.RenderData(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		var buf bytes.Buffer
		if err := r.RenderMarkdown(&buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return output.EncodeTOON(r.RenderData())
	}
}

func toolResult(r output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(r, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeSource(ctx context.Context, req *mcp.CallToolRequest, input SourceInput) (*mcp.CallToolResult, any, error) {
	language, ok := parser.ParseLanguage(input.Language)
	if !ok {
		return toolError((&analyzer.UnsupportedLanguageError{Tag: input.Language}).Error())
	}
	path := input.Path
	if path == "" {
		path = "memory." + string(language)
	}

	res, err := s.analyzer.AnalyzeSource(ctx, language, path, []byte(input.Content))
	if err != nil {
		return toolError(err.Error())
	}

	results := []*analyzer.Result{res}
	thresholds := s.svc.Config().ModelThresholds()
	report := output.NewAnalysisReport(output.ReportInput{
		Results:    results,
		Summary:    analyzer.Summarize(results, thresholds),
		Thresholds: thresholds,
		Spaces:     true,
	})
	return toolResult(report, getFormat(input.Format))
}

func (s *Server) handleAnalyzePaths(ctx context.Context, req *mcp.CallToolRequest, input PathsInput) (*mcp.CallToolResult, any, error) {
	scan, err := s.svc.ScanPaths(getPaths(input.Paths))
	if err != nil {
		return toolError(err.Error())
	}
	if len(scan.Files) == 0 {
		return toolError("no source files found")
	}

	result, err := s.svc.AnalyzeFiles(ctx, scan.Files, analysis.Options{Root: strings.Join(getPaths(input.Paths), " ")})
	if err != nil {
		return toolError(err.Error())
	}

	spaces := input.Spaces == nil || *input.Spaces
	report := output.NewAnalysisReport(result.ReportInput(spaces))
	if !spaces {
		data := report.Data.(output.ReportData)
		data.Files = nil
		report.Data = data
	}
	return toolResult(report, getFormat(input.Format))
}

type languageInfo struct {
	Tag        string   `json:"tag"`
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

func (s *Server) handleListLanguages(ctx context.Context, req *mcp.CallToolRequest, input LanguagesInput) (*mcp.CallToolResult, any, error) {
	langs := analyzer.Languages()
	infos := make([]languageInfo, len(langs))
	rows := make([][]string, len(langs))
	for i, l := range langs {
		infos[i] = languageInfo{Tag: string(l), Name: l.DisplayName(), Extensions: l.Extensions()}
		rows[i] = []string{string(l), l.DisplayName(), strings.Join(l.Extensions(), " ")}
	}
	table := output.NewTable("Languages", []string{"Tag", "Name", "Extensions"}, rows, nil, infos)
	return toolResult(table, getFormat(input.Format))
}
