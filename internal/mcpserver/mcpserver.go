// Package mcpserver exposes the metrics engine as Model Context Protocol tools.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Singularity-ng/singularity-analysis/internal/service/analysis"
	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
)

// Server wraps the MCP server and registers the analysis tools.
type Server struct {
	server   *mcp.Server
	svc      *analysis.Service
	analyzer *analyzer.Analyzer
}

// NewServer creates a new MCP server. A nil svc uses the default analysis
// service.
func NewServer(version string, svc *analysis.Service) *Server {
	if version == "" {
		version = "dev"
	}
	if svc == nil {
		svc = analysis.New()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "sca",
			Version: version,
		},
		nil,
	)

	cfg := svc.Config()
	s := &Server{
		server: server,
		svc:    svc,
		analyzer: analyzer.New(
			analyzer.WithMaxFileSize(cfg.Analysis.MaxFileSize),
			analyzer.WithTolerateSyntaxErrors(cfg.Analysis.TolerateSyntaxErrors),
		),
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_source",
		Description: describeAnalyzeSource(),
	}, s.handleAnalyzeSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_paths",
		Description: describeAnalyzePaths(),
	}, s.handleAnalyzePaths)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_languages",
		Description: describeListLanguages(),
	}, s.handleListLanguages)
}
