package main

import (
	"github.com/urfave/cli/v2"

	"github.com/Singularity-ng/singularity-analysis/internal/mcpserver"
	"github.com/Singularity-ng/singularity-analysis/internal/service/analysis"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the metrics
engine as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "sca": {
        "command": "sca",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_source    Metrics for a source buffer passed inline
  - analyze_paths     Metrics for every source file under the given paths
  - list_languages    Supported language tags`,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the server.json manifest",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					_, err = c.App.Writer.Write(append(data, '\n'))
					return err
				},
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	svc := analysis.New(
		analysis.WithConfig(appConfig(c)),
		analysis.WithLogger(appLogger(c)),
	)
	return mcpserver.NewServer(version, svc).Run(c.Context)
}
