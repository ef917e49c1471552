package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
)

// Manifest represents the MCP server manifest (server.json) format.
// Uses schema version 2025-10-17.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes how to run the MCP server.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	Version          string     `json:"version,omitempty"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

// Argument is a command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest creates the server.json manifest for a release.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	manifest := Manifest{
		Schema:      "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json",
		Name:        "io.github.Singularity-ng/singularity-analysis",
		Description: manifestDescription(),
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/Singularity-ng/singularity-analysis",
			Source: "github",
		},
		Packages: []Package{
			{
				RegistryType: "go",
				Identifier:   "github.com/Singularity-ng/singularity-analysis/cmd/sca",
				Version:      version,
				PackageArguments: []Argument{
					{Type: "positional", Value: "mcp"},
				},
				Transport: Transport{Type: "stdio"},
			},
		},
	}

	return json.MarshalIndent(manifest, "", "  ")
}

// manifestDescription lists the registered languages so the registry entry
// tracks the classifier set.
func manifestDescription() string {
	langs := analyzer.Languages()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = l.DisplayName()
	}
	return fmt.Sprintf("Per-scope code metrics (cyclomatic, Halstead, maintainability, LOC) for %s", strings.Join(names, ", "))
}
