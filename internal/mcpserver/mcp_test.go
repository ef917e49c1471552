package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Singularity-ng/singularity-analysis/internal/output"
	"github.com/Singularity-ng/singularity-analysis/internal/service/analysis"
	"github.com/Singularity-ng/singularity-analysis/pkg/config"
)

const jsSource = "function f(a, b) { if (a) { return a; } return b; }\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer("1.0.0-test", nil)
	require.NotNil(t, s)
	return s
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return text.Text
}

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test", nil)
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
	if server.svc == nil || server.analyzer == nil {
		t.Fatal("NewServer() left the analysis service unset")
	}
}

func TestServerCreationEmptyVersion(t *testing.T) {
	if NewServer("", nil) == nil {
		t.Fatal("NewServer(\"\") returned nil")
	}
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"analyze_source": describeAnalyzeSource,
		"analyze_paths":  describeAnalyzePaths,
		"list_languages": describeListLanguages,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			if desc == "" {
				t.Errorf("%s description is empty", name)
			}
			if !strings.Contains(desc, "USE WHEN:") {
				t.Errorf("%s description missing USE WHEN section", name)
			}
			if !strings.Contains(desc, "METRICS RETURNED:") {
				t.Errorf("%s description missing METRICS RETURNED section", name)
			}
		})
	}
}

func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil defaults to current dir", nil, []string{"."}},
		{"empty slice defaults to current dir", []string{}, []string{"."}},
		{"single path returned as-is", []string{"/foo/bar"}, []string{"/foo/bar"}},
		{"multiple paths returned as-is", []string{"/foo", "/bar"}, []string{"/foo", "/bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getPaths(tt.input))
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"text", output.FormatTOON},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := getFormat(tt.input); got != tt.expected {
				t.Errorf("getFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToolError(t *testing.T) {
	res, out, err := toolError("test error message")
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: test error message", resultText(t, res))
}

func TestHandleAnalyzeSource(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handleAnalyzeSource(context.Background(), nil, SourceInput{
		Language: "JavaScript",
		Content:  jsSource,
		Format:   "json",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var data output.ReportData
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &data))
	require.Len(t, data.Files, 1)
	assert.Equal(t, "memory.javascript", data.Files[0].Path)

	root := data.Files[0].Root
	require.Len(t, root.Spaces, 1)
	fn := root.Spaces[0]
	assert.Equal(t, "f", fn.Name)
	assert.Equal(t, 2, fn.Metrics.Cyclomatic)
	assert.Equal(t, 2, fn.Metrics.NExits)
	assert.Equal(t, 2, fn.Own.NArgs.Total)
	assert.Equal(t, 1, data.Summary.Functions)
}

func TestHandleAnalyzeSourceTOON(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handleAnalyzeSource(context.Background(), nil, SourceInput{
		Language: "py",
		Content:  "def g(x):\n    return x\n",
		Path:     "g.py",
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "g.py")
	assert.Contains(t, text, "cyclomatic")
}

func TestHandleAnalyzeSourceErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		input SourceInput
		want  string
	}{
		{"unknown language", SourceInput{Language: "cobol", Content: "x"}, "unsupported language"},
		{"syntax error", SourceInput{Language: "go", Content: "package a\n\nfunc (\n"}, "parse failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := s.handleAnalyzeSource(context.Background(), nil, tt.input)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestHandleAnalyzePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.js"), []byte(jsSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package a\n\nfunc (\n"), 0o644))

	s := newTestServer(t)
	compact := false

	res, _, err := s.handleAnalyzePaths(context.Background(), nil, PathsInput{
		Paths:  []string{dir},
		Format: "json",
		Spaces: &compact,
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var data output.ReportData
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &data))
	assert.Equal(t, 1, data.Summary.Files)
	assert.Empty(t, data.Files)
	require.Len(t, data.Failures, 1)
	assert.Equal(t, filepath.Join(dir, "broken.go"), data.Failures[0].Path)
}

func TestHandleAnalyzePathsMarkdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.js"), []byte(jsSource), 0o644))

	res, _, err := newTestServer(t).handleAnalyzePaths(context.Background(), nil, PathsInput{
		Paths:  []string{dir},
		Format: "markdown",
	})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.True(t, strings.HasPrefix(text, "# Code Metrics"))
	assert.Contains(t, text, "f.js")
}

func TestHandleAnalyzePathsNoFiles(t *testing.T) {
	res, _, err := newTestServer(t).handleAnalyzePaths(context.Background(), nil, PathsInput{Paths: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no source files found")
}

func TestHandleAnalyzePathsUsesServiceConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.js"), []byte(jsSource), 0o644))

	cfg := config.DefaultConfig()
	cfg.Thresholds.Cyclomatic = 1
	s := NewServer("test", analysis.New(analysis.WithConfig(cfg)))

	res, _, err := s.handleAnalyzePaths(context.Background(), nil, PathsInput{Paths: []string{dir}, Format: "json"})
	require.NoError(t, err)

	var data output.ReportData
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &data))
	require.Len(t, data.Violations, 1)
	assert.Equal(t, "cyclomatic", data.Violations[0].Metric)
}

func TestHandleListLanguages(t *testing.T) {
	res, _, err := newTestServer(t).handleListLanguages(context.Background(), nil, LanguagesInput{Format: "json"})
	require.NoError(t, err)

	var infos []languageInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &infos))
	require.Len(t, infos, 13)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].Tag, infos[i].Tag, "languages must be sorted")
	}
}

func TestLoadPrompts(t *testing.T) {
	defs := loadPrompts()
	require.NotEmpty(t, defs)

	for _, def := range defs {
		t.Run(def.Name, func(t *testing.T) {
			if def.Description == "" {
				t.Error("prompt description is empty")
			}
			if def.Body == "" {
				t.Error("prompt body is empty")
			}
			if strings.HasPrefix(def.Body, "---") {
				t.Error("frontmatter was not stripped")
			}
			for _, arg := range def.Arguments {
				if !strings.Contains(def.Body, "{{"+arg.Name+"}}") {
					t.Errorf("argument %q is never used", arg.Name)
				}
			}
		})
	}
}

func TestPromptHandler(t *testing.T) {
	var def promptDefinition
	for _, d := range loadPrompts() {
		if d.Name == "quality-gate" {
			def = d
		}
	}
	require.Equal(t, "quality-gate", def.Name)

	handler := makePromptHandler(def)

	result, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{
			Name:      def.Name,
			Arguments: map[string]string{"paths": "/custom/path"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, def.Description, result.Description)

	msg := result.Messages[0]
	assert.Equal(t, mcp.Role("user"), msg.Role)
	text := msg.Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "/custom/path")
	assert.Contains(t, text, "above 10", "missing argument should use its default")
	assert.NotContains(t, text, "{{")
}

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantDesc string
		wantBody string
	}{
		{"with frontmatter", "---\ndescription: hi\n---\nbody\n", "hi", "body\n"},
		{"no frontmatter", "just body", "", "just body"},
		{"unterminated", "---\ndescription: hi\nbody", "", "---\ndescription: hi\nbody"},
		{"invalid yaml", "---\n: [\n---\nbody", "", "---\n: [\n---\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := parseFrontmatter([]byte(tt.content))
			assert.Equal(t, tt.wantDesc, fm.Description)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestSubstituteArg(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		args       map[string]string
		defaultVal string
		expected   string
	}{
		{"use provided value", "top {{top}} items", map[string]string{"top": "50"}, "30", "top 50 items"},
		{"use default when missing", "top {{top}} items", map[string]string{}, "30", "top 30 items"},
		{"use default when empty", "top {{top}} items", map[string]string{"top": ""}, "30", "top 30 items"},
		{"nil args", "top {{top}} items", nil, "30", "top 30 items"},
		{"no placeholder unchanged", "no placeholder here", map[string]string{"top": "50"}, "30", "no placeholder here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := substituteArg(tt.text, "top", tt.args, tt.defaultVal); got != tt.expected {
				t.Errorf("substituteArg() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "0.0.0", m.Version)
	require.Len(t, m.Packages, 1)
	assert.Equal(t, "stdio", m.Packages[0].Transport.Type)
	assert.Equal(t, "mcp", m.Packages[0].PackageArguments[0].Value)
	assert.Contains(t, m.Description, "Python")
}
