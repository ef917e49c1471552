package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{" Toon ", FormatTOON},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	f, err := NewFormatter(FormatJSON, nil, path, true)
	require.NoError(t, err)
	assert.False(t, f.colored, "file output must not be colored")

	require.NoError(t, f.Output(NewTable("", []string{"A"}, [][]string{{"1"}}, nil, nil)))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []map[string]string{{"A": "1"}}, got)
}

func TestNewFormatterBadPath(t *testing.T) {
	_, err := NewFormatter(FormatText, nil, filepath.Join(t.TempDir(), "missing", "out.txt"), false)
	assert.Error(t, err)
}

func TestTableRenderText(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Files", []string{"Path", "CC"}, [][]string{{"a.go", "3"}, {"b.py", "1"}}, []string{"Total", "4"}, nil)

	require.NoError(t, table.RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "Files\n=====")
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, "b.py")
	assert.Contains(t, out, "Total")
}

func TestTableRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Spaces", []string{"Space", "CC"}, [][]string{{"unit", "2"}, {"  f|g", "1"}}, nil, nil)

	require.NoError(t, table.RenderMarkdown(&buf))

	want := "## Spaces\n\n" +
		"| Space | CC |\n" +
		"| --- | --- |\n" +
		"| unit | 2 |\n" +
		"| &nbsp;&nbsp;f\\|g | 1 |\n\n"
	assert.Equal(t, want, buf.String())
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("", []string{"A", "B"}, [][]string{{"1", "2"}, {"3"}}, nil, nil)
	got := table.RenderData().([]map[string]string)
	assert.Equal(t, []map[string]string{{"A": "1", "B": "2"}, {"A": "3"}}, got)

	table.Data = "raw"
	assert.Equal(t, "raw", table.RenderData())
}

func TestSectionRender(t *testing.T) {
	s := &Section{
		Title:   "Top",
		Content: "body",
		Sections: []Section{
			{Title: "Sub", Content: "inner"},
		},
	}

	var text bytes.Buffer
	require.NoError(t, s.RenderText(&text, false))
	assert.Equal(t, "Top\n===\nbody\n\nSub\n---\ninner\n", text.String())

	var md bytes.Buffer
	require.NoError(t, s.RenderMarkdown(&md))
	assert.Equal(t, "## Top\n\nbody\n\n### Sub\n\ninner\n\n", md.String())
}

func TestEncodeTOONUsesJSONNames(t *testing.T) {
	out, err := EncodeTOON(struct {
		MaxCyclomatic int `json:"max_cyclomatic"`
	}{7})
	require.NoError(t, err)
	assert.Contains(t, out, "max_cyclomatic")
	assert.Contains(t, out, "7")
	assert.NotContains(t, out, "MaxCyclomatic")
}

func analyzeAll(t *testing.T) []*analyzer.Result {
	t.Helper()
	az := analyzer.New()
	ctx := context.Background()

	branchy := "package a\n\nfunc Branchy(a, b, c int) int {\n" +
		"\tif a > 0 {\n\t\treturn 1\n\t}\n" +
		"\tif b > 0 {\n\t\treturn 2\n\t}\n" +
		"\tif c > 0 {\n\t\treturn 3\n\t}\n" +
		"\tif a > b {\n\t\treturn 4\n\t}\n" +
		"\treturn 0\n}\n"
	goRes, err := az.AnalyzeSource(ctx, parser.LangGo, "a.go", []byte(branchy))
	require.NoError(t, err)
	pyRes, err := az.AnalyzeSource(ctx, parser.LangPython, "b.py", []byte("def b(x):\n    return x\n"))
	require.NoError(t, err)
	return []*analyzer.Result{goRes, pyRes}
}

func TestViolations(t *testing.T) {
	results := analyzeAll(t)
	th := models.Thresholds{MaxCyclomatic: 3}

	vs := Violations(results, th)
	require.Len(t, vs, 1)
	assert.Equal(t, "a.go", vs[0].Path)
	assert.Equal(t, "Branchy", vs[0].Space)
	assert.Equal(t, 3, vs[0].Line)
	assert.Equal(t, "cyclomatic", vs[0].Metric)
	assert.Equal(t, 5.0, vs[0].Value)

	assert.Empty(t, Violations(results, models.Thresholds{}))
}

func TestAnalysisReportFormats(t *testing.T) {
	results := analyzeAll(t)
	th := models.Thresholds{MaxCyclomatic: 3}
	report := NewAnalysisReport(ReportInput{
		Results:    results,
		Summary:    analyzer.Summarize(results, th),
		Failures:   []Failure{{Path: "c.rs", Error: "syntax error at line 1"}},
		Thresholds: th,
		Spaces:     true,
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		f, err := NewFormatter(FormatText, &buf, "", false)
		require.NoError(t, err)
		require.NoError(t, f.Output(report))

		out := buf.String()
		assert.Contains(t, out, "Code Metrics")
		assert.Contains(t, out, "Files:            2 (1 failed)")
		assert.Contains(t, out, "Violations")
		assert.Contains(t, out, "a.go:3")
		assert.Contains(t, out, "Branchy")
		assert.Contains(t, out, "c.rs")
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.RenderMarkdown(&buf))
		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "# Code Metrics\n"))
		assert.Contains(t, out, "## Summary")
		assert.Contains(t, out, "| Location | Space | Metric | Value | Limit | Severity |")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		f, err := NewFormatter(FormatJSON, &buf, "", false)
		require.NoError(t, err)
		require.NoError(t, f.Output(report))

		var data struct {
			Summary struct {
				Files int `json:"files"`
			} `json:"summary"`
			Files []struct {
				Path string `json:"path"`
				Root struct {
					Kind string `json:"kind"`
				} `json:"root"`
			} `json:"files"`
			Violations []FileViolation `json:"violations"`
			Failures   []Failure       `json:"failures"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
		assert.Equal(t, 2, data.Summary.Files)
		require.Len(t, data.Files, 2)
		assert.Equal(t, "unit", data.Files[0].Root.Kind)
		require.Len(t, data.Violations, 1)
		assert.Equal(t, "cyclomatic", data.Violations[0].Metric)
		assert.Equal(t, "c.rs", data.Failures[0].Path)
	})

	t.Run("toon", func(t *testing.T) {
		var buf bytes.Buffer
		f, err := NewFormatter(FormatTOON, &buf, "", false)
		require.NoError(t, err)
		require.NoError(t, f.Output(report))
		assert.Contains(t, buf.String(), "summary")
		assert.Contains(t, buf.String(), "mean_cyclomatic")
	})
}

func TestViolationTableColoring(t *testing.T) {
	vt := newViolationTable([]FileViolation{{
		Path: "a.go", Space: "f", Line: 1,
		Violation: models.Violation{Metric: "cyclomatic", Value: 30, Threshold: 10, Severity: models.SeverityCritical},
	}})

	var plain bytes.Buffer
	require.NoError(t, vt.RenderText(&plain, false))
	assert.Contains(t, plain.String(), "critical")

	// Coloring must not mutate the stored rows.
	var painted bytes.Buffer
	require.NoError(t, vt.RenderText(&painted, true))
	assert.Equal(t, "critical", vt.Rows[0][5])
}
