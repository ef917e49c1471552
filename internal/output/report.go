package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
)

// Failure is a file that could not be analyzed.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// FileViolation is a threshold violation located in a file.
type FileViolation struct {
	Path  string `json:"path"`
	Space string `json:"space"`
	Line  int    `json:"line"`
	models.Violation
}

// ReportInput is everything a batch report shows.
type ReportInput struct {
	Results    []*analyzer.Result
	Summary    analyzer.Summary
	Failures   []Failure
	Thresholds models.Thresholds
	// Spaces adds a per-file table of every space.
	Spaces bool
}

// ReportData is the serialized form of a batch report.
type ReportData struct {
	Summary    analyzer.Summary   `json:"summary"`
	Files      []*analyzer.Result `json:"files"`
	Violations []FileViolation    `json:"violations,omitempty"`
	Failures   []Failure          `json:"failures,omitempty"`
}

// Violations collects the threshold violations of every space, ordered by
// path and line.
func Violations(results []*analyzer.Result, thresholds models.Thresholds) []FileViolation {
	var out []FileViolation
	for _, res := range results {
		if res == nil || res.Root == nil {
			continue
		}
		res.Root.Visit(func(sp *models.Space, _ int) bool {
			for _, v := range thresholds.Check(sp) {
				out = append(out, FileViolation{
					Path:      res.Path,
					Space:     sp.DisplayName(),
					Line:      sp.StartLine,
					Violation: v,
				})
			}
			return true
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// NewAnalysisReport builds the batch report.
func NewAnalysisReport(in ReportInput) *Report {
	violations := Violations(in.Results, in.Thresholds)

	r := &Report{
		Title: "Code Metrics",
		Data: ReportData{
			Summary:    in.Summary,
			Files:      in.Results,
			Violations: violations,
			Failures:   in.Failures,
		},
	}
	r.Sections = append(r.Sections, summarySection(in.Summary, len(in.Failures)))
	r.Sections = append(r.Sections, filesTable(in.Results))
	if in.Spaces {
		for _, res := range in.Results {
			r.Sections = append(r.Sections, spacesTable(res))
		}
	}
	if len(violations) > 0 {
		r.Sections = append(r.Sections, newViolationTable(violations))
	}
	if len(in.Failures) > 0 {
		rows := make([][]string, len(in.Failures))
		for i, f := range in.Failures {
			rows[i] = []string{f.Path, f.Error}
		}
		r.Sections = append(r.Sections, NewTable("Failures", []string{"Path", "Error"}, rows, nil, in.Failures))
	}
	return r
}

func summarySection(s analyzer.Summary, failed int) *Section {
	var b strings.Builder
	fmt.Fprintf(&b, "Files:            %d", s.Files)
	if failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", failed)
	}
	fmt.Fprintf(&b, "\nLines:            %d\n", s.Lines)
	fmt.Fprintf(&b, "Functions:        %d (closures %d, classes %d)\n", s.Functions, s.Closures, s.Classes)
	fmt.Fprintf(&b, "Cyclomatic:       mean %.2f (sd %.2f), p50 %.0f, p90 %.0f, max %d\n",
		s.MeanCyclomatic, s.StdDevCyclomatic, s.P50Cyclomatic, s.P90Cyclomatic, s.MaxCyclomatic)
	fmt.Fprintf(&b, "Maintainability:  mean %.1f, min %.1f\n", s.MeanMaintainability, s.MinMaintainability)
	fmt.Fprintf(&b, "Halstead volume:  %.0f\n", s.TotalVolume)
	fmt.Fprintf(&b, "Violations:       %d", s.Violations)
	return &Section{Title: "Summary", Content: b.String(), Data: s}
}

func filesTable(results []*analyzer.Result) *Table {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		if res == nil || res.Root == nil {
			continue
		}
		m := res.Root.Metrics
		rows = append(rows, []string{
			res.Path,
			res.Language.DisplayName(),
			strconv.Itoa(m.LOC.Source),
			strconv.Itoa(m.NOM.Total),
			strconv.Itoa(m.Cyclomatic),
			fmt.Sprintf("%.1f", m.MaintainabilityIndex),
			fmt.Sprintf("%.0f", m.Halstead.Volume),
		})
	}
	return NewTable("Files",
		[]string{"Path", "Language", "SLOC", "Methods", "CC", "MI", "Volume"},
		rows, nil, results)
}

func spacesTable(res *analyzer.Result) *Table {
	var rows [][]string
	if res != nil && res.Root != nil {
		res.Root.Visit(func(sp *models.Space, depth int) bool {
			m := sp.Metrics
			rows = append(rows, []string{
				strings.Repeat("  ", depth) + sp.DisplayName(),
				string(sp.Kind),
				fmt.Sprintf("%d-%d", sp.StartLine, sp.EndLine),
				strconv.Itoa(m.Cyclomatic),
				strconv.Itoa(sp.Own.NArgs.Total),
				strconv.Itoa(m.NExits),
				strconv.Itoa(m.MaxNesting),
				strconv.Itoa(m.LOC.Source),
				fmt.Sprintf("%.1f", m.MaintainabilityIndex),
			})
			return true
		})
	}
	title := "Spaces"
	var data any
	if res != nil {
		title = res.Path
		data = res.Root
	}
	return NewTable(title,
		[]string{"Space", "Kind", "Lines", "CC", "Args", "Exits", "Nesting", "SLOC", "MI"},
		rows, nil, data)
}

// violationTable colors the severity column when rendering to a terminal.
type violationTable struct {
	*Table
	severities []string
}

func newViolationTable(vs []FileViolation) *violationTable {
	rows := make([][]string, len(vs))
	sev := make([]string, len(vs))
	for i, v := range vs {
		sev[i] = string(v.Severity)
		rows[i] = []string{
			fmt.Sprintf("%s:%d", v.Path, v.Line),
			v.Space,
			v.Metric,
			fmt.Sprintf("%.4g", v.Value),
			fmt.Sprintf("%.4g", v.Threshold),
			sev[i],
		}
	}
	return &violationTable{
		Table:      NewTable("Violations", []string{"Location", "Space", "Metric", "Value", "Limit", "Severity"}, rows, nil, vs),
		severities: sev,
	}
}

func (t *violationTable) RenderText(w io.Writer, colored bool) error {
	if !colored {
		return t.Table.RenderText(w, false)
	}
	painted := *t.Table
	painted.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := append([]string(nil), row...)
		r[len(r)-1] = SeverityColor(t.severities[i], r[len(r)-1])
		painted.Rows[i] = r
	}
	return painted.RenderText(w, true)
}
