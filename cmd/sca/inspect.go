package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Singularity-ng/singularity-analysis/internal/output"
	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func inspectCmd() *cli.Command {
	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, json, markdown, toon",
	}
	langFlag := &cli.StringFlag{
		Name:    "language",
		Aliases: []string{"l"},
		Usage:   "Language of the file (default: detected from its extension)",
	}
	kindFlag := &cli.StringSliceFlag{
		Name:     "kind",
		Aliases:  []string{"k"},
		Usage:    "Grammar node kind to select (repeatable)",
		Required: true,
	}

	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect the syntax of a single source file",
		Subcommands: []*cli.Command{
			{
				Name:      "ops",
				Usage:     "List the distinct operators and operands of every space",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{formatFlag, langFlag},
				Action:    runInspectOps,
			},
			{
				Name:      "functions",
				Usage:     "List functions and closures with their line spans",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{formatFlag, langFlag},
				Action:    runInspectFunctions,
			},
			{
				Name:      "find",
				Usage:     "List the syntax nodes of the given kinds",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{formatFlag, langFlag, kindFlag},
				Action:    runInspectFind,
			},
			{
				Name:      "count",
				Usage:     "Count the syntax nodes of the given kinds",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{formatFlag, langFlag, kindFlag},
				Action:    runInspectCount,
			},
			{
				Name:      "strip-comments",
				Usage:     "Print the file with comments removed",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					langFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the stripped source to this file",
					},
				},
				Action: runInspectStrip,
			},
		},
	}
}

// inspectInput resolves the single file argument and its language.
func inspectInput(c *cli.Context) (string, parser.Language, []byte, error) {
	if c.Args().Len() != 1 {
		return "", "", nil, fmt.Errorf("%s expects exactly one file", c.Command.Name)
	}
	path := c.Args().First()

	language := parser.DetectLanguage(path)
	if name := c.String("language"); name != "" {
		l, ok := parser.ParseLanguage(name)
		if !ok {
			return "", "", nil, &analyzer.UnsupportedLanguageError{Tag: name}
		}
		language = l
	}
	if language == parser.LangUnknown {
		return "", "", nil, &analyzer.UnsupportedLanguageError{Tag: path}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", "", nil, err
	}
	return path, language, content, nil
}

func inspectAnalyzer(c *cli.Context) *analyzer.Analyzer {
	cfg := appConfig(c)
	return analyzer.New(
		analyzer.WithMaxFileSize(cfg.Analysis.MaxFileSize),
		analyzer.WithTolerateSyntaxErrors(cfg.Analysis.TolerateSyntaxErrors),
		analyzer.WithLogger(appLogger(c)),
	)
}

func inspectOutput(c *cli.Context, r output.Renderable) error {
	cfg := appConfig(c)
	format := cfg.Output.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	formatter, err := output.NewFormatter(output.ParseFormat(format), c.App.Writer, "", cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(r)
}

func runInspectOps(c *cli.Context) error {
	path, language, content, err := inspectInput(c)
	if err != nil {
		return err
	}
	ops, err := inspectAnalyzer(c).Ops(c.Context, language, path, content)
	if err != nil {
		return err
	}

	var rows [][]string
	var walk func(o *analyzer.Ops, depth int)
	walk = func(o *analyzer.Ops, depth int) {
		name := o.Name
		if name == "" {
			name = "<anonymous>"
		}
		rows = append(rows, []string{
			strings.Repeat("  ", depth) + name,
			string(o.Kind),
			fmt.Sprintf("%d-%d", o.StartLine, o.EndLine),
			strings.Join(o.Operators, " "),
			strings.Join(o.Operands, " "),
		})
		for _, sub := range o.Spaces {
			walk(sub, depth+1)
		}
	}
	walk(ops, 0)

	return inspectOutput(c, output.NewTable(path,
		[]string{"Space", "Kind", "Lines", "Operators", "Operands"}, rows, nil, ops))
}

func runInspectFunctions(c *cli.Context) error {
	path, language, content, err := inspectInput(c)
	if err != nil {
		return err
	}
	res, err := inspectAnalyzer(c).AnalyzeSource(c.Context, language, path, content)
	if err != nil {
		return err
	}

	fns := analyzer.Functions(res.Root)
	rows := make([][]string, len(fns))
	for i, fn := range fns {
		rows[i] = []string{
			strings.Repeat("  ", fn.Depth-1) + fn.Name,
			string(fn.Kind),
			fmt.Sprintf("%d-%d", fn.StartLine, fn.EndLine),
		}
	}
	return inspectOutput(c, output.NewTable(path,
		[]string{"Function", "Kind", "Lines"}, rows, nil, fns))
}

func runInspectFind(c *cli.Context) error {
	path, language, content, err := inspectInput(c)
	if err != nil {
		return err
	}
	matches, err := inspectAnalyzer(c).Find(c.Context, language, path, content, c.StringSlice("kind"))
	if err != nil {
		return err
	}

	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{
			m.Kind,
			fmt.Sprintf("%d-%d", m.StartLine, m.EndLine),
			fmt.Sprintf("%d-%d", m.Start, m.End),
		}
	}
	return inspectOutput(c, output.NewTable(path,
		[]string{"Kind", "Lines", "Bytes"}, rows, nil, matches))
}

func runInspectCount(c *cli.Context) error {
	path, language, content, err := inspectInput(c)
	if err != nil {
		return err
	}
	count, err := inspectAnalyzer(c).Count(c.Context, language, path, content, c.StringSlice("kind"))
	if err != nil {
		return err
	}

	kinds := make([]string, 0, len(count.Kinds))
	for k := range count.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	rows := make([][]string, len(kinds))
	for i, k := range kinds {
		rows[i] = []string{k, strconv.Itoa(count.Kinds[k])}
	}
	footer := []string{
		fmt.Sprintf("%d of %d nodes", count.Matched, count.Total),
		fmt.Sprintf("depth %d", count.Depth),
	}
	return inspectOutput(c, output.NewTable(path,
		[]string{"Kind", "Count"}, rows, footer, count))
}

func runInspectStrip(c *cli.Context) error {
	path, language, content, err := inspectInput(c)
	if err != nil {
		return err
	}
	stripped, err := inspectAnalyzer(c).StripComments(c.Context, language, path, content)
	if err != nil {
		return err
	}

	if out := c.String("output"); out != "" {
		if err := os.WriteFile(out, stripped, 0o644); err != nil {
			return err
		}
		color.Green("Wrote %s", out)
		return nil
	}
	_, err = c.App.Writer.Write(stripped)
	return err
}
