package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Singularity-ng/singularity-analysis/internal/output"
	"github.com/Singularity-ng/singularity-analysis/internal/store"
)

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List runs recorded with analyze --store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "store",
				Usage: "SQLite database to read (defaults to store.path from the config)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Value: 10,
				Usage: "Number of runs to show",
			},
			&cli.BoolFlag{
				Name:  "files",
				Usage: "Show the files of the latest run instead",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Show the recorded space tree of one file from the latest run",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
		},
		Action: runHistoryCmd,
	}
}

func runHistoryCmd(c *cli.Context) error {
	path := c.String("store")
	if path == "" {
		path = appConfig(c).Store.Path
	}
	if path == "" {
		return errors.New("no store configured (set store.path or pass --store)")
	}

	st, err := store.NewStore(path)
	if err != nil {
		return err
	}
	defer st.Close()

	var table *output.Table
	switch {
	case c.String("file") != "":
		table, err = latestSpacesTable(c, st, c.String("file"))
	case c.Bool("files"):
		table, err = latestFilesTable(c, st)
	default:
		table, err = runsTable(c, st)
	}
	if err != nil {
		return err
	}
	if table == nil {
		color.Yellow("No runs recorded")
		return nil
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.App.Writer, "", appConfig(c).Output.Color)
	if err != nil {
		return err
	}
	return formatter.Output(table)
}

func runsTable(c *cli.Context, st *store.Store) (*output.Table, error) {
	runs, err := st.Runs(c.Context, c.Int("limit"))
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format(time.DateTime),
			r.Root,
			strconv.Itoa(r.Files),
			strconv.Itoa(r.Failed),
			fmt.Sprintf("%.2f", r.Summary.MeanCyclomatic),
			fmt.Sprintf("%.1f", r.Summary.MeanMaintainability),
			strconv.Itoa(r.Summary.Violations),
		}
	}
	return output.NewTable("Runs",
		[]string{"ID", "Started", "Root", "Files", "Failed", "Mean CC", "Mean MI", "Violations"},
		rows, nil, runs), nil
}

func latestFilesTable(c *cli.Context, st *store.Store) (*output.Table, error) {
	run, err := st.LatestRun(c.Context)
	if err != nil || run == nil {
		return nil, err
	}
	files, err := st.Files(c.Context, run.ID)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{
			f.Path,
			f.Language.DisplayName(),
			strconv.Itoa(f.SLOC),
			strconv.Itoa(f.Cyclomatic),
			fmt.Sprintf("%.1f", f.Maintainability),
		}
	}
	return output.NewTable(fmt.Sprintf("Run %d", run.ID),
		[]string{"Path", "Language", "SLOC", "CC", "MI"},
		rows, nil, files), nil
}

func latestSpacesTable(c *cli.Context, st *store.Store, path string) (*output.Table, error) {
	run, err := st.LatestRun(c.Context)
	if err != nil || run == nil {
		return nil, err
	}
	spaces, err := st.FileSpaces(c.Context, run.ID, path)
	if err != nil {
		return nil, err
	}
	if len(spaces) == 0 {
		return nil, fmt.Errorf("%s is not part of run %d", path, run.ID)
	}
	rows := make([][]string, len(spaces))
	for i, sp := range spaces {
		name := sp.Name
		if name == "" {
			name = "<anonymous>"
		}
		rows[i] = []string{
			strings.Repeat("  ", sp.Depth) + name,
			string(sp.Kind),
			fmt.Sprintf("%d-%d", sp.StartLine, sp.EndLine),
			strconv.Itoa(sp.Cyclomatic),
			strconv.Itoa(sp.LOC.Source),
			fmt.Sprintf("%.1f", sp.Maintainability),
		}
	}
	return output.NewTable(fmt.Sprintf("%s (run %d)", path, run.ID),
		[]string{"Space", "Kind", "Lines", "CC", "SLOC", "MI"},
		rows, nil, spaces), nil
}
