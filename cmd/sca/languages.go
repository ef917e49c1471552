package main

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Singularity-ng/singularity-analysis/internal/output"
	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
)

func languagesCmd() *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "List supported languages and their file extensions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
		},
		Action: func(c *cli.Context) error {
			langs := analyzer.Languages()
			rows := make([][]string, len(langs))
			for i, l := range langs {
				rows[i] = []string{string(l), l.DisplayName(), strings.Join(l.Extensions(), " ")}
			}
			table := output.NewTable("", []string{"Tag", "Name", "Extensions"}, rows, nil, nil)

			formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.App.Writer, "", appConfig(c).Output.Color)
			if err != nil {
				return err
			}
			return formatter.Output(table)
		},
	}
}
