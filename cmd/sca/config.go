package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a configuration file with the default settings",
				Description: `Creates sca.toml in the current directory with the default settings.

Examples:
  sca config init                    # Creates sca.toml
  sca config init -o .sca/sca.toml   # Creates config in .sca directory
  sca config init --force            # Overwrite an existing file`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Value:   "sca.toml",
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite existing config file",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Show the effective configuration as TOML",
				Action: runConfigShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration file",
				Action: runConfigValidate,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	path := c.String("output")
	if err := config.WriteDefault(path, c.Bool("force")); err != nil {
		return fmt.Errorf("failed to write config: %w (use --force to overwrite)", err)
	}
	color.Green("Created %s", path)
	fmt.Fprintln(c.App.Writer, "Edit this file to customize analysis settings.")
	return nil
}

func runConfigShow(c *cli.Context) error {
	content, err := appConfig(c).EncodeTOML()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = c.App.Writer.Write(content)
	return err
}

// runConfigValidate relies on the app's Before hook, which already loaded
// and validated the file. It also checks the built-in classifier tables.
func runConfigValidate(c *cli.Context) error {
	if err := analyzer.CheckClassifiers(); err != nil {
		return fmt.Errorf("language classifiers: %w", err)
	}
	if path := c.String("config"); path != "" {
		color.Green("Configuration valid: %s", path)
		return nil
	}
	color.Green("Configuration valid")
	return nil
}
