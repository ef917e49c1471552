package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Singularity-ng/singularity-analysis/internal/cache"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the result cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the number and size of cached results",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached result",
				Action: runCacheClear,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, error) {
	cfg := appConfig(c)
	ch, err := cache.New(cfg.Cache.Dir, cfg.CacheTTL(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return ch, nil
}

func runCacheStats(c *cli.Context) error {
	ch, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := ch.GetStats()
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Directory:  %s\n", appConfig(c).Cache.Dir)
	fmt.Fprintf(w, "Entries:    %d\n", stats.Entries)
	fmt.Fprintf(w, "Size:       %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Fprintf(w, "Oldest:     %s ago\n", stats.OldestAge.Round(time.Second))
		fmt.Fprintf(w, "Newest:     %s ago\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClear(c *cli.Context) error {
	ch, err := openCache(c)
	if err != nil {
		return err
	}
	if err := ch.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	color.Green("Cache cleared: %s", appConfig(c).Cache.Dir)
	return nil
}
