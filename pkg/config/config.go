// Package config loads sca settings from TOML, YAML or JSON files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"

	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// Config holds all configuration options for sca.
type Config struct {
	Analysis   AnalysisConfig  `koanf:"analysis" toml:"analysis"`
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`
	Exclude    ExcludeConfig   `koanf:"exclude" toml:"exclude"`
	Cache      CacheConfig     `koanf:"cache" toml:"cache"`
	Store      StoreConfig     `koanf:"store" toml:"store"`
	Output     OutputConfig    `koanf:"output" toml:"output"`
	Log        LogConfig       `koanf:"log" toml:"log"`
}

// AnalysisConfig controls how individual files are analyzed.
type AnalysisConfig struct {
	MaxFileSize          int64    `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 = no limit
	TolerateSyntaxErrors bool     `koanf:"tolerate_syntax_errors" toml:"tolerate_syntax_errors"`
	Workers              int      `koanf:"workers" toml:"workers"` // 0 = 2x NumCPU
	Languages            []string `koanf:"languages" toml:"languages"` // empty = all
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	Cyclomatic         int     `koanf:"cyclomatic" toml:"cyclomatic"`
	Nesting            int     `koanf:"nesting" toml:"nesting"`
	Args               int     `koanf:"args" toml:"args"`
	MaintainabilityMin float64 `koanf:"maintainability_min" toml:"maintainability_min"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// StoreConfig controls the run history database.
type StoreConfig struct {
	Path string `koanf:"path" toml:"path"` // empty disables persistence
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `koanf:"level" toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	th := models.DefaultThresholds()
	return &Config{
		Analysis: AnalysisConfig{
			MaxFileSize: 10 << 20,
		},
		Thresholds: ThresholdConfig{
			Cyclomatic:         th.MaxCyclomatic,
			Nesting:            th.MaxNesting,
			Args:               th.MaxArgs,
			MaintainabilityMin: th.MinMaintainability,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.bundle.js",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".sca",
				"dist",
				"build",
				"target",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".sca/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var p koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p = yaml.Parser()
	case ".json":
		p = json.Parser()
	default:
		p = toml.Parser()
	}

	if err := k.Load(file.Provider(path), p); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigNames lists the file names searched by LoadOrDefault, in order.
var ConfigNames = []string{
	"sca.toml",
	"sca.yaml",
	"sca.yml",
	"sca.json",
	".sca.toml",
	".sca.yaml",
	".sca.yml",
	".sca.json",
}

// LoadOrDefault loads the first config file found in dir or dir/.sca, or
// returns the defaults. A file that exists but fails to load is an error.
func LoadOrDefault(dir string) (*Config, error) {
	for _, d := range []string{dir, filepath.Join(dir, ".sca")} {
		for _, name := range ConfigNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}
	}
	return DefaultConfig(), nil
}

// Validate rejects settings that cannot be honored.
func (c *Config) Validate() error {
	if c.Analysis.MaxFileSize < 0 {
		return fmt.Errorf("analysis.max_file_size must not be negative")
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative")
	}
	for _, name := range c.Analysis.Languages {
		if _, ok := parser.ParseLanguage(name); !ok {
			return fmt.Errorf("analysis.languages: unknown language %q", name)
		}
	}
	switch c.Output.Format {
	case "text", "json", "markdown", "toon":
	default:
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// ModelThresholds converts the configured thresholds.
func (c *Config) ModelThresholds() models.Thresholds {
	return models.Thresholds{
		MaxCyclomatic:      c.Thresholds.Cyclomatic,
		MaxNesting:         c.Thresholds.Nesting,
		MaxArgs:            c.Thresholds.Args,
		MinMaintainability: c.Thresholds.MaintainabilityMin,
	}
}

// LanguageFilter returns the configured languages, or nil for all.
func (c *Config) LanguageFilter() []parser.Language {
	if len(c.Analysis.Languages) == 0 {
		return nil
	}
	out := make([]parser.Language, 0, len(c.Analysis.Languages))
	for _, name := range c.Analysis.Languages {
		if lang, ok := parser.ParseLanguage(name); ok {
			out = append(out, lang)
		}
	}
	return out
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Hour
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// EncodeTOML renders c as a TOML document.
func (c *Config) EncodeTOML() ([]byte, error) {
	return gotoml.Marshal(c)
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := DefaultConfig().EncodeTOML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
