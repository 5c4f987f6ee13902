package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables consulted while loading.
const (
	EnvConfigPath = "MRSUMMARY_CONFIG"
	EnvLogLevel   = "LOG_LEVEL"
)

// Config holds all configuration for mrsummary.
type Config struct {
	Git     GitConfig     `koanf:"git" toml:"git"`
	Refs    RefsConfig    `koanf:"refs" toml:"refs"`
	Summary SummaryConfig `koanf:"summary" toml:"summary"`
	Output  OutputConfig  `koanf:"output" toml:"output"`
	Log     LogConfig     `koanf:"log" toml:"log"`
}

// GitConfig controls how git is invoked.
type GitConfig struct {
	Binary                 string `koanf:"binary" toml:"binary"`
	TimeoutSeconds         int    `koanf:"timeout_seconds" toml:"timeout_seconds"`
	ValidateTimeoutSeconds int    `koanf:"validate_timeout_seconds" toml:"validate_timeout_seconds"`
	EmptyExitCodes         []int  `koanf:"empty_exit_codes" toml:"empty_exit_codes"`
	ValidateRefs           bool   `koanf:"validate_refs" toml:"validate_refs"`
}

// Timeout returns the git log deadline.
func (g GitConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// ValidateTimeout returns the deadline for each ref check.
func (g GitConfig) ValidateTimeout() time.Duration {
	return time.Duration(g.ValidateTimeoutSeconds) * time.Second
}

// RefsConfig holds default refs. An empty Base means auto-detect.
type RefsConfig struct {
	Base   string `koanf:"base" toml:"base"`
	Target string `koanf:"target" toml:"target"`
}

// SummaryConfig holds report thresholds and limits.
type SummaryConfig struct {
	KeyChangeLines         int      `koanf:"key_change_lines" toml:"key_change_lines"`
	SignificantChangeLines int      `koanf:"significant_change_lines" toml:"significant_change_lines"`
	MaxKeyChanges          int      `koanf:"max_key_changes" toml:"max_key_changes"`
	MaxFilesPerCategory    int      `koanf:"max_files_per_category" toml:"max_files_per_category"`
	OtherFilenames         []string `koanf:"other_filenames" toml:"other_filenames"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // markdown, json, text, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level" toml:"level"` // debug, info, warn, error
	File  string `koanf:"file" toml:"file"`
	JSON  bool   `koanf:"json" toml:"json"`
}

var (
	validFormats   = []string{"markdown", "json", "text", "toon"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Git: GitConfig{
			Binary:                 "git",
			TimeoutSeconds:         30,
			ValidateTimeoutSeconds: 10,
			EmptyExitCodes:         []int{128},
			ValidateRefs:           true,
		},
		Refs: RefsConfig{
			Base:   "",
			Target: "HEAD",
		},
		Summary: SummaryConfig{
			KeyChangeLines:         100,
			SignificantChangeLines: 50,
			MaxKeyChanges:          5,
			MaxFilesPerCategory:    10,
			OtherFilenames:         []string{"utils.py"},
		},
		Output: OutputConfig{
			Format: "markdown",
			Color:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigNames are the file names searched for, in order.
var ConfigNames = []string{
	"mrsummary.toml",
	"mrsummary.yaml",
	"mrsummary.yml",
	"mrsummary.json",
	".mrsummary.toml",
	".mrsummary.yaml",
	".mrsummary.yml",
	".mrsummary.json",
}

// SearchDirs are the directories searched for config files, in order.
var SearchDirs = []string{".", ".mrsummary"}

// Load reads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}

	return cfg, nil
}

// LoadResult is a loaded configuration and the file it came from.
type LoadResult struct {
	Config *Config
	// Source is the config file path, or "" when defaults were used.
	Source string
}

type loadOptions struct {
	path    string
	dirs    []string
	dotenv  string
	environ func(string) string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads the given file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// WithSearchDirs overrides the directories searched for config files.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) { o.dirs = dirs }
}

// WithDotEnv sets the .env file loaded before reading the environment.
// An empty path disables .env loading.
func WithDotEnv(path string) LoadOption {
	return func(o *loadOptions) { o.dotenv = path }
}

// LoadConfig loads .env, resolves the config file (explicit path, then
// MRSUMMARY_CONFIG, then the search dirs), applies LOG_LEVEL, and validates.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dirs: SearchDirs, dotenv: ".env", environ: os.Getenv}
	for _, opt := range opts {
		opt(&o)
	}

	if o.dotenv != "" {
		if err := godotenv.Load(o.dotenv); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", o.dotenv)
		}
	}

	path := o.path
	if path == "" {
		path = o.environ(EnvConfigPath)
	}
	if path == "" {
		path = find(o.dirs)
	}

	cfg := DefaultConfig()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if level := o.environ(EnvLogLevel); level != "" {
		cfg.Log.Level = normalizeLevel(level)
	}

	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, errors.Wrapf(err, "invalid config %s", path)
		}
		return nil, err
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

func find(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// normalizeLevel maps LOG_LEVEL spellings such as "WARNING" or "TRACE" onto
// the config levels.
func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return "debug"
	case "warn", "warning":
		return "warn"
	case "error", "fatal", "critical", "dpanic", "panic":
		return "error"
	default:
		return "info"
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Git.TimeoutSeconds <= 0:
		return errors.Newf("git.timeout_seconds must be positive, got %d", c.Git.TimeoutSeconds)
	case c.Git.ValidateTimeoutSeconds <= 0:
		return errors.Newf("git.validate_timeout_seconds must be positive, got %d", c.Git.ValidateTimeoutSeconds)
	case c.Summary.KeyChangeLines < 0:
		return errors.Newf("summary.key_change_lines must not be negative, got %d", c.Summary.KeyChangeLines)
	case c.Summary.SignificantChangeLines < 0:
		return errors.Newf("summary.significant_change_lines must not be negative, got %d", c.Summary.SignificantChangeLines)
	case c.Summary.MaxKeyChanges < 0:
		return errors.Newf("summary.max_key_changes must not be negative, got %d", c.Summary.MaxKeyChanges)
	case c.Summary.MaxFilesPerCategory < 0:
		return errors.Newf("summary.max_files_per_category must not be negative, got %d", c.Summary.MaxFilesPerCategory)
	case !oneOf(c.Output.Format, validFormats):
		return errors.WithHintf(errors.Newf("unknown output.format %q", c.Output.Format),
			"use one of: %s", strings.Join(validFormats, ", "))
	case !oneOf(c.Log.Level, validLogLevels):
		return errors.WithHintf(errors.Newf("unknown log.level %q", c.Log.Level),
			"use one of: %s", strings.Join(validLogLevels, ", "))
	}
	return nil
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if strings.EqualFold(v, o) {
			return true
		}
	}
	return false
}
