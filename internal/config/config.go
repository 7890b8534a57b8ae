package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up when no --config flag is given.
const DefaultConfigFile = "prerender.yaml"

// Config represents the application configuration.
type Config struct {
	Pages    PagesConfig    `yaml:"pages"`
	Output   OutputConfig   `yaml:"output"`
	Assets   AssetsConfig   `yaml:"assets"`
	Build    BuildConfig    `yaml:"build"`
	Document DocumentConfig `yaml:"document"`
	SVG      SVGConfig      `yaml:"svg"`
	Minify   MinifyConfig   `yaml:"minify"`
	Serve    ServeConfig    `yaml:"serve"`
	Log      LoggingConfig  `yaml:"log"`

	// path of the file the configuration was read from; empty when defaults were used.
	source string
}

// PagesConfig describes the page-source tree.
type PagesConfig struct {
	Dir        string            `yaml:"dir"`
	Index      string            `yaml:"index"`
	Extensions map[string]string `yaml:"extensions"` // source extension -> page module kind
	SSRCommand []string          `yaml:"ssr_command,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     *bool  `yaml:"clean,omitempty"`
}

// ShouldClean reports whether the output directory is emptied before a build. Unset means clean.
func (o OutputConfig) ShouldClean() bool {
	return o.Clean == nil || *o.Clean
}

// AssetsConfig points at static files copied into the output root before rendering.
type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

// BuildConfig lists external commands run before rendering (CSS framework, client bundle).
type BuildConfig struct {
	Commands [][]string `yaml:"commands,omitempty"`
	Inline   bool       `yaml:"inline"`
}

// DocumentConfig controls the HTML shell every page is wrapped in.
type DocumentConfig struct {
	Lang        string   `yaml:"lang"`
	Title       string   `yaml:"title,omitempty"`
	Icon        string   `yaml:"icon,omitempty"`
	Stylesheets []string `yaml:"stylesheets"`
}

// SVGConfig holds the single precision setting used for inline SVG optimization.
type SVGConfig struct {
	Precision *int `yaml:"precision,omitempty"`
}

// Digits is the configured precision in significant digits; 0 keeps numbers as written.
func (s SVGConfig) Digits() int {
	if s.Precision == nil {
		return DefaultSVGPrecision
	}
	return *s.Precision
}

// MinifyConfig controls the whole-tree script minification pass.
type MinifyConfig struct {
	Enabled     *bool    `yaml:"enabled,omitempty"`
	Extensions  []string `yaml:"extensions"`
	Concurrency int      `yaml:"concurrency"`
	Target      string   `yaml:"target"`
}

// IsEnabled reports whether the minify stage runs. Unset means enabled.
func (m MinifyConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// ServeConfig configures the live server.
type ServeConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// Source returns the file the configuration was loaded from, or "" for built-in defaults.
func (c *Config) Source() string { return c.source }

// Load loads configuration from the specified file. A missing file is not an error:
// the built-in defaults describe the conventional layout (src/routes -> dist).
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("Configuration file not found, using defaults", "path", configPath)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", configPath, err)
		}
		cfg.source = configPath
	}

	ApplyDefaults(cfg)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectDir is the directory relative paths in the configuration resolve against.
func (c *Config) ProjectDir() string {
	if c.source == "" {
		return "."
	}
	return filepath.Dir(c.source)
}

// Resolve makes p absolute relative to the project directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectDir(), p)
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := &Config{}
	ApplyDefaults(example)
	example.Build.Commands = [][]string{
		{"bun", "run", "build:tailwind"},
		{"bun", "run", "build:client"},
	}
	example.Document.Title = "My Site"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
