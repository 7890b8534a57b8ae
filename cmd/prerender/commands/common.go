package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/prerender/internal/config"
)

// Environment variables that override the log section of the configuration.
const (
	envLogLevel  = "PRERENDER_LOG_LEVEL"
	envLogFormat = "PRERENDER_LOG_FORMAT"
)

// Global is shared state handed to every command's Run method.
type Global struct {
	Context context.Context
	Out     io.Writer // user-facing output (summaries, route listings)
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"prerender.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Pre-render every route into static HTML"`
	Serve  ServeCmd  `cmd:"" help:"Serve pages live with the same renderer the build uses"`
	Routes RoutesCmd `cmd:"" help:"List discovered routes and their output files"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	setupLogging(c.logLevel(""), config.NormalizeLogFormat(os.Getenv(envLogFormat)))
	return nil
}

// logLevel resolves the effective level: -v, then PRERENDER_LOG_LEVEL, then the configured one.
func (c *CLI) logLevel(configured string) config.LogLevel {
	if c.Verbose {
		return config.LogLevelDebug
	}
	if env := os.Getenv(envLogLevel); env != "" {
		return config.NormalizeLogLevel(env)
	}
	return config.NormalizeLogLevel(configured)
}

// loadConfig reads the configuration file and applies its log section.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	format := cfg.Log.Format
	if env := os.Getenv(envLogFormat); env != "" {
		format = env
	}
	setupLogging(c.logLevel(cfg.Log.Level), config.NormalizeLogFormat(format))
	slog.Debug("Configuration loaded", "path", cfg.Source())
	return cfg, nil
}

func setupLogging(level config.LogLevel, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level.Slog()}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
