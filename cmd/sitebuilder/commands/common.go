// Package commands implements the sitebuilder command line.
package commands

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// LogLevelEnv overrides logging.level from the configuration.
const LogLevelEnv = "SITEBUILDER_LOG_LEVEL"

// Global is bound into every command's Run.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Build the site once"`
	Watch  WatchCmd  `cmd:"" help:"Build, then rebuild whenever the source tree changes"`
	Daemon DaemonCmd `cmd:"" help:"Rebuild on a schedule and serve metrics and build history"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; the logger is replaced once the
// configuration's logging section is known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = setupLogging(c.Verbose, config.LoggingConfig{})
	return nil
}

// parseLogLevel resolves the level: -v wins, then SITEBUILDER_LOG_LEVEL,
// then the configured level.
func parseLogLevel(verbose bool, configured string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	raw := os.Getenv(LogLevelEnv)
	if raw == "" {
		raw = configured
	}
	level, err := config.ParseLogLevel(raw)
	if err != nil {
		return slog.LevelInfo
	}
	return level.SlogLevel()
}

func setupLogging(verbose bool, lc config.LoggingConfig) *slog.Logger {
	format, _ := config.ParseLogFormat(lc.Format)
	logger := observability.NewLogger(os.Stderr, parseLogLevel(verbose, lc.Level), format == config.LogFormatJSON)
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads the configuration file. When the default file does not
// exist the built-in defaults build the current directory.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(root.Config); errors.Is(err, fs.ErrNotExist) && root.Config == config.DefaultPath {
		slog.Debug("No configuration file, using defaults", logfields.Path(root.Config))
		cfg = config.Default()
	} else {
		loaded, err := config.Load(root.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	g.Logger = setupLogging(root.Verbose, cfg.Logging)
	return cfg, nil
}
