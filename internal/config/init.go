package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const exampleHeader = `# sitebuilder configuration.
# Values may reference environment variables as ${VAR}; .env files next to
# this file are loaded first.
`

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := &Config{
		Site: map[string]any{
			"title":       "My Web Site",
			"description": "Built with sitebuilder",
		},
		Build: BuildConfig{
			Source:         ".",
			Engine:         "liquid",
			DefaultLayout:  "",
			MaxLayoutDepth: 10,
			Workers:        4,
			FailPolicy:     "fail-fast",
			Exclude:        []string{"README.md", "*.tmp"},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Daemon:  DaemonConfig{Interval: DefaultDaemonInterval, Debounce: DefaultWatchDebounce},
	}
	return cfg
}

// Init writes an example configuration to configPath. An existing file is
// only replaced when force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot stat configuration file").
			WithContext("path", configPath).Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal example configuration").Build()
	}
	// #nosec G306 -- configuration is not secret; tokens come from the environment
	if err := os.WriteFile(configPath, append([]byte(exampleHeader), data...), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", configPath).Build()
	}
	return nil
}
