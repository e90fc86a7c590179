package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Load reads the file at configPath, expands ${VAR} references, applies
// defaults and validates. .env files next to the config are loaded first.
func Load(configPath string) (*Config, error) {
	loaded, err := loadEnvFiles(filepath.Dir(configPath))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load .env file").
			Fatal().UserAction().Build()
	}
	for _, name := range loaded {
		slog.Debug("Loaded environment file", logfields.Path(name))
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.ConfigError("configuration file not found").
			WithContext("path", configPath).Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read configuration file").
			WithContext("path", configPath).Fatal().Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	// A relative source is relative to the configuration file.
	if !filepath.IsAbs(cfg.Build.Source) && cfg.SourceGit == nil {
		cfg.Build.Source = filepath.Join(filepath.Dir(configPath), cfg.Build.Source)
	}
	return cfg, nil
}

// Parse decodes YAML content after environment expansion, applies defaults
// and validates. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").
			Fatal().UserAction().Build()
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func checkPattern(pattern string) error {
	_, err := path.Match(pattern, "")
	return err
}
