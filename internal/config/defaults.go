package config

import (
	"runtime"

	"git.home.luguber.info/inful/sitebuilder/internal/layout"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

const (
	DefaultNotifySubject  = "sitebuilder.builds"
	DefaultMetricsPath    = "/metrics"
	DefaultDaemonInterval = "15m"
	DefaultWatchDebounce  = "300ms"
	DefaultRetryDelay     = "1s"
	defaultSource         = "."
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	b := &cfg.Build
	if b.Source == "" {
		b.Source = defaultSource
	}
	if b.Engine == "" {
		b.Engine = string(render.EngineLiquid)
	}
	if b.MaxLayoutDepth <= 0 {
		b.MaxLayoutDepth = layout.DefaultMaxDepth
	}
	if b.Workers <= 0 {
		b.Workers = runtime.NumCPU()
	}
	if b.FailPolicy == "" {
		b.FailPolicy = string(site.FailFast)
	}

	if g := cfg.SourceGit; g != nil {
		if g.RetryBackoff == "" {
			g.RetryBackoff = string(retry.ModeLinear)
		}
		if g.RetryDelay == "" {
			g.RetryDelay = DefaultRetryDelay
		}
	}

	if cfg.Metrics.ListenAddr != "" && cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Daemon.Interval == "" {
		cfg.Daemon.Interval = DefaultDaemonInterval
	}
	if cfg.Daemon.Debounce == "" {
		cfg.Daemon.Debounce = DefaultWatchDebounce
	}
}
