// Package config loads sitebuilder.yaml.
package config

import (
	"time"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "sitebuilder.yaml"

// Config is the complete sitebuilder configuration.
type Config struct {
	// Site holds the variables bound as `site` in every template.
	Site      map[string]any   `yaml:"site,omitempty"`
	Build     BuildConfig      `yaml:"build"`
	SourceGit *GitSourceConfig `yaml:"source_git,omitempty"`
	Output    OutputConfig     `yaml:"output,omitempty"`
	Logging   LoggingConfig    `yaml:"logging,omitempty"`
	Metrics   MetricsConfig    `yaml:"metrics,omitempty"`
	History   HistoryConfig    `yaml:"history,omitempty"`
	Notify    NotifyConfig     `yaml:"notify,omitempty"`
	Daemon    DaemonConfig     `yaml:"daemon,omitempty"`
}

// BuildConfig controls the page pipeline.
type BuildConfig struct {
	Source            string   `yaml:"source"`
	Engine            string   `yaml:"engine"`
	StrictFrontMatter bool     `yaml:"strict_front_matter"`
	DefaultLayout     string   `yaml:"default_layout,omitempty"`
	MaxLayoutDepth    int      `yaml:"max_layout_depth"`
	Workers           int      `yaml:"workers"`
	FailPolicy        string   `yaml:"fail_policy"`
	Exclude           []string `yaml:"exclude,omitempty"`
}

// GitSourceConfig checks the site source out of a git repository before
// building. Build.Source is then relative to the checkout.
type GitSourceConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Token  string `yaml:"token,omitempty"`
	// Workspace is where checkouts live; empty uses a temporary directory.
	Workspace string `yaml:"workspace,omitempty"`
	// Retries is how often a failed checkout is retried; 0 disables retries.
	Retries      int    `yaml:"retries,omitempty"`
	RetryBackoff string `yaml:"retry_backoff,omitempty"`
	RetryDelay   string `yaml:"retry_delay,omitempty"`
}

// RetryDelayDuration returns the parsed initial retry delay. Call after
// Validate.
func (g GitSourceConfig) RetryDelayDuration() time.Duration {
	v, _ := time.ParseDuration(g.RetryDelay)
	return v
}

// OutputConfig publishes the generated _site elsewhere after a build.
type OutputConfig struct {
	CopyTo string `yaml:"copy_to,omitempty"`
	// Clean empties CopyTo before copying.
	Clean bool `yaml:"clean,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint. Empty ListenAddr disables it.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
	Path       string `yaml:"path,omitempty"`
}

// HistoryConfig enables the build history database. Empty Path disables it.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig publishes build events to NATS. Empty NATSURL disables it.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// DaemonConfig controls `sitebuilder daemon` and `sitebuilder watch`.
type DaemonConfig struct {
	Interval string `yaml:"interval,omitempty"`
	Watch    bool   `yaml:"watch,omitempty"`
	Debounce string `yaml:"debounce,omitempty"`
}

// IntervalDuration returns the parsed rebuild interval. Call after Validate.
func (d DaemonConfig) IntervalDuration() time.Duration {
	v, _ := time.ParseDuration(d.Interval)
	return v
}

// DebounceDuration returns the parsed watch debounce. Call after Validate.
func (d DaemonConfig) DebounceDuration() time.Duration {
	v, _ := time.ParseDuration(d.Debounce)
	return v
}
