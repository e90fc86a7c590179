package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/sitefs"
)

// Validate checks the configuration after defaults were applied and returns
// a classified validation error listing every problem.
func (c *Config) Validate() error {
	var vr foundation.ValidationResult

	vr.Require("build.source", c.Build.Source)
	_, err := render.ParseEngine(c.Build.Engine)
	vr.Check("build.engine", err)
	_, err = site.ParseFailPolicy(c.Build.FailPolicy)
	vr.Check("build.fail_policy", err)
	vr.Min("build.workers", c.Build.Workers, 1)
	vr.Min("build.max_layout_depth", c.Build.MaxLayoutDepth, 1)
	for i, pattern := range c.Build.Exclude {
		vr.Check(fmt.Sprintf("build.exclude[%d]", i), checkPattern(pattern))
	}

	if g := c.SourceGit; g != nil {
		vr.Require("source_git.url", g.URL)
		vr.Min("source_git.retries", g.Retries, 0)
		_, err = retry.ParseMode(g.RetryBackoff)
		vr.Check("source_git.retry_backoff", err)
		checkDuration(&vr, "source_git.retry_delay", g.RetryDelay)
	}

	checkCopyTo(&vr, c)

	_, err = ParseLogLevel(c.Logging.Level)
	vr.Check("logging.level", err)
	_, err = ParseLogFormat(c.Logging.Format)
	vr.Check("logging.format", err)

	if c.Metrics.ListenAddr != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		vr.Add("metrics.path", "invalid", "must start with /")
	}
	if c.Notify.NATSURL != "" {
		if _, err := url.Parse(c.Notify.NATSURL); err != nil {
			vr.Add("notify.nats_url", "invalid", err.Error())
		}
		vr.Require("notify.subject", c.Notify.Subject)
	}

	checkDuration(&vr, "daemon.interval", c.Daemon.Interval)
	checkDuration(&vr, "daemon.debounce", c.Daemon.Debounce)

	return vr.ToError()
}

func checkDuration(vr *foundation.ValidationResult, field, raw string) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		vr.Add(field, "invalid", err.Error())
		return
	}
	if d <= 0 {
		vr.Add(field, "min", "must be positive")
	}
}

// checkCopyTo rejects an output.copy_to that contains or lies inside the
// local source tree (or the persistent git workspace).
func checkCopyTo(vr *foundation.ValidationResult, c *Config) {
	if c.Output.CopyTo == "" {
		return
	}
	root := c.Build.Source
	field := "build.source"
	if c.SourceGit != nil {
		root, field = c.SourceGit.Workspace, "source_git.workspace"
	}
	if root == "" {
		return
	}
	dst, err := filepath.Abs(c.Output.CopyTo)
	if err != nil {
		vr.Add("output.copy_to", "invalid", err.Error())
		return
	}
	src, err := filepath.Abs(root)
	if err != nil {
		return
	}
	if sitefs.Overlaps(src, dst) {
		vr.Add("output.copy_to", "invalid", "must not contain or lie inside "+field)
	}
}
