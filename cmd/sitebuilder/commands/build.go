package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// BuildFlags override the build section of the configuration.
type BuildFlags struct {
	Source     string `arg:"" optional:"" type:"path" help:"Site source directory (overrides build.source)"`
	Engine     string `help:"Template engine: liquid or gotemplate (overrides build.engine)"`
	FailPolicy string `name:"fail-policy" help:"fail-fast or collect (overrides build.fail_policy)"`
	Workers    int    `short:"j" help:"Pages rendered in parallel (overrides build.workers)"`
	Strict     bool   `help:"Reject malformed front matter"`
}

// apply copies set flags into cfg and revalidates it.
func (f *BuildFlags) apply(cfg *config.Config) error {
	if f.Source != "" {
		cfg.Build.Source = f.Source
		cfg.SourceGit = nil
	}
	if f.Engine != "" {
		cfg.Build.Engine = f.Engine
	}
	if f.FailPolicy != "" {
		cfg.Build.FailPolicy = f.FailPolicy
	}
	if f.Workers > 0 {
		cfg.Build.Workers = f.Workers
	}
	if f.Strict {
		cfg.Build.StrictFrontMatter = true
	}
	return cfg.Validate()
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	BuildFlags `embed:""`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}

	rt, err := newRuntime(cfg, g.Logger, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := rt.svc.Run(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Built %d pages and copied %d assets from %s in %s\n",
		len(res.Report.Pages), len(res.Report.Assets), res.Source, res.Duration.Round(time.Millisecond))
	return nil
}
