package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/schedule"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

const shutdownTimeout = 30 * time.Second

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Interval string `help:"Rebuild interval (overrides daemon.interval)"`
	Watch    bool   `help:"Also rebuild on source changes (local sources only)"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if d.Interval != "" {
		cfg.Daemon.Interval = d.Interval
	}
	if d.Watch {
		cfg.Daemon.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunDaemon(ctx, cfg, g.Logger)
}

// RunDaemon rebuilds on cfg.Daemon.Interval until ctx is done, serving the
// admin endpoint when metrics.listen_addr is set.
func RunDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	rt, err := newRuntime(cfg, logger, cfg.Metrics.ListenAddr != "")
	if err != nil {
		return err
	}
	defer rt.Close()

	builder := newSerialBuilder(rt.svc, cfg)
	sched, err := schedule.New()
	if err != nil {
		return err
	}
	jobID, err := sched.Every("rebuild", cfg.Daemon.IntervalDuration(), true, builder.run)
	if err != nil {
		return err
	}

	var admin *server.Server
	if addr := cfg.Metrics.ListenAddr; addr != "" {
		opts := server.Options{
			Addr:        addr,
			MetricsPath: cfg.Metrics.Path,
			Metrics:     metrics.HTTPHandler(rt.registry),
			OutputDir:   readinessDir(cfg),
			Trigger:     func() error { return sched.RunNow(jobID) },
			Logger:      logger,
		}
		if rt.history != nil {
			opts.History = rt.history
		}
		admin = server.New(opts)
		if err := admin.Start(ctx); err != nil {
			return err
		}
	}

	sched.Start(ctx)
	logger.Info("Daemon started",
		slog.String("interval", cfg.Daemon.Interval),
		slog.Bool("watch", cfg.Daemon.Watch))

	watchErr := make(chan error, 1)
	if cfg.Daemon.Watch && cfg.SourceGit == nil {
		go func() { watchErr <- watchSource(ctx, cfg, builder.run) }()
	} else if cfg.Daemon.Watch {
		logger.Warn("Ignoring daemon.watch for a git source")
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping daemon")
	case err := <-watchErr:
		if err != nil {
			logger.Error("Watcher stopped", logfields.Error(err))
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if admin != nil {
		if err := admin.Stop(stopCtx); err != nil {
			logger.Warn("Admin server shutdown failed", logfields.Error(err))
		}
	}
	if err := sched.Stop(); err != nil {
		return err
	}
	logger.Info("Daemon stopped")
	return nil
}

// readinessDir is the directory whose existence marks the site as built.
func readinessDir(cfg *config.Config) string {
	if cfg.Output.CopyTo != "" {
		return cfg.Output.CopyTo
	}
	if cfg.SourceGit == nil {
		return filepath.Join(cfg.Build.Source, site.OutputDir)
	}
	return ""
}
