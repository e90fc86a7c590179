package commands

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildFlags `embed:""`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if err := w.apply(cfg); err != nil {
		return err
	}
	if cfg.SourceGit != nil {
		return ferrors.ConfigError("watch needs a local source; pass a source directory or remove source_git").Build()
	}

	rt, err := newRuntime(cfg, g.Logger, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b := newSerialBuilder(rt.svc, cfg)
	if err := b.run(ctx); err != nil {
		g.Logger.Warn("Initial build failed; waiting for changes", logfields.Error(err))
	}
	return watchSource(ctx, cfg, b.run)
}

func watchSource(ctx context.Context, cfg *config.Config, rebuild func(context.Context) error) error {
	watcher, err := watch.New(cfg.Build.Source, cfg.Daemon.DebounceDuration(), cfg.Build.Exclude...)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch source").
			WithContext("path", cfg.Build.Source).Build()
	}
	return watcher.Run(ctx, rebuild)
}

// serialBuilder runs builds one at a time: the output directory is shared
// between the watcher and the scheduler.
type serialBuilder struct {
	mu  sync.Mutex
	svc *build.Service
	cfg *config.Config
}

func newSerialBuilder(svc *build.Service, cfg *config.Config) *serialBuilder {
	return &serialBuilder{svc: svc, cfg: cfg}
}

func (s *serialBuilder) run(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.svc.Run(ctx, s.cfg)
	return err
}
