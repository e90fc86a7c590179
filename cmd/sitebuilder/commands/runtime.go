package commands

import (
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
)

// runtime holds the build service and the resources it was wired with.
type runtime struct {
	svc      *build.Service
	history  *history.Store
	registry *prom.Registry
	closers  []func()
}

// newRuntime wires history, notification and (with withMetrics) a
// Prometheus registry into a build service.
func newRuntime(cfg *config.Config, logger *slog.Logger, withMetrics bool) (*runtime, error) {
	rt := &runtime{}
	opts := []build.Option{build.WithLogger(logger)}

	if withMetrics {
		rt.registry = prom.NewRegistry()
		rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, build.WithRecorder(metrics.NewPrometheusRecorder(rt.registry)))
	}

	if path := cfg.History.Path; path != "" {
		store, err := history.Open(path)
		if err != nil {
			rt.Close()
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open build history").
				WithContext("path", path).Build()
		}
		rt.history = store
		rt.closers = append(rt.closers, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close build history", logfields.Error(err))
			}
		})
		opts = append(opts, build.WithHistory(store))
	}

	if url := cfg.Notify.NATSURL; url != "" {
		pub, err := notify.Connect(url, cfg.Notify.Subject)
		if err != nil {
			rt.Close()
			return nil, ferrors.WrapError(err, ferrors.CategoryNotify, "failed to connect to NATS").
				WithContext("url", url).Retryable().Build()
		}
		rt.closers = append(rt.closers, pub.Close)
		opts = append(opts, build.WithPublisher(pub))
	}

	rt.svc = build.NewService(opts...)
	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}
