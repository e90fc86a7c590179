package build

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/gitsource"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/sitefs"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

// CheckoutFunc fetches a git source into dir and returns the commit hash.
type CheckoutFunc func(ctx context.Context, src gitsource.Source, dir string) (string, error)

// Service runs builds. A Service is safe for sequential reuse; callers
// serialise concurrent builds of the same site.
type Service struct {
	fs        *sitefs.Afero
	recorder  metrics.Recorder
	history   *history.Store
	publisher notify.Publisher
	logger    *slog.Logger
	checkout  CheckoutFunc
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithFS replaces the operating system filesystem (for testing).
func WithFS(fsys *sitefs.Afero) Option {
	return func(s *Service) { s.fs = fsys }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithHistory records every build in store.
func WithHistory(store *history.Store) Option {
	return func(s *Service) { s.history = store }
}

// WithPublisher announces every build through p.
func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCheckout replaces the git checkout (for testing).
func WithCheckout(fn CheckoutFunc) Option {
	return func(s *Service) { s.checkout = fn }
}

// NewService creates a Service with no-op metrics and notification.
func NewService(opts ...Option) *Service {
	s := &Service{
		fs:        sitefs.NewOS(),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.Noop{},
		logger:    slog.Default(),
		checkout:  gitsource.Checkout,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one build of the site described by cfg.
func (s *Service) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	start := time.Now()
	res := &Result{BuildID: s.newID(), StartTime: start}
	ctx = observability.WithBuildID(ctx, res.BuildID)

	err := s.run(ctx, cfg, res)

	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(start)
	res.Status = statusFor(err)
	s.finish(ctx, res, err)
	return res, err
}

func (s *Service) run(ctx context.Context, cfg *config.Config, res *Result) error {
	if cfg == nil {
		return ferrors.ConfigError("config required").Build()
	}
	log := observability.Logger(ctx, s.logger)

	opts, err := SiteOptions(cfg, log)
	if err != nil {
		return err
	}

	root := cfg.Build.Source
	if g := cfg.SourceGit; g != nil {
		ws := newWorkspace(g)
		if err := ws.Create(); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create workspace").Build()
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				log.Warn("Failed to cleanup workspace", logfields.Error(err))
			}
		}()
		if !ws.Persistent() && cfg.Output.CopyTo == "" {
			log.Warn("Output lives in a temporary checkout and is removed after the build; set output.copy_to or source_git.workspace")
		}

		stageStart := time.Now()
		src := gitsource.Source{URL: g.URL, Branch: g.Branch, Token: g.Token}
		err := retryPolicy(g).Do(observability.WithStage(ctx, StageCheckout), func(ctx context.Context) error {
			commit, err := s.checkout(ctx, src, ws.Path())
			if err != nil {
				log.Warn("Checkout failed", logfields.URL(g.URL), logfields.Error(err))
				return err
			}
			res.Commit = commit
			return nil
		}, retryable)
		s.recorder.ObserveStageDuration(StageCheckout, time.Since(stageStart))
		if err != nil {
			return err
		}
		root = filepath.Join(ws.Path(), cfg.Build.Source)
	}
	res.Source = root

	var previous map[string]string
	if s.history != nil {
		if previous, err = s.history.Fingerprints(ctx); err != nil {
			log.Warn("Failed to read previous fingerprints", logfields.Error(err))
		}
	}

	stageStart := time.Now()
	report, err := site.Build(observability.WithStage(ctx, StageSite), s.fs, root, site.Context(cfg.Site), opts...)
	s.recorder.ObserveStageDuration(StageSite, time.Since(stageStart))
	res.Report = report
	if report != nil {
		s.recorder.AddPagesRendered(len(report.Pages))
		s.recorder.AddAssetsCopied(len(report.Assets))
	}
	for _, pe := range pageErrors(err) {
		s.recorder.IncPageFailure(string(ferrors.GetCategory(pe)))
	}
	if err != nil {
		return err
	}
	if previous != nil {
		res.Changed = changedPages(previous, report)
	}

	if dst := cfg.Output.CopyTo; dst != "" {
		stageStart = time.Now()
		n, err := publish(s.fs, root, dst, cfg.Output.Clean)
		s.recorder.ObserveStageDuration(StagePublish, time.Since(stageStart))
		if ferrors.IsClassified(err) {
			return err
		}
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to publish site").
				WithContext("path", dst).Retryable().Build()
		}
		res.PublishedTo = dst
		log.Info("Site published", logfields.Path(dst), logfields.Count(n))
	}
	return nil
}

func retryPolicy(g *config.GitSourceConfig) retry.Policy {
	mode, _ := retry.ParseMode(g.RetryBackoff)
	return retry.NewPolicy(mode, g.RetryDelayDuration(), 0, g.Retries)
}

func retryable(err error) bool {
	c, ok := ferrors.AsClassified(err)
	return ok && c.CanRetry()
}

func newWorkspace(g *config.GitSourceConfig) *workspace.Manager {
	if g.Workspace != "" {
		return workspace.NewPersistentManager(g.Workspace, "")
	}
	return workspace.NewManager("")
}

// finish records the build in metrics, history and notification. Failures
// here are logged and never change the build result.
func (s *Service) finish(ctx context.Context, res *Result, buildErr error) {
	log := observability.Logger(observability.WithStage(ctx, StageRecord), s.logger)

	s.recorder.IncBuildOutcome(res.Status.outcome())
	s.recorder.ObserveBuildDuration(res.Duration)
	s.recorder.SetLastBuild(res.EndTime)

	// The build's own context may already be canceled.
	rctx := context.WithoutCancel(ctx)
	if s.history != nil {
		if err := s.history.Append(rctx, historyRecord(res, buildErr)); err != nil {
			log.Warn("Failed to record build history", logfields.Error(err))
		}
	}
	if err := s.publisher.Publish(rctx, buildEvent(res, buildErr)); err != nil {
		log.Warn("Failed to publish build event", logfields.Error(err))
	}

	if buildErr != nil {
		log.Error("Build finished",
			slog.String("status", string(res.Status)),
			logfields.Count(res.failed()),
			logfields.DurationMS(float64(res.Duration.Milliseconds())),
			logfields.Error(buildErr))
		return
	}
	log.Info("Build finished",
		slog.String("status", string(res.Status)),
		logfields.Count(res.pages()),
		slog.Int("changed", len(res.Changed)),
		logfields.DurationMS(float64(res.Duration.Milliseconds())))
}

// pageErrors flattens a pipeline error into its page failures.
func pageErrors(err error) []*site.PageError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*site.PageError
		for _, e := range joined.Unwrap() {
			out = append(out, pageErrors(e)...)
		}
		return out
	}
	var pe *site.PageError
	if errors.As(err, &pe) {
		return []*site.PageError{pe}
	}
	return nil
}

func changedPages(previous map[string]string, report *site.Report) []string {
	changed := []string{}
	for _, p := range report.Pages {
		if previous[p.Source] != p.Fingerprint {
			changed = append(changed, p.Source)
		}
	}
	return changed
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func historyRecord(res *Result, err error) history.Record {
	rec := history.Record{
		BuildID:  res.BuildID,
		Started:  res.StartTime,
		Duration: res.Duration,
		Outcome:  string(res.Status),
		Pages:    res.pages(),
		Assets:   res.assets(),
		Failed:   res.failed(),
		Error:    errorText(err),
	}
	if res.Report != nil {
		for _, p := range res.Report.Pages {
			rec.PageList = append(rec.PageList, history.Page{
				Source:      p.Source,
				Output:      p.Output,
				Fingerprint: p.Fingerprint,
			})
		}
	}
	return rec
}

func buildEvent(res *Result, err error) notify.Event {
	return notify.Event{
		BuildID:    res.BuildID,
		Outcome:    string(res.Status),
		Source:     res.Source,
		Timestamp:  res.EndTime,
		DurationMS: res.Duration.Milliseconds(),
		Pages:      res.pages(),
		Assets:     res.assets(),
		Failed:     res.failed(),
		Changed:    res.Changed,
		Error:      errorText(err),
	}
}
