package build

import (
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// SiteOptions translates the build section of cfg into pipeline options.
func SiteOptions(cfg *config.Config, logger *slog.Logger) ([]site.Option, error) {
	b := cfg.Build
	engine, err := render.ParseEngine(b.Engine)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid template engine").
			WithContext("field", "build.engine").Build()
	}
	renderer, err := render.New(engine)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "cannot create template engine").Build()
	}
	policy, err := site.ParseFailPolicy(b.FailPolicy)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid fail policy").
			WithContext("field", "build.fail_policy").Build()
	}

	return []site.Option{
		site.WithRenderer(renderer),
		site.WithStrictFrontMatter(b.StrictFrontMatter),
		site.WithDefaultLayout(b.DefaultLayout),
		site.WithMaxLayoutDepth(b.MaxLayoutDepth),
		site.WithWorkers(b.Workers),
		site.WithFailPolicy(policy),
		site.WithExclude(b.Exclude...),
		site.WithLogger(logger),
	}, nil
}
