package site

import (
	"errors"
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/layout"
	"git.home.luguber.info/inful/sitebuilder/internal/permalink"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/sitefs"
)

// Stage names the pipeline step a page failed in.
type Stage string

const (
	StageRead        Stage = "read"
	StageFrontMatter Stage = "frontmatter"
	StagePermalink   Stage = "permalink"
	StageTemplate    Stage = "template"
	StageMarkdown    Stage = "markdown"
	StageLayout      Stage = "layout"
	StageWrite       Stage = "write"
	StageCopy        Stage = "copy"
)

// PageError attributes a failure to a source path and stage. Err is a
// *ferrors.ClassifiedError wrapping the underlying cause.
type PageError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Path, e.Stage, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// CollisionError reports two entries resolving to the same output path.
type CollisionError struct {
	Output  string
	Sources []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("output %s/%s claimed by %s", OutputDir, e.Output, strings.Join(e.Sources, " and "))
}

// pageError classifies cause and attributes it to rel.
func pageError(rel string, stage Stage, cause error) *PageError {
	category, message := classify(stage, cause)
	classified := ferrors.WrapError(cause, category, message).
		UserAction().
		WithContext("path", rel).
		WithContext("stage", string(stage))
	if category == ferrors.CategoryFileSystem {
		classified = classified.Retryable()
	}
	return &PageError{Path: rel, Stage: stage, Err: classified.Build()}
}

func classify(stage Stage, err error) (ferrors.ErrorCategory, string) {
	var (
		fmErr       *frontmatter.Error
		notFound    *layout.NotFoundError
		cycle       *layout.CycleError
		tplErr      *render.TemplateError
		invalid     *permalink.InvalidError
		collision   *CollisionError
		fsErr       *sitefs.Error
		mismatchErr *frontmatter.TypeMismatchError
	)
	switch {
	case errors.As(err, &fmErr):
		return ferrors.CategoryFrontMatter, "malformed front matter"
	case errors.As(err, &notFound):
		return ferrors.CategoryLayout, "layout not found"
	case errors.As(err, &cycle):
		return ferrors.CategoryLayout, "layout chain too deep"
	case errors.As(err, &tplErr):
		return ferrors.CategoryTemplate, "template rendering failed"
	case errors.As(err, &invalid):
		return ferrors.CategoryPermalink, "invalid permalink"
	case errors.As(err, &collision):
		return ferrors.CategoryPermalink, "output path collision"
	case errors.As(err, &fsErr):
		return ferrors.CategoryFileSystem, "filesystem operation failed"
	case errors.As(err, &mismatchErr):
		return ferrors.CategoryFrontMatter, "unexpected front matter value"
	}

	switch stage {
	case StageFrontMatter:
		return ferrors.CategoryFrontMatter, "front matter failed"
	case StagePermalink:
		return ferrors.CategoryPermalink, "permalink failed"
	case StageTemplate:
		return ferrors.CategoryTemplate, "template rendering failed"
	case StageMarkdown:
		return ferrors.CategoryMarkdown, "markdown conversion failed"
	case StageLayout:
		return ferrors.CategoryLayout, "layout failed"
	case StageRead, StageWrite, StageCopy:
		return ferrors.CategoryFileSystem, "filesystem operation failed"
	default:
		return ferrors.CategoryBuild, "page failed"
	}
}
