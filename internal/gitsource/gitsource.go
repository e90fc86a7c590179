// Package gitsource keeps a local checkout of a site source repository.
package gitsource

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultBranch is checked out when Source.Branch is empty.
const DefaultBranch = "main"

// Source identifies the repository and branch to check out.
type Source struct {
	URL    string
	Branch string
	Token  string
}

func (s Source) branch() string {
	if s.Branch == "" {
		return DefaultBranch
	}
	return s.Branch
}

func (s Source) auth() transport.AuthMethod {
	if s.Token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "token",
		Password: s.Token,
	}
}

// Checkout clones src into dir, or fetches and force-checks-out the branch
// when dir already holds a clone. It returns the checked out commit hash.
func Checkout(ctx context.Context, src Source, dir string) (string, error) {
	if src.URL == "" {
		return "", ferrors.ValidationError("git source url is required").Build()
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return update(ctx, src, dir)
	}
	return clone(ctx, src, dir)
}

func clone(ctx context.Context, src Source, dir string) (string, error) {
	slog.Debug("Cloning site source", logfields.URL(src.URL), slog.String("branch", src.branch()), logfields.Path(dir))

	if err := os.RemoveAll(dir); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to clear checkout directory").
			WithContext("path", dir).Build()
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           src.URL,
		Auth:          src.auth(),
		ReferenceName: plumbing.NewBranchReferenceName(src.branch()),
		SingleBranch:  true,
	})
	if err != nil {
		return "", gitError(err, "clone", src)
	}
	return head(repo, src)
}

func update(ctx context.Context, src Source, dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", gitError(err, "open", src)
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		Auth:       src.auth(),
		Tags:       git.NoTags,
		RefSpecs:   []ggitcfg.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", gitError(err, "fetch", src)
	}

	remote, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", src.branch()), true)
	if err != nil {
		return "", gitError(err, "resolve remote branch", src)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", gitError(err, "worktree", src)
	}
	local := plumbing.NewBranchReferenceName(src.branch())
	_, lerr := repo.Reference(local, true)
	if err := wt.Checkout(&git.CheckoutOptions{Branch: local, Create: lerr != nil, Force: true}); err != nil {
		return "", gitError(err, "checkout", src)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remote.Hash(), Mode: git.HardReset}); err != nil {
		return "", gitError(err, "reset", src)
	}
	return head(repo, src)
}

func head(repo *git.Repository, src Source) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", gitError(err, "head", src)
	}
	hash := ref.Hash().String()
	slog.Info("Site source checked out", logfields.URL(src.URL), slog.String("branch", src.branch()), slog.String("commit", hash[:8]))
	return hash, nil
}

func gitError(err error, op string, src Source) error {
	return ferrors.WrapError(err, ferrors.CategoryGit, "git "+op+" failed").
		WithContext("url", src.URL).
		WithContext("branch", src.branch()).
		Retryable().
		Build()
}
