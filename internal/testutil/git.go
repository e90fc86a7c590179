// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Remote is a bare repository paired with a working clone used to push commits into it.
type Remote struct {
	t *testing.T

	// URL is the path of the bare repository.
	URL      string
	Seed     *git.Repository
	SeedPath string
}

// NewRemote initializes a bare repository and a seed worktree with origin pointing at it.
func NewRemote(t *testing.T) *Remote {
	t.Helper()
	tmp := t.TempDir()
	bare := filepath.Join(tmp, "remote.git")
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)

	seedPath := filepath.Join(tmp, "seed")
	seed, err := git.PlainInit(seedPath, false)
	require.NoError(t, err)
	_, err = seed.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{bare}})
	require.NoError(t, err)

	return &Remote{t: t, URL: bare, Seed: seed, SeedPath: seedPath}
}

// Commit writes name into the seed worktree, commits it and returns the commit hash.
func (r *Remote) Commit(name, content string) string {
	r.t.Helper()
	full := filepath.Join(r.SeedPath, filepath.FromSlash(name))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0o600))

	wt, err := r.Seed.Worktree()
	require.NoError(r.t, err)
	_, err = wt.Add(name)
	require.NoError(r.t, err)
	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(r.t, err)
	return hash.String()
}

// Push sends the seed branch to the bare repository.
func (r *Remote) Push() {
	r.t.Helper()
	require.NoError(r.t, r.Seed.Push(&git.PushOptions{RemoteName: "origin"}))
}
