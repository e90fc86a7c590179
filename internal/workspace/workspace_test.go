package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_EphemeralMode(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(base)
	require.False(t, mgr.Persistent())
	require.Empty(t, mgr.Path())

	require.NoError(t, mgr.Create())
	path := mgr.Path()
	require.True(t, strings.HasPrefix(filepath.Base(path), "sitebuilder-"))
	require.DirExists(t, path)

	require.NoError(t, mgr.Cleanup())
	require.NoDirExists(t, path)
	require.Empty(t, mgr.Path())
	require.NoError(t, mgr.Cleanup())
}

func TestManager_EphemeralWorkspacesAreDistinct(t *testing.T) {
	base := t.TempDir()
	a, b := NewManager(base), NewManager(base)
	require.NoError(t, a.Create())
	require.NoError(t, b.Create())
	require.NotEqual(t, a.Path(), b.Path())
}

func TestManager_PersistentMode(t *testing.T) {
	base := t.TempDir()
	mgr := NewPersistentManager(base, "checkout")
	require.Equal(t, filepath.Join(base, "checkout"), mgr.Path())

	require.NoError(t, mgr.Create())
	marker := filepath.Join(mgr.Path(), "marker")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	require.NoError(t, mgr.Cleanup())
	require.FileExists(t, marker)

	// Creating again keeps existing content.
	require.NoError(t, mgr.Create())
	require.FileExists(t, marker)
}

func TestManager_Subdir(t *testing.T) {
	mgr := NewManager(t.TempDir())
	_, err := mgr.Subdir("repo")
	require.ErrorIs(t, err, ErrNotCreated)

	require.NoError(t, mgr.Create())
	dir, err := mgr.Subdir("repo")
	require.NoError(t, err)
	require.DirExists(t, dir)
	require.Equal(t, filepath.Join(mgr.Path(), "repo"), dir)
}
