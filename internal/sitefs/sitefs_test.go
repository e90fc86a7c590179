package sitefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_WriteCreatesParents(t *testing.T) {
	fsys := NewMemory()

	require.NoError(t, fsys.WriteFile("/site/a/b/c.txt", []byte("hi")))

	isDir, err := fsys.IsDir("/site/a/b")
	require.NoError(t, err)
	require.True(t, isDir)

	data, err := fsys.ReadFile("/site/a/b/c.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), data)

	require.NoError(t, fsys.WriteFile("/site/a/b/c.txt", []byte("again")))
	data, err = fsys.ReadFile("/site/a/b/c.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("again"), data)
}

func TestMemory_ExistsAndIsDir(t *testing.T) {
	fsys := NewMemory()
	require.NoError(t, fsys.MkdirAll("/site/_site"))
	require.NoError(t, fsys.MkdirAll("/site/_site"))

	ok, err := fsys.Exists("/site/_site")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = fsys.Exists("/site/missing")
	require.NoError(t, err)
	require.False(t, ok)

	isDir, err := fsys.IsDir("/site/missing")
	require.NoError(t, err)
	require.False(t, isDir)
}

func TestMemory_ReadMissingFileIsError(t *testing.T) {
	_, err := NewMemory().ReadFile("/nope.txt")
	var fsErr *Error
	require.ErrorAs(t, err, &fsErr)
	require.Equal(t, "read", fsErr.Op)
	require.Equal(t, "/nope.txt", fsErr.Path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalk_VisitsAndSkips(t *testing.T) {
	fsys := NewMemory()
	require.NoError(t, fsys.WriteFile("/root/a.txt", nil))
	require.NoError(t, fsys.WriteFile("/root/skip/b.txt", nil))
	require.NoError(t, fsys.WriteFile("/root/keep/c.txt", nil))

	var visited []string
	err := fsys.Walk("/root", func(path string, isDir bool) error {
		if isDir && filepath.Base(path) == "skip" {
			return SkipDir
		}
		if !isDir {
			visited = append(visited, path)
		}
		return nil
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"/root/a.txt", "/root/keep/c.txt"}, visited)
}

func TestOS_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fsys := NewOS()
	path := filepath.Join(dir, "nested", "file.bin")

	require.NoError(t, fsys.WriteFile(path, []byte{0, 1, 2}))
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1, 2}, data)
}

func TestMemory_RemoveAll(t *testing.T) {
	fsys := NewMemory()
	require.NoError(t, fsys.WriteFile("/out/a/b.txt", []byte("x")))

	require.NoError(t, fsys.RemoveAll("/out"))
	ok, err := fsys.Exists("/out/a/b.txt")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, fsys.RemoveAll("/never-existed"))
}

func TestWithinAndOverlaps(t *testing.T) {
	require.True(t, Within("/website", "/website"))
	require.True(t, Within("/website", "/website/_site/pub"))
	require.True(t, Within("/website/", "/website/./about"))
	require.False(t, Within("/website", "/websites"))
	require.False(t, Within("/website/_site", "/website"))
	require.False(t, Within("/srv/www", "/website"))

	require.True(t, Overlaps("/website", "/"))
	require.True(t, Overlaps("/website", "/website/_site"))
	require.False(t, Overlaps("/website", "/srv/www"))
}
