package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// FileAssertions checks the state of an output tree rooted at a directory.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// Exists fails the test when relativePath is missing.
func (fa *FileAssertions) Exists(relativePath string) *FileAssertions {
	fa.t.Helper()
	_, err := os.Stat(filepath.Join(fa.baseDir, filepath.FromSlash(relativePath)))
	require.NoError(fa.t, err, "expected %s to exist", relativePath)
	return fa
}

// Missing fails the test when relativePath exists.
func (fa *FileAssertions) Missing(relativePath string) *FileAssertions {
	fa.t.Helper()
	_, err := os.Stat(filepath.Join(fa.baseDir, filepath.FromSlash(relativePath)))
	require.True(fa.t, os.IsNotExist(err), "expected %s to be absent", relativePath)
	return fa
}

// Contains fails the test unless relativePath contains expected.
func (fa *FileAssertions) Contains(relativePath, expected string) *FileAssertions {
	fa.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(filepath.Join(fa.baseDir, filepath.FromSlash(relativePath)))
	require.NoError(fa.t, err)
	require.Contains(fa.t, string(data), expected)
	return fa
}

// Equals fails the test unless relativePath holds exactly expected.
func (fa *FileAssertions) Equals(relativePath, expected string) *FileAssertions {
	fa.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(filepath.Join(fa.baseDir, filepath.FromSlash(relativePath)))
	require.NoError(fa.t, err)
	require.Equal(fa.t, expected, string(data))
	return fa
}

// MinFiles fails the test when relativePath holds fewer than minCount regular files.
func (fa *FileAssertions) MinFiles(relativePath string, minCount int) *FileAssertions {
	fa.t.Helper()
	entries, err := os.ReadDir(filepath.Join(fa.baseDir, filepath.FromSlash(relativePath)))
	require.NoError(fa.t, err)
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	require.GreaterOrEqual(fa.t, n, minCount, "files in %s", relativePath)
	return fa
}
