// Package sitefs is the filesystem capability the site pipeline runs on.
// Everything the pipeline reads or writes goes through FS, so a build can run
// entirely in memory.
package sitefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// SkipDir may be returned from a WalkFunc to skip a directory's contents.
var SkipDir = filepath.SkipDir

// WalkFunc is called for every entry below (and including) the walk root.
type WalkFunc func(path string, isDir bool) error

// FS is the narrow set of filesystem operations the pipeline depends on.
type FS interface {
	Walk(root string, fn WalkFunc) error
	Exists(path string) (bool, error)
	IsDir(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces the file's content, creating parent directories.
	WriteFile(path string, data []byte) error
	MkdirAll(path string) error
}

// Error attributes a failed filesystem operation to a path.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Afero implements FS on top of an afero.Fs.
type Afero struct {
	fs afero.Fs
}

// New wraps an existing afero filesystem.
func New(fs afero.Fs) *Afero {
	return &Afero{fs: fs}
}

// NewOS returns an FS backed by the operating system.
func NewOS() *Afero {
	return New(afero.NewOsFs())
}

// NewMemory returns an empty in-memory FS.
func NewMemory() *Afero {
	return New(afero.NewMemMapFs())
}

func (a *Afero) Walk(root string, fn WalkFunc) error {
	err := afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return &Error{Op: "walk", Path: path, Err: err}
		}
		return fn(path, info.IsDir())
	})
	return err
}

func (a *Afero) Exists(path string) (bool, error) {
	ok, err := afero.Exists(a.fs, path)
	if err != nil {
		return false, &Error{Op: "stat", Path: path, Err: err}
	}
	return ok, nil
}

func (a *Afero) IsDir(path string) (bool, error) {
	ok, err := afero.IsDir(a.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &Error{Op: "stat", Path: path, Err: err}
	}
	return ok, nil
}

func (a *Afero) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, &Error{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

func (a *Afero) WriteFile(path string, data []byte) error {
	if err := a.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	// Output is meant to be served, so files are world-readable.
	if err := afero.WriteFile(a.fs, path, data, filePerm); err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (a *Afero) MkdirAll(path string) error {
	if err := a.fs.MkdirAll(path, dirPerm); err != nil {
		return &Error{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// RemoveAll deletes path and everything below it. A missing path is not an
// error.
func (a *Afero) RemoveAll(path string) error {
	if err := a.fs.RemoveAll(path); err != nil {
		return &Error{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// Within reports whether path is dir itself or lies below it. Both paths
// are compared lexically after filepath.Clean.
func Within(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Overlaps reports whether either path contains the other.
func Overlaps(a, b string) bool {
	return Within(a, b) || Within(b, a)
}
