package build

import (
	"path/filepath"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/sitefs"
)

// copyTree copies every file below src to the same relative path below dst.
func copyTree(fsys *sitefs.Afero, src, dst string) (int, error) {
	copied := 0
	err := fsys.Walk(src, func(path string, isDir bool) error {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if isDir {
			return fsys.MkdirAll(target)
		}
		data, err := fsys.ReadFile(path)
		if err != nil {
			return err
		}
		if err := fsys.WriteFile(target, data); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

// checkPublishTarget rejects a destination that equals, contains or lies
// inside the source root.
func checkPublishTarget(root, dst string) error {
	if sitefs.Overlaps(root, dst) {
		return ferrors.ValidationError("output.copy_to must not overlap the site source").
			WithContext("path", dst).
			WithContext("source", root).
			Build()
	}
	return nil
}

// publish copies the generated site below root to dst, emptying dst first
// when clean is set.
func publish(fsys *sitefs.Afero, root, dst string, clean bool) (int, error) {
	if err := checkPublishTarget(root, dst); err != nil {
		return 0, err
	}
	if clean {
		if err := fsys.RemoveAll(dst); err != nil {
			return 0, err
		}
	}
	if err := fsys.MkdirAll(dst); err != nil {
		return 0, err
	}
	return copyTree(fsys, filepath.Join(root, site.OutputDir), dst)
}
