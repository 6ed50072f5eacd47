package store

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/matzehuels/storelink/pkg/errors"
)

// moveDir renames a package directory into the store. Tests replace it to
// simulate a source on another filesystem.
var moveDir = os.Rename

// Import relocates the package directory src into the store under key.
//
// The common case is a single rename. When src is on another filesystem,
// the tree is copied into a staging directory under <root>/.tmp, renamed
// into place, and only then is src removed. An interruption between the
// final rename and the removal leaves src behind; the next collection finds
// the key already stored and deletes the duplicate.
//
// Import fails with STORE_CORRUPT if key is already stored.
func (s *Store) Import(src string, key PackageKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	dest := s.Path(key)
	if _, err := os.Lstat(dest); err == nil {
		return errors.New(errors.ErrCodeStoreCorrupt, "%s already exists in the store", key)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("import %s: %w", key, err)
	}

	err := moveDir(src, dest)
	if err == nil {
		return nil
	}
	if !stderrors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("import %s: %w", key, err)
	}

	staging, err := s.TempDir("stage-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	staged := filepath.Join(staging, "pkg")
	if err := copyTree(src, staged); err != nil {
		return fmt.Errorf("import %s: copy: %w", key, err)
	}
	if err := os.Rename(staged, dest); err != nil {
		return fmt.Errorf("import %s: %w", key, err)
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("import %s: remove source: %w", key, err)
	}
	return nil
}

// copyTree copies the directory src to dest, preserving file modes and
// recreating symbolic links verbatim.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			// sockets, devices and pipes have no place in a package
			return nil
		}
	})
}

func copyFile(src, dest string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
