// Package store manages the content-addressed package directory shared by
// every project on the machine.
//
// Each (name, exact version) pair lives exactly once, at
//
//	<root>/name@version
//	<root>/@scope/name@version
//
// and is never modified after it has been placed there. Projects reference
// store entries through symbolic links created by package link.
//
// Entries whose name starts with "." are internal (scratch directories for
// the installer, staging directories for cross-device moves) and are never
// reported by [Store.Scan].
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const tmpDirName = ".tmp"

// Store is a package store rooted at a directory.
type Store struct {
	Root string
}

// Open returns the store rooted at root, creating the directory if needed.
// The root is made absolute and has symlinks resolved so that paths handed
// to os.Symlink and compared against canonical project paths agree.
func Open(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create store %s: %w", abs, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return &Store{Root: abs}, nil
}

// Path returns the absolute directory of key inside the store.
func (s *Store) Path(key PackageKey) string {
	return filepath.Join(s.Root, key.Dir())
}

// Exists reports whether key already has a directory in the store.
func (s *Store) Exists(key PackageKey) bool {
	info, err := os.Stat(s.Path(key))
	return err == nil && info.IsDir()
}

// Contains reports whether path lies inside the store's package area.
// path is expected to be canonical (absolute, symlinks resolved). The
// internal temp area is not part of the package area, so trees fetched
// into it can still be collected.
func (s *Store) Contains(path string) bool {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	if rel == "." {
		return true
	}
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	return first != ".." && !strings.HasPrefix(first, ".")
}

// Scan indexes the store directory into a new catalog.
//
// Top-level entries are parsed as name@version; "@scope" directories are
// read one level deeper. Hidden entries and non-directories are ignored.
// Entries that do not parse as name@version and scope directories that
// cannot be read are skipped with a warning.
// A missing root yields an empty catalog.
func (s *Store) Scan(logger *log.Logger) (*Catalog, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cat := NewCatalog()

	entries, err := os.ReadDir(s.Root)
	if os.IsNotExist(err) {
		return cat, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan store %s: %w", s.Root, err)
	}

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !e.IsDir() {
			continue
		}
		if !strings.HasPrefix(name, "@") {
			s.scanEntry(cat, logger, name)
			continue
		}
		scoped, err := os.ReadDir(filepath.Join(s.Root, name))
		if err != nil {
			logger.Warn("skipping unreadable store scope", "scope", name, "root", s.Root, "err", err)
			continue
		}
		for _, se := range scoped {
			if strings.HasPrefix(se.Name(), ".") || !se.IsDir() {
				continue
			}
			s.scanEntry(cat, logger, name+"/"+se.Name())
		}
	}
	return cat, nil
}

func (s *Store) scanEntry(cat *Catalog, logger *log.Logger, rel string) {
	key, err := ParseKey(rel)
	if err != nil {
		logger.Warn("skipping malformed store entry", "entry", rel, "root", s.Root)
		return
	}
	cat.Add(key)
}

// TempDir creates a fresh directory under <root>/.tmp whose name starts
// with prefix. Temporary directories live on the same filesystem as the
// store so that packages collected from them can be renamed into place.
func (s *Store) TempDir(prefix string) (string, error) {
	base := filepath.Join(s.Root, tmpDirName)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("create store temp area: %w", err)
	}
	dir := filepath.Join(base, prefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	return dir, nil
}
