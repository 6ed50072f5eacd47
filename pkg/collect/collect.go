// Package collect folds existing node_modules trees into the package store.
//
// A Collector walks a node_modules directory, reads every package manifest
// it finds, harvests nested node_modules first, then moves each package
// into the store under its name@version key. A package whose key is
// already stored is a duplicate and is deleted.
//
// Collection is destructive on its input: after a successful Collect, every
// real package directory under the walked tree has either moved into the
// store or been deleted. Only symlinks the linker can rebuild remain.
package collect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storelink/pkg/manifest"
	"github.com/matzehuels/storelink/pkg/store"
)

// NodeModules is the directory name packages install their dependencies into.
const NodeModules = "node_modules"

// Stats counts what a Collector did to the trees it walked.
type Stats struct {
	Moved     int
	Discarded int
	Unlinked  int
}

// Collector harvests node_modules trees into a store. It is not safe for
// concurrent use. A Collector remembers every directory it has visited, so
// one instance should be used for a whole install run.
type Collector struct {
	Store   *store.Store
	Catalog *store.Catalog // keys present in the store
	Used    *store.Catalog // keys seen in the walked trees
	Logger  *log.Logger
	Stats   Stats

	visited map[string]bool
}

// New returns a Collector that records into catalog and used.
func New(s *store.Store, catalog, used *store.Catalog, logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collector{
		Store:   s,
		Catalog: catalog,
		Used:    used,
		Logger:  logger,
		visited: make(map[string]bool),
	}
}

// Collect walks dir, a node_modules directory. A missing directory is not
// an error. Directories already visited by this Collector, through any
// path, are skipped.
//
// Directories inside the store are walked without modification: their
// packages are recorded as used and nothing is moved or deleted. A
// symlinked package outside the store is recorded, its target is walked
// read-only, and the link itself is removed; the target is never moved.
// The same holds for a package whose own node_modules is a link leaving
// the package directory.
func (c *Collector) Collect(dir string) error {
	return c.collect(dir, false)
}

func (c *Collector) collect(dir string, readonly bool) error {
	canon, err := filepath.EvalSymlinks(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("collect %s: %w", dir, err)
	}
	if c.visited[canon] {
		return nil
	}
	c.visited[canon] = true
	readonly = readonly || c.Store.Contains(canon)

	entries, err := os.ReadDir(canon)
	if err != nil {
		return fmt.Errorf("collect %s: %w", canon, err)
	}
	c.Logger.Debug("collecting", "dir", canon, "entries", len(entries), "readonly", readonly)

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(canon, name)
		if !strings.HasPrefix(name, "@") {
			if err := c.collectPackage(path, readonly); err != nil {
				return err
			}
			continue
		}
		if err := c.collectScope(path, readonly); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) collectScope(dir string, readonly bool) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("collect scope %s: %w", dir, err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := c.collectPackage(filepath.Join(dir, e.Name()), readonly); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) collectPackage(path string, readonly bool) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("collect %s: %w", path, err)
	}

	isLink := info.Mode()&os.ModeSymlink != 0
	real := path
	if isLink {
		real, err = filepath.EvalSymlinks(path)
		if os.IsNotExist(err) {
			return c.dropDanglingLink(path, readonly)
		}
		if err != nil {
			return fmt.Errorf("collect %s: %w", path, err)
		}
		if info, err = os.Stat(real); err != nil {
			return fmt.Errorf("collect %s: %w", path, err)
		}
	}
	if !info.IsDir() {
		return nil
	}

	pkg, err := manifest.ReadPackage(real)
	if err != nil {
		return err
	}
	key, err := pkg.Key()
	if err != nil {
		return fmt.Errorf("collect %s: %w", path, err)
	}
	c.Used.Add(key)

	// Nested dependencies come out before their parent moves or disappears.
	// A link target outside the store is never ours to modify, whether the
	// package itself or only its node_modules is the link.
	nested := filepath.Join(real, NodeModules)
	nestedReadonly := readonly || (isLink && !c.Store.Contains(real)) || c.linksOutside(nested, real)
	if err := c.collect(nested, nestedReadonly); err != nil {
		return err
	}

	if c.Store.Exists(key) {
		c.Catalog.Add(key)
	}

	switch {
	case readonly:
		return nil
	case isLink:
		if real == c.Store.Path(key) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove link %s: %w", path, err)
		}
		c.Stats.Unlinked++
		c.Logger.Debug("removed foreign link", "path", path, "target", real, "key", key)
		return nil
	case c.Store.Exists(key):
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("discard duplicate %s: %w", key, err)
		}
		c.Stats.Discarded++
		c.Logger.Debug("discarded duplicate", "key", key, "path", path)
		return nil
	}

	// A symlinked private node_modules must not travel into the store with
	// the package; only the link is removed, never its target.
	if fi, err := os.Lstat(nested); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(nested); err != nil {
			return fmt.Errorf("remove link %s: %w", nested, err)
		}
	}

	if err := c.Store.Import(path, key); err != nil {
		return err
	}
	c.Catalog.Add(key)
	c.Stats.Moved++
	c.Logger.Debug("moved into store", "key", key, "from", path)
	return nil
}

// linksOutside reports whether dir is a symlink whose target does not lie
// inside pkgDir. Such a tree belongs to someone else and is walked
// read-only.
func (c *Collector) linksOutside(dir, pkgDir string) bool {
	fi, err := os.Lstat(dir)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return false
	}
	target, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(pkgDir, target)
	return err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Collector) dropDanglingLink(path string, readonly bool) error {
	if readonly {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove dangling link %s: %w", path, err)
	}
	c.Stats.Unlinked++
	c.Logger.Debug("removed dangling link", "path", path)
	return nil
}
