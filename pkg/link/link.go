// Package link builds the symlink forest that makes store entries visible
// to a project.
//
// A project's node_modules/<name> points at the store directory of the
// resolved version. Every store entry in turn gets its own private
// node_modules with links for its dependencies, built once on first use and
// then shared by every project that links to that version.
package link

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storelink/pkg/collect"
	"github.com/matzehuels/storelink/pkg/errors"
	"github.com/matzehuels/storelink/pkg/manifest"
	"github.com/matzehuels/storelink/pkg/observability"
	"github.com/matzehuels/storelink/pkg/resolve"
	"github.com/matzehuels/storelink/pkg/store"
)

// Stats counts what a Linker changed on disk.
type Stats struct {
	Created  int
	Repaired int
}

// Linker links resolved packages into node_modules directories. It is not
// safe for concurrent use; one Linker should serve a whole install run so
// every store entry's dependencies are walked at most once.
type Linker struct {
	Store   *store.Store
	Catalog *store.Catalog
	Used    *store.Catalog
	Logger  *log.Logger
	Stats   Stats

	linked map[store.PackageKey]bool
}

// New returns a Linker resolving against catalog and recording into used.
func New(s *store.Store, catalog, used *store.Catalog, logger *log.Logger) *Linker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Linker{
		Store:   s,
		Catalog: catalog,
		Used:    used,
		Logger:  logger,
		linked:  make(map[store.PackageKey]bool),
	}
}

// Link resolves requirement for name against the catalog and places a
// symlink at <nodeModules>/<name> pointing at the store entry, then links
// that entry's own dependencies beneath it.
//
// A requirement nothing in the catalog satisfies is UNRESOLVED_DEPENDENCY.
// An entry already present at the destination counts as success, except a
// link to a different store entry or a dangling link, which is replaced.
func (l *Linker) Link(ctx context.Context, nodeModules, name, requirement string) error {
	version, ok, err := resolve.Resolve(name, requirement, l.Catalog)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeUnresolvedDependency,
			"no stored version of %s satisfies %q", name, requirement)
	}
	key := store.PackageKey{Name: name, Version: version}
	target := l.Store.Path(key)
	dest := filepath.Join(nodeModules, filepath.FromSlash(name))

	created, err := l.place(dest, target)
	if err != nil {
		return err
	}
	observability.Install().OnLink(ctx, dest, target, created)
	l.Used.Add(key)

	if l.linked[key] {
		return nil
	}
	l.linked[key] = true

	pkg, err := manifest.ReadPackage(target)
	if err != nil {
		return fmt.Errorf("link %s: %w", key, err)
	}
	private := filepath.Join(target, collect.NodeModules)
	for _, dep := range sortedNames(pkg.Dependencies) {
		if err := l.Link(ctx, private, dep, pkg.Dependencies[dep]); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// place creates dest as a symlink to target and reports whether it wrote
// anything.
func (l *Linker) place(dest, target string) (bool, error) {
	info, err := os.Lstat(dest)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		current, err := os.Readlink(dest)
		if err != nil {
			return false, fmt.Errorf("read link %s: %w", dest, err)
		}
		if current == target || !l.stale(dest, current, target) {
			return false, nil
		}
		if err := os.Remove(dest); err != nil {
			return false, fmt.Errorf("replace link %s: %w", dest, err)
		}
		l.Stats.Repaired++
		l.Logger.Debug("replacing stale link", "path", dest, "old", current, "new", target)
	case err == nil:
		l.Logger.Debug("keeping existing entry", "path", dest)
		return false, nil
	case !os.IsNotExist(err):
		return false, fmt.Errorf("link %s: %w", dest, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	if err := os.Symlink(target, dest); err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("link %s: %w", dest, err)
	}
	l.Stats.Created++
	return true, nil
}

// stale reports whether an existing link may be overwritten: it dangles or
// points at some other store entry.
func (l *Linker) stale(dest, current, target string) bool {
	if !filepath.IsAbs(current) {
		current = filepath.Join(filepath.Dir(dest), current)
	}
	if _, err := os.Stat(current); os.IsNotExist(err) {
		return true
	}
	real, err := filepath.EvalSymlinks(current)
	if err != nil {
		return false
	}
	return real != target && l.Store.Contains(real)
}

// Unlink removes <nodeModules>/<name>. A missing entry is not an error.
// It reports whether anything was removed.
func Unlink(nodeModules, name string) (bool, error) {
	dest := filepath.Join(nodeModules, filepath.FromSlash(name))
	info, err := os.Lstat(dest)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unlink %s: %w", dest, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		err = os.Remove(dest)
	} else {
		err = os.RemoveAll(dest)
	}
	if err != nil {
		return false, fmt.Errorf("unlink %s: %w", dest, err)
	}
	return true, nil
}

func sortedNames(deps map[string]string) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
