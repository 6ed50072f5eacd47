// Package install orchestrates a complete install run.
//
// An [Engine] indexes the store, folds whatever node_modules tree the
// project already has into it, fetches requirements nothing stored can
// satisfy, and finally links every declared dependency. Each step is
// idempotent given a consistent store, so re-running an install after a
// failure converges on the same layout.
package install

import (
	"context"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storelink/pkg/collect"
	"github.com/matzehuels/storelink/pkg/errors"
	"github.com/matzehuels/storelink/pkg/fetch"
	"github.com/matzehuels/storelink/pkg/link"
	"github.com/matzehuels/storelink/pkg/manifest"
	"github.com/matzehuels/storelink/pkg/observability"
	"github.com/matzehuels/storelink/pkg/resolve"
	"github.com/matzehuels/storelink/pkg/store"
)

// Engine runs installs against one store.
type Engine struct {
	Store     *store.Store
	Installer fetch.Installer
	Versions  fetch.VersionLister
	Logger    *log.Logger
}

// Options controls Install.
type Options struct {
	// Production skips devDependencies.
	Production bool
}

// Result summarises an install run.
type Result struct {
	Linked    int // links created or repaired
	Fetched   int // requirements handed to the installer
	Moved     int // packages moved into the store
	Discarded int // duplicates of stored packages deleted
	Unlinked  int // foreign or dangling links removed
	Used      []store.PackageKey
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

// Install links every dependency declared in <dir>/package.json.
func (e *Engine) Install(ctx context.Context, dir string, opts Options) (*Result, error) {
	project, err := loadProject(dir)
	if err != nil {
		return nil, err
	}
	catalog, err := e.scan(ctx)
	if err != nil {
		return nil, err
	}
	return e.install(ctx, project, catalog, project.Deps(!opts.Production))
}

func loadProject(dir string) (*manifest.Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "project directory %s", dir)
	}
	return manifest.Load(abs)
}

func (e *Engine) scan(ctx context.Context) (*store.Catalog, error) {
	start := time.Now()
	catalog, err := e.Store.Scan(e.logger())
	if err != nil {
		return nil, err
	}
	observability.Install().OnScan(ctx, e.Store.Root, catalog.Len(), time.Since(start))
	e.logger().Debug("scanned store", "root", e.Store.Root, "keys", catalog.Len())
	return catalog, nil
}

func (e *Engine) install(ctx context.Context, project *manifest.Project, catalog *store.Catalog, deps map[string]string) (*Result, error) {
	logger := e.logger()
	nodeModules := filepath.Join(project.Dir, collect.NodeModules)

	// Everything the old tree held is recorded in seen; only what the
	// linker touches ends up in the result.
	seen := store.NewCatalog()
	collector := collect.New(e.Store, catalog, seen, logger)

	err := collector.Collect(nodeModules)
	observability.Install().OnCollect(ctx, nodeModules, collector.Stats.Moved, collector.Stats.Discarded, err)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if res.Fetched, err = e.fetchMissing(ctx, collector, catalog, deps); err != nil {
		return nil, err
	}

	used := store.NewCatalog()
	linker := link.New(e.Store, catalog, used, logger)
	for _, name := range slices.Sorted(maps.Keys(deps)) {
		if err := linker.Link(ctx, nodeModules, name, deps[name]); err != nil {
			return nil, err
		}
	}

	res.Linked = linker.Stats.Created + linker.Stats.Repaired
	res.Moved = collector.Stats.Moved
	res.Discarded = collector.Stats.Discarded
	res.Unlinked = collector.Stats.Unlinked
	res.Used = used.Keys()
	return res, nil
}

// fetchMissing hands unresolved requirements to the installer until the
// closure of deps resolves or no untried requirement is left. A requirement
// is tried at most once; whatever still does not resolve afterwards is
// reported by the linker.
func (e *Engine) fetchMissing(ctx context.Context, collector *collect.Collector, catalog *store.Catalog, deps map[string]string) (int, error) {
	bridge := &fetch.Bridge{Installer: e.Installer, Store: e.Store, Collector: collector, Logger: e.Logger}
	tried := make(map[requirement]bool)
	fetched := 0

	for {
		missing, err := unresolved(e.Store, catalog, deps)
		if err != nil {
			return fetched, err
		}
		batch := make(map[string]string)
		for _, r := range missing {
			if tried[r] {
				continue
			}
			if _, ok := batch[r.Name]; ok {
				continue
			}
			batch[r.Name] = r.Requirement
			tried[r] = true
		}
		if len(batch) == 0 {
			return fetched, nil
		}
		if e.Installer == nil {
			return fetched, errors.New(errors.ErrCodeInternal, "%d requirements need fetching but no installer is configured", len(batch))
		}

		e.logger().Info("fetching packages", "count", len(batch))
		if err := bridge.Fetch(ctx, batch); err != nil {
			return fetched, err
		}
		fetched += len(batch)
	}
}

type requirement struct {
	Name        string
	Requirement string
}

// unresolved walks the dependency closure of deps through stored manifests
// and returns every requirement no stored version satisfies, in walk order.
func unresolved(s *store.Store, catalog *store.Catalog, deps map[string]string) ([]requirement, error) {
	var missing []requirement
	seen := make(map[store.PackageKey]bool)

	var walk func(deps map[string]string) error
	walk = func(deps map[string]string) error {
		for _, name := range slices.Sorted(maps.Keys(deps)) {
			version, ok, err := resolve.Resolve(name, deps[name], catalog)
			if err != nil {
				return err
			}
			if !ok {
				missing = append(missing, requirement{Name: name, Requirement: deps[name]})
				continue
			}
			key := store.PackageKey{Name: name, Version: version}
			if seen[key] {
				continue
			}
			seen[key] = true
			pkg, err := manifest.ReadPackage(s.Path(key))
			if err != nil {
				return err
			}
			if err := walk(pkg.Dependencies); err != nil {
				return err
			}
		}
		return nil
	}
	return missing, walk(deps)
}
