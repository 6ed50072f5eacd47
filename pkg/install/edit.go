package install

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/storelink/pkg/collect"
	"github.com/matzehuels/storelink/pkg/errors"
	"github.com/matzehuels/storelink/pkg/fetch"
	"github.com/matzehuels/storelink/pkg/link"
	"github.com/matzehuels/storelink/pkg/manifest"
	"github.com/matzehuels/storelink/pkg/resolve"
)

// DefaultSavePrefix is prepended to versions picked for unversioned adds.
const DefaultSavePrefix = "^"

// AddOptions controls Add.
type AddOptions struct {
	// Dev declares the packages in devDependencies.
	Dev bool
	// Exact saves picked versions without a range prefix.
	Exact bool
	// SavePrefix replaces DefaultSavePrefix. Ignored with Exact.
	SavePrefix string
}

func (o AddOptions) prefix() string {
	switch {
	case o.Exact:
		return ""
	case o.SavePrefix != "":
		return o.SavePrefix
	}
	return DefaultSavePrefix
}

// Added is a dependency declared by Add.
type Added struct {
	Name        string
	Requirement string
	Dev         bool
}

// Add declares specs ("name" or "name@requirement") in the project manifest
// and installs. A spec without a requirement gets a version from
// [fetch.PickVersion], preferring one already in the store. The manifest is
// written only after the install succeeds.
func (e *Engine) Add(ctx context.Context, dir string, specs []string, opts AddOptions) ([]Added, *Result, error) {
	if len(specs) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no packages to add")
	}
	project, err := loadProject(dir)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := e.scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	added := make([]Added, 0, len(specs))
	for _, spec := range specs {
		name, req, err := manifest.ParseSpecifier(spec)
		if err != nil {
			return nil, nil, err
		}
		if req == "" {
			if e.Versions == nil {
				return nil, nil, errors.New(errors.ErrCodeInternal, "no version source configured for %s", name)
			}
			version, fresh, err := fetch.PickVersion(ctx, e.Versions, catalog, name)
			if err != nil {
				return nil, nil, err
			}
			e.logger().Debug("picked version", "package", name, "version", version, "stored", !fresh)
			req = opts.prefix() + version
		} else if err := resolve.Validate(req); err != nil {
			return nil, nil, err
		}
		project.AddDependency(name, req, opts.Dev)
		added = append(added, Added{Name: name, Requirement: req, Dev: opts.Dev})
	}

	res, err := e.install(ctx, project, catalog, project.Deps(true))
	if err != nil {
		return nil, nil, err
	}
	if project.Dirty() {
		if err := project.Save(); err != nil {
			return nil, nil, err
		}
	}
	return added, res, nil
}

// RemoveResult reports what Remove changed.
type RemoveResult struct {
	Unlinked []string // names whose node_modules entry was removed
	Dropped  []string // names removed from the manifest
}

// Remove unlinks names from the project's node_modules and drops them from
// both dependency maps. Names that are neither linked nor declared are
// ignored, and the manifest is rewritten only when something changed. The
// store is never touched.
func (e *Engine) Remove(ctx context.Context, dir string, names []string) (*RemoveResult, error) {
	project, err := loadProject(dir)
	if err != nil {
		return nil, err
	}
	nodeModules := filepath.Join(project.Dir, collect.NodeModules)

	res := &RemoveResult{}
	for _, name := range names {
		if err := errors.ValidateNpmPackageName(name); err != nil {
			return nil, err
		}
		removed, err := link.Unlink(nodeModules, name)
		if err != nil {
			return nil, err
		}
		if removed {
			res.Unlinked = append(res.Unlinked, name)
		}
		if project.RemoveDependency(name) {
			res.Dropped = append(res.Dropped, name)
		}
	}
	if project.Dirty() {
		if err := project.Save(); err != nil {
			return nil, err
		}
	}
	e.logger().Debug("removed dependencies", "unlinked", len(res.Unlinked), "dropped", len(res.Dropped))
	return res, nil
}
