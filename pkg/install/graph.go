package install

import (
	"context"
	stderrors "errors"
	"maps"
	"slices"

	"github.com/matzehuels/storelink/pkg/depgraph"
	"github.com/matzehuels/storelink/pkg/manifest"
	"github.com/matzehuels/storelink/pkg/resolve"
	"github.com/matzehuels/storelink/pkg/store"
)

// Graph resolves the project's dependency closure against the store and
// returns it as a graph. Nothing on disk is modified. Requirements no
// stored version satisfies appear as missing nodes.
func (e *Engine) Graph(ctx context.Context, dir string, includeDev bool) (*depgraph.Graph, error) {
	project, err := loadProject(dir)
	if err != nil {
		return nil, err
	}
	catalog, err := e.scan(ctx)
	if err != nil {
		return nil, err
	}

	g := depgraph.New()
	if err := g.AddNode(depgraph.Node{
		ID:      depgraph.ProjectRootNodeID,
		Name:    project.Name,
		Version: project.Version,
		Kind:    depgraph.KindProject,
	}); err != nil {
		return nil, err
	}

	b := &graphBuilder{store: e.Store, catalog: catalog, graph: g}
	dev := func(name string) bool {
		_, prod := project.Dependencies[name]
		return !prod
	}
	if err := b.visit(depgraph.ProjectRootNodeID, project.Deps(includeDev), dev); err != nil {
		return nil, err
	}
	return g, nil
}

type graphBuilder struct {
	store   *store.Store
	catalog *store.Catalog
	graph   *depgraph.Graph
}

func (b *graphBuilder) visit(from string, deps map[string]string, dev func(string) bool) error {
	for _, name := range slices.Sorted(maps.Keys(deps)) {
		req := deps[name]
		edge := depgraph.Edge{From: from, Requirement: req, Dev: dev != nil && dev(name)}

		version, ok, err := resolve.Resolve(name, req, b.catalog)
		if err != nil {
			return err
		}
		if !ok {
			edge.To = name + "@" + req
			if err := b.add(depgraph.Node{ID: edge.To, Name: name, Version: req, Kind: depgraph.KindMissing}); err != nil {
				return err
			}
			if err := b.graph.AddEdge(edge); err != nil {
				return err
			}
			continue
		}

		key := store.PackageKey{Name: name, Version: version}
		edge.To = key.String()
		_, known := b.graph.Node(edge.To)
		if err := b.add(depgraph.Node{ID: edge.To, Name: name, Version: version}); err != nil {
			return err
		}
		if err := b.graph.AddEdge(edge); err != nil {
			return err
		}
		if known {
			continue
		}
		pkg, err := manifest.ReadPackage(b.store.Path(key))
		if err != nil {
			return err
		}
		if err := b.visit(edge.To, pkg.Dependencies, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *graphBuilder) add(n depgraph.Node) error {
	if err := b.graph.AddNode(n); err != nil && !stderrors.Is(err, depgraph.ErrDuplicateNodeID) {
		return err
	}
	return nil
}
