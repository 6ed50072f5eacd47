package depgraph

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] for an empty ID.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the ID is taken.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when From is not a node.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when To is not a node.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// ProjectRootNodeID is the ID of the node standing for the project itself.
const ProjectRootNodeID = "__project__"

// NodeKind tells project, resolved and unresolved nodes apart.
type NodeKind int

const (
	// KindPackage is a store entry.
	KindPackage NodeKind = iota
	// KindProject is the project being installed.
	KindProject
	// KindMissing is a requirement no stored version satisfies.
	KindMissing
)

var kindNames = map[NodeKind]string{
	KindPackage: "package",
	KindProject: "project",
	KindMissing: "missing",
}

func (k NodeKind) String() string { return kindNames[k] }

// Node is a vertex of the dependency graph.
type Node struct {
	ID      string
	Name    string
	Version string // exact version, or the unmet requirement for KindMissing
	Kind    NodeKind
}

// Label is the text shown for the node in rendered output.
func (n Node) Label() string {
	switch {
	case n.Kind == KindProject && n.Name != "":
		return n.Name
	case n.Kind == KindMissing:
		return n.Name + "@" + n.Version + " (missing)"
	case n.Version != "":
		return n.Name + "@" + n.Version
	}
	return n.ID
}

// Edge points from a dependent to one of its dependencies.
type Edge struct {
	From        string
	To          string
	Requirement string
	Dev         bool // declared in devDependencies
}

// Graph is a directed dependency graph. The zero value is not usable; call
// [New]. It is not safe for concurrent use.
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
	}
}

// AddNode adds n. IDs must be unique and non-empty.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, ok := g.nodes[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	g.nodes[n.ID] = &n
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Adding the same
// From/To pair twice is a no-op.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(g.outgoing[e.From], e.To) {
		return nil
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes, the project first and the rest sorted by ID.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int {
		if (a.Kind == KindProject) != (b.Kind == KindProject) {
			if a.Kind == KindProject {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	return nodes
}

// Edges returns a copy of the edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Children returns the IDs n depends on, in insertion order.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Missing returns the unresolved nodes sorted by ID.
func (g *Graph) Missing() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.Kind == KindMissing {
			out = append(out, n)
		}
	}
	return out
}
