// Package depgraph models the resolved dependency graph of a project.
//
// Nodes are the project itself ([ProjectRootNodeID]), resolved store
// entries (one per name@version) and requirements nothing in the store
// satisfies. Edges carry the requirement string that produced them. Unlike
// the symlink forest on disk the graph may contain cycles, since npm
// packages are allowed to depend on each other mutually.
//
// The graph can be written as JSON with [WriteJSON], as Graphviz DOT with
// [ToDOT], or rendered to SVG with [RenderSVG].
package depgraph
