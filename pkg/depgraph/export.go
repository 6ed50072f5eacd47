package depgraph

import (
	"encoding/json"
	"fmt"
	"io"
)

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Kind    string `json:"kind"`
}

type jsonEdge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Requirement string `json:"requirement,omitempty"`
	Dev         bool   `json:"dev,omitempty"`
}

// WriteJSON encodes g as indented JSON with a "nodes" and an "edges" array.
func WriteJSON(g *Graph, w io.Writer) error {
	out := jsonGraph{
		Nodes: make([]jsonNode, 0, g.NodeCount()),
		Edges: make([]jsonEdge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, jsonNode{ID: n.ID, Name: n.Name, Version: n.Version, Kind: n.Kind.String()})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, jsonEdge(e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
