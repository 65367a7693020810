// Package relation walks the reference graph around one file.
package relation

import (
	"fmt"
	"sort"
)

// Direction selects which edges a traversal follows.
type Direction string

const (
	// Down follows edges where the file is the importer.
	Down Direction = "down"
	// Up follows edges where the file is imported.
	Up Direction = "up"
	// Both is only understood by callers that merge an Up and a Down walk.
	Both Direction = "both"
)

// ParseDirection validates a direction name.
func ParseDirection(raw string) (Direction, error) {
	switch Direction(raw) {
	case Down, Up, Both:
		return Direction(raw), nil
	case "":
		return Down, nil
	default:
		return "", fmt.Errorf("invalid direction %q (supported: up, down, both)", raw)
	}
}

// Attr is a file's documented identity.
type Attr struct {
	Kind        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Info describes one file node.
type Info struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Attr *Attr  `json:"attr,omitempty"`
}

// Edge is a file-to-file reference.
type Edge struct {
	From uint
	To   uint
}

// Graph is a read-only adjacency snapshot of file edges.
type Graph struct {
	files map[uint]Info
	down  map[uint][]uint
	up    map[uint][]uint
}

// NewGraph indexes files and edges. Repeated edges collapse into one and
// edges touching unknown files are dropped.
func NewGraph(files []Info, edges []Edge) *Graph {
	g := &Graph{
		files: make(map[uint]Info, len(files)),
		down:  make(map[uint][]uint),
		up:    make(map[uint][]uint),
	}
	for _, f := range files {
		g.files[f.ID] = f
	}
	seen := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		if _, ok := g.files[e.From]; !ok {
			continue
		}
		if _, ok := g.files[e.To]; !ok {
			continue
		}
		seen[e] = true
		g.down[e.From] = append(g.down[e.From], e.To)
		g.up[e.To] = append(g.up[e.To], e.From)
	}
	return g
}

// File returns the info of one file.
func (g *Graph) File(id uint) (Info, bool) {
	f, ok := g.files[id]
	return f, ok
}

// Node is one level of a relation tree.
type Node struct {
	Info
	Children []*Node `json:"children"`
}

// GetRelation builds the relation tree of id in one direction. Each file is
// expanded at most once per call; later occurrences become leaves, which
// keeps cycles finite.
func GetRelation(g *Graph, id uint, dir Direction) (*Node, bool) {
	if _, ok := g.files[id]; !ok {
		return nil, false
	}
	adjacency := g.down
	if dir == Up {
		adjacency = g.up
	}
	visited := make(map[uint]bool)
	return expand(g, adjacency, id, visited), true
}

func expand(g *Graph, adjacency map[uint][]uint, id uint, visited map[uint]bool) *Node {
	node := &Node{Info: g.files[id], Children: make([]*Node, 0)}
	visited[id] = true
	for _, next := range adjacency[id] {
		if visited[next] {
			node.Children = append(node.Children, &Node{Info: g.files[next], Children: make([]*Node, 0)})
			continue
		}
		node.Children = append(node.Children, expand(g, adjacency, next, visited))
	}
	return node
}

// FlatInfo is a node entry in a flattened relation.
type FlatInfo struct {
	Info
	IsEntry bool `json:"isEntry"`
}

// Relation is a directed import edge: From imports To.
type Relation struct {
	From uint `json:"from"`
	To   uint `json:"to"`
}

// Flat is a relation tree reduced to unique nodes and edges.
type Flat struct {
	InfoMap   map[uint]FlatInfo `json:"infoMap"`
	Relations []Relation        `json:"relations"`
}

// Flatten walks tree once. Edges always point from importer to imported, so
// an Up tree yields child -> parent relations.
func Flatten(tree *Node, dir Direction) Flat {
	flat := Flat{InfoMap: make(map[uint]FlatInfo), Relations: make([]Relation, 0)}
	if tree == nil {
		return flat
	}
	seen := make(map[Relation]bool)
	var walk func(n *Node)
	walk = func(n *Node) {
		if _, ok := flat.InfoMap[n.ID]; !ok {
			flat.InfoMap[n.ID] = FlatInfo{Info: n.Info, IsEntry: n.ID == tree.ID}
		}
		for _, child := range n.Children {
			rel := Relation{From: n.ID, To: child.ID}
			if dir == Up {
				rel = Relation{From: child.ID, To: n.ID}
			}
			if !seen[rel] {
				seen[rel] = true
				flat.Relations = append(flat.Relations, rel)
			}
			walk(child)
		}
	}
	walk(tree)
	return flat
}

// Merge unions several flattened relations. A node is an entry if any input
// marks it so.
func Merge(flats ...Flat) Flat {
	out := Flat{InfoMap: make(map[uint]FlatInfo), Relations: make([]Relation, 0)}
	seen := make(map[Relation]bool)
	for _, f := range flats {
		for id, info := range f.InfoMap {
			if existing, ok := out.InfoMap[id]; ok {
				existing.IsEntry = existing.IsEntry || info.IsEntry
				out.InfoMap[id] = existing
				continue
			}
			out.InfoMap[id] = info
		}
		for _, rel := range f.Relations {
			if !seen[rel] {
				seen[rel] = true
				out.Relations = append(out.Relations, rel)
			}
		}
	}
	return out
}

// SortedInfos returns the nodes of a Flat ordered by path.
func (f Flat) SortedInfos() []FlatInfo {
	out := make([]FlatInfo, 0, len(f.InfoMap))
	for _, info := range f.InfoMap {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].ID < out[j].ID
	})
	return out
}
