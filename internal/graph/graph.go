// Package graph defines the knowledge graph model and the merge rules that
// keep it deduplicated across many independent extraction calls.
package graph

import "strings"

// Node is a graph vertex: an entity or concept extracted from saved text.
// Type is an open string enum (person, concept, organization, topic, ...);
// the oracle invents new values freely and we keep them as-is.
type Node struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Relationship is a directed, typed edge between two nodes.
// FromNode and ToNode hold Node IDs as the oracle assigned them; they are
// not guaranteed to resolve (see Merge).
type Relationship struct {
	ID               string `json:"id"`
	FromNode         string `json:"fromNode"`
	ToNode           string `json:"toNode"`
	RelationshipType string `json:"relationshipType"`
	Description      string `json:"description"`
}

// Batch is one extraction result: the nodes and relationships the oracle
// produced for a single snippet.
type Batch struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// Graph is the merged, deduplicated aggregate over all saved snippets.
// Order matters: existing entries keep their relative order and new unique
// entries are appended in arrival order, so Graph uses slices, not maps.
type Graph struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// New returns an empty graph with non-nil slices, so it serializes as
// {"nodes":[],"relationships":[]} rather than nulls.
func New() Graph {
	return Graph{Nodes: []Node{}, Relationships: []Relationship{}}
}

// Empty reports whether the graph holds no nodes and no relationships.
func (g Graph) Empty() bool {
	return len(g.Nodes) == 0 && len(g.Relationships) == 0
}

// NodeByID returns the node with the given ID, or nil.
func (g Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodeByName returns the node with the given name (case-insensitive), or nil.
func (g Graph) NodeByName(name string) *Node {
	for i := range g.Nodes {
		if strings.EqualFold(g.Nodes[i].Name, name) {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Merge folds an extraction batch into an existing graph and returns the next
// graph state. The input graph is not mutated.
//
// Dedup rules:
//   - A node is a duplicate if an existing node matches its name
//     case-insensitively OR shares its exact ID. Duplicates are discarded
//     whole: the existing node wins and none of its fields are updated
//     (first write wins).
//   - A relationship is a duplicate if an existing one has the identical
//     (fromNode, toNode, relationshipType) triple. Direction is significant.
//
// The merge is append-only: nothing existing is removed or modified. A
// relationship referencing a node whose ID was just discarded as a duplicate
// is kept as-is, NOT remapped to the surviving node's ID. Such dangling
// references are tolerated throughout the system; removal only ever happens
// via Rebuild after a snippet is deleted.
func Merge(existing Graph, in Batch) Graph {
	next := Graph{
		Nodes:         make([]Node, len(existing.Nodes), len(existing.Nodes)+len(in.Nodes)),
		Relationships: make([]Relationship, len(existing.Relationships), len(existing.Relationships)+len(in.Relationships)),
	}
	copy(next.Nodes, existing.Nodes)
	copy(next.Relationships, existing.Relationships)

	for _, n := range in.Nodes {
		if !containsNode(next.Nodes, n) {
			next.Nodes = append(next.Nodes, n)
		}
	}
	for _, r := range in.Relationships {
		if !containsTriple(next.Relationships, r) {
			next.Relationships = append(next.Relationships, r)
		}
	}
	return next
}

// Rebuild reconstructs the graph from per-snippet extraction batches in their
// stored order, applying the same dedup rules as Merge. The result is a pure
// function of the batch list: after a snippet deletion this is the
// authoritative reconciliation between snippet history and graph.
func Rebuild(batches []Batch) Graph {
	g := New()
	for _, b := range batches {
		g = Merge(g, b)
	}
	return g
}

func containsNode(nodes []Node, n Node) bool {
	for i := range nodes {
		if strings.EqualFold(nodes[i].Name, n.Name) || nodes[i].ID == n.ID {
			return true
		}
	}
	return false
}

func containsTriple(rels []Relationship, r Relationship) bool {
	for i := range rels {
		if rels[i].FromNode == r.FromNode &&
			rels[i].ToNode == r.ToNode &&
			rels[i].RelationshipType == r.RelationshipType {
			return true
		}
	}
	return false
}
