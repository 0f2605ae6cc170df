// Package store persists the snippet history and the merged knowledge graph.
// Both records are read and written as whole values; there is no partial
// update primitive, matching the extension's key-value storage.
package store

import (
	"errors"

	"github.com/weaverhq/goweaver/internal/graph"
)

// Snippet is one saved unit of text plus the extraction batch attributed to
// it at save time. The batch is a denormalized copy; the authoritative
// aggregate is State.Graph. Nodes and Relationships are empty when extraction
// failed (fallback save path).
type Snippet struct {
	ID            string               `json:"id"`
	Text          string               `json:"text"`
	SourceURL     string               `json:"sourceUrl"`
	Timestamp     int64                `json:"timestamp"` // Unix millis
	Nodes         []graph.Node         `json:"nodes"`
	Relationships []graph.Relationship `json:"relationships"`
}

// Batch returns the snippet's own extraction result, as used by Rebuild.
func (s Snippet) Batch() graph.Batch {
	return graph.Batch{Nodes: s.Nodes, Relationships: s.Relationships}
}

// State is the entire persisted value: the snippet list and the merged graph,
// plus a version counter used for optimistic concurrency. The version is
// store bookkeeping, not part of either logical record.
type State struct {
	Snippets []Snippet   `json:"snippets"`
	Graph    graph.Graph `json:"graph"`
	Version  int64       `json:"version"`
}

// NewState returns an empty state at version 0.
func NewState() *State {
	return &State{Snippets: []Snippet{}, Graph: graph.New()}
}

// SnippetByID returns the snippet with the given ID, or nil.
func (st *State) SnippetByID(id string) *Snippet {
	for i := range st.Snippets {
		if st.Snippets[i].ID == id {
			return &st.Snippets[i]
		}
	}
	return nil
}

// Batches returns every snippet's extraction batch in stored order.
func (st *State) Batches() []graph.Batch {
	batches := make([]graph.Batch, len(st.Snippets))
	for i, s := range st.Snippets {
		batches[i] = s.Batch()
	}
	return batches
}

// ErrVersionConflict is returned by Save when the stored version no longer
// matches the expected one, meaning another writer got there first. Callers
// re-read and retry their read-modify-write.
var ErrVersionConflict = errors.New("store: version conflict")

// Storer reads and writes the persisted state as whole values.
// Implementations must be safe for concurrent use.
type Storer interface {
	// Load returns a copy of the current state. A fresh store yields an
	// empty state at version 0.
	Load() (*State, error)

	// Save persists next if and only if the stored version still equals
	// expect. On success the stored version becomes expect+1 and
	// next.Version is updated to match; otherwise ErrVersionConflict.
	Save(next *State, expect int64) error

	Close() error
}

// normalize replaces nil slices with empty ones after decoding, so the state
// always serializes to [] rather than null.
func normalize(st *State) {
	if st.Snippets == nil {
		st.Snippets = []Snippet{}
	}
	if st.Graph.Nodes == nil {
		st.Graph.Nodes = []graph.Node{}
	}
	if st.Graph.Relationships == nil {
		st.Graph.Relationships = []graph.Relationship{}
	}
}

// cloneState deep-copies a state so callers can mutate their copy freely.
func cloneState(st *State) *State {
	out := &State{
		Snippets: make([]Snippet, len(st.Snippets)),
		Graph: graph.Graph{
			Nodes:         make([]graph.Node, len(st.Graph.Nodes)),
			Relationships: make([]graph.Relationship, len(st.Graph.Relationships)),
		},
		Version: st.Version,
	}
	copy(out.Graph.Nodes, st.Graph.Nodes)
	copy(out.Graph.Relationships, st.Graph.Relationships)
	for i, s := range st.Snippets {
		cp := s
		cp.Nodes = make([]graph.Node, len(s.Nodes))
		copy(cp.Nodes, s.Nodes)
		cp.Relationships = make([]graph.Relationship, len(s.Relationships))
		copy(cp.Relationships, s.Relationships)
		out.Snippets[i] = cp
	}
	return out
}
