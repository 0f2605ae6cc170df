// Package weaver orchestrates the snippet lifecycle: capture, extraction,
// graph merging, relevance selection and prompt optimization, all on top of a
// versioned store.
package weaver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/weaverhq/goweaver/internal/concepts"
	"github.com/weaverhq/goweaver/internal/extract"
	"github.com/weaverhq/goweaver/internal/graph"
	"github.com/weaverhq/goweaver/internal/oracle"
	"github.com/weaverhq/goweaver/internal/prompt"
	"github.com/weaverhq/goweaver/internal/relevance"
	"github.com/weaverhq/goweaver/internal/store"
)

// ErrSnippetNotFound is returned when a delete names an unknown snippet ID.
var ErrSnippetNotFound = errors.New("weaver: snippet not found")

// DefaultMaxContextSnippets caps how many snippets relevance selection may
// inject into an optimized prompt.
const DefaultMaxContextSnippets = 5

// casRetries bounds optimistic save attempts before giving up. Conflicts are
// rare (one browser, few surfaces) so the bound mostly documents intent.
const casRetries = 8

// Engine is the application core. All oracle round trips happen outside the
// store's compare-and-swap critical section; only the cheap merge/rebuild is
// retried on version conflicts.
type Engine struct {
	store       store.Storer
	llm         oracle.Client
	extractor   *extract.Extractor
	selector    *relevance.Selector
	maxSnippets int
	logger      *log.Logger

	now   func() int64
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxContextSnippets overrides the relevance selection cap.
func WithMaxContextSnippets(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSnippets = n
		}
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine wires an engine over a store and a completion client.
func NewEngine(st store.Storer, llm oracle.Client, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		llm:         llm,
		extractor:   extract.NewExtractor(llm),
		selector:    relevance.NewSelector(llm),
		maxSnippets: DefaultMaxContextSnippets,
		logger:      log.New(os.Stderr, "[weaver] ", log.LstdFlags),
		now:         func() int64 { return time.Now().UnixMilli() },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SaveSnippet captures text, runs extraction against the current graph and
// persists both the snippet and the merged graph. Extraction failure is
// recoverable: the snippet is saved with an empty batch and the failure is
// logged, never returned.
func (e *Engine) SaveSnippet(ctx context.Context, text, sourceURL string) (*store.Snippet, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, fmt.Errorf("weaver: load before save: %w", err)
	}

	batch := e.extractBatch(ctx, text, st.Graph)

	snippet := store.Snippet{
		ID:            e.newID(),
		Text:          text,
		SourceURL:     sourceURL,
		Timestamp:     e.now(),
		Nodes:         batch.Nodes,
		Relationships: batch.Relationships,
	}

	err = e.casSave(st, func(cur *store.State) error {
		cur.Snippets = append(cur.Snippets, snippet)
		cur.Graph = graph.Merge(cur.Graph, batch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snippet, nil
}

func (e *Engine) extractBatch(ctx context.Context, text string, g graph.Graph) graph.Batch {
	batch, err := e.extractor.Extract(ctx, text, g)
	if err != nil {
		e.logger.Printf("extraction failed, saving snippet without graph data: %v", err)
		return graph.Batch{Nodes: []graph.Node{}, Relationships: []graph.Relationship{}}
	}
	return batch
}

// DeleteSnippet removes a snippet and rebuilds the graph from the survivors,
// so nothing contributed only by the deleted snippet lingers.
func (e *Engine) DeleteSnippet(ctx context.Context, id string) error {
	st, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("weaver: load before delete: %w", err)
	}
	return e.casSave(st, func(cur *store.State) error {
		kept := make([]store.Snippet, 0, len(cur.Snippets))
		found := false
		for _, s := range cur.Snippets {
			if s.ID == id {
				found = true
				continue
			}
			kept = append(kept, s)
		}
		if !found {
			return ErrSnippetNotFound
		}
		cur.Snippets = kept
		cur.Graph = graph.Rebuild(batches(kept))
		return nil
	})
}

// ClearAll resets the store to an empty state.
func (e *Engine) ClearAll(ctx context.Context) error {
	st, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("weaver: load before clear: %w", err)
	}
	return e.casSave(st, func(cur *store.State) error {
		fresh := store.NewState()
		cur.Snippets = fresh.Snippets
		cur.Graph = fresh.Graph
		return nil
	})
}

// OptimizeQuery enriches a chat prompt with relevant saved context. Every
// oracle failure degrades instead of erroring: selection failure falls back
// to the first snippets in stored order, optimization failure falls back to
// prepending the raw context block.
func (e *Engine) OptimizeQuery(ctx context.Context, original string) (string, error) {
	st, err := e.store.Load()
	if err != nil {
		return "", fmt.Errorf("weaver: load before optimize: %w", err)
	}
	if len(st.Snippets) == 0 {
		return original, nil
	}

	selected, err := e.selector.Select(ctx, original, st.Snippets, e.maxSnippets)
	if err != nil {
		e.logger.Printf("relevance selection failed, using first %d snippets: %v", e.maxSnippets, err)
		n := min(e.maxSnippets, len(st.Snippets))
		selected = st.Snippets[:n]
	}
	if len(selected) == 0 {
		return original, nil
	}

	contextText := prompt.FormatContext(selected)
	optimized, err := e.llm.Complete(ctx, prompt.Optimize(original, contextText))
	if err != nil {
		e.logger.Printf("prompt optimization failed, prepending raw context: %v", err)
		return contextText + original, nil
	}
	return extract.StripFences(optimized), nil
}

// GetGraph returns the current merged graph.
func (e *Engine) GetGraph(ctx context.Context) (graph.Graph, error) {
	st, err := e.store.Load()
	if err != nil {
		return graph.Graph{}, fmt.Errorf("weaver: load graph: %w", err)
	}
	return st.Graph, nil
}

// GetSnippets returns all saved snippets in capture order.
func (e *Engine) GetSnippets(ctx context.Context) ([]store.Snippet, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, fmt.Errorf("weaver: load snippets: %w", err)
	}
	return st.Snippets, nil
}

// RelatedSnippets returns the snippets connected to a graph node, either
// because extraction attributed the node to them or because the snippet text
// mentions the node's name.
func (e *Engine) RelatedSnippets(ctx context.Context, nodeID string) ([]store.Snippet, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, fmt.Errorf("weaver: load related snippets: %w", err)
	}

	nodeName := ""
	if n := st.Graph.NodeByID(nodeID); n != nil {
		nodeName = n.Name
	}

	idx := concepts.Build(st.Graph)
	out := []store.Snippet{}
	for _, s := range st.Snippets {
		if snippetRefersTo(s, nodeID, nodeName) || mentions(idx, s.Text, nodeID) {
			out = append(out, s)
		}
	}
	return out, nil
}

// casSave applies mutate to fresh copies of the state until the optimistic
// save succeeds. The first attempt reuses the state the caller already
// loaded.
func (e *Engine) casSave(loaded *store.State, mutate func(*store.State) error) error {
	st := loaded
	for attempt := 0; attempt < casRetries; attempt++ {
		if err := mutate(st); err != nil {
			return err
		}

		err := e.store.Save(st, st.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return fmt.Errorf("weaver: save state: %w", err)
		}

		e.logger.Printf("version conflict on save, retrying (attempt %d)", attempt+1)
		st, err = e.store.Load()
		if err != nil {
			return fmt.Errorf("weaver: reload after conflict: %w", err)
		}
	}
	return fmt.Errorf("weaver: save state: %w", store.ErrVersionConflict)
}

func batches(snippets []store.Snippet) []graph.Batch {
	out := make([]graph.Batch, len(snippets))
	for i, s := range snippets {
		out[i] = s.Batch()
	}
	return out
}

// snippetRefersTo matches a snippet's own batch against a node by ID or by
// case-insensitive name. Name matching matters because merge discards
// duplicate nodes: a later snippet's copy of "Python" keeps its own ID, never
// the surviving node's.
func snippetRefersTo(s store.Snippet, nodeID, nodeName string) bool {
	for _, n := range s.Nodes {
		if n.ID == nodeID || (nodeName != "" && strings.EqualFold(n.Name, nodeName)) {
			return true
		}
	}
	for _, r := range s.Relationships {
		if r.FromNode == nodeID || r.ToNode == nodeID {
			return true
		}
	}
	return false
}

func mentions(idx *concepts.Index, text, nodeID string) bool {
	for _, id := range idx.MentionedIDs(text) {
		if id == nodeID {
			return true
		}
	}
	return false
}
