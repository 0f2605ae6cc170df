// Package relevance picks the snippets worth injecting into a chat prompt.
package relevance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weaverhq/goweaver/internal/extract"
	"github.com/weaverhq/goweaver/internal/oracle"
	"github.com/weaverhq/goweaver/internal/prompt"
	"github.com/weaverhq/goweaver/internal/store"
)

// MalformedRelevanceError reports a ranking completion that was not a JSON
// array of integers.
type MalformedRelevanceError struct {
	Raw string
	Err error
}

func (e *MalformedRelevanceError) Error() string {
	return fmt.Sprintf("relevance: malformed ranking response: %v", e.Err)
}

func (e *MalformedRelevanceError) Unwrap() error {
	return e.Err
}

// Selector ranks saved snippets against a query using the oracle.
type Selector struct {
	llm oracle.Client
}

func NewSelector(llm oracle.Client) *Selector {
	return &Selector{llm: llm}
}

// Select returns up to maxResults snippets ordered most relevant first. When
// the collection already fits within maxResults the oracle is not consulted
// and snippets are returned in stored order.
func (s *Selector) Select(ctx context.Context, query string, snippets []store.Snippet, maxResults int) ([]store.Snippet, error) {
	if len(snippets) == 0 {
		return []store.Snippet{}, nil
	}
	if len(snippets) <= maxResults {
		out := make([]store.Snippet, len(snippets))
		copy(out, snippets)
		return out, nil
	}

	completion, err := s.llm.Complete(ctx, prompt.Relevance(query, snippets, maxResults))
	if err != nil {
		return nil, err
	}

	indices, err := ParseIndices(completion)
	if err != nil {
		return nil, err
	}

	out := make([]store.Snippet, 0, maxResults)
	for _, i := range indices {
		// Out-of-range indices are oracle hallucinations; drop them.
		if i < 0 || i >= len(snippets) {
			continue
		}
		out = append(out, snippets[i])
		if len(out) == maxResults {
			break
		}
	}
	return out, nil
}

// ParseIndices decodes a ranking completion into snippet indices, tolerating
// markdown fences the same way extraction parsing does.
func ParseIndices(completion string) ([]int, error) {
	raw := extract.StripFences(completion)

	var indices []int
	if err := json.Unmarshal([]byte(raw), &indices); err != nil {
		return nil, &MalformedRelevanceError{Raw: raw, Err: err}
	}
	return indices, nil
}
