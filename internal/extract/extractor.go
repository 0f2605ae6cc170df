package extract

import (
	"context"

	"github.com/weaverhq/goweaver/internal/graph"
	"github.com/weaverhq/goweaver/internal/oracle"
	"github.com/weaverhq/goweaver/internal/prompt"
)

// Extractor runs the extraction pipeline for a single snippet: build the
// prompt against the current graph, call the oracle, parse the completion.
type Extractor struct {
	llm oracle.Client
}

func NewExtractor(llm oracle.Client) *Extractor {
	return &Extractor{llm: llm}
}

// Extract returns the batch of nodes and relationships the oracle proposes
// for text. Oracle failures pass through unchanged; parse failures surface as
// *MalformedExtractionError. Callers decide whether a failure is fatal.
func (e *Extractor) Extract(ctx context.Context, text string, g graph.Graph) (graph.Batch, error) {
	completion, err := e.llm.Complete(ctx, prompt.Extraction(text, g))
	if err != nil {
		return graph.Batch{}, err
	}
	return ParseBatch(completion)
}
