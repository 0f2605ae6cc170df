// Package extract turns oracle completions into graph batches.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/weaverhq/goweaver/internal/graph"
)

// MalformedExtractionError reports a completion that could not be decoded as
// an extraction batch. Raw carries the completion text after fence stripping.
type MalformedExtractionError struct {
	Raw string
	Err error
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf("extract: malformed extraction response: %v", e.Err)
}

func (e *MalformedExtractionError) Unwrap() error {
	return e.Err
}

// StripFences removes a leading ```json or ``` fence and a trailing ```
// fence. The oracle wraps its JSON in markdown fences often enough that
// treating them as noise is the practical contract.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseBatch decodes an extraction completion into a batch. Nodes with an
// empty type are assigned "other". Any decode failure, including trailing
// data after the JSON object, yields a *MalformedExtractionError.
func ParseBatch(completion string) (graph.Batch, error) {
	raw := StripFences(completion)

	var batch graph.Batch
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&batch); err != nil {
		return graph.Batch{}, &MalformedExtractionError{Raw: raw, Err: err}
	}
	if err := requireEOF(dec); err != nil {
		return graph.Batch{}, &MalformedExtractionError{Raw: raw, Err: err}
	}

	if batch.Nodes == nil {
		batch.Nodes = []graph.Node{}
	}
	if batch.Relationships == nil {
		batch.Relationships = []graph.Relationship{}
	}
	for i := range batch.Nodes {
		if batch.Nodes[i].Type == "" {
			batch.Nodes[i].Type = "other"
		}
	}
	return batch, nil
}

func requireEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("trailing data after JSON object: %s", bytes.TrimSpace(extra))
}
