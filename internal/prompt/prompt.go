// Package prompt builds the oracle prompts. Everything here is a pure string
// builder; no function in this package talks to the oracle.
package prompt

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/weaverhq/goweaver/internal/graph"
	"github.com/weaverhq/goweaver/internal/store"
)

// PreviewLen caps snippet previews inside the relevance prompt.
const PreviewLen = 200

// Extraction builds the knowledge-graph extraction prompt for one snippet,
// embedding a serialization of the current graph so the oracle can dedup
// against it and propose cross-snippet connections.
func Extraction(text string, g graph.Graph) string {
	var b strings.Builder
	b.WriteString(`You are an expert knowledge graph extraction system. Analyze the provided text and extract meaningful nodes (entities/concepts) and their relationships.

EXISTING GRAPH CONTEXT:
`)
	b.WriteString(FormatGraph(g))
	b.WriteString(`

NEW TEXT TO ANALYZE:
"`)
	b.WriteString(text)
	b.WriteString(`"

INSTRUCTIONS:
1. Extract 3-7 key nodes (entities, concepts, people, organizations, topics) from the text
2. Identify meaningful relationships between nodes (both within the new text and connections to existing nodes)
3. Each node should have: name, type (person, concept, organization, topic, etc.), description
4. Each relationship should have: fromNode, toNode, relationshipType, description
5. Consider the existing graph context to avoid duplicates and find connections
6. IMPORTANT: Look for conceptual relationships between related terms across different snippets. For example:
   - "Artificial Intelligence" and "Machine Learning" should be connected (e.g., "Machine Learning" is a "subset of" "Artificial Intelligence")
   - "Python" and "Programming" should be connected (e.g., "Python" is a "type of" "Programming Language")
   - "Neural Networks" and "Deep Learning" should be connected (e.g., "Neural Networks" are "fundamental to" "Deep Learning")
7. Use relationship types like: "subset of", "type of", "part of", "related to", "uses", "implements", "applies", "fundamental to", "relies on", "enables", "includes"
8. When you find a concept in the new text that is semantically related to an existing node, create a relationship even if they weren't mentioned together
9. Prioritize creating cross-snippet conceptual connections that build a more interconnected knowledge graph

Return a JSON object with this exact structure:
{
  "nodes": [
    {
      "id": "unique_id",
      "name": "Node Name",
      "type": "node_type",
      "description": "Brief description"
    }
  ],
  "relationships": [
    {
      "id": "unique_id",
      "fromNode": "node_id",
      "toNode": "node_id",
      "relationshipType": "relationship_type",
      "description": "Relationship description"
    }
  ]
}

Return ONLY the JSON object, no explanation.`)
	return b.String()
}

// FormatGraph renders the existing graph as the human-readable context block
// embedded in the extraction prompt.
func FormatGraph(g graph.Graph) string {
	if g.Empty() {
		return "No existing graph data."
	}

	var b strings.Builder
	b.WriteString("EXISTING NODES:\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "- %s (%s): %s\n", n.Name, n.Type, n.Description)
	}

	if len(g.Relationships) > 0 {
		b.WriteString("\nEXISTING RELATIONSHIPS:\n")
		for _, r := range g.Relationships {
			fmt.Fprintf(&b, "- %s %s %s: %s\n", r.FromNode, r.RelationshipType, r.ToNode, r.Description)
		}
	}
	return b.String()
}

// Relevance builds the ranking prompt: every snippet enumerated by its
// zero-based index with a truncated preview and its extracted concept names.
// The oracle is asked for a JSON array of indices, most relevant first.
func Relevance(query string, snippets []store.Snippet, maxResults int) string {
	var b strings.Builder
	b.WriteString(`You are an expert at identifying relevant context for user queries. Given a user's prompt and a list of saved text snippets, identify which snippets are most relevant to help answer or improve the user's prompt.

USER PROMPT:
"`)
	b.WriteString(query)
	b.WriteString(`"

SAVED SNIPPETS:
`)
	for i, s := range snippets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d: From %s: %q", i, SourceDomain(s.SourceURL), Preview(s.Text, PreviewLen))
		if names := conceptNames(s); names != "" {
			fmt.Fprintf(&b, "\nConcepts: %s", names)
		}
	}
	fmt.Fprintf(&b, `

INSTRUCTIONS:
Analyze the user's prompt and identify which saved snippets would be most helpful for:
1. Providing relevant background context
2. Supporting the user's request with specific information
3. Adding domain expertise or examples
4. Enhancing the prompt with related concepts

Return ONLY a JSON array of the indices of the most relevant snippets, ordered by relevance (most relevant first). Return at most %d indices. If no snippets are relevant, return an empty array [].

Example response: [2, 7, 1, 4]

Return ONLY the JSON array, no explanation.`, maxResults)
	return b.String()
}

// Optimize builds the prompt-rewriting prompt from the user's original prompt
// and the formatted context block of the selected snippets.
func Optimize(originalPrompt, contextText string) string {
	var b strings.Builder
	b.WriteString(`You are an expert prompt engineer. Transform the user's prompt using advanced prompt engineering techniques and integrate all relevant context from their saved sources.

OPTIMIZATION FRAMEWORK:
1. ROLE & EXPERTISE: Add "You are [specific expert/role]" when helpful
2. TASK CLARITY: Make the request specific and actionable
3. FORMAT & CONSTRAINTS: Specify output format, length, tone, audience
4. CONTEXT INTEGRATION: Weave in ALL relevant saved context naturally
5. STRUCTURED APPROACH: Use step-by-step when complex tasks benefit

SAVED CONTEXT TO INTEGRATE:
`)
	b.WriteString(contextText)
	b.WriteString(`

ORIGINAL USER PROMPT:
`)
	b.WriteString(originalPrompt)
	b.WriteString(`

INSTRUCTIONS:
Rewrite the prompt to be more effective by:
1. Incorporating ALL relevant context from the saved context naturally into the prompt body. Do not assume any prior knowledge.
2. Applying appropriate prompt engineering techniques from the framework above
3. Making the request more specific and actionable
4. Adding helpful constraints (format, length, audience, tone) when beneficial
5. Structuring complex requests with clear steps

Return ONLY the optimized prompt with no explanation or meta-commentary.`)
	return b.String()
}

// FormatContext renders selected snippets as the context block for the
// optimization prompt. Also used verbatim as the fallback prefix when the
// optimization call itself fails.
func FormatContext(snippets []store.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("RELEVANT CONTEXT:\n")
	for i, s := range snippets {
		fmt.Fprintf(&b, "%d. From %s: %q\n", i+1, SourceDomain(s.SourceURL), s.Text)
		if names := conceptNames(s); names != "" {
			fmt.Fprintf(&b, "   Key concepts: %s\n", names)
		}
	}
	b.WriteString("\nUSING THE ABOVE CONTEXT:\n")
	return b.String()
}

// Preview truncates text to max runes, appending "..." when trimmed.
func Preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// SourceDomain extracts a display domain from a source URL. URLs are only
// display grouping here, so malformed input degrades to "unknown".
func SourceDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func conceptNames(s store.Snippet) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	names := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		names[i] = n.Name
	}
	return strings.Join(names, ", ")
}
