// Package concepts builds a mention index over graph node names. A single
// Aho-Corasick automaton serves both exact name lookup and full-text scanning
// of snippet bodies.
package concepts

import (
	"strings"
	"unicode"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/weaverhq/goweaver/internal/graph"
)

// Normalize lowercases text and collapses punctuation to spaces so node
// names match regardless of surface form.
func Normalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for _, ch := range s {
		c := unicode.ToLower(ch)
		if c == '’' {
			out.WriteRune('\'')
			continue
		}
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'' {
			out.WriteRune(c)
		} else {
			out.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(out.String()), " ")
}

// Index is an immutable mention index over a graph's node names.
type Index struct {
	ac           ahocorasick.AhoCorasick
	patterns     []string
	patternIndex map[string]int
	patternToIDs [][]string
}

// Build compiles an index from the graph's nodes. Nodes whose names normalize
// to the same pattern share it; nodes with empty names are skipped.
func Build(g graph.Graph) *Index {
	idx := &Index{
		patterns:     []string{},
		patternIndex: make(map[string]int),
		patternToIDs: [][]string{},
	}

	for _, n := range g.Nodes {
		key := Normalize(n.Name)
		if key == "" {
			continue
		}
		if i, ok := idx.patternIndex[key]; ok {
			idx.patternToIDs[i] = appendUnique(idx.patternToIDs[i], n.ID)
			continue
		}
		i := len(idx.patterns)
		idx.patterns = append(idx.patterns, key)
		idx.patternIndex[key] = i
		idx.patternToIDs = append(idx.patternToIDs, []string{n.ID})
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	idx.ac = builder.Build(idx.patterns)
	return idx
}

// Lookup returns the node IDs whose name matches the surface form exactly
// after normalization.
func (x *Index) Lookup(surface string) []string {
	i, ok := x.patternIndex[Normalize(surface)]
	if !ok {
		return nil
	}
	return x.patternToIDs[i]
}

// Mention is one node-name occurrence inside a text.
type Mention struct {
	Start   int
	End     int
	Text    string
	NodeIDs []string
}

// Scan finds all node-name mentions in text in one pass.
func (x *Index) Scan(text string) []Mention {
	if len(x.patterns) == 0 {
		return nil
	}

	matches := x.ac.FindAll(strings.ToLower(text))
	out := make([]Mention, 0, len(matches))
	for _, m := range matches {
		out = append(out, Mention{
			Start:   m.Start(),
			End:     m.End(),
			Text:    text[m.Start():m.End()],
			NodeIDs: x.patternToIDs[m.Pattern()],
		})
	}
	return out
}

// MentionedIDs returns the distinct node IDs mentioned in text, in first
// occurrence order.
func (x *Index) MentionedIDs(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range x.Scan(text) {
		for _, id := range m.NodeIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func appendUnique(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}
