package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaverhq/goweaver/internal/store"
)

type fakeClient struct {
	completion string
	err        error
	calls      int
	gotPrompt  string
}

func (f *fakeClient) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.gotPrompt = prompt
	return f.completion, f.err
}

func snippets(n int) []store.Snippet {
	out := make([]store.Snippet, n)
	for i := range out {
		out[i] = store.Snippet{ID: string(rune('a' + i)), Text: "snippet"}
	}
	return out
}

func TestSelectShortCircuitSkipsOracle(t *testing.T) {
	llm := &fakeClient{err: errors.New("must not be called")}
	sel := NewSelector(llm)

	got, err := sel.Select(context.Background(), "q", snippets(3), 5)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Zero(t, llm.calls)
}

func TestSelectEmptyCollection(t *testing.T) {
	sel := NewSelector(&fakeClient{})
	got, err := sel.Select(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSelectRanksViaOracle(t *testing.T) {
	llm := &fakeClient{completion: "[4, 1, 0]"}
	sel := NewSelector(llm)

	got, err := sel.Select(context.Background(), "q", snippets(6), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "e", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "a", got[2].ID)
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.gotPrompt, "Return at most 3 indices")
}

func TestSelectDropsOutOfRangeIndices(t *testing.T) {
	llm := &fakeClient{completion: "[99, -1, 2, 0]"}
	sel := NewSelector(llm)

	got, err := sel.Select(context.Background(), "q", snippets(4), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestSelectTruncatesToMax(t *testing.T) {
	llm := &fakeClient{completion: "[0, 1, 2, 3, 4]"}
	sel := NewSelector(llm)

	got, err := sel.Select(context.Background(), "q", snippets(5), 2)
	// 5 > 2 so the oracle runs, and the answer is clipped.
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSelectFencedCompletion(t *testing.T) {
	llm := &fakeClient{completion: "```json\n[1, 0]\n```"}
	sel := NewSelector(llm)

	got, err := sel.Select(context.Background(), "q", snippets(4), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
}

func TestSelectMalformedCompletion(t *testing.T) {
	llm := &fakeClient{completion: "the most relevant snippets are 1 and 2"}
	sel := NewSelector(llm)

	_, err := sel.Select(context.Background(), "q", snippets(4), 2)
	var merr *MalformedRelevanceError
	assert.ErrorAs(t, err, &merr)
}

func TestSelectOracleErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	sel := NewSelector(&fakeClient{err: boom})

	_, err := sel.Select(context.Background(), "q", snippets(4), 2)
	assert.ErrorIs(t, err, boom)
}
