package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestCompleteSuccess(t *testing.T) {
	var gotBody generateRequest
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("hello from the oracle")))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "test-key")
	text, err := c.Complete(context.Background(), "say hello")

	require.NoError(t, err)
	assert.Equal(t, "hello from the oracle", text)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "say hello", gotBody.Contents[0].Parts[0].Text)
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "k")
	_, err := c.Complete(context.Background(), "p")

	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, http.StatusTooManyRequests, oerr.Status)
	assert.Contains(t, oerr.Body, "quota exceeded")
}

func TestCompleteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewGeminiClient(srv.URL, "k")
	_, err := c.Complete(context.Background(), "p")

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}

func TestCompleteEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "k")
	_, err := c.Complete(context.Background(), "p")

	assert.True(t, errors.Is(err, ErrEmptyCompletion))
}

func TestCompleteMissingParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "k")
	_, err := c.Complete(context.Background(), "p")

	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestCompleteEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("")))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "k")
	_, err := c.Complete(context.Background(), "p")

	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestCompleteContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewGeminiClient(srv.URL, "k")
	_, err := c.Complete(ctx, "p")

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}
