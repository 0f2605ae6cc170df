// Package oracle wraps the external text-completion service. The core treats
// it as an oracle: one prompt in, one completion out, occasionally malformed.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the interface for completion calls. Implemented by GeminiClient;
// tests substitute fakes.
type Client interface {
	// Complete sends a prompt to the completion service and returns the
	// first textual completion. No retry policy is applied here; the first
	// failure is terminal for the call.
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls a Gemini-style generateContent endpoint.
type GeminiClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewGeminiClient creates a client for the given endpoint URL and API key.
// The key is passed as the "key" query parameter, per the service contract.
func NewGeminiClient(endpoint, apiKey string) *GeminiClient {
	return &GeminiClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Request/response wire shapes for generateContent.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("oracle: failed to marshal request: %w", err)
	}

	endpoint := c.endpoint + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("oracle: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &OracleError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("oracle: failed to decode response: %w", err)
	}

	// Missing candidates or parts is not a protocol error, just an answer
	// with nothing in it.
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}
	text := decoded.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Compile-time interface check
var _ Client = (*GeminiClient)(nil)
