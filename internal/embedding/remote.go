package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hyperjump/senko/pkg/utils"
)

// RemoteEmbedder calls an OpenAI-compatible embeddings endpoint:
//
//	POST {baseURL}/embeddings
//	{"model": "...", "input": ["...", ...]}
//
// Works with any server speaking that protocol (OpenAI, Ollama, llama.cpp,
// text-embeddings-inference). The API key is read from the named environment
// variable; an empty key is allowed for unauthenticated local servers.
type RemoteEmbedder struct {
	baseURL    string
	model      string
	apiKey     string
	dimensions int
	client     *http.Client
}

// NewRemoteEmbedder creates a remote embedder. dimensions must match what the
// model produces; mismatched responses are rejected.
func NewRemoteEmbedder(baseURL, model string, dimensions int, apiKeyEnv string, timeout time.Duration) (*RemoteEmbedder, error) {
	if baseURL == "" {
		return nil, errors.New("remote embedder requires a base URL")
	}
	if model == "" {
		return nil, errors.New("remote embedder requires a model ID")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("remote embedder requires positive dimensions, got %d", dimensions)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var apiKey string
	if apiKeyEnv != "" {
		apiKey = os.Getenv(apiKeyEnv)
	}
	return &RemoteEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Embed returns the embedding for a single text.
func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds all texts in one request, preserving input order.
// Every failure is reported as ErrUnavailable with the underlying cause.
func (e *RemoteEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"model": e.model,
		"input": texts,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrUnavailable, len(parsed.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrUnavailable, item.Index)
		}
		if len(item.Embedding) != e.dimensions {
			return nil, fmt.Errorf("%w: model returned %d dimensions, expected %d",
				ErrUnavailable, len(item.Embedding), e.dimensions)
		}
		emb := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			emb[i] = float32(v)
		}
		utils.NormalizeL2(emb)
		out[item.Index] = emb
	}
	for i, emb := range out {
		if emb == nil {
			return nil, fmt.Errorf("%w: response missing embedding for input %d", ErrUnavailable, i)
		}
	}
	return out, nil
}

// Dimensions returns the configured embedding dimension.
func (e *RemoteEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for RemoteEmbedder.
func (e *RemoteEmbedder) Close() error {
	return nil
}
