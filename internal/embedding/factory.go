package embedding

import (
	"fmt"
	"time"
)

// Provider identifies an embedding backend.
type Provider string

const (
	// ProviderMock uses deterministic hash-based embeddings. No external dependencies.
	ProviderMock Provider = "mock"
	// ProviderONNX runs a local model through ONNX Runtime.
	// Requires CGO and the onnxruntime shared library.
	ProviderONNX Provider = "onnx"
	// ProviderRemote calls an OpenAI-compatible /embeddings endpoint.
	ProviderRemote Provider = "remote"
)

// Options carries provider-specific settings. Only the fields relevant to the
// chosen provider are consulted.
type Options struct {
	Dimensions int
	// ONNX
	ModelPath string
	MaxTokens int
	// Remote
	BaseURL   string
	ModelID   string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewEmbedder creates an embedder for the given provider.
// Supported providers: "mock" (default), "onnx", "remote".
func NewEmbedder(provider string, opts Options) (Embedder, error) {
	switch Provider(provider) {
	case ProviderMock, "":
		return NewMockEmbedder(opts.Dimensions), nil
	case ProviderONNX:
		e, err := NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens)
		if err != nil {
			return nil, err
		}
		return e, nil
	case ProviderRemote:
		return NewRemoteEmbedder(opts.BaseURL, opts.ModelID, opts.Dimensions, opts.APIKeyEnv, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: mock, onnx, remote)", provider)
	}
}
