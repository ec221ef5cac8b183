// Package embedding provides text embedding backends and caching.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable is the only failure mode of an Embedder: the backend could
// not produce an output (model failure, exhausted resources, timeout).
// Retrying is the caller's decision; embedders never retry internally.
var ErrUnavailable = errors.New("embedding unavailable")

// Embedder produces vector embeddings for text. Implementations are
// deterministic for identical text and model configuration, and safe for
// concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds texts preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
