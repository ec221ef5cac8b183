package engine

import (
	"go.uber.org/zap"

	"github.com/hyperjump/senko/internal/embedding"
)

// Option configures an Engine during construction.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards all logs.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEmbedder injects a pre-built embedder in place of the configured
// provider. No cache is layered on top; the engine closes the embedder on
// Close.
func WithEmbedder(embedder embedding.Embedder) Option {
	return func(e *Engine) {
		if embedder != nil {
			e.embedder = embedder
		}
	}
}
