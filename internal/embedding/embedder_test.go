package embedding

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()

	first, err := e.Embed(ctx, "golang kubernetes microservices")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	second, err := e.Embed(ctx, "golang kubernetes microservices")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same text should produce identical embeddings")
	}
}

func TestMockEmbedder_UnitNorm(t *testing.T) {
	e := NewMockEmbedder(128)
	emb, err := e.Embed(context.Background(), "distributed systems engineer")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(emb) != 128 {
		t.Fatalf("expected 128 dimensions, got %d", len(emb))
	}
	norm := math.Sqrt(dot(emb, emb))
	if math.Abs(norm-1.0) > 1e-4 {
		t.Errorf("expected unit norm, got %f", norm)
	}
}

func TestMockEmbedder_SharedVocabularyIsCloser(t *testing.T) {
	e := NewMockEmbedder(384)
	ctx := context.Background()

	query, err := e.Embed(ctx, "golang kubernetes microservices")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	related, err := e.Embed(ctx, "golang kubernetes experience building microservices")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	unrelated, err := e.Embed(ctx, "oil painting watercolor portrait art")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	simRelated := dot(query, related)
	simUnrelated := dot(query, unrelated)
	if simRelated <= simUnrelated {
		t.Errorf("shared vocabulary should score higher: related=%f unrelated=%f", simRelated, simUnrelated)
	}
}

func TestMockEmbedder_CaseInsensitive(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	lower, _ := e.Embed(ctx, "python developer")
	upper, _ := e.Embed(ctx, "Python Developer")
	if !reflect.DeepEqual(lower, upper) {
		t.Error("embeddings should be case-insensitive")
	}
}

func TestMockEmbedder_EmbedBatchOrder(t *testing.T) {
	e := NewMockEmbedder(32)
	ctx := context.Background()
	texts := []string{"first text", "second text", "third text"}

	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("expected %d embeddings, got %d", len(texts), len(batch))
	}
	for i, text := range texts {
		single, _ := e.Embed(ctx, text)
		if !reflect.DeepEqual(batch[i], single) {
			t.Errorf("batch[%d] does not match single embedding of %q", i, text)
		}
	}
}

func TestMockEmbedder_CanceledContext(t *testing.T) {
	e := NewMockEmbedder(32)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Embed(ctx, "anything"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := e.EmbedBatch(ctx, []string{"a", "b"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from batch, got %v", err)
	}
}

func TestMockEmbedder_DefaultDimensions(t *testing.T) {
	e := NewMockEmbedder(0)
	if e.Dimensions() != 384 {
		t.Errorf("expected default 384, got %d", e.Dimensions())
	}
}

func TestNewEmbedder_Factory(t *testing.T) {
	e, err := NewEmbedder("mock", Options{Dimensions: 16})
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	defer e.Close()
	if e.Dimensions() != 16 {
		t.Errorf("expected 16 dimensions, got %d", e.Dimensions())
	}

	if _, err := NewEmbedder("quantum", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
