// Package vector provides the per-job vector index used for similarity scoring.
package vector

import (
	"errors"

	"github.com/hyperjump/senko/internal/models"
)

// ErrEmptyJobDescription is returned when an index is built from a job
// description that produced no chunks.
var ErrEmptyJobDescription = errors.New("job description has no chunks")

// Result is a single nearest-neighbor hit against a job index.
type Result struct {
	ChunkID  string
	Kind     models.SectionKind
	Distance float64 // cosine distance, 0 means identical direction
}

// Index answers nearest-neighbor queries over one job description's chunk
// embeddings. Implementations are immutable after construction; rebuilding
// requires a new index, so concurrent readers are never invalidated.
type Index interface {
	// JobID returns the document ID of the indexed job description.
	JobID() string
	// Query returns up to k nearest chunks by cosine distance, ascending.
	// A non-nil kind restricts results to chunks of that section; the filter
	// is strict and may yield fewer than k results, or none.
	Query(query []float32, k int, kind *models.SectionKind) ([]Result, error)
	// Size returns the total number of indexed chunks.
	Size() int
	// CountKind returns the number of indexed chunks of the given section.
	CountKind(kind models.SectionKind) int
	// Save persists the index to path. Empty path is a no-op.
	Save(path string) error
	Close() error
}
