package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/hyperjump/senko/internal/embedding"
	"github.com/hyperjump/senko/internal/models"
)

type entry struct {
	chunkID string
	kind    models.SectionKind
	vector  []float32
}

// MemoryIndex is a brute-force exact-search index over one job description's
// chunks. It is immutable after construction and safe for concurrent readers.
// Job descriptions produce tens of chunks, so exhaustive scan beats any ANN
// structure here.
type MemoryIndex struct {
	jobID      string
	dimensions int
	entries    []entry
}

// BuildIndex embeds every chunk of the job description and builds an index
// over them. A document with no chunks returns ErrEmptyJobDescription.
// Embedding failures propagate unchanged.
func BuildIndex(ctx context.Context, doc *models.Document, embedder embedding.Embedder) (*MemoryIndex, error) {
	chunks := doc.AllChunks()
	if len(chunks) == 0 {
		return nil, ErrEmptyJobDescription
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed job chunks: %w", err)
	}

	dims := embedder.Dimensions()
	entries := make([]entry, len(chunks))
	for i, c := range chunks {
		if len(embeddings[i]) != dims {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(embeddings[i]), dims)
		}
		vec := make([]float32, dims)
		copy(vec, embeddings[i])
		entries[i] = entry{chunkID: c.ID, kind: c.Kind, vector: vec}
	}
	return &MemoryIndex{jobID: doc.ID, dimensions: dims, entries: entries}, nil
}

// JobID returns the document ID of the indexed job description.
func (m *MemoryIndex) JobID() string {
	return m.jobID
}

// Query returns up to k nearest chunks by cosine distance, ascending. A
// non-nil kind restricts results to that section and never falls back to
// other sections. Ties break on chunk ID for reproducible output.
func (m *MemoryIndex) Query(query []float32, k int, kind *models.SectionKind) ([]Result, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	results := make([]Result, 0, len(m.entries))
	for _, e := range m.entries {
		if kind != nil && e.kind != *kind {
			continue
		}
		results = append(results, Result{
			ChunkID:  e.chunkID,
			Kind:     e.kind,
			Distance: CosineDistance(query, e.vector),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Size returns the total number of indexed chunks.
func (m *MemoryIndex) Size() int {
	return len(m.entries)
}

// CountKind returns the number of indexed chunks of the given section.
func (m *MemoryIndex) CountKind(kind models.SectionKind) int {
	n := 0
	for _, e := range m.entries {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// Dimensions returns the embedding dimension of the index.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Save persists the index to path. Directory is created if needed. Format:
// dimensions (4), count (4), jobID (len-prefixed), then per entry: chunk ID
// (len-prefixed), kind (len-prefixed), vector (dimensions*4 bytes). All
// little-endian.
func (m *MemoryIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	if err := writeString(f, m.jobID); err != nil {
		return fmt.Errorf("write job id: %w", err)
	}
	for _, e := range m.entries {
		if err := writeString(f, e.chunkID); err != nil {
			return fmt.Errorf("write chunk id: %w", err)
		}
		if err := writeString(f, string(e.kind)); err != nil {
			return fmt.Errorf("write kind: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(e.vector)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// LoadIndex reads a previously saved index from path.
func LoadIndex(path string) (*MemoryIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var dims, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	jobID, err := readString(f)
	if err != nil {
		return nil, fmt.Errorf("read job id: %w", err)
	}

	idx := &MemoryIndex{jobID: jobID, dimensions: int(dims)}
	buf := make([]byte, dims*4)
	for i := uint32(0); i < n; i++ {
		chunkID, err := readString(f)
		if err != nil {
			return nil, fmt.Errorf("read chunk id: %w", err)
		}
		kind, err := readString(f)
		if err != nil {
			return nil, fmt.Errorf("read kind: %w", err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read vector: %w", err)
		}
		idx.entries = append(idx.entries, entry{
			chunkID: chunkID,
			kind:    models.SectionKind(kind),
			vector:  bytesToFloat32Slice(buf),
		})
	}
	return idx, nil
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

func writeString(f *os.File, s string) error {
	b := []byte(s)
	if err := binary.Write(f, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := f.Write(b)
	return err
}

func readString(f *os.File) (string, error) {
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(f, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
