package scoring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hyperjump/senko/internal/embedding"
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/internal/vector"
	"github.com/hyperjump/senko/pkg/utils"
)

// topKNeighbors bounds how many nearest job chunks back each resume chunk's
// contribution to a section score.
const topKNeighbors = 5

// SectionScorer scores resume sections against a job index. Safe for
// concurrent use as long as the embedder is.
type SectionScorer struct {
	embedder embedding.Embedder
	timeout  time.Duration
}

// NewSectionScorer creates a scorer. timeout bounds each embedding call;
// non-positive values fall back to 30 seconds.
func NewSectionScorer(embedder embedding.Embedder, timeout time.Duration) *SectionScorer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SectionScorer{embedder: embedder, timeout: timeout}
}

// ScoreSections scores every section kind of the resume against the job
// index. Kinds absent from the resume get a zero score flagged Missing, so
// the aggregator always sees an entry for every kind.
func (s *SectionScorer) ScoreSections(ctx context.Context, resume *models.Document, index vector.Index) (map[models.SectionKind]*models.SimilarityScore, error) {
	scores := make(map[models.SectionKind]*models.SimilarityScore, 4)
	for _, kind := range models.AllSectionKinds() {
		chunks := resume.Sections[kind]
		if len(chunks) == 0 {
			scores[kind] = &models.SimilarityScore{Kind: kind, Missing: true}
			continue
		}
		score, err := s.scoreKind(ctx, kind, chunks, index)
		if err != nil {
			return nil, fmt.Errorf("score %s section: %w", kind, err)
		}
		scores[kind] = score
	}
	return scores, nil
}

type hit struct {
	chunkID  string
	distance float64
}

func (s *SectionScorer) scoreKind(ctx context.Context, kind models.SectionKind, chunks []*models.Chunk, index vector.Index) (*models.SimilarityScore, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	embeddings, err := s.embedder.EmbedBatch(embedCtx, texts)
	cancel()
	if err != nil {
		return nil, err
	}
	for i, c := range chunks {
		c.Embedding = embeddings[i]
	}

	// Restrict to the same section of the job description; if the job has
	// no chunks of this kind, fall back to the whole index.
	filter := &kind
	available := index.CountKind(kind)
	if available == 0 {
		filter = nil
		available = index.Size()
	}
	k := topKNeighbors
	if available < k {
		k = available
	}

	var distances []float64
	var hits []hit
	for i := range chunks {
		results, err := index.Query(embeddings[i], k, filter)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			distances = append(distances, r.Distance)
			hits = append(hits, hit{chunkID: r.ChunkID, distance: r.Distance})
		}
	}

	raw := utils.Mean(distances)
	return &models.SimilarityScore{
		Kind:             kind,
		RawDistance:      raw,
		Score:            scoreFromDistance(raw),
		SupportingChunks: supportingChunks(hits),
	}, nil
}

// supportingChunks returns the distinct job chunk IDs behind a section score,
// nearest first, capped at topKNeighbors.
func supportingChunks(hits []hit) []string {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].chunkID < hits[j].chunkID
	})
	seen := make(map[string]bool, len(hits))
	var ids []string
	for _, h := range hits {
		if seen[h.chunkID] {
			continue
		}
		seen[h.chunkID] = true
		ids = append(ids, h.chunkID)
		if len(ids) == topKNeighbors {
			break
		}
	}
	return ids
}
