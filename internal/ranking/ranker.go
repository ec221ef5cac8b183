// Package ranking scores and orders many resumes against one job description.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/senko/internal/config"
	"github.com/hyperjump/senko/internal/keyword"
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/internal/vector"
)

// defaultParallelism bounds concurrent resume analyses when config leaves
// max_parallelism unset.
const defaultParallelism = 4

// ResumeInput is one resume submitted for ranking. ID is caller-assigned and
// must be unique within the batch.
type ResumeInput struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ScoringError wraps the failure of a single resume inside a batch. One
// resume failing never aborts the batch; the error lands in Skipped.
type ScoringError struct {
	ResumeID string
	Err      error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("score resume %s: %v", e.ResumeID, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// Segmenter splits raw text into a sectioned document.
type Segmenter interface {
	Segment(id, rawText string, role models.Role) (*models.Document, error)
}

// SectionScorer scores every section of a resume against a job index.
type SectionScorer interface {
	ScoreSections(ctx context.Context, resume *models.Document, index vector.Index) (map[models.SectionKind]*models.SimilarityScore, error)
}

// Aggregator folds section scores into a graded result.
type Aggregator interface {
	Aggregate(sectionScores map[models.SectionKind]*models.SimilarityScore, chunkCount int) *models.AnalysisResult
	Recommendations(result *models.AnalysisResult, missingSkills []string) []string
}

// Ranker runs the per-resume pipeline (segment, score, aggregate) across a
// bounded worker pool and assembles the ranked batch result.
type Ranker struct {
	segmenter   Segmenter
	scorer      SectionScorer
	aggregator  Aggregator
	parallelism int
	logger      *zap.Logger
	jobText     string
}

// NewRanker creates a ranker. A nil cfg uses default parallelism; a nil
// logger disables logging.
func NewRanker(scorer SectionScorer, aggregator Aggregator, segmenter Segmenter, cfg *config.EngineConfig, logger *zap.Logger) *Ranker {
	parallelism := defaultParallelism
	if cfg != nil && cfg.MaxParallelism > 0 {
		parallelism = cfg.MaxParallelism
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{
		segmenter:   segmenter,
		scorer:      scorer,
		aggregator:  aggregator,
		parallelism: parallelism,
		logger:      logger,
	}
}

// WithJobText supplies the raw job description text, enabling keyword
// insights (key matches and missing skills) on every ranked result.
func (r *Ranker) WithJobText(text string) *Ranker {
	r.jobText = text
	return r
}

// Rank analyzes all resumes against the job index and returns them ordered
// by descending overall score, ties broken by ascending resume ID. topN
// selects the shortlist length and must be positive; a topN beyond the
// number of successes returns the whole ranked sequence.
//
// Resume failures are recorded in Skipped and never abort the batch.
// Cancelling ctx stops dispatching new resumes; in-flight analyses finish
// and the result carries Partial=true.
func (r *Ranker) Rank(ctx context.Context, resumes []ResumeInput, index vector.Index, topN int) (*models.BatchResult, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", config.ErrInvalid, topN)
	}

	var (
		mu      sync.Mutex
		ranked  []*models.AnalysisResult
		skipped []models.SkippedResume
		partial bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for _, resume := range resumes {
		select {
		case <-ctx.Done():
			partial = true
		default:
		}
		if partial {
			break
		}
		g.Go(func() error {
			result, err := r.rankOne(gctx, resume, index)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				serr := &ScoringError{ResumeID: resume.ID, Err: err}
				r.logger.Warn("resume skipped", zap.String("resume_id", resume.ID), zap.Error(serr.Err))
				skipped = append(skipped, models.SkippedResume{ResumeID: resume.ID, Reason: serr.Err.Error()})
				return nil
			}
			ranked = append(ranked, result)
			return nil
		})
	}
	// Workers report failures through skipped, never as group errors.
	_ = g.Wait()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].OverallScore != ranked[j].OverallScore {
			return ranked[i].OverallScore > ranked[j].OverallScore
		}
		return ranked[i].ResumeID < ranked[j].ResumeID
	})

	n := topN
	if n > len(ranked) {
		n = len(ranked)
	}

	return &models.BatchResult{
		JobID:       index.JobID(),
		Ranked:      ranked,
		TopN:        ranked[:n],
		Statistics:  computeStatistics(ranked),
		ScoredCount: len(ranked),
		Skipped:     skipped,
		Partial:     partial,
		AnalyzedAt:  time.Now().UTC(),
	}, nil
}

// rankOne runs the full single-resume pipeline.
func (r *Ranker) rankOne(ctx context.Context, resume ResumeInput, index vector.Index) (*models.AnalysisResult, error) {
	doc, err := r.segmenter.Segment(resume.ID, resume.Text, models.RoleResume)
	if err != nil {
		return nil, err
	}
	scores, err := r.scorer.ScoreSections(ctx, doc, index)
	if err != nil {
		return nil, err
	}

	result := r.aggregator.Aggregate(scores, doc.ChunkCount())
	result.ResumeID = doc.ID
	result.JobID = index.JobID()
	result.AnalyzedAt = time.Now().UTC()

	if r.jobText != "" {
		insights, err := keyword.Extract(doc, r.jobText)
		if err != nil {
			r.logger.Warn("keyword insights failed", zap.String("resume_id", doc.ID), zap.Error(err))
		} else {
			result.KeyMatches = insights.KeyMatches
			result.MissingSkills = insights.MissingSkills
		}
	}
	result.Recommendations = r.aggregator.Recommendations(result, result.MissingSkills)
	return result, nil
}
