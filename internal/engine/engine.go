// Package engine wires segmentation, embedding, indexing, scoring and
// ranking into the two analysis entry points.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/senko/internal/config"
	"github.com/hyperjump/senko/internal/embedding"
	"github.com/hyperjump/senko/internal/keyword"
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/internal/ranking"
	"github.com/hyperjump/senko/internal/scoring"
	"github.com/hyperjump/senko/internal/segmenter"
	"github.com/hyperjump/senko/internal/vector"
)

// Engine is the analysis facade. Safe for concurrent use; every analysis
// builds its own job index and shares only the embedder and its cache.
type Engine struct {
	cfg        *config.Config
	logger     *zap.Logger
	embedder   embedding.Embedder
	segmenter  *segmenter.Segmenter
	scorer     *scoring.SectionScorer
	aggregator *scoring.Aggregator
}

// New validates cfg and assembles an engine. A nil cfg uses the defaults.
// The configured embedding provider is built unless WithEmbedder overrides
// it; factory-built embedders are wrapped in the configured cache.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	if e.embedder == nil {
		emb, err := embedding.NewEmbedder(cfg.Embedding.Provider, embedding.Options{
			Dimensions: cfg.Embedding.Dimensions,
			ModelPath:  cfg.Embedding.ModelPath,
			MaxTokens:  cfg.Embedding.MaxTokens,
			BaseURL:    cfg.Embedding.BaseURL,
			ModelID:    cfg.Embedding.ModelID,
			APIKeyEnv:  cfg.Embedding.APIKeyEnv,
			Timeout:    cfg.Engine.PerCallTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
		if cfg.Embedding.CacheSize > 0 {
			emb = embedding.NewCachedEmbedder(emb, cfg.Embedding.CacheSize)
		}
		e.embedder = emb
	}

	e.segmenter = segmenter.New(cfg.Segmenter.ChunkMaxLength)
	e.scorer = scoring.NewSectionScorer(e.embedder, cfg.Engine.PerCallTimeout())
	e.aggregator = scoring.NewAggregator(&cfg.Scoring)
	return e, nil
}

// Close releases the embedder. The engine must not be used afterwards.
func (e *Engine) Close() error {
	return e.embedder.Close()
}

// AnalyzeSingle scores one resume against one job description. Document IDs
// are derived from role and content, so identical inputs produce identical
// results.
func (e *Engine) AnalyzeSingle(ctx context.Context, resumeText, jobText string) (*models.AnalysisResult, error) {
	return e.AnalyzeSingleID(ctx, "", resumeText, "", jobText)
}

// AnalyzeSingleID is AnalyzeSingle with caller-assigned document IDs. Empty
// IDs are derived from content.
func (e *Engine) AnalyzeSingleID(ctx context.Context, resumeID, resumeText, jobID, jobText string) (*models.AnalysisResult, error) {
	resume, err := e.segmenter.Segment(resumeID, resumeText, models.RoleResume)
	if err != nil {
		return nil, fmt.Errorf("segment resume: %w", err)
	}
	job, index, err := e.buildJobIndex(ctx, jobID, jobText)
	if err != nil {
		return nil, err
	}
	defer index.Close()

	scores, err := e.scorer.ScoreSections(ctx, resume, index)
	if err != nil {
		return nil, err
	}

	result := e.aggregator.Aggregate(scores, resume.ChunkCount())
	result.ResumeID = resume.ID
	result.JobID = job.ID
	result.AnalyzedAt = time.Now().UTC()

	insights, err := keyword.Extract(resume, jobText)
	if err != nil {
		e.logger.Warn("keyword insights failed", zap.String("resume_id", resume.ID), zap.Error(err))
	} else {
		result.KeyMatches = insights.KeyMatches
		result.MissingSkills = insights.MissingSkills
	}
	result.Recommendations = e.aggregator.Recommendations(result, result.MissingSkills)

	e.logger.Info("resume analyzed",
		zap.String("resume_id", result.ResumeID),
		zap.String("job_id", result.JobID),
		zap.Float64("overall_score", result.OverallScore),
		zap.String("grade", string(result.Grade)))
	return result, nil
}

// AnalyzeBatch ranks many resumes against one job description. The job is
// segmented and indexed once; resumes run through a bounded worker pool.
func (e *Engine) AnalyzeBatch(ctx context.Context, resumes []ranking.ResumeInput, jobText string, topN int) (*models.BatchResult, error) {
	_, index, err := e.buildJobIndex(ctx, "", jobText)
	if err != nil {
		return nil, err
	}
	defer index.Close()

	ranker := ranking.NewRanker(e.scorer, e.aggregator, e.segmenter, &e.cfg.Engine, e.logger).
		WithJobText(jobText)
	batch, err := ranker.Rank(ctx, resumes, index, topN)
	if err != nil {
		return nil, err
	}

	e.logger.Info("batch analyzed",
		zap.String("job_id", batch.JobID),
		zap.Int("scored", batch.ScoredCount),
		zap.Int("skipped", len(batch.Skipped)),
		zap.Bool("partial", batch.Partial))
	return batch, nil
}

// buildJobIndex segments the job description and builds its vector index,
// persisting the index when a path is configured. A blank job description
// surfaces as ErrEmptyJobDescription.
func (e *Engine) buildJobIndex(ctx context.Context, jobID, jobText string) (*models.Document, *vector.MemoryIndex, error) {
	job, err := e.segmenter.Segment(jobID, jobText, models.RoleJobDescription)
	if err != nil {
		if errors.Is(err, segmenter.ErrEmptyDocument) {
			err = vector.ErrEmptyJobDescription
		}
		return nil, nil, fmt.Errorf("segment job description: %w", err)
	}
	index, err := vector.BuildIndex(ctx, job, e.embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("build job index: %w", err)
	}
	if path := e.cfg.Storage.IndexPath; path != "" {
		if err := index.Save(path); err != nil {
			e.logger.Warn("index save failed", zap.String("path", path), zap.Error(err))
		}
	}
	return job, index, nil
}
