// Package storage persists analysis run history.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/senko/internal/models"
)

// Run modes.
const (
	ModeSingle = "single"
	ModeBatch  = "batch"
	ModeWatch  = "watch"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one persisted analysis run: a single analysis, a batch, or a
// watch-triggered analysis.
type Run struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Mode      string    `json:"mode"`
	Total     int       `json:"total"`
	Scored    int       `json:"scored"`
	Skipped   int       `json:"skipped"`
	Partial   bool      `json:"partial,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists runs and their per-resume results.
type Store interface {
	// SaveRun stores the run and its results atomically.
	SaveRun(ctx context.Context, run *Run, results []*models.AnalysisResult) error
	// GetRun returns a run and its results in rank order.
	GetRun(ctx context.Context, id string) (*Run, []*models.AnalysisResult, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	// CountRuns returns the total number of stored runs.
	CountRuns(ctx context.Context) (int64, error)
	Close() error
}

// NewSingleRun describes one single-resume analysis as a run record. mode
// distinguishes interactive analyses from watch-triggered ones.
func NewSingleRun(result *models.AnalysisResult, mode string) *Run {
	if mode == "" {
		mode = ModeSingle
	}
	return &Run{
		ID:        uuid.NewString(),
		JobID:     result.JobID,
		Mode:      mode,
		Total:     1,
		Scored:    1,
		CreatedAt: time.Now().UTC(),
	}
}

// NewBatchRun describes a batch analysis as a run record.
func NewBatchRun(batch *models.BatchResult) *Run {
	return &Run{
		ID:        uuid.NewString(),
		JobID:     batch.JobID,
		Mode:      ModeBatch,
		Total:     batch.ScoredCount + len(batch.Skipped),
		Scored:    batch.ScoredCount,
		Skipped:   len(batch.Skipped),
		Partial:   batch.Partial,
		CreatedAt: time.Now().UTC(),
	}
}
