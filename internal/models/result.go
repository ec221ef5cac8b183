package models

import "time"

// Grade is the letter grade assigned to an overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Confidence is a qualitative reliability label for an analysis result,
// derived from data sufficiency and score variance.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// Downgrade returns the confidence one level lower. Low stays Low.
func (c Confidence) Downgrade() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	case ConfidenceMedium:
		return ConfidenceLow
	}
	return ConfidenceLow
}

// SimilarityScore is the per-section compatibility score between a resume
// and a job description. Derived once per query, never mutated after creation.
type SimilarityScore struct {
	Kind SectionKind `json:"kind"`
	// RawDistance is the mean cosine distance of the top-k index hits.
	RawDistance float64 `json:"raw_distance"`
	// Score is RawDistance passed through the pinned normalization
	// transform, in [0, 1]. Higher is a closer match.
	Score float64 `json:"score"`
	// SupportingChunks lists the job description chunk IDs behind the score,
	// ordered by ascending distance.
	SupportingChunks []string `json:"supporting_chunks,omitempty"`
	// Missing is true when the resume has no chunks of this kind;
	// Score is 0 in that case.
	Missing bool `json:"missing,omitempty"`
}

// AnalysisResult is the outcome of scoring one resume against one job
// description. Created once per (resume, job) pair; immutable.
type AnalysisResult struct {
	ResumeID      string                           `json:"resume_id"`
	JobID         string                           `json:"job_id"`
	SectionScores map[SectionKind]*SimilarityScore `json:"section_scores"`
	// OverallScore is the weighted sum of section scores scaled to [0, 100].
	OverallScore float64    `json:"overall_score"`
	Grade        Grade      `json:"grade"`
	Confidence   Confidence `json:"confidence"`
	Strengths    []string   `json:"strengths,omitempty"`
	Gaps         []string   `json:"gaps,omitempty"`
	// KeyMatches and MissingSkills are keyword-level insights; they inform
	// the reader but never contribute to OverallScore.
	KeyMatches      []string  `json:"key_matches,omitempty"`
	MissingSkills   []string  `json:"missing_skills,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	Reasoning       string    `json:"reasoning,omitempty"`
	ChunkCount      int       `json:"chunk_count"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

// SkippedResume records a resume excluded from a batch ranking and why.
type SkippedResume struct {
	ResumeID string `json:"resume_id"`
	Reason   string `json:"reason"`
}

// ScoreStatistics summarizes the overall scores of a batch on the 0-100 scale.
type ScoreStatistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// Distribution counts results per quality bucket:
	// excellent >=80, good 65-80, fair 50-65, poor <50.
	Distribution map[string]int `json:"distribution"`
}

// BatchResult is the outcome of ranking many resumes against one job description.
type BatchResult struct {
	JobID string `json:"job_id"`
	// Ranked is sorted by OverallScore descending; ties are broken by
	// ascending ResumeID so the order is a deterministic total order.
	Ranked []*AnalysisResult `json:"ranked"`
	// TopN is a prefix of Ranked (same backing array, never a diverging copy),
	// at most the requested shortlist size.
	TopN []*AnalysisResult `json:"top_n"`
	// Statistics is nil when no resume scored successfully; callers must
	// check ScoredCount before reading it.
	Statistics  *ScoreStatistics `json:"statistics,omitempty"`
	ScoredCount int              `json:"scored_count"`
	Skipped     []SkippedResume  `json:"skipped,omitempty"`
	// Partial is true when cancellation stopped the batch before every
	// resume was dispatched.
	Partial    bool      `json:"partial,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
