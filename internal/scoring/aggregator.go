package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hyperjump/senko/internal/config"
	"github.com/hyperjump/senko/internal/models"
)

// Confidence starts at High and drops one level per condition met: too few
// chunks to trust the embeddings, or the two highest-weighted sections
// disagreeing sharply.
const (
	confidenceMinChunks = 4
	confidenceMaxSpread = 0.4
)

var strengthNotes = map[models.SectionKind]string{
	models.SectionSkills:     "strong alignment with the required technologies",
	models.SectionExperience: "work history closely matches the role",
	models.SectionEducation:  "academic background fits the requirements",
	models.SectionGeneral:    "overall profile reads as a strong fit",
}

var missingNotes = map[models.SectionKind]string{
	models.SectionSkills:     "no skills section found in the resume",
	models.SectionExperience: "no work experience section found in the resume",
	models.SectionEducation:  "no education section found in the resume",
	models.SectionGeneral:    "resume has no introductory or general text",
}

var weakNotes = map[models.SectionKind]string{
	models.SectionSkills:     "listed skills overlap little with the required technologies",
	models.SectionExperience: "work history shows little relevant experience",
	models.SectionEducation:  "academic background differs from the requirements",
	models.SectionGeneral:    "profile text bears little relation to the position",
}

// Aggregator folds section scores into a graded AnalysisResult. Pure
// computation over validated inputs; it has no failure modes of its own.
type Aggregator struct {
	weights     map[models.SectionKind]float64
	grades      config.GradeThresholds
	strong      float64
	weak        float64
	topWeighted [2]models.SectionKind
}

// NewAggregator creates an aggregator from scoring config. A nil cfg uses
// the defaults.
func NewAggregator(cfg *config.ScoringConfig) *Aggregator {
	if cfg == nil {
		cfg = &config.DefaultConfig().Scoring
	}
	weights := cfg.SectionWeights
	if weights == nil {
		weights = config.DefaultSectionWeights()
	}
	return &Aggregator{
		weights:     weights,
		grades:      cfg.GradeThresholds,
		strong:      cfg.StrongThreshold,
		weak:        cfg.WeakThreshold,
		topWeighted: topTwoWeighted(weights),
	}
}

// topTwoWeighted returns the two heaviest section kinds under the active
// weight table, with the fixed kind order breaking ties.
func topTwoWeighted(weights map[models.SectionKind]float64) [2]models.SectionKind {
	kinds := models.AllSectionKinds()
	sort.SliceStable(kinds, func(i, j int) bool {
		return weights[kinds[i]] > weights[kinds[j]]
	})
	return [2]models.SectionKind{kinds[0], kinds[1]}
}

// Aggregate computes the overall score, grade, confidence and qualitative
// insights for one resume. The caller fills IDs and timestamps.
func (a *Aggregator) Aggregate(sectionScores map[models.SectionKind]*models.SimilarityScore, chunkCount int) *models.AnalysisResult {
	var overall float64
	for _, kind := range models.AllSectionKinds() {
		sc := sectionScores[kind]
		if sc == nil {
			continue
		}
		overall += a.weights[kind] * sc.Score
	}
	overall *= 100

	return &models.AnalysisResult{
		SectionScores: sectionScores,
		OverallScore:  overall,
		Grade:         a.gradeFor(overall),
		Confidence:    a.confidenceFor(sectionScores, chunkCount),
		Strengths:     a.strengths(sectionScores),
		Gaps:          a.gaps(sectionScores),
		Reasoning:     a.reasoning(sectionScores, overall),
		ChunkCount:    chunkCount,
	}
}

func (a *Aggregator) gradeFor(overall float64) models.Grade {
	switch {
	case overall >= a.grades.A:
		return models.GradeA
	case overall >= a.grades.B:
		return models.GradeB
	case overall >= a.grades.C:
		return models.GradeC
	case overall >= a.grades.D:
		return models.GradeD
	default:
		return models.GradeF
	}
}

func (a *Aggregator) confidenceFor(scores map[models.SectionKind]*models.SimilarityScore, chunkCount int) models.Confidence {
	conf := models.ConfidenceHigh
	if chunkCount < confidenceMinChunks {
		conf = conf.Downgrade()
	}
	first := scores[a.topWeighted[0]]
	second := scores[a.topWeighted[1]]
	if first != nil && second != nil && math.Abs(first.Score-second.Score) > confidenceMaxSpread {
		conf = conf.Downgrade()
	}
	return conf
}

func (a *Aggregator) strengths(scores map[models.SectionKind]*models.SimilarityScore) []string {
	var out []string
	for _, kind := range models.AllSectionKinds() {
		sc := scores[kind]
		if sc == nil || sc.Missing || sc.Score < a.strong {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", kind, strengthNotes[kind]))
	}
	return out
}

func (a *Aggregator) gaps(scores map[models.SectionKind]*models.SimilarityScore) []string {
	var out []string
	for _, kind := range models.AllSectionKinds() {
		sc := scores[kind]
		if sc == nil {
			continue
		}
		switch {
		case sc.Missing:
			out = append(out, fmt.Sprintf("%s: %s", kind, missingNotes[kind]))
		case sc.Score <= a.weak:
			out = append(out, fmt.Sprintf("%s: %s", kind, weakNotes[kind]))
		}
	}
	return out
}

// reasoning builds the human-readable summary sentence chain: one sentence
// for the overall level, then skills and experience observations when those
// sections exist.
func (a *Aggregator) reasoning(scores map[models.SectionKind]*models.SimilarityScore, overall float64) string {
	var parts []string
	switch {
	case overall >= 80:
		parts = append(parts, "Excellent match with strong alignment across multiple areas.")
	case overall >= 60:
		parts = append(parts, "Good match with solid qualifications.")
	case overall >= 40:
		parts = append(parts, "Moderate match with some relevant qualifications.")
	default:
		parts = append(parts, "Limited match with few relevant qualifications.")
	}

	if sc := scores[models.SectionSkills]; sc != nil && !sc.Missing {
		switch {
		case sc.Score >= 0.7:
			parts = append(parts, "Strong technical skill alignment.")
		case sc.Score >= 0.4:
			parts = append(parts, "Moderate technical skill match.")
		default:
			parts = append(parts, "Limited technical skill overlap.")
		}
	}
	if sc := scores[models.SectionExperience]; sc != nil && !sc.Missing {
		switch {
		case sc.Score >= 0.7:
			parts = append(parts, "Relevant work experience demonstrated.")
		case sc.Score >= 0.4:
			parts = append(parts, "Some relevant work experience.")
		default:
			parts = append(parts, "Limited relevant work experience.")
		}
	}
	return strings.Join(parts, " ")
}

// Recommendations derives up to three actionable notes from an aggregated
// result and the missing skills found by keyword insight.
func (a *Aggregator) Recommendations(result *models.AnalysisResult, missingSkills []string) []string {
	var recs []string
	if result.OverallScore < 60 {
		recs = append(recs, "Consider gaining more relevant experience in the required domain.")
	}
	if len(missingSkills) > 0 {
		top := missingSkills
		if len(top) > 3 {
			top = top[:3]
		}
		recs = append(recs, "Consider developing skills in: "+strings.Join(top, ", "))
	}
	if sc := result.SectionScores[models.SectionSkills]; sc != nil && !sc.Missing && sc.Score < 0.5 {
		recs = append(recs, "Enhance the technical skills section with more relevant technologies.")
	}
	if sc := result.SectionScores[models.SectionExperience]; sc != nil && !sc.Missing && sc.Score < 0.5 {
		recs = append(recs, "Highlight more relevant work experience and achievements.")
	}
	switch {
	case result.OverallScore >= 80:
		recs = append(recs, "Excellent candidate profile. Consider for immediate interview.")
	case result.OverallScore >= 60:
		recs = append(recs, "Good candidate profile. Suitable for further consideration.")
	}
	if len(recs) > 3 {
		recs = recs[:3]
	}
	return recs
}
