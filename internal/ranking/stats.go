package ranking

import (
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/pkg/utils"
)

// computeStatistics summarizes the overall scores of successfully ranked
// resumes. Returns nil when nothing scored; the batch result leaves
// Statistics unset in that case.
func computeStatistics(results []*models.AnalysisResult) *models.ScoreStatistics {
	if len(results) == 0 {
		return nil
	}
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.OverallScore
	}
	min, max := utils.MinMax(scores)
	return &models.ScoreStatistics{
		Mean:         utils.Mean(scores),
		Median:       utils.Median(scores),
		StdDev:       utils.StdDev(scores),
		Min:          min,
		Max:          max,
		Distribution: distribution(scores),
	}
}

// distribution buckets overall scores by quality band. Every score lands in
// exactly one bucket, so the counts always sum to the number of results.
func distribution(scores []float64) map[string]int {
	dist := map[string]int{
		"excellent": 0,
		"good":      0,
		"fair":      0,
		"poor":      0,
	}
	for _, s := range scores {
		switch {
		case s >= 80:
			dist["excellent"]++
		case s >= 65:
			dist["good"]++
		case s >= 50:
			dist["fair"]++
		default:
			dist["poor"]++
		}
	}
	return dist
}
