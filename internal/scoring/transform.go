// Package scoring converts vector distances into graded analysis results.
package scoring

import "github.com/hyperjump/senko/pkg/utils"

// scoreFromDistance converts a mean cosine distance into a compatibility
// score in [0,1]. The piecewise calibration stretches the working range of
// sentence-embedding similarities (roughly 0.2-0.8) onto 0.4-0.95 so grades
// read naturally. Knots are fixed: scores stay comparable across runs and
// corpora. The transform is strictly monotonic, so a closer distance always
// scores higher.
func scoreFromDistance(meanDistance float64) float64 {
	s := 1 - meanDistance
	switch {
	case s < 0.15:
		s = s * 2
	case s < 0.3:
		s = 0.3 + (s-0.15)*2
	case s < 0.6:
		s = 0.6 + (s - 0.3)
	default:
		s = 0.9 + (s-0.6)*0.25
	}
	return utils.Clamp01(s)
}
