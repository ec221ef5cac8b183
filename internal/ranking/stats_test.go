package ranking

import (
	"math"
	"testing"

	"github.com/hyperjump/senko/internal/models"
)

func resultsWithScores(scores ...float64) []*models.AnalysisResult {
	out := make([]*models.AnalysisResult, len(scores))
	for i, s := range scores {
		out[i] = &models.AnalysisResult{OverallScore: s}
	}
	return out
}

func TestComputeStatistics(t *testing.T) {
	stats := computeStatistics(resultsWithScores(90, 70, 55, 30))
	if stats == nil {
		t.Fatal("expected statistics")
	}
	if math.Abs(stats.Mean-61.25) > 1e-9 {
		t.Errorf("Mean = %f, want 61.25", stats.Mean)
	}
	if math.Abs(stats.Median-62.5) > 1e-9 {
		t.Errorf("Median = %f, want 62.5", stats.Median)
	}
	if math.Abs(stats.StdDev-math.Sqrt(479.6875)) > 1e-9 {
		t.Errorf("StdDev = %f", stats.StdDev)
	}
	if stats.Min != 30 || stats.Max != 90 {
		t.Errorf("Min/Max = %f/%f, want 30/90", stats.Min, stats.Max)
	}
	want := map[string]int{"excellent": 1, "good": 1, "fair": 1, "poor": 1}
	for bucket, n := range want {
		if stats.Distribution[bucket] != n {
			t.Errorf("Distribution[%s] = %d, want %d", bucket, stats.Distribution[bucket], n)
		}
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	if stats := computeStatistics(nil); stats != nil {
		t.Errorf("expected nil statistics, got %+v", stats)
	}
}

func TestDistribution_Boundaries(t *testing.T) {
	dist := distribution([]float64{80, 79.9, 65, 64.9, 50, 49.9})
	want := map[string]int{"excellent": 1, "good": 2, "fair": 2, "poor": 1}
	for bucket, n := range want {
		if dist[bucket] != n {
			t.Errorf("Distribution[%s] = %d, want %d", bucket, dist[bucket], n)
		}
	}
}
