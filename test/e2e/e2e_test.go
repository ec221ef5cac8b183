package e2e

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/senko/internal/config"
	"github.com/hyperjump/senko/internal/engine"
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/internal/ranking"
	"github.com/hyperjump/senko/internal/watcher"
)

// newE2EEngine builds an engine on the deterministic mock embedder with small
// dimensions so analyzing the full corpus stays fast.
func newE2EEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Dimensions = 64
	eng, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestE2E_RankResumesAcrossProfessions(t *testing.T) {
	corpus := BuildCorpus()
	eng := newE2EEngine(t)
	ctx := context.Background()
	inputs := corpus.ToResumeInputs()
	t.Logf("corpus: %d resumes, %d ranking cases", corpus.TotalResumes, corpus.TotalCases)

	for _, tc := range corpus.TestCases {
		t.Run(tc.JobID, func(t *testing.T) {
			batch, err := eng.AnalyzeBatch(ctx, inputs, tc.JobText, 3)
			if err != nil {
				t.Fatalf("AnalyzeBatch: %v", err)
			}
			if batch.ScoredCount != corpus.TotalResumes {
				t.Fatalf("scored %d of %d resumes, skipped %d",
					batch.ScoredCount, corpus.TotalResumes, len(batch.Skipped))
			}
			if len(batch.TopN) != 3 {
				t.Errorf("len(TopN) = %d, want 3", len(batch.TopN))
			}
			assertRankedOrder(t, batch)
			assertStatistics(t, batch)

			leaderRank := rankOf(batch, tc.WantLeader)
			if leaderRank < 0 {
				t.Fatalf("%s: leader %s missing from ranking", tc.Description, tc.WantLeader)
			}
			for _, id := range tc.WantTrailers {
				trailerRank := rankOf(batch, id)
				if trailerRank < 0 {
					t.Fatalf("%s: trailer %s missing from ranking", tc.Description, id)
				}
				if leaderRank >= trailerRank {
					t.Errorf("%s: %s ranked #%d, not above %s at #%d",
						tc.Description, tc.WantLeader, leaderRank+1, id, trailerRank+1)
				}
			}
			t.Logf("%s: %s ranked #%d with score %.1f",
				tc.JobID, tc.WantLeader, leaderRank+1, batch.Ranked[leaderRank].OverallScore)
		})
	}
}

// perfectJobText has exactly one chunk per section. perfectResumeText repeats
// it verbatim, so every section scores as a perfect match; the no-experience
// variant drops only the experience block and its 0.35 weight with it.
const perfectJobText = `Senior engineer needed for our backend platform team.

Skills
Go, Kubernetes, PostgreSQL, gRPC, Docker

Experience
Built Go services on Kubernetes for six years.

Education
Bachelor of Science in Computer Science
`

const perfectResumeText = perfectJobText

const noExperienceResumeText = `Senior engineer needed for our backend platform team.

Skills
Go, Kubernetes, PostgreSQL, gRPC, Docker

Education
Bachelor of Science in Computer Science
`

func TestE2E_MissingSectionForfeitsItsWeight(t *testing.T) {
	eng := newE2EEngine(t)
	ctx := context.Background()

	full, err := eng.AnalyzeSingle(ctx, perfectResumeText, perfectJobText)
	if err != nil {
		t.Fatalf("AnalyzeSingle(full): %v", err)
	}
	if math.Abs(full.OverallScore-100) > 0.01 {
		t.Errorf("full resume scored %.4f, want 100", full.OverallScore)
	}
	if full.Grade != models.GradeA {
		t.Errorf("full resume grade = %s, want A", full.Grade)
	}
	if full.Confidence != models.ConfidenceHigh {
		t.Errorf("full resume confidence = %s, want High", full.Confidence)
	}
	if full.ChunkCount != 4 {
		t.Errorf("full resume chunk count = %d, want 4", full.ChunkCount)
	}
	if len(full.Gaps) != 0 {
		t.Errorf("full resume has gaps: %v", full.Gaps)
	}

	partial, err := eng.AnalyzeSingle(ctx, noExperienceResumeText, perfectJobText)
	if err != nil {
		t.Fatalf("AnalyzeSingle(no experience): %v", err)
	}
	if math.Abs(partial.OverallScore-65) > 0.01 {
		t.Errorf("no-experience resume scored %.4f, want 65", partial.OverallScore)
	}
	if partial.Grade != models.GradeC {
		t.Errorf("no-experience grade = %s, want C", partial.Grade)
	}
	exp := partial.SectionScores[models.SectionExperience]
	if exp == nil || !exp.Missing {
		t.Fatalf("experience section not flagged missing: %+v", exp)
	}
	if exp.Score != 0 {
		t.Errorf("missing experience score = %v, want 0", exp.Score)
	}
	// Three chunks and a wide spread between the two heaviest sections both
	// cost one confidence level.
	if partial.Confidence != models.ConfidenceLow {
		t.Errorf("no-experience confidence = %s, want Low", partial.Confidence)
	}
	if !anyContains(partial.Gaps, "work experience") {
		t.Errorf("gaps do not mention the missing experience section: %v", partial.Gaps)
	}
}

func TestE2E_BatchSkipsBlankResumeAndContinues(t *testing.T) {
	corpus := BuildCorpus()
	eng := newE2EEngine(t)

	inputs := []ranking.ResumeInput{
		{ID: "good-backend", Text: corpus.ResumeByID("e2e-backend-go").Text},
		{ID: "blank", Text: "   \n\t  \n"},
		{ID: "good-frontend", Text: corpus.ResumeByID("e2e-frontend-react").Text},
	}
	batch, err := eng.AnalyzeBatch(context.Background(), inputs, corpus.TestCases[0].JobText, 5)
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if batch.ScoredCount != 2 {
		t.Errorf("scored = %d, want 2", batch.ScoredCount)
	}
	if len(batch.Skipped) != 1 {
		t.Fatalf("skipped = %v, want exactly the blank resume", batch.Skipped)
	}
	if batch.Skipped[0].ResumeID != "blank" {
		t.Errorf("skipped resume = %s, want blank", batch.Skipped[0].ResumeID)
	}
	if !strings.Contains(batch.Skipped[0].Reason, "empty") {
		t.Errorf("skip reason %q does not say the document is empty", batch.Skipped[0].Reason)
	}
	if batch.Partial {
		t.Error("batch marked partial although every resume was dispatched")
	}
	if rankOf(batch, "good-backend") < 0 || rankOf(batch, "good-frontend") < 0 {
		t.Errorf("valid resumes missing from ranking: %v", batch.Ranked)
	}
}

func TestE2E_RepeatedAnalysisIsIdentical(t *testing.T) {
	corpus := BuildCorpus()
	eng := newE2EEngine(t)
	ctx := context.Background()
	jobCase := corpus.TestCases[0]
	resumeText := corpus.ResumeByID(jobCase.WantLeader).Text

	first, err := eng.AnalyzeSingle(ctx, resumeText, jobCase.JobText)
	if err != nil {
		t.Fatalf("first AnalyzeSingle: %v", err)
	}
	second, err := eng.AnalyzeSingle(ctx, resumeText, jobCase.JobText)
	if err != nil {
		t.Fatalf("second AnalyzeSingle: %v", err)
	}
	if first.ResumeID == "" || first.JobID == "" {
		t.Fatal("expected derived document IDs")
	}
	if second.ResumeID != first.ResumeID || second.JobID != first.JobID {
		t.Errorf("derived IDs differ between runs: %s/%s vs %s/%s",
			first.ResumeID, first.JobID, second.ResumeID, second.JobID)
	}
	if second.OverallScore != first.OverallScore {
		t.Errorf("scores differ between runs: %v vs %v", first.OverallScore, second.OverallScore)
	}
	if second.Grade != first.Grade || second.Confidence != first.Confidence {
		t.Errorf("grade or confidence differ between runs: %s/%s vs %s/%s",
			first.Grade, first.Confidence, second.Grade, second.Confidence)
	}
	if second.Reasoning != first.Reasoning {
		t.Errorf("reasoning differs between runs")
	}

	inputs := corpus.ToResumeInputs()
	b1, err := eng.AnalyzeBatch(ctx, inputs, jobCase.JobText, 5)
	if err != nil {
		t.Fatalf("first AnalyzeBatch: %v", err)
	}
	b2, err := eng.AnalyzeBatch(ctx, inputs, jobCase.JobText, 5)
	if err != nil {
		t.Fatalf("second AnalyzeBatch: %v", err)
	}
	if len(b1.Ranked) != len(b2.Ranked) {
		t.Fatalf("ranking lengths differ between runs: %d vs %d", len(b1.Ranked), len(b2.Ranked))
	}
	for i := range b1.Ranked {
		if b1.Ranked[i].ResumeID != b2.Ranked[i].ResumeID || b1.Ranked[i].OverallScore != b2.Ranked[i].OverallScore {
			t.Errorf("rank #%d differs between runs: %s %.4f vs %s %.4f", i+1,
				b1.Ranked[i].ResumeID, b1.Ranked[i].OverallScore,
				b2.Ranked[i].ResumeID, b2.Ranked[i].OverallScore)
		}
	}
}

func TestE2E_WatchDirectoryAnalyzesDrops(t *testing.T) {
	corpus := BuildCorpus()
	eng := newE2EEngine(t)
	jobText := corpus.TestCases[0].JobText
	dir := t.TempDir()

	var mu sync.Mutex
	results := make(map[string]*models.AnalysisResult)
	done := make(chan string, 4)

	handler := func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("read %s: %v", path, err)
			return
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		res, err := eng.AnalyzeSingleID(context.Background(), id, string(data), "", jobText)
		if err != nil {
			t.Errorf("analyze %s: %v", id, err)
			return
		}
		mu.Lock()
		results[id] = res
		mu.Unlock()
		done <- id
	}

	w := watcher.New(dir, handler, watcher.WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writeResumeFile(t, dir, "alice", corpus.ResumeByID("e2e-backend-go").Text)
	writeResumeFile(t, dir, "bob", corpus.ResumeByID("e2e-technical-writer").Text)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for dropped resumes to be analyzed")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	alice, bob := results["alice"], results["bob"]
	if alice == nil || bob == nil {
		t.Fatalf("missing analyses, got %d results", len(results))
	}
	if alice.ResumeID != "alice" || bob.ResumeID != "bob" {
		t.Errorf("resume IDs not taken from file names: %s, %s", alice.ResumeID, bob.ResumeID)
	}
	if alice.OverallScore <= bob.OverallScore {
		t.Errorf("backend resume scored %.1f against a Go posting, not above the technical writer at %.1f",
			alice.OverallScore, bob.OverallScore)
	}
}

func writeResumeFile(t *testing.T, dir, id, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, id+".txt"), []byte(text), 0644); err != nil {
		t.Fatalf("write resume %s: %v", id, err)
	}
}

// rankOf returns the zero-based position of resumeID in the ranking, or -1.
func rankOf(batch *models.BatchResult, resumeID string) int {
	for i, r := range batch.Ranked {
		if r.ResumeID == resumeID {
			return i
		}
	}
	return -1
}

func assertRankedOrder(t *testing.T, batch *models.BatchResult) {
	t.Helper()
	for i := 1; i < len(batch.Ranked); i++ {
		prev, cur := batch.Ranked[i-1], batch.Ranked[i]
		if prev.OverallScore < cur.OverallScore {
			t.Errorf("ranking out of order at #%d: %.2f before %.2f", i+1, prev.OverallScore, cur.OverallScore)
		}
		if prev.OverallScore == cur.OverallScore && prev.ResumeID >= cur.ResumeID {
			t.Errorf("tie at %.2f not broken by resume ID: %s before %s",
				cur.OverallScore, prev.ResumeID, cur.ResumeID)
		}
	}
}

func assertStatistics(t *testing.T, batch *models.BatchResult) {
	t.Helper()
	stats := batch.Statistics
	if stats == nil {
		t.Fatal("expected statistics for a scored batch")
	}
	if stats.Min > stats.Median || stats.Median > stats.Max {
		t.Errorf("min/median/max out of order: %.2f / %.2f / %.2f", stats.Min, stats.Median, stats.Max)
	}
	if stats.Mean < stats.Min || stats.Mean > stats.Max {
		t.Errorf("mean %.2f outside [%.2f, %.2f]", stats.Mean, stats.Min, stats.Max)
	}
	total := 0
	for _, n := range stats.Distribution {
		total += n
	}
	if total != batch.ScoredCount {
		t.Errorf("distribution counts sum to %d, want %d", total, batch.ScoredCount)
	}
}

func anyContains(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
