package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/senko/internal/config"
	"github.com/hyperjump/senko/internal/embedding"
	"github.com/hyperjump/senko/internal/engine"
	"github.com/hyperjump/senko/internal/models"
	"github.com/hyperjump/senko/internal/ranking"
	"github.com/hyperjump/senko/internal/scoring"
	"github.com/hyperjump/senko/internal/segmenter"
	"github.com/hyperjump/senko/internal/vector"
)

const benchJobText = `We are hiring a backend engineer for our payments platform.

Skills
Go, Kubernetes, PostgreSQL, gRPC, Docker, Redis, Kafka

Experience
Built and operated Go microservices on Kubernetes in production.

Education
Bachelor of Science in Computer Science
`

const benchResumeText = `Summary
Backend engineer with eight years of Go microservices work.

Skills
Go, Kubernetes, PostgreSQL, gRPC, Docker, Redis, Kafka, Terraform

Experience
Operated Go microservices handling millions of requests per day on Kubernetes.
Designed gRPC APIs backed by PostgreSQL and Redis for a payments platform.

Education
Bachelor of Science in Computer Science, University of Washington
`

func benchEngine(b *testing.B) *engine.Engine {
	b.Helper()
	cfg := config.DefaultConfig()
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Dimensions = 64
	eng, err := engine.New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { eng.Close() })
	return eng
}

func BenchmarkAnalyzeSingle(b *testing.B) {
	eng := benchEngine(b)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = eng.AnalyzeSingle(ctx, benchResumeText, benchJobText)
	}
}

func BenchmarkAnalyzeBatch(b *testing.B) {
	eng := benchEngine(b)
	ctx := context.Background()
	resumes := make([]ranking.ResumeInput, 8)
	for i := range resumes {
		resumes[i] = ranking.ResumeInput{
			ID:   fmt.Sprintf("resume-%d", i),
			Text: benchResumeText,
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = eng.AnalyzeBatch(ctx, resumes, benchJobText, 5)
	}
}

func BenchmarkAggregate(b *testing.B) {
	agg := scoring.NewAggregator(nil)
	scores := map[models.SectionKind]*models.SimilarityScore{
		models.SectionSkills:     {Kind: models.SectionSkills, Score: 0.82},
		models.SectionExperience: {Kind: models.SectionExperience, Score: 0.74},
		models.SectionEducation:  {Kind: models.SectionEducation, Score: 0.61},
		models.SectionGeneral:    {Kind: models.SectionGeneral, Score: 0.58},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = agg.Aggregate(scores, 8)
	}
}

func BenchmarkJobIndexQuery(b *testing.B) {
	ctx := context.Background()
	embedder := embedding.NewMockEmbedder(384)
	seg := segmenter.New(120)
	longJob := strings.Repeat("Build and operate distributed Go services on Kubernetes with PostgreSQL and Kafka. ", 60)
	doc, err := seg.Segment("bench-job", longJob, models.RoleJobDescription)
	if err != nil {
		b.Fatal(err)
	}
	idx, err := vector.BuildIndex(ctx, doc, embedder)
	if err != nil {
		b.Fatal(err)
	}
	query, _ := embedder.Embed(ctx, "senior Go engineer with Kubernetes background")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.Query(query, 5, nil)
	}
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := embedding.NewMockEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark resume text for embedding")
	}
}
