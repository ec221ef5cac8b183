package config

import "github.com/hyperjump/senko/internal/models"

// DefaultSectionWeights is the fixed default weight table for aggregation.
func DefaultSectionWeights() map[models.SectionKind]float64 {
	return map[models.SectionKind]float64{
		models.SectionSkills:     0.40,
		models.SectionExperience: 0.35,
		models.SectionEducation:  0.15,
		models.SectionGeneral:    0.10,
	}
}

// DefaultConfig returns a config with every default applied. It validates clean.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "mock"
	}
	if cfg.Embedding.ModelID == "" {
		cfg.Embedding.ModelID = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Segmenter.ChunkMaxLength == 0 {
		cfg.Segmenter.ChunkMaxLength = 1000
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "memory"
	}
	if cfg.Vector.DistanceMetric == "" {
		cfg.Vector.DistanceMetric = "cosine"
	}
	if cfg.Scoring.SectionWeights == nil {
		cfg.Scoring.SectionWeights = DefaultSectionWeights()
	}
	if cfg.Scoring.GradeThresholds == (GradeThresholds{}) {
		cfg.Scoring.GradeThresholds = GradeThresholds{A: 90, B: 75, C: 60, D: 40}
	}
	if cfg.Scoring.StrongThreshold == 0 {
		cfg.Scoring.StrongThreshold = 0.7
	}
	if cfg.Scoring.WeakThreshold == 0 {
		cfg.Scoring.WeakThreshold = 0.3
	}
	if cfg.Engine.MaxParallelism == 0 {
		cfg.Engine.MaxParallelism = 4
	}
	if cfg.Engine.PerCallTimeoutSecs == 0 {
		cfg.Engine.PerCallTimeoutSecs = 30
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	// Storage and watch paths stay empty unless configured; empty disables
	// persistence and watch mode respectively.
}
