// Package config provides configuration loading and validation for the senko engine.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/senko/internal/models"
)

// ErrInvalid marks configuration rejected by Validate. Validation runs before
// any analysis work begins; a failed config never produces partial results.
var ErrInvalid = errors.New("invalid config")

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Vector    VectorConfig    `yaml:"vector"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Engine    EngineConfig    `yaml:"engine"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // mock, onnx or remote
	ModelID    string `yaml:"model_id"`
	ModelPath  string `yaml:"model_path"`
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// SegmenterConfig holds document segmentation settings.
type SegmenterConfig struct {
	ChunkMaxLength int `yaml:"chunk_max_length"`
}

// VectorConfig holds vector index settings.
type VectorConfig struct {
	IndexType      string `yaml:"index_type"`
	DistanceMetric string `yaml:"distance_metric"`
}

// GradeThresholds maps overall scores (0-100) to letter grades. A score at or
// above A gets an A, and so on; below D is an F.
type GradeThresholds struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
}

// ScoringConfig holds section weighting and grading settings.
type ScoringConfig struct {
	SectionWeights  map[models.SectionKind]float64 `yaml:"section_weights"`
	GradeThresholds GradeThresholds                `yaml:"grade_thresholds"`
	StrongThreshold float64                        `yaml:"strong_threshold"`
	WeakThreshold   float64                        `yaml:"weak_threshold"`
}

// EngineConfig holds batch execution settings.
type EngineConfig struct {
	MaxParallelism     int `yaml:"max_parallelism"`
	PerCallTimeoutSecs int `yaml:"per_call_timeout_secs"`
}

// PerCallTimeout returns the per-embedding-call timeout as a duration.
func (e *EngineConfig) PerCallTimeout() time.Duration {
	return time.Duration(e.PerCallTimeoutSecs) * time.Second
}

// StorageConfig holds persistence paths. Empty paths disable persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	Directory string `yaml:"directory"`
	JobFile   string `yaml:"job_file"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed. Call Validate separately.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Watch.Directory = expandPath(cfg.Watch.Directory, configDir)
	cfg.Watch.JobFile = expandPath(cfg.Watch.JobFile, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the config for values the engine cannot run with.
// All failures wrap ErrInvalid.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "mock":
	case "onnx":
		if c.Embedding.ModelPath == "" {
			return fmt.Errorf("%w: onnx provider requires embedding.model_path", ErrInvalid)
		}
	case "remote":
		if c.Embedding.BaseURL == "" {
			return fmt.Errorf("%w: remote provider requires embedding.base_url", ErrInvalid)
		}
		if c.Embedding.ModelID == "" {
			return fmt.Errorf("%w: remote provider requires embedding.model_id", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalid, c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding.dimensions must be positive, got %d", ErrInvalid, c.Embedding.Dimensions)
	}
	if c.Embedding.CacheSize <= 0 {
		return fmt.Errorf("%w: embedding.cache_size must be positive, got %d", ErrInvalid, c.Embedding.CacheSize)
	}

	if c.Segmenter.ChunkMaxLength <= 0 {
		return fmt.Errorf("%w: segmenter.chunk_max_length must be positive, got %d", ErrInvalid, c.Segmenter.ChunkMaxLength)
	}

	if c.Vector.IndexType != "memory" {
		return fmt.Errorf("%w: unsupported vector.index_type %q (only \"memory\")", ErrInvalid, c.Vector.IndexType)
	}
	if c.Vector.DistanceMetric != "cosine" {
		return fmt.Errorf("%w: unsupported vector.distance_metric %q (only \"cosine\")", ErrInvalid, c.Vector.DistanceMetric)
	}

	var sum float64
	for kind, w := range c.Scoring.SectionWeights {
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown section kind %q in section_weights", ErrInvalid, kind)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative weight %f for section %q", ErrInvalid, w, kind)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: section_weights sum to %f, must sum to 1.0", ErrInvalid, sum)
	}

	g := c.Scoring.GradeThresholds
	if !(g.A > g.B && g.B > g.C && g.C > g.D && g.D >= 0 && g.A <= 100) {
		return fmt.Errorf("%w: grade_thresholds must satisfy 100 >= a > b > c > d >= 0, got %+v", ErrInvalid, g)
	}

	if c.Scoring.StrongThreshold <= 0 || c.Scoring.StrongThreshold > 1 {
		return fmt.Errorf("%w: strong_threshold must be in (0,1], got %f", ErrInvalid, c.Scoring.StrongThreshold)
	}
	if c.Scoring.WeakThreshold < 0 || c.Scoring.WeakThreshold >= c.Scoring.StrongThreshold {
		return fmt.Errorf("%w: weak_threshold must be in [0, strong_threshold), got %f", ErrInvalid, c.Scoring.WeakThreshold)
	}

	if c.Engine.MaxParallelism <= 0 {
		return fmt.Errorf("%w: engine.max_parallelism must be positive, got %d", ErrInvalid, c.Engine.MaxParallelism)
	}
	if c.Engine.PerCallTimeoutSecs <= 0 {
		return fmt.Errorf("%w: engine.per_call_timeout_secs must be positive, got %d", ErrInvalid, c.Engine.PerCallTimeoutSecs)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
// Empty paths stay empty (persistence disabled).
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
