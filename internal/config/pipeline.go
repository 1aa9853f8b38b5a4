package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Debug levels for pipeline dumps.
const (
	DebugNone        = "none"
	DebugAggregate   = "aggregate"
	DebugPerDocument = "per_document"
)

// PipelineConfig carries every tunable of the enrichment pipeline. It is built once
// at startup and passed into the pipeline entry point.
type PipelineConfig struct {
	Workers         int           `yaml:"workers" validate:"gte=1,lte=64"`
	ProcessLimit    int           `yaml:"process_limit" validate:"gte=0"`
	DocumentTimeout time.Duration `yaml:"document_timeout" validate:"gte=0"`
	Interval        time.Duration `yaml:"interval" validate:"gte=0"`

	RetrievalMode        string `yaml:"retrieval_mode" validate:"oneof=auto bm25 dense hybrid"`
	BM25OnlyPoolSize     int    `yaml:"bm25_only_pool_size" validate:"gte=0"`
	DenseOnlyQueryTokens int    `yaml:"dense_only_query_tokens" validate:"gte=0"`
	RRFK                 int    `yaml:"rrf_k" validate:"gte=1"`
	CandidateLimit       int    `yaml:"candidate_limit" validate:"gte=0"`
	RelatedTopN          int    `yaml:"related_top_n" validate:"gte=1"`

	FactCheckBatchSize  int `yaml:"fact_check_batch_size" validate:"gte=1,lte=50"`
	SentimentChunkChars int `yaml:"sentiment_chunk_chars" validate:"gte=16"`

	StoreAttempts  int           `yaml:"store_attempts" validate:"gte=1,lte=10"`
	StoreBaseDelay time.Duration `yaml:"store_base_delay" validate:"gte=0"`

	DebugLevel string `yaml:"debug_level" validate:"oneof=none aggregate per_document"`
	DebugDir   string `yaml:"debug_dir" validate:"required_unless=DebugLevel none"`
}

// DefaultPipeline returns the reference settings.
func DefaultPipeline() PipelineConfig {
	return PipelineConfig{
		Workers:              4,
		DocumentTimeout:      2 * time.Minute,
		Interval:             5 * time.Minute,
		RetrievalMode:        "auto",
		BM25OnlyPoolSize:     50,
		DenseOnlyQueryTokens: 300,
		RRFK:                 60,
		RelatedTopN:          10,
		FactCheckBatchSize:   5,
		SentimentChunkChars:  512,
		StoreAttempts:        3,
		StoreBaseDelay:       2 * time.Second,
		DebugLevel:           DebugNone,
		DebugDir:             "debug_outputs",
	}
}

var validate = validator.New()

func (c PipelineConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate pipeline config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", e.Field(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("invalid pipeline config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Pipeline builds the pipeline config: defaults, then the YAML file named by
// PIPELINE_CONFIG (if any), then env overrides. The result is validated.
func Pipeline() (PipelineConfig, error) {
	cfg := DefaultPipeline()
	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		if err := overlayPipelineFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	applyPipelineEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func overlayPipelineFile(cfg *PipelineConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pipeline config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse pipeline config %s: %w", path, err)
	}
	return nil
}

func applyPipelineEnv(cfg *PipelineConfig) {
	envInt("PROCESS_WORKERS", &cfg.Workers)
	envInt("PROCESS_LIMIT", &cfg.ProcessLimit)
	envDuration("DOCUMENT_TIMEOUT", &cfg.DocumentTimeout)
	envDuration("PROCESS_INTERVAL", &cfg.Interval)
	envString("RETRIEVAL_MODE", &cfg.RetrievalMode)
	envInt("BM25_ONLY_POOL_SIZE", &cfg.BM25OnlyPoolSize)
	envInt("DENSE_ONLY_QUERY_TOKENS", &cfg.DenseOnlyQueryTokens)
	envInt("RRF_K", &cfg.RRFK)
	envInt("CANDIDATE_LIMIT", &cfg.CandidateLimit)
	envInt("RELATED_TOP_N", &cfg.RelatedTopN)
	envInt("FACT_CHECK_BATCH_SIZE", &cfg.FactCheckBatchSize)
	envInt("SENTIMENT_CHUNK_CHARS", &cfg.SentimentChunkChars)
	envInt("STORE_ATTEMPTS", &cfg.StoreAttempts)
	envDuration("STORE_BASE_DELAY", &cfg.StoreBaseDelay)
	envString("DEBUG_LEVEL", &cfg.DebugLevel)
	envString("DEBUG_OUTPUT_DIR", &cfg.DebugDir)
}

func envInt(key string, dst *int) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
