package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipelineIsValid(t *testing.T) {
	cfg := DefaultPipeline()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "auto", cfg.RetrievalMode)
	assert.Equal(t, 60, cfg.RRFK)
	assert.Equal(t, 5, cfg.FactCheckBatchSize)
	assert.Equal(t, 3, cfg.StoreAttempts)
	assert.Equal(t, 2*time.Second, cfg.StoreBaseDelay)
}

func TestPipelineValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"unknown mode", func(c *PipelineConfig) { c.RetrievalMode = "semantic" }},
		{"no workers", func(c *PipelineConfig) { c.Workers = 0 }},
		{"unknown debug level", func(c *PipelineConfig) { c.DebugLevel = "verbose" }},
		{"debug without dir", func(c *PipelineConfig) { c.DebugLevel = DebugAggregate; c.DebugDir = "" }},
		{"zero attempts", func(c *PipelineConfig) { c.StoreAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPipeline()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPipeline_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\nretrieval_mode: hybrid\nstore_base_delay: 500ms\n"), 0o644))

	t.Setenv("PIPELINE_CONFIG", path)
	t.Setenv("PROCESS_WORKERS", "6")

	cfg, err := Pipeline()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers, "env overrides the file")
	assert.Equal(t, "hybrid", cfg.RetrievalMode)
	assert.Equal(t, 500*time.Millisecond, cfg.StoreBaseDelay)
}

func TestPipeline_MissingFile(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Pipeline()
	assert.Error(t, err)
}

func TestPipeline_InvalidEnv(t *testing.T) {
	t.Setenv("RETRIEVAL_MODE", "fuzzy")
	_, err := Pipeline()
	assert.Error(t, err)
}
