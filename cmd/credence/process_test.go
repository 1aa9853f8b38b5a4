package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/credence/internal/config"
)

func TestApplyProcessFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "process"}
	cmd.Flags().IntVar(&processWorkers, "workers", 4, "")
	cmd.Flags().StringVar(&processMode, "mode", "auto", "")
	cmd.Flags().StringVar(&processDebug, "debug", config.DebugNone, "")
	cmd.Flags().StringVar(&processDebugTo, "debug-dir", "debug_outputs", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--mode", "bm25", "--debug", "aggregate"}))

	cfg := config.DefaultPipeline()
	cfg.Workers = 8
	applyProcessFlags(cmd, &cfg)

	assert.Equal(t, "bm25", cfg.RetrievalMode)
	assert.Equal(t, config.DebugAggregate, cfg.DebugLevel)
	assert.Equal(t, 8, cfg.Workers, "unset flags keep the configured value")
	require.NoError(t, cfg.Validate())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"version"`)
}
