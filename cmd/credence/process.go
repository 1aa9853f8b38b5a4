package main

import (
	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/credence/internal/config"
)

var (
	processLimit   int
	processWorkers int
	processMode    string
	processDebug   string
	processDebugTo string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Enrich and score pending documents once",
	Long: `Runs one batch over raw documents that are not known duplicates and prints the
batch report as JSON.

Examples:
  credence process                      # everything pending
  credence process --limit 50 --mode bm25
  credence process --debug per_document --debug-dir ./debug_outputs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Pipeline()
		if err != nil {
			return err
		}
		applyProcessFlags(cmd, &cfg)

		ctx := cmd.Context()
		p, pool, err := openPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		report, err := p.ProcessPending(ctx, processLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

// applyProcessFlags overrides the pipeline config with the flags the user set.
func applyProcessFlags(cmd *cobra.Command, cfg *config.PipelineConfig) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = processWorkers
	}
	if flags.Changed("mode") {
		cfg.RetrievalMode = processMode
	}
	if flags.Changed("debug") {
		cfg.DebugLevel = processDebug
	}
	if flags.Changed("debug-dir") {
		cfg.DebugDir = processDebugTo
	}
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().IntVar(&processLimit, "limit", 0, "maximum documents to process (0 uses the configured limit)")
	processCmd.Flags().IntVar(&processWorkers, "workers", 4, "documents processed concurrently")
	processCmd.Flags().StringVar(&processMode, "mode", "auto", "retrieval mode: auto, bm25, dense, hybrid")
	processCmd.Flags().StringVar(&processDebug, "debug", config.DebugNone, "debug dumps: none, aggregate, per_document")
	processCmd.Flags().StringVar(&processDebugTo, "debug-dir", "debug_outputs", "directory for debug dumps")
}
