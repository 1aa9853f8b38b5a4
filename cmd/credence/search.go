package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/credence/internal/config"
	"github.com/Harshitk-cp/credence/internal/retrieval"
)

var (
	searchMode string
	searchTopK int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank ready documents against a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := retrieval.ParseMode(searchMode)
		if err != nil {
			return err
		}
		cfg, err := config.Pipeline()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		p, pool, err := openPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		hits, used, err := p.Search(ctx, strings.Join(args, " "), mode, searchTopK)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{"mode": used, "results": hits})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchMode, "mode", "auto", "retrieval mode: auto, bm25, dense, hybrid")
	searchCmd.Flags().IntVarP(&searchTopK, "top", "k", 10, "number of results")
}
