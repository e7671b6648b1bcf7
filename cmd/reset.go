package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/embed"
	"github.com/docchat/docchat/internal/history"
	"github.com/docchat/docchat/internal/log"
	"github.com/docchat/docchat/internal/rag"
)

var flagResetHistory bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all ingested documents",
	Long: `Reset removes the chunk store and the vector index. With --history the
conversation transcript is cleared as well. No AI provider is needed.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetHistory, "history", false, "also clear the conversation history")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reset is pure file manipulation; no provider setup required.
	params := rag.Params{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap}
	engine := rag.NewEngine(cfg.DataDir, embed.Disabled(), params, log.NewNop())
	if err := engine.Reset(); err != nil {
		return fmt.Errorf("resetting documents: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "documents cleared")

	if flagResetHistory {
		store := history.NewStore(filepath.Join(cfg.DataDir, "chat.json"))
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
	}
	return nil
}
