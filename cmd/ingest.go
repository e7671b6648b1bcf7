package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/app"
	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/extract"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest documents into the knowledge base",
	Long: `Ingest extracts text from the given PDF, DOCX or text files, chunks it,
and adds the chunks to the local knowledge base so chat answers can be
grounded in them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, newLogger())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	if !a.Engine.Available() {
		return fmt.Errorf("embedding capability unavailable; set the provider API key to ingest documents")
	}

	total := 0
	for _, path := range args {
		if !extract.Supported(path) {
			return fmt.Errorf("unsupported file type: %s", path)
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}

		text, err := extract.Text(f, path)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("extracting %s: %w", path, err)
		}

		added, err := a.Engine.Ingest(ctx, filepath.Base(path), text)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks added\n", path, added)
		total += added
	}

	fmt.Fprintf(cmd.OutOrStdout(), "done: %d chunks from %d files\n", total, len(args))
	return nil
}
