package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/deaguilarg/seguros-rag/internal/adapter/cache"
	"github.com/deaguilarg/seguros-rag/internal/adapter/extract"
	"github.com/deaguilarg/seguros-rag/internal/port"
	"github.com/deaguilarg/seguros-rag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Extract, chunk and embed the policy documents",
	Long: `Extract text from the policy PDFs, split them into section-tagged chunks,
embed every chunk and write one artifact pair per document.

Examples:
  seguros-rag ingest                # Use the configured raw directory
  seguros-rag ingest data/nuevos    # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	rawDir := resolvePath(root, cfg.Ingest.RawDir)
	if len(args) > 0 {
		var err error
		rawDir, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(rawDir)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", rawDir)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Cache embeddings so re-running over an unchanged corpus is cheap.
	var cached port.Embedder = embedder
	if cfg.Ingest.CachePath != "" {
		c, err := cache.NewEmbeddingCache(resolvePath(root, cfg.Ingest.CachePath), embedder)
		if err != nil {
			return fmt.Errorf("failed to open embedding cache: %w", err)
		}
		defer c.Close()
		cached = c
	}

	walker := extract.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	ingestUC := usecase.NewIngestUseCase(
		walker, cached, resolvePath(root, cfg.Ingest.EmbeddingsDir),
		cfg.Ingest.ChunkWords, cfg.Ingest.ChunkOverlap, cfg.Embedding.BatchSize)

	fmt.Printf("Scanning %s...\n", rawDir)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var initialized bool

	progress := func(processed, total int, _ string) {
		barMu.Lock()
		defer barMu.Unlock()

		if !initialized {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			initialized = true
		}
		bar.Set(processed)
	}

	result, err := ingestUC.Ingest(cmd.Context(), rawDir, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Documents:  %d\n", result.Documents)
	fmt.Printf("  Chunks:     %d\n", result.Chunks)
	fmt.Printf("  Skipped:    %d\n", result.Skipped)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nArtifacts stored in: %s\n", resolvePath(root, cfg.Ingest.EmbeddingsDir))
	return nil
}
