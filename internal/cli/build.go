package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deaguilarg/seguros-rag/internal/adapter/vectorindex"
	"github.com/deaguilarg/seguros-rag/internal/usecase"
)

var buildIndexType string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the vector index from the ingested artifacts",
	Long: `Concatenate the per-document embeddings into one vector index and write a
timestamped index/mapping pair. Older pairs are left in place; queries always
load the newest one.

Examples:
  seguros-rag build
  seguros-rag build --index-type hnsw`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildIndexType, "index-type", "", "index type: flat, ivf or hnsw (default from config)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	indexType := cfg.Index.Type
	if buildIndexType != "" {
		indexType = buildIndexType
	}

	buildUC := usecase.NewBuildUseCase(
		resolvePath(root, cfg.Ingest.EmbeddingsDir),
		resolvePath(root, cfg.Index.Dir),
		indexType,
		cfg.Index.Dimension,
		cfg.Index.Prefix,
		cfg.Index.MappingPrefix,
		vectorindex.Options{
			NProbe:      cfg.Index.NProbe,
			Links:       cfg.Index.HNSWLinks,
			EfSearch:    cfg.Index.HNSWEfSearch,
			EfConstruct: cfg.Index.HNSWEfConstruct,
		},
	)

	result, err := buildUC.Build()
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Printf("Build complete:\n")
	fmt.Printf("  Documents: %d\n", result.Documents)
	fmt.Printf("  Vectors:   %d\n", result.Vectors)
	fmt.Printf("  Index:     %s\n", result.IndexPath)
	fmt.Printf("  Mapping:   %s\n", result.MappingPath)
	return nil
}
