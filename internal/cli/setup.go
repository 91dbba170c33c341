package cli

import (
	"fmt"
	"path/filepath"

	"github.com/deaguilarg/seguros-rag/config"
	"github.com/deaguilarg/seguros-rag/internal/adapter/embedding"
	"github.com/deaguilarg/seguros-rag/internal/adapter/llm"
	"github.com/deaguilarg/seguros-rag/internal/port"
	"github.com/deaguilarg/seguros-rag/internal/usecase"
)

// newEmbedder creates the configured embedding provider.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(
			cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.Dimension)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newLLM creates the configured chat model.
func newLLM(cfg *config.Config) (port.LLM, error) {
	return llm.NewOpenAIChat(
		cfg.Generation.APIKeyEnv, cfg.Generation.Model,
		cfg.Generation.MaxTokens, cfg.Generation.Temperature)
}

// newSearchEngine loads the latest index/mapping pair under the configured
// index directory.
func newSearchEngine(cfg *config.Config, root string) (*usecase.SearchEngine, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	pair, err := usecase.LatestArtifactPair(
		resolvePath(root, cfg.Index.Dir), cfg.Index.Prefix, cfg.Index.MappingPrefix)
	if err != nil {
		return nil, fmt.Errorf("no index available, run 'seguros-rag build' first: %w", err)
	}

	return usecase.NewSearchEngine(pair, embedder, cfg.Search)
}

// resolvePath anchors a relative config path at the root directory.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
