// Benchmark runs a query against the latest built index and reports retrieval
// quality and latency. Useful when tuning the index type or the re-ranking
// weights.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/deaguilarg/seguros-rag/config"
	"github.com/deaguilarg/seguros-rag/internal/adapter/embedding"
	"github.com/deaguilarg/seguros-rag/internal/port"
	"github.com/deaguilarg/seguros-rag/internal/usecase"
)

func main() {
	rootDir := flag.String("dir", ".", "Project directory with rag.yaml and the index")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 10, "Number of results")
	runs := flag.Int("runs", 5, "Timed repetitions")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir . -q \"¿qué cubre el seguro de moto?\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Retrieval quality (scores of the top results)")
		fmt.Println("  2. Search latency over repeated runs")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedder init failed: %v\n", err)
		os.Exit(1)
	}

	pair, err := usecase.LatestArtifactPair(cfg.Index.Dir, cfg.Index.Prefix, cfg.Index.MappingPrefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "No index found, run 'seguros-rag build' first: %v\n", err)
		os.Exit(1)
	}

	engine, err := usecase.NewSearchEngine(pair, embedder, cfg.Search)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading index: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Vectors indexed: %d\n", engine.Len())
	fmt.Printf("Index type: %s\n", cfg.Index.Type)
	fmt.Printf("Model: %s (%s)\n", cfg.Embedding.Model, cfg.Embedding.Provider)
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	ctx := context.Background()
	start := time.Now()
	results, err := engine.Search(ctx, *query, *topK, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}
	firstRun := time.Since(start)

	if len(results) == 0 {
		fmt.Println("No results above the score threshold.")
		os.Exit(0)
	}

	fmt.Printf("Top %d matches:\n\n", len(results))

	totalScore := 0.0
	for i, r := range results {
		preview := strings.ReplaceAll(r.Text, "\n", " ")
		if len(preview) > 150 {
			preview = preview[:150] + "..."
		}

		totalScore += r.Score

		rating := "LOW"
		if r.Score > 0.7 {
			rating = "HIGH"
		} else if r.Score > 0.5 {
			rating = "GOOD"
		} else if r.Score > 0.3 {
			rating = "OK"
		}

		fmt.Printf("%d. [%s %.3f] %s [%s]\n", i+1, rating, r.Score, r.Metadata.Filename, r.Section)
		fmt.Printf("   %s\n\n", preview)
	}

	var total time.Duration
	for i := 0; i < *runs; i++ {
		start := time.Now()
		if _, err := engine.Search(ctx, *query, *topK, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}
		total += time.Since(start)
	}

	avgScore := totalScore / float64(len(results))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average score: %.3f\n", avgScore)
	fmt.Printf("  Top-1 score:   %.3f\n", results[0].Score)
	fmt.Printf("  First search:  %s (includes query embedding)\n", firstRun)
	fmt.Printf("  Avg latency:   %s over %d runs\n", total/time.Duration(*runs), *runs)

	if avgScore > 0.5 {
		fmt.Println("  Status: GOOD - retrieval working well")
	} else if avgScore > 0.3 {
		fmt.Println("  Status: OK - results are somewhat related")
	} else {
		fmt.Println("  Status: POOR - consider re-ingesting or tuning the weights")
	}
}

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(
			cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.Dimension)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Embedding.Provider)
	}
}
