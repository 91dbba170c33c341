package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deaguilarg/seguros-rag/internal/logger"
	"github.com/deaguilarg/seguros-rag/internal/server"
	"github.com/deaguilarg/seguros-rag/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search and answer generation over HTTP",
	Long: `Load the latest index and expose it over HTTP:

  POST /api/search   {"query": "...", "top_k": 5, "filters": {...}}
  POST /api/ask      {"query": "...", "filters": {...}}
  GET  /healthz

Examples:
  seguros-rag serve
  seguros-rag serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	engine, err := newSearchEngine(cfg, GetRootDir())
	if err != nil {
		return err
	}

	// Answer generation is optional: without model credentials the search
	// endpoint still works.
	var answerer *usecase.AnswerUseCase
	if model, err := newLLM(cfg); err != nil {
		logger.Warn("answer generation disabled: %v", err)
	} else {
		answerer = usecase.NewAnswerUseCase(engine, model, cfg.Search.TopK)
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	fmt.Printf("Serving %d vectors on %s\n", engine.Len(), addr)
	return server.New(engine, answerer, cfg.Search.TopK).Start(addr)
}
