package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deaguilarg/seguros-rag/internal/usecase"
)

var (
	askText    string
	askTopK    int
	askJSON    bool
	askFilters []string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question and get a grounded answer",
	Long: `Retrieve the most relevant policy chunks for a question and generate an
answer grounded in them.

Examples:
  seguros-rag ask -q "¿cuál es la franquicia del seguro de auto?"
  seguros-rag ask -q "¿qué cubre la póliza de moto?" --filter insurer=AXA`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askText, "query", "q", "", "question (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.Flags().StringArrayVar(&askFilters, "filter", nil, "metadata filter field=value1,value2 (repeatable)")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	filters, err := parseFilters(askFilters)
	if err != nil {
		return err
	}

	engine, err := newSearchEngine(cfg, GetRootDir())
	if err != nil {
		return err
	}

	model, err := newLLM(cfg)
	if err != nil {
		return fmt.Errorf("failed to create chat model: %w", err)
	}

	topK := cfg.Search.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	answerUC := usecase.NewAnswerUseCase(engine, model, topK)
	answer, err := answerUC.Ask(cmd.Context(), askText, filters)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Printf("\nFuentes:\n")
		for i, s := range answer.Sources {
			fmt.Printf("  [%d] %s [%s] (score: %.2f)\n", i+1, s.Metadata.Filename, s.Section, s.Score)
		}
	}

	return nil
}
