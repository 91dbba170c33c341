package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryText    string
	queryTopK    int
	queryJSON    bool
	queryFilters []string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the indexed policy chunks",
	Long: `Search for the chunks most relevant to a question, with vehicle-aware
re-ranking and optional metadata filters.

Examples:
  seguros-rag query -q "¿qué cubre el seguro de moto?"
  seguros-rag query -q "franquicia" --top-k 10 --json
  seguros-rag query -q "robo" --filter insurer=AXA,Mapfre --filter section=asegurado`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().StringArrayVar(&queryFilters, "filter", nil, "metadata filter field=value1,value2 (repeatable)")
	queryCmd.MarkFlagRequired("query")
}

// parseFilters turns repeated field=v1,v2 flags into the filter map the
// search engine expects: OR within a field, AND across fields.
func parseFilters(flags []string) (map[string][]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	filters := make(map[string][]string, len(flags))
	for _, f := range flags {
		field, values, ok := strings.Cut(f, "=")
		if !ok || field == "" || values == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value1,value2", f)
		}
		filters[field] = append(filters[field], strings.Split(values, ",")...)
	}
	return filters, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	filters, err := parseFilters(queryFilters)
	if err != nil {
		return err
	}

	engine, err := newSearchEngine(cfg, GetRootDir())
	if err != nil {
		return err
	}

	topK := cfg.Search.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	results, err := engine.Search(cmd.Context(), queryText, topK, filters)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s [%s] (score: %.2f, distance: %.3f) ---\n",
			i+1, r.Metadata.Filename, r.Section, r.Score, r.Distance)
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
