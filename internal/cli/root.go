package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deaguilarg/seguros-rag/config"
	"github.com/deaguilarg/seguros-rag/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "seguros-rag",
	Short: "Retrieval-augmented search over insurance policy documents",
	Long: `seguros-rag ingests insurance policy PDFs, builds a vector index over
their chunks and answers questions grounded in the retrieved text.

Example usage:
  seguros-rag ingest                          # Extract, chunk and embed the PDFs
  seguros-rag build                           # Build the vector index
  seguros-rag query -q "¿qué cubre el seguro de moto?"
  seguros-rag ask -q "¿cuál es la franquicia del seguro de auto?"
  seguros-rag serve                           # HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		logger.SetVerbose(verbose)

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
