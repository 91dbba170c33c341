package main

import (
	"github.com/joho/godotenv"

	"github.com/deaguilarg/seguros-rag/internal/cli"
)

func main() {
	// API keys are usually kept in a local .env; missing file is fine.
	_ = godotenv.Load()

	cli.Execute()
}
