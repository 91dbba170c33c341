package port

import "context"

// LLM represents a chat language model for answer generation.
type LLM interface {
	// Generate produces a completion for the given system and user prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
