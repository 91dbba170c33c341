// Package llm provides the chat-model adapter behind the LLM port.
package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIChat generates answers through an OpenAI chat model.
type OpenAIChat struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIChat creates a chat adapter. The API key is read from the given
// environment variable.
func NewOpenAIChat(apiKeyEnv, model string, maxTokens int, temperature float64) (*OpenAIChat, error) {
	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	return &OpenAIChat{
		client:      openai.NewClient(key),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
	}, nil
}

// Generate produces a completion for the given system and user prompts.
func (c *OpenAIChat) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        0.9,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the model.
func (c *OpenAIChat) ModelName() string { return c.model }
