// Package llm wraps the OpenAI API behind the two operations the rest of
// the service needs: prompt completion and text embedding.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/prompt-general/melodex/internal/config"
)

// Client talks to the OpenAI API.
type Client struct {
	api    *openai.Client
	config config.LLMConfig
}

// NewClient creates a new LLM client
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		api:    openai.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Complete runs a single synchronous chat completion for the given prompt
// and returns the trimmed response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed returns the embedding vector for a piece of text, using the same
// model at query time as at ingestion time.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(c.config.EmbeddingModel),
		Dimensions: c.config.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding request returned no data")
	}

	return resp.Data[0].Embedding, nil
}
