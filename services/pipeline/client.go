// Package pipeline runs the multi-stage research analysis: a fixed sequence
// of specialist roles, each one LLM call, feeding its output to the next
// stage and ending with a consolidated report.
package pipeline

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// LLMClient abstracts the model backend so the pipeline can be tested
// without network access.
type LLMClient interface {
	// Generate produces a completion for prompt under the given system
	// instruction.
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GeminiClient is the production LLMClient backed by the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY é obrigatória para executar análises")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Generate runs one completion.
func (c *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("genai generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}
	return text, nil
}
