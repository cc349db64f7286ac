// Package gemini adapts the Gemini API for structured JSON generation.
// This is part of the platform layer and contains no business logic.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Config for the Gemini client.
type Config struct {
	APIKey string
	Model  string
}

// Usage reports token consumption for a single generation call.
// Consumers persist this for external billing and metering.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Client wraps the genai SDK with JSON-mode generation.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client for the configured model.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// GenerateJSON sends the prompt with a system instruction and returns the raw
// JSON text produced by the model along with token usage.
// Temperature is pinned to zero: extraction must be as deterministic as the
// model allows.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string) (string, Usage, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", Usage{}, fmt.Errorf("gemini generate content: %w", err)
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", usage, fmt.Errorf("gemini returned empty response")
	}

	return text, usage, nil
}
