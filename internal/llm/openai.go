package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

// Options configures the OpenAI-compatible backend client.
type Options struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a local
	// OpenAI-compatible inference server.
	BaseURL     string
	Model       string
	Temperature float32
	SystemRole  string
}

// Client invokes an OpenAI-compatible chat completion backend with a
// rendered prompt and returns the generated text.
type Client struct {
	client     *openai.Client
	model      string
	temp       float32
	systemRole string
	log        *logger.Logger
}

// NewClient creates a backend client from Options.
func NewClient(opts Options, log *logger.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	systemRole := opts.SystemRole
	if systemRole == "" {
		systemRole = "You are a technical writer documenting software projects."
	}

	return &Client{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		temp:       opts.Temperature,
		systemRole: systemRole,
		log:        log,
	}, nil
}

// Invoke sends the prompt as a single-turn chat completion.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	c.log.WithFields(map[string]any{"model": c.model, "prompt_len": len(prompt)}).Debug("invoking backend")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemRole},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("backend returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
