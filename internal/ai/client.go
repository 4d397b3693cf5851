// Package ai wraps the Anthropic API behind the small completion interface
// the relevance pipeline needs, plus parsing helpers for the structured JSON
// responses it requests.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Scout uses a tiered model strategy: the default model handles reasoning
// tasks (rerank, session analysis); a cheaper model can be swapped in via
// environment for cost-sensitive deployments.
const (
	// ModelSonnet is the high-end model for reasoning tasks
	ModelSonnet = "claude-sonnet-4-5-20250929"

	// ModelHaiku is the cost-efficient model for simple tasks
	ModelHaiku = "claude-3-5-haiku-20241022"
)

// GetDefaultModel returns the default model, checking SCOUT_MODEL env var first
func GetDefaultModel() string {
	if model := os.Getenv("SCOUT_MODEL"); model != "" {
		return model
	}
	return ModelSonnet
}

// CompletionRequest describes a single structured-completion call
type CompletionRequest struct {
	System    string        // System instruction (optional)
	Prompt    string        // User instruction
	MaxTokens int           // Response budget (default: 4096)
	Timeout   time.Duration // Per-call timeout (default: 30s)
}

// CompletionClient is the reasoning-service boundary. The analyzer takes it
// as a constructor-injected dependency so tests can substitute fakes.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Config holds Anthropic client configuration
type Config struct {
	APIKey string // Anthropic API key (if empty, reads from ANTHROPIC_API_KEY env var)
	Model  string // Model to use (default: claude-sonnet-4-5-20250929)
}

// Client is the Anthropic-backed CompletionClient
type Client struct {
	client *anthropic.Client
	model  string
}

// Compile-time check that Client implements CompletionClient
var _ CompletionClient = (*Client)(nil)

// NewClient creates a new Anthropic completion client
func NewClient(cfg *Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: &client, model: model}, nil
}

// Complete makes a single completion call with a hard per-call timeout.
// No retries here: the pipeline treats a failed call as terminal for that
// invocation and leaves retry policy to the caller.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	start := time.Now()
	resp, err := c.client.Messages.New(callCtx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	slog.Debug("completion call finished",
		"model", c.model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(start))

	return text, nil
}
