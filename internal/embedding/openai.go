package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL targets the OpenAI API; any OpenAI-compatible proxy
	// (LiteLLM and friends) works by overriding it.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the embedding model used when none is configured
	DefaultModel = "text-embedding-3-small"

	// DefaultRequestTimeout bounds a single embeddings request
	DefaultRequestTimeout = 30 * time.Second

	// DefaultRequestsPerSecond is the outbound rate limit. Embedding calls
	// fan out per candidate, so an unthrottled pipeline can burst dozens of
	// requests at once and trip provider rate limits.
	DefaultRequestsPerSecond = 10
)

// OpenAIConfig configures the REST embedding client
type OpenAIConfig struct {
	BaseURL           string        // Service base URL (default: OpenAI)
	APIKey            string        // Bearer token (if empty, reads OPENAI_API_KEY)
	Model             string        // Embedding model id (default: text-embedding-3-small)
	RequestTimeout    time.Duration // Per-request timeout (default: 30s)
	RequestsPerSecond float64       // Outbound rate limit (default: 10, 0 = default)
	HTTPClient        *http.Client  // Optional transport override for tests
}

// OpenAIClient calls an OpenAI-compatible /embeddings endpoint
type OpenAIClient struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	model   string
}

// Compile-time check that OpenAIClient implements Client
var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new embedding client. The API key is the only
// hard requirement; everything else has defaults.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	// Fractional rates truncate to a zero burst, which would make every
	// Wait fail. Allow at least one request at a time.
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &OpenAIClient{
		client:  httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}, nil
}

// ModelID returns the configured embedding model id
func (c *OpenAIClient) ModelID() string {
	return c.model
}

// Generate embeds a single text. Blank text short-circuits to nil with no
// network call.
func (c *OpenAIClient) Generate(ctx context.Context, text string) []float32 {
	if isBlank(text) {
		return nil
	}

	vectors, err := c.embedRequest(ctx, text)
	if err != nil {
		slog.Warn("embedding generation failed", "model", c.model, "error", err)
		return nil
	}
	if len(vectors) == 0 || !validVector(vectors[0]) {
		slog.Warn("embedding service returned invalid vector", "model", c.model)
		return nil
	}
	return vectors[0]
}

// GenerateBatch embeds texts in one request where possible. Blank entries
// map to nil without being sent; the result has the same length and order
// as the input. A failed request degrades every entry it covered to nil
// rather than failing the caller.
func (c *OpenAIClient) GenerateBatch(ctx context.Context, texts []string) [][]float32 {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results
	}

	// Collect non-blank entries, remembering their original positions.
	var inputs []string
	var positions []int
	for i, t := range texts {
		if isBlank(t) {
			continue
		}
		inputs = append(inputs, t)
		positions = append(positions, i)
	}
	if len(inputs) == 0 {
		return results
	}

	vectors, err := c.embedRequest(ctx, inputs)
	if err != nil {
		slog.Warn("batch embedding generation failed", "model", c.model, "count", len(inputs), "error", err)
		return results
	}

	for i, pos := range positions {
		if i >= len(vectors) {
			break
		}
		if validVector(vectors[i]) {
			results[pos] = vectors[i]
		}
	}
	return results
}

type embedRequest struct {
	Input          any    `json:"input"`
	Model          string `json:"model"`
	EncodingFormat string `json:"encoding_format"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// embedRequest posts input (a string or []string) to the embeddings endpoint
// and returns vectors in input order.
func (c *OpenAIClient) embedRequest(ctx context.Context, input any) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	body, err := json.Marshal(embedRequest{
		Input:          input,
		Model:          c.model,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send embedding request to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding API error (model=%s, status=%d): %s",
			c.model, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}

	// The API may return entries out of order; Index is authoritative.
	vectors := make([][]float32, len(parsed.Data))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding response index %d out of range (%d results)", item.Index, len(parsed.Data))
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
