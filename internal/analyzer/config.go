package analyzer

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the relevance analyzer.
//
// Every truncation cap and threshold the pipeline uses lives here as a named
// knob rather than an inline literal, so tuning never touches pipeline logic.
type Config struct {
	// SimilarityThreshold is the minimum cosine similarity (exclusive) for a
	// candidate to survive the embedding pre-filter.
	// Default: 0.7
	SimilarityThreshold float64

	// MaxLLMCandidates caps how many candidates go to the reasoning model
	// when the pipeline runs without an embedding pre-filter. Bounds prompt
	// size and cost on the fallback path.
	// Default: 20
	MaxLLMCandidates int

	// MaxRerankCandidates caps how many pre-filtered candidates (sorted by
	// similarity, descending) are sent for reranking.
	// Default: 10
	MaxRerankCandidates int

	// MaxConcurrentEmbeds bounds the per-candidate embedding fan-out so the
	// pipeline respects provider rate limits.
	// Default: 4
	MaxConcurrentEmbeds int

	// CompletionTimeout is the hard timeout on a single reasoning call. A
	// timed-out call is terminal for the invocation; no internal retry.
	// Default: 30s
	CompletionTimeout time.Duration

	// GitStatusMaxLen truncates the version-control status included in
	// embedding text and rerank prompts.
	// Default: 200
	GitStatusMaxLen int

	// DescriptionMaxLen truncates candidate descriptions in rerank prompts.
	// Default: 200
	DescriptionMaxLen int

	// EmbedRecentFiles caps recent files folded into embedding text.
	// Default: 5
	EmbedRecentFiles int

	// PromptRecentFiles caps recent files listed in the rerank prompt.
	// Default: 10
	PromptRecentFiles int

	// MaxTranscriptMessages is how many trailing transcript messages session
	// analysis considers.
	// Default: 30
	MaxTranscriptMessages int

	// MessageMaxLen truncates each transcript message in the session prompt.
	// Default: 500
	MessageMaxLen int
}

// DefaultConfig returns the default analyzer configuration
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:   0.7,
		MaxLLMCandidates:      20,
		MaxRerankCandidates:   10,
		MaxConcurrentEmbeds:   4,
		CompletionTimeout:     30 * time.Second,
		GitStatusMaxLen:       200,
		DescriptionMaxLen:     200,
		EmbedRecentFiles:      5,
		PromptRecentFiles:     10,
		MaxTranscriptMessages: 30,
		MessageMaxLen:         500,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0.0 || c.SimilarityThreshold > 1.0 {
		return fmt.Errorf("similarity_threshold must be between 0.0 and 1.0 (got %.2f)", c.SimilarityThreshold)
	}
	if c.MaxLLMCandidates <= 0 {
		return fmt.Errorf("max_llm_candidates must be positive (got %d)", c.MaxLLMCandidates)
	}
	if c.MaxLLMCandidates > 200 {
		return fmt.Errorf("max_llm_candidates too large (got %d, max 200)", c.MaxLLMCandidates)
	}
	if c.MaxRerankCandidates <= 0 {
		return fmt.Errorf("max_rerank_candidates must be positive (got %d)", c.MaxRerankCandidates)
	}
	if c.MaxRerankCandidates > c.MaxLLMCandidates {
		return fmt.Errorf("max_rerank_candidates (%d) cannot exceed max_llm_candidates (%d)",
			c.MaxRerankCandidates, c.MaxLLMCandidates)
	}
	if c.MaxConcurrentEmbeds <= 0 {
		return fmt.Errorf("max_concurrent_embeds must be positive (got %d)", c.MaxConcurrentEmbeds)
	}
	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("completion_timeout must be positive (got %v)", c.CompletionTimeout)
	}
	if c.CompletionTimeout > 5*time.Minute {
		return fmt.Errorf("completion_timeout too large (got %v, max 5 minutes)", c.CompletionTimeout)
	}
	if c.GitStatusMaxLen <= 0 || c.DescriptionMaxLen <= 0 || c.MessageMaxLen <= 0 {
		return fmt.Errorf("truncation lengths must be positive")
	}
	if c.EmbedRecentFiles < 0 || c.PromptRecentFiles < 0 {
		return fmt.Errorf("recent file caps cannot be negative")
	}
	if c.MaxTranscriptMessages <= 0 {
		return fmt.Errorf("max_transcript_messages must be positive (got %d)", c.MaxTranscriptMessages)
	}
	return nil
}

// ConfigFromEnv creates a Config from environment variables, falling back to
// defaults.
//
// Environment variables:
//   - SCOUT_SIMILARITY_THRESHOLD: pre-filter similarity threshold (default: 0.7)
//   - SCOUT_MAX_LLM_CANDIDATES: fallback-path candidate cap (default: 20)
//   - SCOUT_MAX_RERANK_CANDIDATES: rerank candidate cap (default: 10)
//   - SCOUT_MAX_CONCURRENT_EMBEDS: embedding fan-out limit (default: 4)
//   - SCOUT_COMPLETION_TIMEOUT_SECS: reasoning call timeout (default: 30)
//
// Returns an error if any variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvFloat("SCOUT_SIMILARITY_THRESHOLD", &cfg.SimilarityThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("SCOUT_MAX_LLM_CANDIDATES", &cfg.MaxLLMCandidates); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("SCOUT_MAX_RERANK_CANDIDATES", &cfg.MaxRerankCandidates); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("SCOUT_MAX_CONCURRENT_EMBEDS", &cfg.MaxConcurrentEmbeds); err != nil {
		return cfg, err
	}
	if err := parseEnvDuration("SCOUT_COMPLETION_TIMEOUT_SECS", &cfg.CompletionTimeout, time.Second); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvDuration parses a duration from an environment variable, scaled
// by multiplier (e.g. time.Second for a seconds-valued variable).
func parseEnvDuration(key string, dest *time.Duration, multiplier time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = time.Duration(parsed) * multiplier
	return nil
}
