package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/scout/internal/ai"
	"github.com/steveyegge/scout/internal/analyzer"
	"github.com/steveyegge/scout/internal/cache"
	"github.com/steveyegge/scout/internal/embedding"
	"github.com/steveyegge/scout/internal/tracker"
	"github.com/steveyegge/scout/internal/types"
)

var (
	cachePath string
	storePath string
	repoName  string
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Surface open work related to what you're about to do",
	Long: `Scout watches session activity and connects it to your open work items.

At session start it embeds your prompt and working context, pre-filters open
items by cosine similarity, and asks a reasoning model which survivors are
actually duplicates, blockers, or collaboration opportunities. At session end
it summarizes what got done and files newly discovered ideas.

Required environment:
  ANTHROPIC_API_KEY   reasoning model (rerank, session analysis)
  OPENAI_API_KEY      embedding model (similarity pre-filter)

Either key may be omitted; the pipeline degrades to the tiers it can run.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", filepath.Join(".scout", "embeddings.db"), "path to the embedding cache database")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", filepath.Join(".scout", "items.json"), "path to the JSON work-item store")
	rootCmd.PersistentFlags().StringVar(&repoName, "repo", "default", "repository name to query in the item store")
}

// buildAnalyzer wires the pipeline from environment and flags. A missing
// API key disables that tier with a warning instead of failing the command;
// the analyzer itself degrades accordingly.
func buildAnalyzer() (*analyzer.Analyzer, *cache.Store, error) {
	cfg, err := analyzer.ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}

	var completions ai.CompletionClient
	if client, err := ai.NewClient(&ai.Config{}); err == nil {
		completions = client
	} else {
		fmt.Fprintf(os.Stderr, "Warning: reasoning tier disabled: %v\n", err)
	}

	var embedder embedding.Client
	if client, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{}); err == nil {
		embedder = client
	} else {
		fmt.Fprintf(os.Stderr, "Warning: embedding tier disabled: %v\n", err)
	}

	store, err := cache.Open(cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: embedding cache unavailable: %v\n", err)
		store = nil
	}

	a, err := analyzer.New(cfg, completions, embedder, store)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}
	return a, store, nil
}

func openItemStore() (*tracker.FileStore, error) {
	return tracker.OpenFileStore(storePath)
}

// loadItemsFile reads work items from a JSON array file.
func loadItemsFile(path string) ([]*types.WorkItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading items file: %w", err)
	}
	var items []*types.WorkItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing items file: %w", err)
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("invalid item in %s: %w", path, err)
		}
	}
	return items, nil
}
