package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/scout/internal/cache"
	"github.com/steveyegge/scout/internal/embedding"
	"github.com/steveyegge/scout/internal/fingerprint"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the embedding cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache contents summary",
	Run: func(cmd *cobra.Command, args []string) {
		store := mustOpenCache()
		defer store.Close()

		stats, err := store.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Entries: %d\n", stats.TotalEntries)
		fmt.Printf("Models:  %d\n", stats.ModelCount)
		if stats.OldestCreatedAt != nil {
			fmt.Printf("Oldest:  %s\n", stats.OldestCreatedAt.Format(time.RFC3339))
		}
		if stats.NewestCreatedAt != nil {
			fmt.Printf("Newest:  %s\n", stats.NewestCreatedAt.Format(time.RFC3339))
		}
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached embeddings",
	Run: func(cmd *cobra.Command, args []string) {
		store := mustOpenCache()
		defer store.Close()

		if err := store.Clear(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cache cleared")
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <item-id>",
	Short: "Remove the cached embedding for one item",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := mustOpenCache()
		defer store.Close()

		if err := store.Invalidate(context.Background(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Invalidated %s\n", args[0])
	},
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Pre-generate embeddings for a batch of items",
	Long: `Embed every item in --items in one batch request and cache the results,
so the first session against a large backlog doesn't pay the fan-out cost.`,
	Run: func(cmd *cobra.Command, args []string) {
		itemsFile, _ := cmd.Flags().GetString("items")
		if itemsFile == "" {
			fmt.Fprintln(os.Stderr, "Error: --items is required")
			os.Exit(1)
		}

		items, err := loadItemsFile(itemsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		embedder, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		store := mustOpenCache()
		defer store.Close()

		ctx := context.Background()
		texts := make([]string, len(items))
		for i, item := range items {
			texts[i] = item.EmbeddingText()
		}

		vectors := embedder.GenerateBatch(ctx, texts)
		warmed := 0
		for i, vec := range vectors {
			if vec == nil {
				fmt.Fprintf(os.Stderr, "Warning: no embedding for %s\n", items[i].ID)
				continue
			}
			store.Set(ctx, items[i].ID, vec, embedder.ModelID(), fingerprint.Hash(texts[i]))
			warmed++
		}
		fmt.Printf("Warmed %d/%d embeddings\n", warmed, len(items))
	},
}

func mustOpenCache() *cache.Store {
	store, err := cache.Open(cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store
}

func init() {
	cacheWarmCmd.Flags().String("items", "", "JSON file of work items to embed")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheWarmCmd)
	rootCmd.AddCommand(cacheCmd)
}
