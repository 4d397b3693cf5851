package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/scout/internal/groups"
	"github.com/steveyegge/scout/internal/tracker"
	"github.com/steveyegge/scout/internal/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Session lifecycle hooks",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the session-start hook",
	Long: `Capture context for a new session, surface related open work, and file
a tracking item. Prints the session id for the matching 'session end'.`,
	Run: func(cmd *cobra.Command, args []string) {
		prompt, _ := cmd.Flags().GetString("prompt")
		if prompt == "" {
			fmt.Fprintln(os.Stderr, "Error: --prompt is required")
			os.Exit(1)
		}

		ctx := context.Background()
		hook, cleanup := buildHook()
		defer cleanup()

		cwd, _ := os.Getwd()
		sctx, err := hook.OnSessionStart(ctx, prompt, cwd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Session started: %s\n", sctx.SessionID)
		if id, ok := hook.TrackingItem(sctx.SessionID); ok {
			fmt.Printf("Tracking item: %s\n", id)
		}
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Run the session-end hook",
	Long: `Summarize a finished session from its transcript, resolve the tracking
item, and file newly discovered ideas.

The transcript is a JSON array of {role, content} messages.`,
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")
		transcriptFile, _ := cmd.Flags().GetString("transcript")
		if transcriptFile == "" {
			fmt.Fprintln(os.Stderr, "Error: --transcript is required")
			os.Exit(1)
		}

		messages, err := loadTranscript(transcriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		hook, cleanup := buildHook()
		defer cleanup()

		analysis := hook.OnSessionEnd(context.Background(), sessionID, messages)

		status := "in progress"
		if analysis.Completed {
			status = "completed"
		}
		fmt.Printf("Session %s: %s\n", status, analysis.Summary)
		for _, idea := range analysis.NewIdeas {
			fmt.Printf("  New idea (p%d): %s\n", idea.SuggestedPriority, idea.Title)
		}
	},
}

// buildHook assembles the session hook from flags. The item store and group
// manager are best-effort; the hook runs without them.
func buildHook() (*tracker.Hook, func()) {
	a, cacheStore, err := buildAnalyzer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cleanup := func() {
		if cacheStore != nil {
			cacheStore.Close()
		}
	}

	var itemStore tracker.ItemStore
	if fs, err := openItemStore(); err == nil {
		itemStore = fs
	} else {
		fmt.Fprintf(os.Stderr, "Warning: item store unavailable: %v\n", err)
	}

	cwd, _ := os.Getwd()
	groupManager, err := groups.Load(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: group settings unavailable: %v\n", err)
		groupManager = nil
	}

	cfg := tracker.DefaultConfig()
	cfg.Repository = repoName

	hook, err := tracker.NewHook(cfg, a, itemStore, groupManager)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return hook, cleanup
}

func loadTranscript(path string) ([]types.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	var messages []types.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}
	return messages, nil
}

func init() {
	sessionStartCmd.Flags().String("prompt", "", "the session's initial prompt")
	sessionEndCmd.Flags().String("session", "", "session id from 'session start'")
	sessionEndCmd.Flags().String("transcript", "", "JSON transcript file")
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionEndCmd)
	rootCmd.AddCommand(sessionCmd)
}
