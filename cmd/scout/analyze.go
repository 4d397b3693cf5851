package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/steveyegge/scout/internal/analyzer"
	"github.com/steveyegge/scout/internal/tracker"
	"github.com/steveyegge/scout/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Find open work related to a prompt",
	Long: `Run the relevance pipeline once for a prompt.

Candidates come from --items (a JSON array of {id, title, description})
or, when omitted, from the open items in the work-item store.

Examples:
  scout analyze --prompt "fix the auth timeout"
  scout analyze --prompt "add retry logic" --items open-issues.json`,
	Run: func(cmd *cobra.Command, args []string) {
		prompt, _ := cmd.Flags().GetString("prompt")
		itemsFile, _ := cmd.Flags().GetString("items")
		if prompt == "" {
			fmt.Fprintln(os.Stderr, "Error: --prompt is required")
			os.Exit(1)
		}

		ctx := context.Background()

		var items []*types.WorkItem
		var err error
		if itemsFile != "" {
			items, err = loadItemsFile(itemsFile)
		} else {
			var store *tracker.FileStore
			store, err = openItemStore()
			if err == nil {
				items, err = store.ListOpen(ctx, repoName)
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		a, cacheStore, err := buildAnalyzer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if cacheStore != nil {
			defer cacheStore.Close()
		}

		cwd, _ := os.Getwd()
		sctx := tracker.CaptureContext(ctx, uuid.NewString(), prompt, cwd)

		report, err := a.FindRelatedWork(ctx, sctx, items)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printReport(report, len(items))
	},
}

func printReport(report *analyzer.Report, candidates int) {
	gray := color.New(color.FgHiBlack).SprintFunc()

	if report.Degraded {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Println(yellow("Note: " + report.DegradedReason))
	}

	if len(report.Related) == 0 {
		fmt.Printf("No related work found %s\n", gray(fmt.Sprintf("(%d candidates, %s)", candidates, report.Mode)))
		return
	}

	fmt.Println(tracker.FormatNotification(sortedByConfidence(report.Related)))
	fmt.Println(gray(fmt.Sprintf("(%d candidates, %s)", candidates, report.Mode)))
}

// sortedByConfidence returns a copy ordered for display; the report
// itself keeps the order the model produced.
func sortedByConfidence(related []types.RelatedWork) []types.RelatedWork {
	out := make([]types.RelatedWork, len(related))
	copy(out, related)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func init() {
	analyzeCmd.Flags().String("prompt", "", "what you're about to work on")
	analyzeCmd.Flags().String("items", "", "JSON file of candidate work items")
	rootCmd.AddCommand(analyzeCmd)
}
