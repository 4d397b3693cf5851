package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/scout/internal/groups"
	"github.com/steveyegge/scout/internal/repl"
	"github.com/steveyegge/scout/internal/tracker"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive shell",
	Long: `Start an interactive shell. Type what you're about to work on and scout
shows which open items it duplicates or relates to.

Type 'help' in the shell for available commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, cacheStore, err := buildAnalyzer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if cacheStore != nil {
			defer cacheStore.Close()
		}

		var itemStore tracker.ItemStore
		if fs, err := openItemStore(); err == nil {
			itemStore = fs
		} else {
			fmt.Fprintf(os.Stderr, "Warning: item store unavailable: %v\n", err)
		}

		cwd, _ := os.Getwd()
		groupManager, _ := groups.Load(cwd)

		r, err := repl.New(&repl.Config{
			Analyzer: a,
			Store:    itemStore,
			Groups:   groupManager,
			Repo:     repoName,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create REPL: %v\n", err)
			os.Exit(1)
		}

		if err := r.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
