package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/scout/internal/groups"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage multi-repo project groups",
	Long: `Project groups let one session query open work across several
repositories. Groups live in .scout/settings.yaml (repo-local) or
~/.scout/settings.yaml (per-user).`,
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups and their repositories",
	Run: func(cmd *cobra.Command, args []string) {
		m := mustLoadGroups()
		names := m.List()
		if len(names) == 0 {
			fmt.Println("No groups defined")
			return
		}
		for _, name := range names {
			fmt.Printf("%s: %s\n", name, strings.Join(m.Get(name), ", "))
		}
	},
}

var groupsSetCmd = &cobra.Command{
	Use:   "set <name> <repo>...",
	Short: "Create or replace a group",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m := mustLoadGroups()
		if err := m.Set(args[0], args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Group %s: %s\n", args[0], strings.Join(m.Get(args[0]), ", "))
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := mustLoadGroups()
		if err := m.Delete(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted group %s\n", args[0])
	},
}

var groupsAddRepoCmd = &cobra.Command{
	Use:   "add-repo <name> <repo>",
	Short: "Add a repository to a group",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m := mustLoadGroups()
		if err := m.AddRepo(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Group %s: %s\n", args[0], strings.Join(m.Get(args[0]), ", "))
	},
}

var groupsRemoveRepoCmd = &cobra.Command{
	Use:   "remove-repo <name> <repo>",
	Short: "Remove a repository from a group",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m := mustLoadGroups()
		if err := m.RemoveRepo(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Group %s: %s\n", args[0], strings.Join(m.Get(args[0]), ", "))
	},
}

func mustLoadGroups() *groups.Manager {
	cwd, _ := os.Getwd()
	m, err := groups.Load(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m
}

func init() {
	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsSetCmd)
	groupsCmd.AddCommand(groupsDeleteCmd)
	groupsCmd.AddCommand(groupsAddRepoCmd)
	groupsCmd.AddCommand(groupsRemoveRepoCmd)
	rootCmd.AddCommand(groupsCmd)
}
