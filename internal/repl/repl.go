// Package repl provides the interactive shell: type a prompt, see which
// open work items it relates to.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/steveyegge/scout/internal/analyzer"
	"github.com/steveyegge/scout/internal/groups"
	"github.com/steveyegge/scout/internal/tracker"
	"github.com/steveyegge/scout/internal/types"
)

// REPL represents the interactive shell
type REPL struct {
	analyzer *analyzer.Analyzer
	store    tracker.ItemStore
	groups   *groups.Manager
	repo     string

	rl       *readline.Instance
	ctx      context.Context
	commands map[string]CommandHandler
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	Analyzer *analyzer.Analyzer
	Store    tracker.ItemStore // optional; without it only ad-hoc analysis works
	Groups   *groups.Manager   // optional
	Repo     string
}

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}

	r := &REPL{
		analyzer: cfg.Analyzer,
		store:    cfg.Store,
		groups:   cfg.Groups,
		repo:     cfg.Repo,
		commands: make(map[string]CommandHandler),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the REPL loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("scout> "),
		HistoryFile:       "",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

// processInput dispatches a line: registered command, or treat the whole
// line as a prompt to analyze.
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	if handler, ok := r.commands[parts[0]]; ok {
		return handler(parts[1:])
	}
	return r.analyze(line)
}

func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["items"] = r.cmdItems
	r.commands["groups"] = r.cmdGroups
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

// analyze runs the relevance pipeline for a free-form prompt.
func (r *REPL) analyze(prompt string) error {
	items, err := r.openItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No open items to compare against")
		return nil
	}

	cwd, _ := os.Getwd()
	sctx := tracker.CaptureContext(r.ctx, uuid.NewString(), prompt, cwd)

	report, err := r.analyzer.FindRelatedWork(r.ctx, sctx, items)
	if err != nil {
		return err
	}

	gray := color.New(color.FgHiBlack).SprintFunc()
	if report.Degraded {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s %s\n", yellow("Note:"), report.DegradedReason)
	}
	if len(report.Related) == 0 {
		fmt.Printf("No related work found %s\n", gray(fmt.Sprintf("(%d candidates)", len(items))))
		return nil
	}
	fmt.Println(tracker.FormatNotification(report.Related))
	return nil
}

// openItems lists the open work across the project group, or the configured
// repo when the working directory belongs to none.
func (r *REPL) openItems() ([]*types.WorkItem, error) {
	if r.store == nil {
		return nil, fmt.Errorf("no item store configured")
	}

	repos := []string{r.repo}
	if r.groups != nil {
		cwd, _ := os.Getwd()
		if group := r.groups.GroupForRepo(cwd); group != "" {
			repos = r.groups.Get(group)
		}
	}

	var items []*types.WorkItem
	for _, repo := range repos {
		if repo == "" {
			continue
		}
		open, err := r.store.ListOpen(r.ctx, repo)
		if err != nil {
			return nil, err
		}
		items = append(items, open...)
	}
	return items, nil
}

func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("Scout"))
	fmt.Println("Type what you're about to work on to find related open items.")
	fmt.Println()
	fmt.Println("Type 'help' for commands, 'exit' to quit")
	fmt.Println()
}

func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"help, ?", "Show this help message"},
		{"items", "List open work items"},
		{"groups", "List project groups"},
		{"exit, quit", "Exit the REPL"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %s  %s\n", green(cmd.name), cmd.desc)
	}

	fmt.Println()
	fmt.Println("Anything else is analyzed as a prompt:")
	fmt.Println("  'fix the auth timeout'")
	fmt.Println("  'add retry logic to the uploader'")
	fmt.Println()
	return nil
}

func (r *REPL) cmdItems(args []string) error {
	items, err := r.openItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No open items")
		return nil
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, item := range items {
		fmt.Printf("  %s  %s\n", yellow(item.ID), item.Title)
	}
	return nil
}

func (r *REPL) cmdGroups(args []string) error {
	if r.groups == nil {
		fmt.Println("No group settings loaded")
		return nil
	}
	names := r.groups.List()
	if len(names) == 0 {
		fmt.Println("No groups defined")
		return nil
	}
	for _, name := range names {
		fmt.Printf("  %s: %s\n", name, strings.Join(r.groups.Get(name), ", "))
	}
	return nil
}

func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s Goodbye!\n", green("✓"))
	r.rl.Close()
	return io.EOF // Signal to exit the loop
}
