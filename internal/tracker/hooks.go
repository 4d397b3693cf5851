package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/steveyegge/scout/internal/analyzer"
	"github.com/steveyegge/scout/internal/groups"
	"github.com/steveyegge/scout/internal/types"
)

// Config controls hook behavior around a session.
type Config struct {
	// Repository is the default repo queried when the working directory
	// belongs to no project group. Empty disables store interaction.
	Repository string

	// NotifyThreshold is the minimum confidence (exclusive) for a related
	// item to be surfaced to the user.
	// Default: 0.85
	NotifyThreshold float64

	// AutoTrackSessions files a tracking item for each session start.
	// Default: true
	AutoTrackSessions bool

	// AutoFileIdeas files items for new ideas discovered at session end.
	// Default: true
	AutoFileIdeas bool

	// SilentMode skips related-work analysis and notification entirely.
	SilentMode bool
}

// DefaultConfig returns the default hook configuration
func DefaultConfig() Config {
	return Config{
		NotifyThreshold:   0.85,
		AutoTrackSessions: true,
		AutoFileIdeas:     true,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.NotifyThreshold < 0.0 || c.NotifyThreshold > 1.0 {
		return fmt.Errorf("notify_threshold must be between 0.0 and 1.0 (got %.2f)", c.NotifyThreshold)
	}
	return nil
}

// Hook ties the relevance pipeline into the session lifecycle: related-work
// detection at session start, summarization and idea filing at session end.
type Hook struct {
	config   Config
	analyzer *analyzer.Analyzer
	store    ItemStore
	groups   *groups.Manager
	out      io.Writer

	mu           sync.Mutex
	sessionItems map[string]string // session id -> tracking item id
}

// NewHook creates a Hook. store and groupManager may be nil; the hook then
// runs analysis without querying or filing items.
func NewHook(cfg Config, a *analyzer.Analyzer, store ItemStore, groupManager *groups.Manager) (*Hook, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hook config: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	return &Hook{
		config:       cfg,
		analyzer:     a,
		store:        store,
		groups:       groupManager,
		out:          os.Stdout,
		sessionItems: map[string]string{},
	}, nil
}

// SetOutput redirects notifications (default os.Stdout).
func (h *Hook) SetOutput(w io.Writer) {
	h.out = w
}

// OnSessionStart captures context for a new session, surfaces related open
// work, and files a tracking item when enabled. Dependency failures are
// logged and skipped; the session itself always proceeds.
func (h *Hook) OnSessionStart(ctx context.Context, prompt, workingDir string) (*types.SessionContext, error) {
	sessionID := uuid.NewString()
	sctx := CaptureContext(ctx, sessionID, prompt, workingDir)

	if h.store == nil || (h.config.Repository == "" && h.groups == nil) {
		return sctx, nil
	}

	open := h.queryOpenWork(ctx, workingDir)
	slog.Info("session start", "session_id", sessionID, "open_items", len(open))

	if len(open) > 0 && !h.config.SilentMode {
		report, err := h.analyzer.FindRelatedWork(ctx, sctx, open)
		if err != nil {
			return nil, err
		}
		if notification := FormatNotification(h.highConfidence(report.Related)); notification != "" {
			fmt.Fprintln(h.out, notification)
		}
	}

	if h.config.AutoTrackSessions {
		h.createTrackingItem(ctx, sessionID, sctx)
	}

	return sctx, nil
}

// OnSessionEnd summarizes the finished session, resolves its tracking item,
// and files any newly discovered ideas.
func (h *Hook) OnSessionEnd(ctx context.Context, sessionID string, messages []types.Message) *types.SessionAnalysis {
	analysis := h.analyzer.AnalyzeSessionWork(ctx, messages)

	h.mu.Lock()
	itemID, tracked := h.sessionItems[sessionID]
	delete(h.sessionItems, sessionID)
	h.mu.Unlock()

	if h.store == nil {
		return analysis
	}
	repo := h.config.Repository

	if tracked {
		err := h.store.Update(ctx, repo, itemID, ItemUpdate{
			Body:  analysis.Summary,
			Close: analysis.Completed,
		})
		if err != nil {
			slog.Warn("updating tracking item failed", "item_id", itemID, "error", err)
		}
	}

	if h.config.AutoFileIdeas {
		for _, idea := range analysis.NewIdeas {
			if err := idea.Validate(); err != nil {
				slog.Warn("skipping invalid idea", "title", idea.Title, "error", err)
				continue
			}
			body := idea.Description
			if tracked {
				body += fmt.Sprintf("\n\nDiscovered during session: %s", itemID)
			}
			id, err := h.store.Create(ctx, repo, NewItem{
				Title:    idea.Title,
				Body:     body,
				Labels:   []string{"idea", "auto-filed"},
				Priority: idea.SuggestedPriority,
			})
			if err != nil {
				slog.Warn("filing idea failed", "title", idea.Title, "error", err)
				continue
			}
			slog.Info("filed new idea", "item_id", id, "title", idea.Title)
		}
	}

	return analysis
}

// TrackingItem reports the tracking item filed for a session, if any.
func (h *Hook) TrackingItem(sessionID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.sessionItems[sessionID]
	return id, ok
}

// queryOpenWork lists open items across the working directory's project
// group, or the configured repository when no group matches. Per-repo
// failures are logged and skipped.
func (h *Hook) queryOpenWork(ctx context.Context, workingDir string) []*types.WorkItem {
	repos := []string{h.config.Repository}
	if h.groups != nil {
		if group := h.groups.GroupForRepo(workingDir); group != "" {
			repos = h.groups.Get(group)
		}
	}

	var open []*types.WorkItem
	for _, repo := range repos {
		if repo == "" {
			continue
		}
		items, err := h.store.ListOpen(ctx, repo)
		if err != nil {
			slog.Warn("listing open items failed", "repo", repo, "error", err)
			continue
		}
		open = append(open, items...)
	}
	return open
}

// highConfidence keeps matches strictly above the notify threshold.
func (h *Hook) highConfidence(related []types.RelatedWork) []types.RelatedWork {
	var high []types.RelatedWork
	for _, r := range related {
		if r.Confidence > h.config.NotifyThreshold {
			high = append(high, r)
		}
	}
	return high
}

func (h *Hook) createTrackingItem(ctx context.Context, sessionID string, sctx *types.SessionContext) {
	title := sctx.Prompt
	if len(title) > 50 {
		cut := 50
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = title[:cut]
	}
	id, err := h.store.Create(ctx, h.config.Repository, NewItem{
		Title:  "Session: " + title,
		Body:   formatSessionDescription(sctx),
		Labels: []string{"session", "auto-tracked"},
	})
	if err != nil {
		slog.Warn("creating tracking item failed", "error", err)
		return
	}

	h.mu.Lock()
	h.sessionItems[sessionID] = id
	h.mu.Unlock()
	slog.Info("created tracking item", "item_id", id, "session_id", sessionID)
}

func formatSessionDescription(sctx *types.SessionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Session started**: %s\n", sctx.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Working directory**: %s\n", sctx.WorkingDir)
	fmt.Fprintf(&b, "**Prompt**: %s", sctx.Prompt)

	if sctx.GitStatus != "" {
		fmt.Fprintf(&b, "\n\n**Git status**:\n```\n%s\n```", strings.TrimRight(sctx.GitStatus, "\n"))
	}
	if len(sctx.RecentFiles) > 0 {
		files := sctx.RecentFiles
		if len(files) > 10 {
			files = files[:10]
		}
		fmt.Fprintf(&b, "\n\n**Recent files**: %s", strings.Join(files, ", "))
	}
	return b.String()
}
