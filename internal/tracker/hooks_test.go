package tracker

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/scout/internal/ai"
	"github.com/steveyegge/scout/internal/analyzer"
	"github.com/steveyegge/scout/internal/types"
)

type fakeCompletion struct {
	mu       sync.Mutex
	response string
	prompts  []string
}

func (f *fakeCompletion) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	return f.response, nil
}

func newHookForTest(t *testing.T, cfg Config, response string, store ItemStore) (*Hook, *bytes.Buffer) {
	t.Helper()
	a, err := analyzer.New(analyzer.DefaultConfig(), &fakeCompletion{response: response}, nil, nil)
	require.NoError(t, err)

	h, err := NewHook(cfg, a, store, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	h.SetOutput(&out)
	return h, &out
}

func TestOnSessionStartNotifiesAboveThreshold(t *testing.T) {
	color.NoColor = true

	store := tempStore(t)
	ctx := context.Background()
	id, err := store.Create(ctx, "owner/repo", NewItem{Title: "Fix auth timeout", Body: "sessions expire"})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Repository = "owner/repo"
	cfg.AutoTrackSessions = false

	response := `{"related": [{"issue_id": "` + id + `", "confidence": 0.95, "reasoning": "same bug", "relationship_type": "duplicate"}]}`
	h, out := newHookForTest(t, cfg, response, store)

	_, err = h.OnSessionStart(ctx, "fix the auth timeout", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Found related work:")
	assert.Contains(t, out.String(), "Fix auth timeout")
	assert.Contains(t, out.String(), "confidence: 95%")
}

func TestOnSessionStartSuppressesBelowThreshold(t *testing.T) {
	color.NoColor = true

	store := tempStore(t)
	ctx := context.Background()
	id, err := store.Create(ctx, "owner/repo", NewItem{Title: "Maybe related", Body: "b"})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Repository = "owner/repo"
	cfg.AutoTrackSessions = false

	response := `{"related": [{"issue_id": "` + id + `", "confidence": 0.5, "reasoning": "weak"}]}`
	h, out := newHookForTest(t, cfg, response, store)

	_, err = h.OnSessionStart(ctx, "something else", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestOnSessionStartFilesTrackingItem(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Repository = "owner/repo"
	cfg.SilentMode = true

	h, _ := newHookForTest(t, cfg, `{"related": []}`, store)

	sctx, err := h.OnSessionStart(ctx, "implement the new parser", t.TempDir())
	require.NoError(t, err)
	require.NotEmpty(t, sctx.SessionID)

	itemID, tracked := h.TrackingItem(sctx.SessionID)
	require.True(t, tracked)

	items, err := store.ListOpen(ctx, "owner/repo")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, itemID, items[0].ID)
	assert.Equal(t, "Session: implement the new parser", items[0].Title)
}

func TestOnSessionStartMultiByteTitleStaysValidUTF8(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Repository = "owner/repo"
	cfg.SilentMode = true

	h, _ := newHookForTest(t, cfg, `{"related": []}`, store)

	// 60 bytes of 3-byte runes; a byte-index cut at 50 would land
	// mid-rune.
	prompt := strings.Repeat("日", 20)
	_, err := h.OnSessionStart(ctx, prompt, t.TempDir())
	require.NoError(t, err)

	items, err := store.ListOpen(ctx, "owner/repo")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, utf8.ValidString(items[0].Title))
	assert.Equal(t, "Session: "+strings.Repeat("日", 16), items[0].Title)
}

func TestOnSessionStartWithoutStoreStillCapturesContext(t *testing.T) {
	cfg := DefaultConfig()
	h, out := newHookForTest(t, cfg, `{"related": []}`, nil)

	sctx, err := h.OnSessionStart(context.Background(), "prompt", t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, sctx.SessionID)
	assert.Equal(t, "prompt", sctx.Prompt)
	assert.Empty(t, out.String())
}

func TestOnSessionEndClosesTrackingItemAndFilesIdeas(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Repository = "owner/repo"
	cfg.SilentMode = true

	// Session start files the tracking item; session end must update it and
	// file the idea from the model's analysis.
	startResponse := `{"related": []}`
	h, _ := newHookForTest(t, cfg, startResponse, store)
	sctx, err := h.OnSessionStart(ctx, "refactor the cache", t.TempDir())
	require.NoError(t, err)
	trackingID, _ := h.TrackingItem(sctx.SessionID)

	// Swap the model response for the end-of-session analysis.
	a, err := analyzer.New(analyzer.DefaultConfig(), &fakeCompletion{response: `{
		"completed": true,
		"summary": "Refactored the cache layer",
		"new_ideas": [{"title": "Add cache metrics", "description": "Observed while refactoring", "suggested_priority": 3}]
	}`}, nil, nil)
	require.NoError(t, err)
	h.analyzer = a

	analysis := h.OnSessionEnd(ctx, sctx.SessionID, []types.Message{{Role: "user", Content: "refactor the cache"}})
	require.NotNil(t, analysis)
	assert.True(t, analysis.Completed)

	// Tracking item closed, idea filed: exactly one open item remains.
	open, err := store.ListOpen(ctx, "owner/repo")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Add cache metrics", open[0].Title)
	assert.NotEqual(t, trackingID, open[0].ID)

	// Tracking map is cleaned up.
	_, tracked := h.TrackingItem(sctx.SessionID)
	assert.False(t, tracked)
}

func TestOnSessionEndEmptyTranscript(t *testing.T) {
	h, _ := newHookForTest(t, DefaultConfig(), `{}`, nil)

	analysis := h.OnSessionEnd(context.Background(), "unknown-session", nil)
	require.NotNil(t, analysis)
	assert.False(t, analysis.Completed)
	assert.Equal(t, "Empty session", analysis.Summary)
}

func TestNewHookValidation(t *testing.T) {
	a, err := analyzer.New(analyzer.DefaultConfig(), nil, nil, nil)
	require.NoError(t, err)

	_, err = NewHook(DefaultConfig(), nil, nil, nil)
	assert.Error(t, err, "analyzer is required")

	bad := DefaultConfig()
	bad.NotifyThreshold = 1.5
	_, err = NewHook(bad, a, nil, nil)
	assert.Error(t, err)
}
