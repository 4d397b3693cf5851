package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steveyegge/scout/internal/types"
)

// NewItem is the payload for creating a work item in a store.
type NewItem struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Labels   []string `json:"labels,omitempty"`
	Priority int      `json:"priority"`
}

// ItemUpdate modifies an existing work item. Zero-value fields are left
// untouched; Close transitions the item out of the open set.
type ItemUpdate struct {
	Body  string
	Close bool
}

// ItemStore is the boundary to whatever system owns the work items. The
// analyzer never talks to a tracker directly; hooks query and file items
// through this interface.
type ItemStore interface {
	// ListOpen returns the open work items for a repository.
	ListOpen(ctx context.Context, repo string) ([]*types.WorkItem, error)

	// Create files a new item and returns its id.
	Create(ctx context.Context, repo string, item NewItem) (string, error)

	// Update applies an update to an existing item.
	Update(ctx context.Context, repo, id string, update ItemUpdate) error
}

// storedItem is the on-disk record of a FileStore item.
type storedItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Labels    []string  `json:"labels,omitempty"`
	Priority  int       `json:"priority"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore is a JSON-file-backed ItemStore. It exists for the CLI and for
// tests; real deployments implement ItemStore against their tracker.
type FileStore struct {
	path string

	mu    sync.Mutex
	repos map[string][]*storedItem
}

var _ ItemStore = (*FileStore)(nil)

// OpenFileStore loads (or initializes) a FileStore at path.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, repos: map[string][]*storedItem{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading item store: %w", err)
	}
	if err := json.Unmarshal(data, &s.repos); err != nil {
		return nil, fmt.Errorf("parsing item store: %w", err)
	}
	return s, nil
}

// ListOpen returns the open items for repo, newest first.
func (s *FileStore) ListOpen(ctx context.Context, repo string) ([]*types.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.repos[repo]
	items := make([]*types.WorkItem, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.State != "open" {
			continue
		}
		items = append(items, &types.WorkItem{ID: rec.ID, Title: rec.Title, Description: rec.Body})
	}
	return items, nil
}

// Create files a new open item under repo and persists the store.
func (s *FileStore) Create(ctx context.Context, repo string, item NewItem) (string, error) {
	if item.Title == "" {
		return "", fmt.Errorf("item title cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := &storedItem{
		ID:        uuid.NewString(),
		Title:     item.Title,
		Body:      item.Body,
		Labels:    item.Labels,
		Priority:  item.Priority,
		State:     "open",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.repos[repo] = append(s.repos[repo], rec)

	if err := s.flush(); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Update modifies an existing item and persists the store.
func (s *FileStore) Update(ctx context.Context, repo, id string, update ItemUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.repos[repo] {
		if rec.ID != id {
			continue
		}
		if update.Body != "" {
			rec.Body = update.Body
		}
		if update.Close {
			rec.State = "closed"
		}
		rec.UpdatedAt = time.Now().UTC()
		return s.flush()
	}
	return fmt.Errorf("item %s not found in %s", id, repo)
}

// flush writes the store to disk. Caller holds the lock.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.repos, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding item store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating item store directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing item store: %w", err)
	}
	return nil
}
