// Package types defines the shared data model for scout's relevance pipeline.
package types

import (
	"fmt"
	"time"
)

// WorkItem is an open work item from an external tracker.
//
// Scout never creates, mutates, or deletes work items; the tracker adapter
// owns their lifecycle. Adapters must map whatever shape their tracker
// returns into this one canonical struct before handing items to the
// analyzer; the pipeline does not branch on tracker-specific shapes.
type WorkItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate checks if the work item has valid field values
func (w *WorkItem) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("id is required")
	}
	if w.Title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// EmbeddingText returns the text blob used for embedding and fingerprinting.
// Title and description together; any change to either invalidates the
// cached embedding via the content fingerprint.
func (w *WorkItem) EmbeddingText() string {
	return w.Title + " " + w.Description
}

// RelationshipType classifies why two work items are related
type RelationshipType string

const (
	RelationshipDuplicate     RelationshipType = "duplicate"
	RelationshipBlocker       RelationshipType = "blocker"
	RelationshipCollaboration RelationshipType = "collaboration"

	// RelationshipRelated is the analyzer-assigned default when the model
	// omits or invents a relationship type.
	RelationshipRelated RelationshipType = "related"
)

// IsValid checks if the relationship type is one the model may return
func (r RelationshipType) IsValid() bool {
	switch r {
	case RelationshipDuplicate, RelationshipBlocker, RelationshipCollaboration, RelationshipRelated:
		return true
	}
	return false
}

// RelatedWork is a single pipeline result: an existing work item the new
// session duplicates, is blocked by, or should collaborate with.
type RelatedWork struct {
	Item             *WorkItem        `json:"item"`
	Confidence       float64          `json:"confidence"`
	Reasoning        string           `json:"reasoning"`
	RelationshipType RelationshipType `json:"relationship_type"`
}

// SessionContext describes a newly-started unit of work. Only the Prompt is
// required; the rest enriches the embedding and rerank prompts when present.
type SessionContext struct {
	SessionID   string    `json:"session_id,omitempty"`
	Prompt      string    `json:"prompt"`
	WorkingDir  string    `json:"working_dir,omitempty"`
	GitStatus   string    `json:"git_status,omitempty"`
	RecentFiles []string  `json:"recent_files,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// Message is one transcript entry from a finished session
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewIdea is a work item discovered in a session transcript that does not
// exist in the tracker yet. Priority range matches the tracker's 0-4 scale
// where 0 is most urgent.
type NewIdea struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	SuggestedPriority int    `json:"suggested_priority"`
}

// Validate checks if the idea has valid field values
func (n *NewIdea) Validate() error {
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.SuggestedPriority < 0 || n.SuggestedPriority > 4 {
		return fmt.Errorf("suggested_priority must be between 0 and 4 (got %d)", n.SuggestedPriority)
	}
	return nil
}

// SessionAnalysis is the transient output of post-session summarization
type SessionAnalysis struct {
	Completed bool      `json:"completed"`
	Summary   string    `json:"summary"`
	NewIdeas  []NewIdea `json:"new_ideas"`
}
