package types

import (
	"testing"
)

func TestWorkItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    WorkItem
		wantErr bool
	}{
		{
			name: "valid item",
			item: WorkItem{ID: "gh-42", Title: "Fix login timeout", Description: "Sessions expire too early"},
		},
		{
			name:    "missing id",
			item:    WorkItem{Title: "Fix login timeout"},
			wantErr: true,
		},
		{
			name:    "missing title",
			item:    WorkItem{ID: "gh-42"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWorkItemEmbeddingText(t *testing.T) {
	item := WorkItem{ID: "gh-1", Title: "Add retries", Description: "HTTP calls should retry"}
	got := item.EmbeddingText()
	want := "Add retries HTTP calls should retry"
	if got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}

func TestRelationshipTypeIsValid(t *testing.T) {
	valid := []RelationshipType{
		RelationshipDuplicate,
		RelationshipBlocker,
		RelationshipCollaboration,
		RelationshipRelated,
	}
	for _, r := range valid {
		if !r.IsValid() {
			t.Errorf("expected %q to be valid", r)
		}
	}

	if RelationshipType("adjacent").IsValid() {
		t.Error("expected unknown relationship type to be invalid")
	}
	if RelationshipType("").IsValid() {
		t.Error("expected empty relationship type to be invalid")
	}
}

func TestNewIdeaValidate(t *testing.T) {
	tests := []struct {
		name    string
		idea    NewIdea
		wantErr bool
	}{
		{name: "valid", idea: NewIdea{Title: "Add caching", SuggestedPriority: 2}},
		{name: "priority floor", idea: NewIdea{Title: "Urgent fix", SuggestedPriority: 0}},
		{name: "priority ceiling", idea: NewIdea{Title: "Someday", SuggestedPriority: 4}},
		{name: "missing title", idea: NewIdea{SuggestedPriority: 2}, wantErr: true},
		{name: "priority too high", idea: NewIdea{Title: "x", SuggestedPriority: 5}, wantErr: true},
		{name: "priority negative", idea: NewIdea{Title: "x", SuggestedPriority: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.idea.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
