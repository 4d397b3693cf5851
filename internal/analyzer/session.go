package analyzer

import (
	"context"
	"log/slog"

	"github.com/steveyegge/scout/internal/ai"
	"github.com/steveyegge/scout/internal/types"
)

// Fixed summaries for the session-analysis degradation tiers. Callers match
// on these to tell apart the failure modes, so the strings are contractual.
const (
	summaryEmptySession = "Empty session"
	summaryUnavailable  = "Analysis unavailable"
	summaryError        = "Analysis error"
	summaryFailed       = "Analysis failed"
	summaryDefault      = "No summary available"
)

// sessionResponse is the structured shape requested from the model. Pointer
// fields distinguish "absent" from zero values so each field defaults
// independently.
type sessionResponse struct {
	Completed *bool           `json:"completed"`
	Summary   *string         `json:"summary"`
	NewIdeas  []types.NewIdea `json:"new_ideas"`
}

// AnalyzeSessionWork extracts what a finished session accomplished and any
// newly-discovered work items from its transcript. Never returns nil and
// never raises: every failure mode maps to a default SessionAnalysis whose
// Summary names the tier that degraded.
func (a *Analyzer) AnalyzeSessionWork(ctx context.Context, messages []types.Message) *types.SessionAnalysis {
	if len(messages) == 0 {
		return &types.SessionAnalysis{Completed: false, Summary: summaryEmptySession, NewIdeas: []types.NewIdea{}}
	}

	if a.completions == nil {
		return &types.SessionAnalysis{Completed: false, Summary: summaryUnavailable, NewIdeas: []types.NewIdea{}}
	}

	// Only the tail of the transcript carries the outcome; bounding the
	// window bounds prompt size.
	recent := messages
	if len(recent) > a.config.MaxTranscriptMessages {
		recent = recent[len(recent)-a.config.MaxTranscriptMessages:]
	}

	raw, err := a.completions.Complete(ctx, ai.CompletionRequest{
		System:  "You are an expert at analyzing coding sessions and extracting insights. Respond with JSON only.",
		Prompt:  a.buildSessionPrompt(recent),
		Timeout: a.config.CompletionTimeout,
	})
	if err != nil {
		slog.Warn("session analysis call failed", "error", err)
		return &types.SessionAnalysis{Completed: false, Summary: summaryError, NewIdeas: []types.NewIdea{}}
	}

	// Unparseable text is an error-tier failure, same as a failed call.
	// Text that parses as JSON but isn't the expected object shape is the
	// distinct "failed" tier.
	parsed, err := ai.ParseJSON[any](raw)
	if err != nil {
		slog.Warn("session analysis response unparseable", "error", err)
		return &types.SessionAnalysis{Completed: false, Summary: summaryError, NewIdeas: []types.NewIdea{}}
	}
	if _, ok := parsed.(map[string]any); !ok {
		slog.Warn("session analysis response is not an object")
		return &types.SessionAnalysis{Completed: false, Summary: summaryFailed, NewIdeas: []types.NewIdea{}}
	}

	// Re-parse into the typed shape now that we know the top level is an
	// object; individual fields still default independently if missing.
	typed, err := ai.ParseJSON[sessionResponse](raw)
	if err != nil {
		return &types.SessionAnalysis{Completed: false, Summary: summaryFailed, NewIdeas: []types.NewIdea{}}
	}

	result := &types.SessionAnalysis{
		Completed: false,
		Summary:   summaryDefault,
		NewIdeas:  []types.NewIdea{},
	}
	if typed.Completed != nil {
		result.Completed = *typed.Completed
	}
	if typed.Summary != nil {
		result.Summary = *typed.Summary
	}
	if typed.NewIdeas != nil {
		result.NewIdeas = typed.NewIdeas
	}
	return result
}
