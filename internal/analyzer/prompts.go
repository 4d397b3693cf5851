package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/steveyegge/scout/internal/types"
)

// formatContextForEmbedding folds the session context into one text blob
// for embedding: the prompt, a truncated git status, and a few recent files.
func (a *Analyzer) formatContextForEmbedding(sctx *types.SessionContext) string {
	parts := []string{sctx.Prompt}

	if sctx.GitStatus != "" {
		parts = append(parts, "Git changes: "+truncate(sctx.GitStatus, a.config.GitStatusMaxLen))
	}

	if len(sctx.RecentFiles) > 0 {
		files := sctx.RecentFiles
		if len(files) > a.config.EmbedRecentFiles {
			files = files[:a.config.EmbedRecentFiles]
		}
		parts = append(parts, "Recent files: "+strings.Join(files, ", "))
	}

	return strings.Join(parts, " ")
}

// buildRerankPrompt formats the session context and pre-filtered candidates
// for the reasoning model.
func (a *Analyzer) buildRerankPrompt(sctx *types.SessionContext, candidates []scored) string {
	var b strings.Builder

	gitStatus := sctx.GitStatus
	if gitStatus == "" {
		gitStatus = "None"
	}
	recentFiles := sctx.RecentFiles
	if len(recentFiles) > a.config.PromptRecentFiles {
		recentFiles = recentFiles[:a.config.PromptRecentFiles]
	}

	fmt.Fprintf(&b, `Programmer starting session:
Prompt: %s
Working directory: %s
Git status: %s
Recent files: %s

Potentially related open work (pre-filtered by embeddings):

`, sctx.Prompt, sctx.WorkingDir, truncate(gitStatus, a.config.GitStatusMaxLen), strings.Join(recentFiles, ", "))

	for idx, c := range candidates {
		fmt.Fprintf(&b, `%d. ID: %s
   Title: %s
   Description: %s
   Similarity: %.2f

`, idx+1, c.item.ID, c.item.Title, truncate(c.item.Description, a.config.DescriptionMaxLen), c.similarity)
	}

	b.WriteString(`
Determine which items are ACTUALLY related. Be conservative - only flag:
1. Duplicates (same work, different words)
2. Strong blockers (can't proceed without this)
3. Close collaboration opportunities

For each related item, provide:
- issue_id
- confidence (0.0-1.0, where 1.0 = definitely duplicate)
- reasoning (why it's related)
- relationship_type (duplicate | blocker | collaboration)

Return JSON:
{
    "related": [
        {
            "issue_id": "...",
            "confidence": 0.9,
            "reasoning": "...",
            "relationship_type": "duplicate"
        }
    ]
}

If nothing is truly related, return: {"related": []}
`)

	return b.String()
}

// buildSessionPrompt formats a transcript window for post-session analysis
func (a *Analyzer) buildSessionPrompt(messages []types.Message) string {
	var b strings.Builder

	b.WriteString(`Analyze this coding session and extract:

1. Was the main task completed? (yes/no)
2. Brief summary of work accomplished
3. New ideas, tasks, or bugs discovered during the session

For each new idea, provide:
- title (short, clear)
- description (detailed context)
- suggested_priority (0-4, based on urgency/importance, 0=highest)

Session transcript:
`)
	b.WriteString(a.formatMessages(messages))

	b.WriteString(`

Return JSON:
{
    "completed": true/false,
    "summary": "...",
    "new_ideas": [
        {
            "title": "...",
            "description": "...",
            "suggested_priority": 2
        }
    ]
}
`)

	return b.String()
}

// formatMessages renders transcript messages as role-tagged lines, each
// truncated so one chatty message can't blow out the prompt.
func (a *Analyzer) formatMessages(messages []types.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		if role == "" {
			role = "unknown"
		}
		lines = append(lines, strings.ToUpper(role)+": "+truncate(msg.Content, a.config.MessageMaxLen))
	}
	return strings.Join(lines, "\n")
}

// truncate limits s to at most maxLen bytes, backing off to a rune
// boundary so multi-byte characters are never split.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen]
}
