package tracker

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/steveyegge/scout/internal/types"
)

// FormatNotification renders related-work matches for terminal display.
// Returns "" for an empty slice so callers can print unconditionally.
func FormatNotification(related []types.RelatedWork) string {
	if len(related) == 0 {
		return ""
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	var b strings.Builder
	b.WriteString(cyan("Found related work:"))
	for _, r := range related {
		if r.Item == nil {
			continue
		}
		fmt.Fprintf(&b, "\n  • %s: %q %s",
			yellow(r.Item.ID), r.Item.Title,
			gray(fmt.Sprintf("(confidence: %.0f%%, %s)", r.Confidence*100, r.RelationshipType)))
		if r.Reasoning != "" {
			b.WriteString(gray(fmt.Sprintf("\n    Reason: %s", r.Reasoning)))
		}
	}
	return b.String()
}
