package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Models wrap JSON in markdown fences often enough that every structured
// response goes through Sanitize before parsing. Regexes are pre-compiled;
// compiling per parse is measurably slower.
var (
	// Matches ```json\n{...}\n```, ```{...}```, with optional newlines
	codeFenceRegex = regexp.MustCompile("(?s)^`{3}(?:json)?\\s*\n?([\\s\\S]*?)\n?`{3}\\s*$")

	// Extraction patterns for JSON buried in surrounding prose (greedy, so
	// nested structures are captured whole)
	objectRegex = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex  = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// Sanitize strips optional markdown code-fence markers from a model
// response, returning the trimmed inner text. Input without fences comes
// back trimmed but otherwise untouched.
func Sanitize(response string) string {
	trimmed := strings.TrimSpace(response)
	if m := codeFenceRegex.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// ParseJSON parses a model response into T, trying progressively more
// forgiving strategies: direct parse, fence removal, then extracting the
// first JSON object or array from mixed content.
func ParseJSON[T any](text string) (T, error) {
	var result T

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return result, fmt.Errorf("empty input")
	}

	if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
		return result, nil
	}

	sanitized := Sanitize(trimmed)
	if err := json.Unmarshal([]byte(sanitized), &result); err == nil {
		return result, nil
	}

	if extracted := extractJSON(sanitized); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("no parseable JSON in response (%d bytes)", len(text))
}

// extractJSON pulls a JSON object or array out of mixed content. The first
// JSON-like character decides the type so an object inside an array isn't
// extracted on its own.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '[':
			return arrayRegex.FindString(trimmed)
		case '{':
			return objectRegex.FindString(trimmed)
		}
	}

	if match := objectRegex.FindString(text); match != "" {
		return match
	}
	return arrayRegex.FindString(text)
}
