package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json fence",
			input:    "```json\n{\"related\": []}\n```",
			expected: `{"related": []}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "fence without newlines",
			input:    "```json{\"a\": 1}```",
			expected: `{"a": 1}`,
		},
		{
			name:     "no fences",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Related []struct {
			IssueID    string  `json:"issue_id"`
			Confidence float64 `json:"confidence"`
		} `json:"related"`
	}

	t.Run("direct parse", func(t *testing.T) {
		got, err := ParseJSON[payload](`{"related": [{"issue_id": "gh-1", "confidence": 0.9}]}`)
		require.NoError(t, err)
		require.Len(t, got.Related, 1)
		assert.Equal(t, "gh-1", got.Related[0].IssueID)
		assert.Equal(t, 0.9, got.Related[0].Confidence)
	})

	t.Run("fenced response", func(t *testing.T) {
		got, err := ParseJSON[payload]("```json\n{\"related\": []}\n```")
		require.NoError(t, err)
		assert.Empty(t, got.Related)
	})

	t.Run("json buried in prose", func(t *testing.T) {
		got, err := ParseJSON[payload]("Here is the analysis you asked for:\n{\"related\": []}\nLet me know if you need more.")
		require.NoError(t, err)
		assert.Empty(t, got.Related)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseJSON[payload]("")
		assert.Error(t, err)
	})

	t.Run("no json at all", func(t *testing.T) {
		_, err := ParseJSON[payload]("I could not find anything related.")
		assert.Error(t, err)
	})

	t.Run("array payload", func(t *testing.T) {
		got, err := ParseJSON[[]int]("```\n[1, 2, 3]\n```")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, got)
	})
}

func TestExtractJSON(t *testing.T) {
	t.Run("object inside array stays whole", func(t *testing.T) {
		got := extractJSON(`[{"id": 1}, {"id": 2}]`)
		assert.Equal(t, `[{"id": 1}, {"id": 2}]`, got)
	})

	t.Run("no json", func(t *testing.T) {
		assert.Empty(t, extractJSON("nothing here"))
	})
}

func TestGetDefaultModel(t *testing.T) {
	t.Setenv("SCOUT_MODEL", "")
	assert.Equal(t, ModelSonnet, GetDefaultModel())

	t.Setenv("SCOUT_MODEL", "claude-test-override")
	assert.Equal(t, "claude-test-override", GetDefaultModel())
}
