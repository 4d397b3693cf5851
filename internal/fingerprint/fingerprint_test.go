package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashDeterminism(t *testing.T) {
	texts := []string{
		"",
		"fix login timeout",
		"fix login timeout ",
		"Fix login timeout",
		"タイムアウトを修正",
	}

	for _, text := range texts {
		assert.Equal(t, Hash(text), Hash(text), "same input must hash identically")
	}
}

func TestHashDistinguishesContent(t *testing.T) {
	a := Hash("implement retry logic for HTTP client")
	b := Hash("implement retry logic for HTTP client.")
	assert.NotEqual(t, a, b, "whitespace/punctuation changes must change the fingerprint")

	c := Hash("completely unrelated text")
	assert.NotEqual(t, a, c)
}

func TestHashFormat(t *testing.T) {
	h := Hash("anything")
	assert.Len(t, h, 64, "SHA-256 hex digest is 64 characters")
	for _, r := range h {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestHashKnownVector(t *testing.T) {
	// SHA-256 of the empty string, a fixed reference value.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Hash(""))
}
