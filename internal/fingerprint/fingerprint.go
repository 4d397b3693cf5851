// Package fingerprint derives deterministic content fingerprints used to
// detect when a cached embedding is stale.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the SHA-256 hex digest of text. Identical input always yields
// an identical digest; any change to the input, including whitespace, yields
// a different one. Total function: the empty string hashes fine.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
