// Package embedding turns text into fixed-width vectors via an external
// embedding service, isolating every failure mode of that service from
// callers. A nil vector is the only failure signal that crosses this
// boundary; no error ever propagates out of a Client.
package embedding

import (
	"context"
	"math"
	"strings"
)

// Client generates embeddings for single texts and batches.
//
// Both methods return nil (or a nil entry, for batches) instead of an error:
// the relevance pipeline degrades per-candidate rather than aborting, so
// transport errors, invalid responses, and empty inputs all collapse into
// the same "no embedding" sentinel. GenerateBatch output always has the same
// length and order as its input.
type Client interface {
	Generate(ctx context.Context, text string) []float32
	GenerateBatch(ctx context.Context, texts []string) [][]float32

	// ModelID identifies the producing model so cache records can carry it.
	ModelID() string
}

// validVector reports whether a returned embedding is usable: non-empty with
// only finite components. Services occasionally return NaN/Inf under load;
// those vectors would poison similarity math downstream.
func validVector(vec []float32) bool {
	if len(vec) == 0 {
		return false
	}
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// isBlank reports whether text is empty after trimming whitespace
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
