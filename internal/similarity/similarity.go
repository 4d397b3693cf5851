// Package similarity provides vector similarity math for the embedding
// pre-filter phase.
package similarity

import "math"

// Cosine computes the cosine similarity between two embedding vectors,
// clamped to [0, 1]. Embeddings can produce negative cosine similarities;
// those are floored to 0 because the pipeline only cares about "more
// related", never "anti-related".
//
// Degenerate inputs (zero-norm vector, length mismatch, empty vector)
// return 0 rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0.0
	}
	if sim > 1 {
		return 1.0
	}
	return sim
}
