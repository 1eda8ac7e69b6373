package vector

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two vectors cannot be compared
// because their dimensionality differs.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// Cosine computes the cosine similarity between two equal-length vectors,
// clamped to [0, 1] for ranking purposes.
// A zero vector has no direction, so its similarity to anything is 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Clamp: floating point drift can push self-similarity past 1.0,
	// and opposite vectors are useless as matches anyway.
	if sim > 1.0 {
		sim = 1.0
	}
	if sim < 0 {
		sim = 0
	}
	return sim, nil
}

// Normalize scales a vector to unit length (magnitude = 1).
// Required for accurate cosine distance in pgvector.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
