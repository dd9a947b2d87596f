// Package scoring provides the pure similarity, normalization and matching
// primitives used by the engagement, matching and prediction services.
//
// Every function fails soft: degenerate input (empty sets, zero weights,
// zero-norm vectors, unknown labels) yields a defined neutral value rather
// than an error, so aggregate scores stay numerically stable.
package scoring

import (
	"math"
	"strings"
)

// NormalizeTerm lowercases and trims a term so comparisons are case- and
// whitespace-insensitive.
func NormalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSet converts a list of terms into a normalized set.
// Duplicates collapse; empty terms are dropped.
func NormalizeSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		n := NormalizeTerm(t)
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Jaccard returns |A∩B| / |A∪B| over the normalized sets of a and b.
// Returns 0 if either set is empty, including both empty.
func Jaccard(a, b []string) float64 {
	setA := NormalizeSet(a)
	setB := NormalizeSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// Cosine returns the cosine similarity of two vectors in [-1, 1].
// Returns 0.0 if either vector has zero magnitude, which also covers
// mismatched lengths where the shorter vector is treated as zero-padded.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		magA += v * v
	}
	for _, v := range b {
		magB += v * v
	}

	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Weighted aggregates named scores by their weights:
// sum(score[k]*weight[k] for k in weights) / sum(weights).
// Scores missing a weighted key contribute 0. Total weight 0 yields 0.
// The result is invariant under uniform positive scaling of the weights.
func Weighted(scores, weights map[string]float64) float64 {
	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}

	var sum float64
	for k, w := range weights {
		sum += scores[k] * w
	}
	return sum / totalWeight
}
