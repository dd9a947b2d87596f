package scoring

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestJaccardSymmetry(t *testing.T) {
	a := []string{"python", "sql", "docker"}
	b := []string{"python", "kubernetes"}

	if Jaccard(a, b) != Jaccard(b, a) {
		t.Errorf("Jaccard is not symmetric: %v vs %v", Jaccard(a, b), Jaccard(b, a))
	}
}

func TestJaccardIdentity(t *testing.T) {
	a := []string{"go", "rust", "sql"}

	got := Jaccard(a, a)
	if got != 1.0 {
		t.Errorf("Jaccard(A, A) = %v, want 1.0", got)
	}
}

func TestJaccardEmptySets(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
	}{
		{"both empty", nil, nil},
		{"first empty", nil, []string{"go"}},
		{"second empty", []string{"go"}, nil},
		{"whitespace only collapses to empty", []string{"  ", ""}, []string{"go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); got != 0.0 {
				t.Errorf("Jaccard(%v, %v) = %v, want 0.0", tt.a, tt.b, got)
			}
		})
	}
}

func TestJaccardCaseAndWhitespaceInsensitive(t *testing.T) {
	a := []string{"Python", " SQL "}
	b := []string{"python", "sql"}

	if got := Jaccard(a, b); got != 1.0 {
		t.Errorf("Jaccard with case/whitespace variants = %v, want 1.0", got)
	}
}

func TestJaccardDuplicatesCollapse(t *testing.T) {
	a := []string{"go", "go", "GO"}
	b := []string{"go", "sql"}

	// {go} vs {go, sql}: intersection 1, union 2
	if got := Jaccard(a, b); !almostEqual(got, 0.5) {
		t.Errorf("Jaccard with duplicates = %v, want 0.5", got)
	}
}

func TestJaccardPartialOverlap(t *testing.T) {
	a := []string{"python", "docker", "aws"}
	b := []string{"python", "kubernetes", "aws"}

	// intersection 2, union 4
	if got := Jaccard(a, b); !almostEqual(got, 0.5) {
		t.Errorf("Jaccard = %v, want 0.5", got)
	}
}

func TestCosineSelfSimilarity(t *testing.T) {
	v := []float64{1, 2, 3}

	if got := Cosine(v, v); !almostEqual(got, 1.0) {
		t.Errorf("Cosine(v, v) = %v, want 1.0", got)
	}
}

func TestCosineZeroVector(t *testing.T) {
	v := []float64{1, 2, 3}
	zero := []float64{0, 0, 0}

	if got := Cosine(v, zero); got != 0.0 {
		t.Errorf("Cosine(v, zero) = %v, want 0.0", got)
	}
	if got := Cosine(zero, v); got != 0.0 {
		t.Errorf("Cosine(zero, v) = %v, want 0.0", got)
	}
	if got := Cosine(nil, nil); got != 0.0 {
		t.Errorf("Cosine(nil, nil) = %v, want 0.0", got)
	}
}

func TestCosineOppositeVectors(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{-1, 0}

	if got := Cosine(a, b); !almostEqual(got, -1.0) {
		t.Errorf("Cosine of opposite vectors = %v, want -1.0", got)
	}
}

func TestCosineOrthogonalVectors(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0, 1}

	if got := Cosine(a, b); !almostEqual(got, 0.0) {
		t.Errorf("Cosine of orthogonal vectors = %v, want 0.0", got)
	}
}

func TestWeightedEmpty(t *testing.T) {
	if got := Weighted(map[string]float64{}, map[string]float64{}); got != 0.0 {
		t.Errorf("Weighted({}, {}) = %v, want 0.0", got)
	}
}

func TestWeightedZeroTotalWeight(t *testing.T) {
	scores := map[string]float64{"skills": 0.9}
	weights := map[string]float64{"skills": 0}

	if got := Weighted(scores, weights); got != 0.0 {
		t.Errorf("Weighted with zero total weight = %v, want 0.0", got)
	}
}

func TestWeightedMissingScoreDefaultsToZero(t *testing.T) {
	scores := map[string]float64{"skills": 1.0}
	weights := map[string]float64{"skills": 1, "location": 1}

	if got := Weighted(scores, weights); !almostEqual(got, 0.5) {
		t.Errorf("Weighted with missing score = %v, want 0.5", got)
	}
}

func TestWeightedScaleInvariance(t *testing.T) {
	scores := map[string]float64{"skills": 0.8, "location": 0.4}
	weights := map[string]float64{"skills": 2, "location": 1}
	scaled := map[string]float64{"skills": 20, "location": 10}

	if a, b := Weighted(scores, weights), Weighted(scores, scaled); !almostEqual(a, b) {
		t.Errorf("Weighted not invariant under weight scaling: %v vs %v", a, b)
	}
}

func TestWeightedAggregation(t *testing.T) {
	scores := map[string]float64{"skills": 1.0, "location": 0.5}
	weights := map[string]float64{"skills": 3, "location": 1}

	// (1.0*3 + 0.5*1) / 4 = 0.875
	if got := Weighted(scores, weights); !almostEqual(got, 0.875) {
		t.Errorf("Weighted = %v, want 0.875", got)
	}
}
