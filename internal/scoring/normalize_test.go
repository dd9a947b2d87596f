package scoring

import (
	"reflect"
	"testing"
)

func TestMinMax(t *testing.T) {
	tests := []struct {
		name            string
		value, min, max float64
		want            float64
	}{
		{"midpoint", 5, 0, 10, 0.5},
		{"at min", 0, 0, 10, 0.0},
		{"at max", 10, 0, 10, 1.0},
		{"degenerate range", 5, 5, 5, 0.0},
		{"below min", -5, 0, 10, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinMax(tt.value, tt.min, tt.max); !almostEqual(got, tt.want) {
				t.Errorf("MinMax(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestZScore(t *testing.T) {
	if got := ZScore(12, 10, 2); !almostEqual(got, 1.0) {
		t.Errorf("ZScore(12, 10, 2) = %v, want 1.0", got)
	}
	if got := ZScore(42, 10, 0); got != 0.0 {
		t.Errorf("ZScore with zero std = %v, want 0.0", got)
	}
}

func TestL2Normalize(t *testing.T) {
	got := L2Normalize([]float64{3, 4})
	want := []float64{0.6, 0.8}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("L2Normalize([3 4]) = %v, want %v", got, want)
		}
	}
}

func TestL2NormalizeZeroVector(t *testing.T) {
	in := []float64{0, 0, 0}
	got := L2Normalize(in)

	if !reflect.DeepEqual(got, in) {
		t.Errorf("L2Normalize(zero) = %v, want input unchanged", got)
	}
}

func TestL2NormalizeDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 4}
	_ = L2Normalize(in)

	if in[0] != 3 || in[1] != 4 {
		t.Errorf("L2Normalize mutated its input: %v", in)
	}
}

func TestClamp01(t *testing.T) {
	if got := Clamp01(-0.5); got != 0 {
		t.Errorf("Clamp01(-0.5) = %v, want 0", got)
	}
	if got := Clamp01(1.5); got != 1 {
		t.Errorf("Clamp01(1.5) = %v, want 1", got)
	}
	if got := Clamp01(0.25); got != 0.25 {
		t.Errorf("Clamp01(0.25) = %v, want 0.25", got)
	}
}
