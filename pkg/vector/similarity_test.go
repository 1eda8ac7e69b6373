package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name    string
		a       []float32
		b       []float32
		want    float64
		wantErr bool
	}{
		{
			name: "identical vectors",
			a:    []float32{0.5, 0.5, 0.2},
			b:    []float32{0.5, 0.5, 0.2},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "opposite vectors clamp to zero",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: 0,
		},
		{
			name: "zero vector",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0,
		},
		{
			name:    "dimension mismatch",
			a:       []float32{1, 2},
			b:       []float32{1, 2, 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrDimensionMismatch) {
					t.Fatalf("expected ErrDimensionMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSymmetry(t *testing.T) {
	a := []float32{0.1, 0.9, 0.3, 0.7}
	b := []float32{0.4, 0.2, 0.8, 0.1}

	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab != ba {
		t.Errorf("similarity is not symmetric: sim(a,b)=%v sim(b,a)=%v", ab, ba)
	}
}

func TestNormalize(t *testing.T) {
	vec := Normalize([]float32{3, 4})

	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(magnitude)-1.0) > 1e-6 {
		t.Errorf("normalized magnitude = %v, want 1.0", math.Sqrt(magnitude))
	}

	// Zero vector passes through untouched
	zero := Normalize([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector should not be modified, got %v", zero)
	}
}
