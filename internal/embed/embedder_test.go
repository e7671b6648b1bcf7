package embed

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestDisabled(t *testing.T) {
	e := Disabled()

	if e.Available() {
		t.Error("disabled embedder reports available")
	}

	vecs, err := e.Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Embed error = %v, want ErrUnavailable", err)
	}
	if vecs != nil {
		t.Errorf("Embed returned vectors: %v", vecs)
	}
}

func TestNewGenkit_NilYieldsDisabled(t *testing.T) {
	e := NewGenkit(nil)
	if e.Available() {
		t.Error("nil-backed embedder reports available")
	}
	if _, err := e.Embed(context.Background(), []string{"x"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{name: "already unit", in: []float32{1, 0, 0}, want: []float32{1, 0, 0}},
		{name: "scaled axis", in: []float32{0, 5, 0}, want: []float32{0, 1, 0}},
		{name: "3-4-5", in: []float32{3, 4}, want: []float32{0.6, 0.8}},
		{name: "zero vector unchanged", in: []float32{0, 0, 0}, want: []float32{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := make([]float32, len(tt.in))
			copy(v, tt.in)
			Normalize(v)
			for i := range tt.want {
				if math.Abs(float64(v[i]-tt.want[i])) > 1e-6 {
					t.Fatalf("Normalize(%v) = %v, want %v", tt.in, v, tt.want)
				}
			}
		})
	}
}

func TestNormalize_UnitLength(t *testing.T) {
	v := []float32{1.5, -2.25, 0.75, 4}
	Normalize(v)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("squared norm after Normalize = %f, want 1", sum)
	}
}
