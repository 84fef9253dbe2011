package model

import (
	"math"
	"testing"
)

func Test_Sigmoid(t *testing.T) {
	if got := sigmoid(0); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Fatalf("sigmoid(0) = %v, expected 0.5", got)
	}

	if got := sigmoid(40); got <= 0.999 {
		t.Fatalf("sigmoid(40) = %v, expected near 1", got)
	}

	if got := sigmoid(-40); got >= 0.001 {
		t.Fatalf("sigmoid(-40) = %v, expected near 0", got)
	}

	for _, x := range []float32{-100, -3.5, -0.1, 0, 0.1, 3.5, 100} {
		got := sigmoid(x)
		if got < 0 || got > 1 {
			t.Fatalf("sigmoid(%v) = %v, outside [0, 1]", x, got)
		}
	}
}

func Test_YesProbability(t *testing.T) {
	if got := yesProbability(0, 0); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Fatalf("even logits = %v, expected 0.5", got)
	}

	if got := yesProbability(-50, 50); got <= 0.9999 {
		t.Fatalf("strong yes = %v, expected near 1", got)
	}

	if got := yesProbability(50, -50); got >= 0.0001 {
		t.Fatalf("strong no = %v, expected near 0", got)
	}

	// Extreme gaps must stay finite thanks to the log space computation.
	if got := yesProbability(-10000, 10000); math.IsNaN(float64(got)) || math.IsInf(float64(got), 0) {
		t.Fatalf("extreme gap = %v, expected finite", got)
	}

	// Deterministic for fixed inputs.
	a := yesProbability(1.25, -0.75)
	b := yesProbability(1.25, -0.75)
	if a != b {
		t.Fatalf("same inputs produced %v and %v", a, b)
	}

	// Shift invariance of the softmax.
	c := yesProbability(101.25, 99.25)
	d := yesProbability(1.25, -0.75)
	if math.Abs(float64(c)-float64(d)) > 1e-6 {
		t.Fatalf("shifted logits produced %v, expected %v", c, d)
	}
}

func Test_MeanPool(t *testing.T) {
	vecs := [][]float32{
		{2, 4},
		{4, 8},
		{100, 100}, // masked off, must not contribute
	}
	mask := []bool{true, true, false}

	got := meanPool(vecs, mask, 2)

	if len(got) != 2 {
		t.Fatalf("expected 2 dimensions, got %d", len(got))
	}

	if math.Abs(float64(got[0])-3) > 1e-6 || math.Abs(float64(got[1])-6) > 1e-6 {
		t.Fatalf("expected [3 6], got %v", got)
	}
}

func Test_MeanPool_PaddingInvariant(t *testing.T) {
	// A short sequence pooled at its natural length must produce the same
	// vector when it sits in a batch padded out to a longer sequence. The
	// pad positions carry whatever the model wrote there, so the mask is
	// the only thing keeping them out of the average.
	natural := [][]float32{
		{1, 2},
		{3, 4},
		{5, 6},
	}

	padded := [][]float32{
		{1, 2},
		{3, 4},
		{5, 6},
		{999, -999},
		{math.MaxFloat32, math.MaxFloat32},
	}

	unpadded := meanPool(natural, []bool{true, true, true}, 2)
	got := meanPool(padded, []bool{true, true, true, false, false}, 2)

	for d := range unpadded {
		if got[d] != unpadded[d] {
			t.Fatalf("dimension %d = %v with padding, %v without", d, got[d], unpadded[d])
		}
	}
}

func Test_MeanPool_AllMasked(t *testing.T) {
	vecs := [][]float32{{1, 1}, {2, 2}}
	mask := []bool{false, false}

	got := meanPool(vecs, mask, 2)

	for d, v := range got {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("dimension %d = %v, expected finite", d, v)
		}
	}
}

func Test_L2Normalize(t *testing.T) {
	got := l2Normalize([]float32{3, 4})

	var sum float64
	for _, v := range got {
		sum += float64(v) * float64(v)
	}

	if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
		t.Fatalf("norm = %v, expected 1", math.Sqrt(sum))
	}

	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.8) > 1e-6 {
		t.Fatalf("expected [0.6 0.8], got %v", got)
	}

	zero := l2Normalize([]float32{0, 0, 0})
	for d, v := range zero {
		if v != 0 {
			t.Fatalf("zero vector dimension %d = %v, expected 0", d, v)
		}
	}
}
