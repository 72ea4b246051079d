package stats

import (
	"math"
	"testing"
)

func TestRegress_PerfectLine(t *testing.T) {
	// y = 3x + 7
	x := []float64{0, 1, 2, 3, 4}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v + 7
	}

	slope, r2 := Regress(x, y)
	if math.Abs(slope-3) > 1e-9 {
		t.Fatalf("slope = %v, want 3", slope)
	}
	if math.Abs(r2-1) > 1e-9 {
		t.Fatalf("r2 = %v, want 1", r2)
	}
}

func TestRegress_NegativeSlope(t *testing.T) {
	x := []float64{0, 0.5, 1.0, 1.5}
	y := []float64{100, 90, 80, 70}

	slope, r2 := Regress(x, y)
	if math.Abs(slope-(-20)) > 1e-9 {
		t.Fatalf("slope = %v, want -20", slope)
	}
	if math.Abs(r2-1) > 1e-9 {
		t.Fatalf("r2 = %v, want 1", r2)
	}
}

func TestRegress_NoisyFitBelowOne(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{0, 2, 1, 3}

	_, r2 := Regress(x, y)
	if r2 <= 0 || r2 >= 1 {
		t.Fatalf("r2 = %v, want strictly between 0 and 1", r2)
	}
}

func TestRegress_CollapsedClockPerturbsLastSample(t *testing.T) {
	// Sub-resolution clock: every elapsed time is identical. The last
	// sample is nudged forward one second instead of dividing by zero.
	x := []float64{0, 0, 0}
	y := []float64{10, 20, 30}

	slope, _ := Regress(x, y)
	if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
		t.Fatalf("slope = %v, want finite non-zero", slope)
	}

	// Input slice must not be mutated by the perturbation.
	if x[2] != 0 {
		t.Fatalf("input elapsed slice mutated: %v", x)
	}
}

func TestRegress_ConstantValues(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{5, 5, 5}

	slope, r2 := Regress(x, y)
	if slope != 0 {
		t.Fatalf("slope = %v, want 0", slope)
	}
	if r2 != 0 {
		t.Fatalf("r2 = %v, want 0", r2)
	}
}

func TestRegress_TooFewSamples(t *testing.T) {
	slope, r2 := Regress([]float64{1}, []float64{2})
	if slope != 0 || r2 != 0 {
		t.Fatalf("got (%v, %v), want (0, 0)", slope, r2)
	}
}
