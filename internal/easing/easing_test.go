package easing

import (
	"math"
	"testing"
)

var curves = map[string]func(float64) float64{
	"InOutQuart": InOutQuart,
	"InOutSine":  InOutSine,
	"OutQuart":   OutQuart,
}

func TestEndpoints(t *testing.T) {
	for name, f := range curves {
		if got := f(0); got != 0 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := f(1); math.Abs(got-1) > 1e-12 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
}

func TestBoundsAndMonotonicity(t *testing.T) {
	const steps = 1000
	for name, f := range curves {
		prev := f(0)
		for i := 1; i <= steps; i++ {
			tv := float64(i) / steps
			got := f(tv)
			if got < 0 || got > 1+1e-12 {
				t.Fatalf("%s(%v) = %v out of [0,1]", name, tv, got)
			}
			if got < prev-1e-12 {
				t.Fatalf("%s not monotonic at t=%v: %v < %v", name, tv, got, prev)
			}
			prev = got
		}
	}
}

func TestMidpoints(t *testing.T) {
	if got := InOutQuart(0.5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("InOutQuart(0.5) = %v, want 0.5", got)
	}
	if got := InOutSine(0.5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("InOutSine(0.5) = %v, want 0.5", got)
	}
}

func TestClampOutsideRange(t *testing.T) {
	for name, f := range curves {
		if got := f(-0.5); got != 0 {
			t.Errorf("%s(-0.5) = %v, want 0", name, got)
		}
		if got := f(1.5); math.Abs(got-1) > 1e-12 {
			t.Errorf("%s(1.5) = %v, want 1", name, got)
		}
	}
}

func TestReproducible(t *testing.T) {
	// The curves must be bit-for-bit stable for identical inputs.
	for name, f := range curves {
		for _, tv := range []float64{0.1, 0.25, 1 / 3.0, 0.731} {
			if a, b := f(tv), f(tv); a != b {
				t.Errorf("%s(%v) not reproducible: %v vs %v", name, tv, a, b)
			}
		}
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(10, 20, 0.5); got != 15 {
		t.Errorf("Lerp(10,20,0.5) = %v, want 15", got)
	}
	if got := Lerp(10, 20, 0); got != 10 {
		t.Errorf("Lerp(10,20,0) = %v, want 10", got)
	}
	if got := Lerp(10, 20, 1); got != 20 {
		t.Errorf("Lerp(10,20,1) = %v, want 20", got)
	}
}
