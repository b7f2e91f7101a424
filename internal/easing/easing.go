// Package easing provides the animation curves used by the sequencer.
// All functions are total on [0,1], map 0 to 0 and 1 to 1, and are
// monotonically non-decreasing. Inputs outside [0,1] are clamped so the
// output range is always [0,1].
package easing

import "math"

// InOutQuart accelerates quartically, then decelerates symmetrically.
func InOutQuart(t float64) float64 {
	t = clamp(t)
	if t < 0.5 {
		return 8 * t * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 4)/2
}

// InOutSine follows a half cosine wave for the most natural motion.
func InOutSine(t float64) float64 {
	t = clamp(t)
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// OutQuart decelerates quartically. Used for staggered element fades
// inside the banner, not for the banner envelope itself.
func OutQuart(t float64) float64 {
	t = clamp(t)
	return 1 - math.Pow(1-t, 4)
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
