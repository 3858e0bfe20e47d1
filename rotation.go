package volumiwled

// This file contains the spinning record effect. A sine wave is wrapped
// around the strip a number of times and shifted along by one LED for every
// phase step which gives the appearance of a turning platter.

import (
	"math"
)

// SectionsPerRevolution is the number of pulses that travel the strip at the
// same time
const SectionsPerRevolution = 4

// RenderRotation generates the frame for the given phase. Phases that differ
// by a multiple of ledCount produce identical frames.
func RenderRotation(phase int, ledCount int, color RGB, sections int) (frame Frame) {
	frame = NewFrame(ledCount)
	if ledCount < 1 {
		return frame
	}

	for i := range frame {
		pos := mod(i-phase, ledCount)
		angle := (float64(pos) / float64(ledCount)) * 2 * math.Pi * float64(sections)
		intensity := (math.Sin(angle) + 1) / 2

		frame[i] = NewRGB(
			int(float64(color.R)*intensity),
			int(float64(color.G)*intensity),
			int(float64(color.B)*intensity),
		)
	}
	return frame
}

// Advance moves the rotation on by a single LED
func Advance(phase int, ledCount int) int {
	if ledCount < 1 {
		return 0
	}
	return mod(phase+1, ledCount)
}

// mod is the euclidean modulus, the result is always within [0, n)
func mod(v int, n int) int {
	return ((v % n) + n) % n
}
