package graph

import "math"

// levelToVolume converts a linear gain level in [0, 1] to beep's
// logarithmic volume scale with base 2. Level 1 maps to 0 (unchanged),
// 0.5 to -1 (half), and 0 or below clamps to -10, effectively silent.
func levelToVolume(level float64) float64 {
	switch {
	case level <= 0:
		return -10
	case level >= 1:
		return 0
	default:
		return math.Log2(level)
	}
}
