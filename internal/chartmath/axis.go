package chartmath

import "math"

// RoundUpToNiceNumber returns a visually round upper bound for a chart axis
// that is always >= value. Values at or below 10 get a floor of 10 so empty
// charts keep a usable scale.
func RoundUpToNiceNumber(value float64) float64 {
	if value <= 0 || value < 10 {
		return 10
	}
	magnitude := math.Pow(10, math.Floor(math.Log10(value)))
	step := math.Max(10, magnitude/10)
	return math.Ceil(value/step) * step
}
