// Package rating derives a game's aggregate score from its approved
// review ratings.
package rating

import "math"

// Aggregate returns the mean of ratings rounded to one decimal place,
// or 0 when ratings is empty. Rounding is half-away-from-zero.
func Aggregate(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10
}
