// Package rating aggregates review ratings. Aggregates are computed on every
// call and never stored.
package rating

import "coffeetrucks/internal/models"

// Summary is the derived rating of a truck.
type Summary struct {
	Average float64 `json:"avgRating"`
	Count   int     `json:"reviewCount"`
}

// AverageRating returns the arithmetic mean of the ratings, or 0 when there
// are none. The result is not rounded.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// Summarize returns the average and the number of reviews.
func Summarize(reviews []models.Review) Summary {
	return Summary{Average: AverageRating(reviews), Count: len(reviews)}
}
