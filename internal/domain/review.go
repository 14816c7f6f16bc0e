package domain

import "time"

// Review is an immutable user review of a book. Reviews are never edited
// or deleted; the review consensus is regenerated as new ones arrive.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Rating    int       `json:"rating"` // 1-5
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// AverageRating computes the mean rating over a set of reviews.
// Returns 0 for an empty set.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
