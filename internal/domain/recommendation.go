package domain

// RecommendationResult is a single scored recommendation. Results are
// computed on demand and never persisted.
type RecommendationResult struct {
	BookID string  `json:"book_id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
