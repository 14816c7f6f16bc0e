package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luminalib/lumina-server/internal/recommend"
	"github.com/luminalib/lumina-server/internal/store"
)

// RecommendationService runs the hybrid recommender and enriches its
// results with catalog metadata for API responses.
type RecommendationService struct {
	engine *recommend.Engine
	store  *store.Store
	logger *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(engine *recommend.Engine, store *store.Store, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// Recommendation is a scored book enriched with display metadata.
type Recommendation struct {
	BookID string  `json:"book_id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Recommend returns up to limit recommendations for the user.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	results, err := s.engine.Recommend(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("compute recommendations: %w", err)
	}

	recommendations := make([]Recommendation, 0, len(results))
	for _, r := range results {
		book, err := s.store.GetBook(ctx, r.BookID)
		if err != nil {
			// Book deleted between scoring and enrichment; skip it
			if errors.Is(err, store.ErrBookNotFound) {
				continue
			}
			return nil, fmt.Errorf("enrich recommendation: %w", err)
		}
		recommendations = append(recommendations, Recommendation{
			BookID: book.ID,
			Title:  book.Title,
			Author: book.Author,
			Score:  r.Score,
			Reason: r.Reason,
		})
	}

	return recommendations, nil
}
