package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations",
		Summary:     "Personalized recommendations",
		Description: "Returns scored book recommendations for the authenticated user",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecommendations)
}

// === DTOs ===

// RecommendationsInput contains parameters for the recommendations endpoint.
type RecommendationsInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" doc:"Max recommendations to return (default 10)"`
}

// RecommendationResponse contains a single recommendation.
type RecommendationResponse struct {
	BookID string  `json:"book_id" doc:"Recommended book ID"`
	Title  string  `json:"title" doc:"Book title"`
	Author string  `json:"author" doc:"Book author"`
	Score  float64 `json:"score" doc:"Recommendation score in [0, 1]"`
	Reason string  `json:"reason" doc:"Why this book was recommended"`
}

// RecommendationListResponse contains ranked recommendations.
type RecommendationListResponse struct {
	Items []RecommendationResponse `json:"items" doc:"Recommendations, best first"`
}

// RecommendationListOutput wraps the recommendation list for Huma.
type RecommendationListOutput struct {
	Body RecommendationListResponse
}

// === Handlers ===

func (s *Server) handleGetRecommendations(ctx context.Context, input *RecommendationsInput) (*RecommendationListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.services.Recommendation.Recommend(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]RecommendationResponse, 0, len(recs))
	for _, rec := range recs {
		items = append(items, RecommendationResponse{
			BookID: rec.BookID,
			Title:  rec.Title,
			Author: rec.Author,
			Score:  rec.Score,
			Reason: rec.Reason,
		})
	}

	return &RecommendationListOutput{Body: RecommendationListResponse{Items: items}}, nil
}
