package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAnalysisRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getAnalysis",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/analysis",
		Summary:     "Book analysis",
		Description: "Returns the aggregated intelligence view of a book: summary, review consensus, and generation states",
		Tags:        []string{"Intelligence"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetAnalysis)

	huma.Register(s.api, huma.Operation{
		OperationID:   "refreshConsensus",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/analysis/refresh",
		Summary:       "Refresh consensus",
		Description:   "Queues a review consensus regeneration for the book. Returns immediately; poll the analysis endpoint for the result.",
		Tags:          []string{"Intelligence"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusAccepted,
	}, s.handleRefreshConsensus)
}

// === DTOs ===

// AnalysisResponse contains the intelligence view of a book.
type AnalysisResponse struct {
	BookID           string  `json:"book_id" doc:"Book ID"`
	Summary          *string `json:"summary,omitempty" doc:"Generated summary, if ready"`
	ReviewConsensus  *string `json:"review_consensus,omitempty" doc:"Generated review consensus, if ready"`
	ConsensusVersion int     `json:"consensus_version" doc:"Consensus regeneration counter"`
	TotalReviews     int     `json:"total_reviews" doc:"Number of reviews"`
	AverageRating    float64 `json:"average_rating" doc:"Mean star rating, 0 without reviews"`
	SummaryState     string  `json:"summary_state" doc:"Summary generation state: idle, in_flight, ready, or failed"`
	ConsensusState   string  `json:"consensus_state" doc:"Consensus generation state: idle, in_flight, ready, or failed"`
}

// AnalysisOutput wraps the analysis response for Huma.
type AnalysisOutput struct {
	Body AnalysisResponse
}

// === Handlers ===

func (s *Server) handleGetAnalysis(ctx context.Context, input *BookInput) (*AnalysisOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	analysis, err := s.services.Analysis.GetAnalysis(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &AnalysisOutput{
		Body: AnalysisResponse{
			BookID:           analysis.BookID,
			Summary:          analysis.Summary,
			ReviewConsensus:  analysis.ReviewConsensus,
			ConsensusVersion: analysis.ConsensusVersion,
			TotalReviews:     analysis.TotalReviews,
			AverageRating:    analysis.AverageRating,
			SummaryState:     string(analysis.SummaryState),
			ConsensusState:   string(analysis.ConsensusState),
		},
	}, nil
}

func (s *Server) handleRefreshConsensus(ctx context.Context, input *BookInput) (*MessageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Analysis.RefreshConsensus(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Consensus regeneration queued"}}, nil
}
