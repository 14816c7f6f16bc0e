package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/intelligence"
	"github.com/luminalib/lumina-server/internal/store"
)

// AnalysisService aggregates a book's derived intelligence with its
// review statistics and generation lifecycle states.
type AnalysisService struct {
	store       *store.Store
	coordinator *intelligence.Coordinator
	logger      *slog.Logger
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(store *store.Store, coordinator *intelligence.Coordinator, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		store:       store,
		coordinator: coordinator,
		logger:      logger,
	}
}

// BookAnalysis is the aggregated intelligence view of a book.
type BookAnalysis struct {
	BookID           string             `json:"book_id"`
	Summary          *string            `json:"summary,omitempty"`
	ReviewConsensus  *string            `json:"review_consensus,omitempty"`
	ConsensusVersion int                `json:"consensus_version"`
	TotalReviews     int                `json:"total_reviews"`
	AverageRating    float64            `json:"average_rating"`
	SummaryState     intelligence.State `json:"summary_state"`
	ConsensusState   intelligence.State `json:"consensus_state"`
}

// GetAnalysis returns the book's summary, consensus, review statistics,
// and the current generation states.
func (s *AnalysisService) GetAnalysis(ctx context.Context, bookID string) (*BookAnalysis, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, bookLookupError(err)
	}

	reviews, err := s.store.ListBookReviews(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	flat := make([]domain.Review, len(reviews))
	for i, r := range reviews {
		flat[i] = *r
	}

	return &BookAnalysis{
		BookID:           book.ID,
		Summary:          book.Summary,
		ReviewConsensus:  book.ReviewConsensus,
		ConsensusVersion: book.ConsensusVersion,
		TotalReviews:     len(reviews),
		AverageRating:    domain.AverageRating(flat),
		SummaryState:     s.coordinator.State(bookID, intelligence.KindSummary),
		ConsensusState:   s.coordinator.State(bookID, intelligence.KindConsensus),
	}, nil
}

// RefreshConsensus manually re-triggers consensus generation. The work
// runs in the background; poll GetAnalysis for the outcome.
func (s *AnalysisService) RefreshConsensus(ctx context.Context, bookID string) error {
	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return bookLookupError(store.ErrBookNotFound)
	}

	s.coordinator.TriggerConsensus(bookID)

	if s.logger != nil {
		s.logger.Info("consensus refresh requested", "book_id", bookID)
	}
	return nil
}
