package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luminalib/lumina-server/internal/domain"
	domainerrors "github.com/luminalib/lumina-server/internal/errors"
	"github.com/luminalib/lumina-server/internal/id"
	"github.com/luminalib/lumina-server/internal/intelligence"
	"github.com/luminalib/lumina-server/internal/journal"
	"github.com/luminalib/lumina-server/internal/store"
)

// ReviewService handles book reviews. Only users who have borrowed a
// book may review it; each accepted review lands in the interaction
// journal and triggers consensus regeneration.
type ReviewService struct {
	store        *store.Store
	journal      *journal.Journal
	coordinator  *intelligence.Coordinator
	allowRepeats bool
	logger       *slog.Logger
}

// NewReviewService creates a new review service. allowRepeats permits
// multiple reviews per (user, book).
func NewReviewService(
	store *store.Store,
	journal *journal.Journal,
	coordinator *intelligence.Coordinator,
	allowRepeats bool,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		store:        store,
		journal:      journal,
		coordinator:  coordinator,
		allowRepeats: allowRepeats,
		logger:       logger,
	}
}

// AddReviewRequest contains a new review.
type AddReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"required,max=10000"`
}

// AddReview validates and stores a review, journals the rating signal,
// and triggers consensus regeneration fire-and-forget.
func (s *ReviewService) AddReview(ctx context.Context, userID, bookID string, req AddReviewRequest) (*domain.Review, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFound("book not found")
	}

	borrowed, err := s.store.HasEverBorrowed(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("check borrow history: %w", err)
	}
	if !borrowed {
		return nil, domainerrors.Forbidden("you must borrow a book before reviewing it")
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		ID:     reviewID,
		UserID: userID,
		BookID: bookID,
		Rating: req.Rating,
		Text:   req.Text,
	}

	if err := s.store.CreateReview(ctx, review, s.allowRepeats); err != nil {
		if errors.Is(err, store.ErrAlreadyReviewed) {
			return nil, domainerrors.Conflict("you have already reviewed this book")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	rating := float64(req.Rating)
	if err := s.journal.Append(ctx, &domain.Interaction{
		UserID: userID,
		BookID: bookID,
		Type:   domain.InteractionReview,
		Rating: &rating,
	}); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to journal review event",
				"user_id", userID,
				"book_id", bookID,
				"error", err,
			)
		}
	}

	s.coordinator.TriggerConsensus(bookID)

	if s.logger != nil {
		s.logger.Info("review added",
			"user_id", userID,
			"book_id", bookID,
			"rating", req.Rating,
		)
	}

	return review, nil
}

// ListBookReviews returns a book's reviews, oldest first.
func (s *ReviewService) ListBookReviews(ctx context.Context, bookID string) ([]*domain.Review, error) {
	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFound("book not found")
	}

	reviews, err := s.store.ListBookReviews(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
