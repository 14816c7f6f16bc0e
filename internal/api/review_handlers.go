package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "Add review",
		Description: "Adds a review for a book the user has borrowed. Triggers consensus regeneration.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List reviews",
		Description: "Lists reviews for a book, newest first",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListReviews)
}

// === DTOs ===

// AddReviewRequest is the request body for adding a review.
type AddReviewRequest struct {
	Rating int    `json:"rating" doc:"Star rating from 1 to 5"`
	Text   string `json:"text" doc:"Review text"`
}

// AddReviewInput wraps the review request for Huma.
type AddReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          AddReviewRequest
}

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID        string    `json:"id" doc:"Review ID"`
	UserID    string    `json:"user_id" doc:"Reviewer's user ID"`
	BookID    string    `json:"book_id" doc:"Reviewed book ID"`
	Rating    int       `json:"rating" doc:"Star rating from 1 to 5"`
	Text      string    `json:"text" doc:"Review text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// ReviewListResponse contains a book's reviews.
type ReviewListResponse struct {
	Items []ReviewResponse `json:"items" doc:"Reviews, newest first"`
}

// ReviewListOutput wraps the review list for Huma.
type ReviewListOutput struct {
	Body ReviewListResponse
}

// === Handlers ===

func (s *Server) handleAddReview(ctx context.Context, input *AddReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.AddReview(ctx, userID, input.ID, service.AddReviewRequest{
		Rating: input.Body.Rating,
		Text:   input.Body.Text,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: mapReviewResponse(review)}, nil
}

func (s *Server) handleListReviews(ctx context.Context, input *BookInput) (*ReviewListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.ListBookReviews(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	items := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, mapReviewResponse(review))
	}

	return &ReviewListOutput{Body: ReviewListResponse{Items: items}}, nil
}

// === Helpers ===

func mapReviewResponse(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		UserID:    review.UserID,
		BookID:    review.BookID,
		Rating:    review.Rating,
		Text:      review.Text,
		CreatedAt: review.CreatedAt,
	}
}
