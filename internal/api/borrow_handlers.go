package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/luminalib/lumina-server/internal/domain"
)

func (s *Server) registerBorrowRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "borrowBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/borrow",
		Summary:     "Borrow book",
		Description: "Records an active borrow of the book for the authenticated user",
		Tags:        []string{"Borrowing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBorrowBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "returnBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/return",
		Summary:     "Return book",
		Description: "Closes the user's active borrow of the book",
		Tags:        []string{"Borrowing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReturnBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBorrows",
		Method:      http.MethodGet,
		Path:        "/api/v1/borrows",
		Summary:     "List borrows",
		Description: "Lists the authenticated user's borrows, newest first",
		Tags:        []string{"Borrowing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBorrows)
}

// === DTOs ===

// BorrowResponse contains borrow data in API responses.
type BorrowResponse struct {
	ID         string     `json:"id" doc:"Borrow ID"`
	BookID     string     `json:"book_id" doc:"Borrowed book ID"`
	BorrowedAt time.Time  `json:"borrowed_at" doc:"Borrow timestamp"`
	ReturnedAt *time.Time `json:"returned_at,omitempty" doc:"Return timestamp, nil while active"`
	Active     bool       `json:"active" doc:"Whether the borrow is still open"`
}

// BorrowOutput wraps a single borrow for Huma.
type BorrowOutput struct {
	Body BorrowResponse
}

// ListBorrowsInput contains filters for listing borrows.
type ListBorrowsInput struct {
	Authorization string `header:"Authorization"`
	ActiveOnly    bool   `query:"active_only" doc:"Only return borrows that have not been returned"`
}

// BorrowListResponse contains the user's borrows.
type BorrowListResponse struct {
	Items []BorrowResponse `json:"items" doc:"Borrows, newest first"`
}

// BorrowListOutput wraps the borrow list for Huma.
type BorrowListOutput struct {
	Body BorrowListResponse
}

// === Handlers ===

func (s *Server) handleBorrowBook(ctx context.Context, input *BookInput) (*BorrowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	borrow, err := s.services.Borrow.BorrowBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BorrowOutput{Body: mapBorrowResponse(borrow)}, nil
}

func (s *Server) handleReturnBook(ctx context.Context, input *BookInput) (*BorrowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	borrow, err := s.services.Borrow.ReturnBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BorrowOutput{Body: mapBorrowResponse(borrow)}, nil
}

func (s *Server) handleListBorrows(ctx context.Context, input *ListBorrowsInput) (*BorrowListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	borrows, err := s.services.Borrow.ListUserBorrows(ctx, userID, input.ActiveOnly)
	if err != nil {
		return nil, err
	}

	items := make([]BorrowResponse, 0, len(borrows))
	for _, borrow := range borrows {
		items = append(items, mapBorrowResponse(borrow))
	}

	return &BorrowListOutput{Body: BorrowListResponse{Items: items}}, nil
}

// === Helpers ===

func mapBorrowResponse(borrow *domain.Borrow) BorrowResponse {
	return BorrowResponse{
		ID:         borrow.ID,
		BookID:     borrow.BookID,
		BorrowedAt: borrow.BorrowedAt,
		ReturnedAt: borrow.ReturnedAt,
		Active:     borrow.IsActive(),
	}
}
