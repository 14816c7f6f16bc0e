package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/http/response"
	"github.com/luminalib/lumina-server/internal/service"
	"github.com/luminalib/lumina-server/internal/store"
)

// maxBookUploadSize caps multipart book uploads at 10MB.
const maxBookUploadSize = 10 << 20

func (s *Server) registerBookRoutes() {
	// Book creation is a chi handler (not Huma) because Huma doesn't
	// easily support multipart forms.
	s.router.Post("/api/v1/books", s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a paginated list of books in the catalog",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single book by ID",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Patches book metadata. Omitted fields are left unchanged.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book and its stored content",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID               string    `json:"id" doc:"Book ID"`
	Title            string    `json:"title" doc:"Book title"`
	Author           string    `json:"author" doc:"Book author"`
	ISBN             string    `json:"isbn,omitempty" doc:"ISBN identifier"`
	Genres           []string  `json:"genres,omitempty" doc:"Normalized genre tags"`
	FileType         string    `json:"file_type" doc:"Stored content file type"`
	Summary          *string   `json:"summary,omitempty" doc:"Generated summary, if ready"`
	ReviewConsensus  *string   `json:"review_consensus,omitempty" doc:"Generated review consensus, if ready"`
	ConsensusVersion int       `json:"consensus_version" doc:"Consensus regeneration counter"`
	CreatedAt        time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt        time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// ListBooksInput contains pagination parameters for listing books.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" doc:"Max items per page (default 100)"`
	Cursor        string `query:"cursor" doc:"Opaque cursor from a previous page"`
}

// BookListResponse contains a page of books.
type BookListResponse struct {
	Items      []BookResponse `json:"items" doc:"Books in this page"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages exist"`
}

// BookListOutput wraps the book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// BookInput identifies a book by path parameter.
type BookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// UpdateBookRequest is the request body for patching book metadata.
type UpdateBookRequest struct {
	Title  *string `json:"title,omitempty" doc:"New title"`
	Author *string `json:"author,omitempty" doc:"New author"`
	ISBN   *string `json:"isbn,omitempty" doc:"New ISBN"`
	Genres *string `json:"genres,omitempty" doc:"Comma-separated genre list"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// === Handlers ===

// handleCreateBook accepts a multipart form with book metadata and the
// content file, stores both, and kicks off summary generation.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if err := r.ParseMultipartForm(maxBookUploadSize); err != nil {
		response.BadRequest(w, "invalid multipart form", s.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "book content file is required", s.logger)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxBookUploadSize))
	if err != nil {
		response.InternalError(w, "failed to read uploaded file", s.logger)
		return
	}

	book, err := s.services.Book.CreateBook(r.Context(), service.CreateBookRequest{
		Title:    r.FormValue("title"),
		Author:   r.FormValue("author"),
		ISBN:     r.FormValue("isbn"),
		Genres:   r.FormValue("genres"),
		FileName: header.Filename,
		Content:  content,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, mapBookResponse(book), s.logger)
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	params := store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	}

	result, err := s.services.Book.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]BookResponse, 0, len(result.Items))
	for _, book := range result.Items {
		items = append(items, mapBookResponse(book))
	}

	return &BookListOutput{
		Body: BookListResponse{
			Items:      items,
			NextCursor: result.NextCursor,
			HasMore:    result.HasMore,
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, service.UpdateBookRequest{
		Title:  input.Body.Title,
		Author: input.Body.Author,
		ISBN:   input.Body.ISBN,
		Genres: input.Body.Genres,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookInput) (*MessageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Helpers ===

func mapBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:               book.ID,
		Title:            book.Title,
		Author:           book.Author,
		ISBN:             book.ISBN,
		Genres:           book.Genres,
		FileType:         book.FileType,
		Summary:          book.Summary,
		ReviewConsensus:  book.ReviewConsensus,
		ConsensusVersion: book.ConsensusVersion,
		CreatedAt:        book.CreatedAt,
		UpdatedAt:        book.UpdatedAt,
	}
}
