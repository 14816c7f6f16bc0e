// Package service provides the business logic layer for the library:
// accounts, catalog, lending, reviews, and derived intelligence.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/luminalib/lumina-server/internal/domain"
	domainerrors "github.com/luminalib/lumina-server/internal/errors"
	"github.com/luminalib/lumina-server/internal/id"
	"github.com/luminalib/lumina-server/internal/intelligence"
	"github.com/luminalib/lumina-server/internal/normalize"
	"github.com/luminalib/lumina-server/internal/storage"
	"github.com/luminalib/lumina-server/internal/store"
)

// BookService orchestrates catalog operations: upload, metadata, and
// removal. Creating a book persists its content file and kicks off
// summary generation in the background.
type BookService struct {
	store       *store.Store
	storage     *storage.Storage
	coordinator *intelligence.Coordinator
	logger      *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	store *store.Store,
	storage *storage.Storage,
	coordinator *intelligence.Coordinator,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:       store,
		storage:     storage,
		coordinator: coordinator,
		logger:      logger,
	}
}

// CreateBookRequest contains new catalog entry data. Content arrives as
// a multipart upload; FileName carries the original name for type
// detection.
type CreateBookRequest struct {
	Title    string `json:"title" validate:"required,max=512"`
	Author   string `json:"author" validate:"required,max=512"`
	ISBN     string `json:"isbn" validate:"omitempty,max=32"`
	Genres   string `json:"genres"` // Comma-separated
	FileName string `json:"-"`
	Content  []byte `json:"-"`
}

// UpdateBookRequest contains metadata fields to patch. Nil means leave
// unchanged. Content and derived fields cannot be updated this way.
type UpdateBookRequest struct {
	Title  *string `json:"title" validate:"omitempty,max=512"`
	Author *string `json:"author" validate:"omitempty,max=512"`
	ISBN   *string `json:"isbn" validate:"omitempty,max=32"`
	Genres *string `json:"genres"` // Comma-separated
}

// CreateBook persists the content file, creates the catalog entry, and
// triggers summary generation fire-and-forget.
func (s *BookService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if len(req.Content) == 0 {
		return nil, domainerrors.Validation("book content file is required")
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	fileType := strings.TrimPrefix(filepath.Ext(req.FileName), ".")
	if fileType == "" {
		fileType = "txt"
	}

	filePath, err := s.storage.Save(bookID, fileType, req.Content)
	if err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}

	book := &domain.Book{
		Syncable: domain.Syncable{
			ID: bookID,
		},
		Title:    strings.TrimSpace(req.Title),
		Author:   strings.TrimSpace(req.Author),
		ISBN:     strings.TrimSpace(req.ISBN),
		Genres:   normalize.Tags(normalize.SplitCSV(req.Genres)),
		FilePath: filePath,
		FileType: fileType,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		// Roll back the orphaned content file
		_ = s.storage.Delete(bookID, fileType)
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.coordinator.TriggerSummary(bookID)

	if s.logger != nil {
		s.logger.Info("book created",
			"book_id", bookID,
			"title", book.Title,
		)
	}

	return book, nil
}

// GetBook retrieves a single book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns a page of the catalog using cursor pagination.
func (s *BookService) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	params.Validate()

	result, err := s.store.ListBooks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return result, nil
}

// UpdateBook patches book metadata. Derived fields are untouched; they
// only change through the intelligence coordinator.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.ISBN != nil {
		book.ISBN = strings.TrimSpace(*req.ISBN)
	}
	if req.Genres != nil {
		book.Genres = normalize.Tags(normalize.SplitCSV(*req.Genres))
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	return book, nil
}

// DeleteBook removes the catalog entry, its content file, and its
// search document.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.storage.Delete(bookID, book.FileType); err != nil {
		// The catalog entry is gone; log the stray file and move on
		if s.logger != nil {
			s.logger.Warn("failed to delete book content",
				"book_id", bookID,
				"error", err,
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "book_id", bookID)
	}

	return nil
}
