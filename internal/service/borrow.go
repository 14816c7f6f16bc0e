package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luminalib/lumina-server/internal/domain"
	domainerrors "github.com/luminalib/lumina-server/internal/errors"
	"github.com/luminalib/lumina-server/internal/id"
	"github.com/luminalib/lumina-server/internal/journal"
	"github.com/luminalib/lumina-server/internal/store"
)

// BorrowService handles lending: at most one active borrow per
// (user, book), with every borrow and return appended to the
// interaction journal.
type BorrowService struct {
	store   *store.Store
	journal *journal.Journal
	logger  *slog.Logger
}

// NewBorrowService creates a new lending service.
func NewBorrowService(store *store.Store, journal *journal.Journal, logger *slog.Logger) *BorrowService {
	return &BorrowService{
		store:   store,
		journal: journal,
		logger:  logger,
	}
}

// BorrowBook records a new borrow for the user.
func (s *BorrowService) BorrowBook(ctx context.Context, userID, bookID string) (*domain.Borrow, error) {
	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFound("book not found")
	}

	borrowID, err := id.Generate("borrow")
	if err != nil {
		return nil, fmt.Errorf("generate borrow ID: %w", err)
	}

	borrow := &domain.Borrow{
		ID:     borrowID,
		UserID: userID,
		BookID: bookID,
	}

	if err := s.store.CreateBorrow(ctx, borrow); err != nil {
		if errors.Is(err, store.ErrAlreadyBorrowed) {
			return nil, domainerrors.Conflict("book is already borrowed by this user")
		}
		return nil, fmt.Errorf("create borrow: %w", err)
	}

	if err := s.journal.Append(ctx, &domain.Interaction{
		UserID: userID,
		BookID: bookID,
		Type:   domain.InteractionBorrow,
	}); err != nil {
		// The borrow stands; the journal is advisory signal
		if s.logger != nil {
			s.logger.Warn("failed to journal borrow event",
				"user_id", userID,
				"book_id", bookID,
				"error", err,
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("book borrowed",
			"user_id", userID,
			"book_id", bookID,
		)
	}

	return borrow, nil
}

// ReturnBook closes the user's active borrow of the book.
func (s *BorrowService) ReturnBook(ctx context.Context, userID, bookID string) (*domain.Borrow, error) {
	borrow, err := s.store.ReturnBorrow(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNoActiveBorrow) {
			return nil, domainerrors.Conflict("no active borrow for this book")
		}
		return nil, fmt.Errorf("return borrow: %w", err)
	}

	if err := s.journal.Append(ctx, &domain.Interaction{
		UserID: userID,
		BookID: bookID,
		Type:   domain.InteractionReturn,
	}); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to journal return event",
				"user_id", userID,
				"book_id", bookID,
				"error", err,
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("book returned",
			"user_id", userID,
			"book_id", bookID,
		)
	}

	return borrow, nil
}

// ListUserBorrows returns the user's borrows, optionally only active ones.
func (s *BorrowService) ListUserBorrows(ctx context.Context, userID string, activeOnly bool) ([]*domain.Borrow, error) {
	borrows, err := s.store.ListUserBorrows(ctx, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list borrows: %w", err)
	}
	return borrows, nil
}
