package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/luminalib/lumina-server/internal/domain"
)

const (
	reviewPrefix       = "review:"
	reviewByBookPrefix = "idx:reviews:book:"
	reviewByUserPrefix = "idx:reviews:user:"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("user already reviewed this book")
)

// CreateReview stores a review, filling in CreatedAt when unset.
// Reviews are immutable once written. When allowRepeat is false a
// second review by the same user for the same book fails with
// ErrAlreadyReviewed; the duplicate check and the write happen in one
// transaction.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review, allowRepeat bool) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	key := []byte(reviewPrefix + review.ID)
	userIndexKey := []byte(reviewByUserPrefix + review.UserID + ":" + review.BookID)
	bookIndexKey := formatTimestampIndexKey(
		reviewByBookPrefix+review.BookID+":", review.CreatedAt, "review", review.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if !allowRepeat {
			_, err := txn.Get(userIndexKey)
			if err == nil {
				return ErrAlreadyReviewed
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check existing review: %w", err)
			}
		}

		data, err := json.Marshal(review)
		if err != nil {
			return fmt.Errorf("marshal review: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Book index, timestamp-ordered so listings come back chronologically
		if err := txn.Set(bookIndexKey, []byte(review.ID)); err != nil {
			return err
		}

		// User index for the repeat check
		return txn.Set(userIndexKey, []byte(review.ID))
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("review created",
			"id", review.ID, "book_id", review.BookID, "rating", review.Rating)
	}
	return nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(_ context.Context, id string) (*domain.Review, error) {
	key := []byte(reviewPrefix + id)

	var review domain.Review
	if err := s.get(key, &review); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// ListBookReviews returns all reviews for a book, oldest first.
func (s *Store) ListBookReviews(_ context.Context, bookID string) ([]*domain.Review, error) {
	prefix := []byte(reviewByBookPrefix + bookID + ":")
	var reviews []*domain.Review

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var reviewID string
			err := it.Item().Value(func(val []byte) error {
				reviewID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			item, err := txn.Get([]byte(reviewPrefix + reviewID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue // Dangling index entry
			}
			if err != nil {
				return err
			}

			err = item.Value(func(val []byte) error {
				var review domain.Review
				if err := json.Unmarshal(val, &review); err != nil {
					return err
				}
				reviews = append(reviews, &review)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list book reviews: %w", err)
	}

	return reviews, nil
}

// HasReviewed reports whether a user already reviewed a book.
func (s *Store) HasReviewed(_ context.Context, userID, bookID string) (bool, error) {
	key := []byte(reviewByUserPrefix + userID + ":" + bookID)
	return s.exists(key)
}

// CountBookReviews returns the number of reviews for a book.
func (s *Store) CountBookReviews(_ context.Context, bookID string) (int, error) {
	prefix := []byte(reviewByBookPrefix + bookID + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count book reviews: %w", err)
	}

	return count, nil
}
