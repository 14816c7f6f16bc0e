package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/luminalib/lumina-server/internal/domain"
)

const (
	borrowPrefix        = "borrow:"
	borrowActivePrefix  = "idx:borrows:active:"
	borrowHistoryPrefix = "idx:borrows:hist:"
	borrowByUserPrefix  = "idx:borrows:user:"
)

var (
	ErrBorrowNotFound  = errors.New("borrow not found")
	ErrAlreadyBorrowed = errors.New("user already has an active borrow for this book")
	ErrNoActiveBorrow  = errors.New("no active borrow for this book")
)

// CreateBorrow records a new borrow. The active-borrow check and the
// write share one transaction so two concurrent requests cannot both
// borrow the same book for the same user.
func (s *Store) CreateBorrow(ctx context.Context, borrow *domain.Borrow) error {
	key := []byte(borrowPrefix + borrow.ID)
	activeKey := []byte(borrowActivePrefix + borrow.UserID + ":" + borrow.BookID)
	historyKey := []byte(borrowHistoryPrefix + borrow.UserID + ":" + borrow.BookID)
	userIndexKey := []byte(borrowByUserPrefix + borrow.UserID + ":" + borrow.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(activeKey)
		if err == nil {
			return ErrAlreadyBorrowed
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check active borrow: %w", err)
		}

		data, err := json.Marshal(borrow)
		if err != nil {
			return fmt.Errorf("marshal borrow: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(activeKey, []byte(borrow.ID)); err != nil {
			return err
		}
		// History marker survives returns; review eligibility checks it
		if err := txn.Set(historyKey, []byte{}); err != nil {
			return err
		}
		return txn.Set(userIndexKey, []byte{})
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("borrow created",
			"id", borrow.ID, "user_id", borrow.UserID, "book_id", borrow.BookID)
	}
	return nil
}

// GetBorrow retrieves a borrow by ID.
func (s *Store) GetBorrow(_ context.Context, id string) (*domain.Borrow, error) {
	key := []byte(borrowPrefix + id)

	var borrow domain.Borrow
	if err := s.get(key, &borrow); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBorrowNotFound
		}
		return nil, fmt.Errorf("get borrow: %w", err)
	}
	return &borrow, nil
}

// ReturnBorrow closes the user's active borrow for a book and returns
// the updated record. Fails with ErrNoActiveBorrow if nothing is open.
func (s *Store) ReturnBorrow(_ context.Context, userID, bookID string) (*domain.Borrow, error) {
	activeKey := []byte(borrowActivePrefix + userID + ":" + bookID)
	var returned *domain.Borrow

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(activeKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoActiveBorrow
		}
		if err != nil {
			return fmt.Errorf("get active borrow: %w", err)
		}

		var borrowID string
		if err := item.Value(func(val []byte) error {
			borrowID = string(val)
			return nil
		}); err != nil {
			return err
		}

		borrowItem, err := txn.Get([]byte(borrowPrefix + borrowID))
		if err != nil {
			return fmt.Errorf("get borrow %s: %w", borrowID, err)
		}

		var borrow domain.Borrow
		if err := borrowItem.Value(func(val []byte) error {
			return json.Unmarshal(val, &borrow)
		}); err != nil {
			return fmt.Errorf("unmarshal borrow: %w", err)
		}

		borrow.MarkReturned()

		data, err := json.Marshal(&borrow)
		if err != nil {
			return fmt.Errorf("marshal borrow: %w", err)
		}
		if err := txn.Set([]byte(borrowPrefix+borrowID), data); err != nil {
			return err
		}
		if err := txn.Delete(activeKey); err != nil {
			return err
		}

		returned = &borrow
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("borrow returned",
			"id", returned.ID, "user_id", userID, "book_id", bookID)
	}
	return returned, nil
}

// HasActiveBorrow reports whether the user currently holds the book.
func (s *Store) HasActiveBorrow(_ context.Context, userID, bookID string) (bool, error) {
	key := []byte(borrowActivePrefix + userID + ":" + bookID)
	return s.exists(key)
}

// HasEverBorrowed reports whether the user borrowed the book at any
// point, returned or not.
func (s *Store) HasEverBorrowed(_ context.Context, userID, bookID string) (bool, error) {
	key := []byte(borrowHistoryPrefix + userID + ":" + bookID)
	return s.exists(key)
}

// ListUserBorrows returns a user's borrows. With activeOnly set, closed
// borrows are filtered out.
func (s *Store) ListUserBorrows(_ context.Context, userID string, activeOnly bool) ([]*domain.Borrow, error) {
	prefix := []byte(borrowByUserPrefix + userID + ":")
	var borrows []*domain.Borrow

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			borrowID := key[strings.LastIndex(key, ":")+1:]

			item, err := txn.Get([]byte(borrowPrefix + borrowID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			err = item.Value(func(val []byte) error {
				var borrow domain.Borrow
				if err := json.Unmarshal(val, &borrow); err != nil {
					return err
				}
				if activeOnly && !borrow.IsActive() {
					return nil
				}
				borrows = append(borrows, &borrow)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user borrows: %w", err)
	}

	return borrows, nil
}
