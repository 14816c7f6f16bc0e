package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/luminalib/lumina-server/internal/domain"
)

const bookPrefix = "book:"

var (
	ErrBookNotFound = errors.New("book not found")
	ErrBookExists   = errors.New("book already exists")
)

// Book Operations

// CreateBook creates a new book and indexes it for search.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	// Check if it already exists
	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return ErrBookExists
	}

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
			s.logger.Warn("failed to index book", "id", book.ID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("author", book.Author),
		)
	}
	return nil
}

// GetBook retrieves a book by ID
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// UpdateBook updates an existing book's metadata and reindexes it.
// Derived fields (summary, consensus) are written through SetBookSummary
// and CompareAndSwapConsensus instead.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if !exists {
		return ErrBookNotFound
	}

	book.Touch()
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
			s.logger.Warn("failed to reindex book", "id", book.ID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("book updated", "id", book.ID, "title", book.Title)
	}

	return nil
}

// DeleteBook deletes a book and removes it from the search index.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}

	key := []byte(bookPrefix + id)
	if err := s.delete(key); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteBook(ctx, id); err != nil {
			s.logger.Warn("failed to remove book from search index", "id", id, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "id", id, "title", book.Title)
	}

	return nil
}

// BookExists checks if a book exists in our db by ID
func (s *Store) BookExists(_ context.Context, id string) (bool, error) {
	key := []byte(bookPrefix + id)
	return s.exists(key)
}

// SetBookSummary writes a generated summary exactly once. If a summary
// appeared meanwhile (a concurrent generation won), the write is a no-op.
func (s *Store) SetBookSummary(_ context.Context, id, summary string) error {
	key := []byte(bookPrefix + id)

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		var book domain.Book
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		}); err != nil {
			return fmt.Errorf("unmarshal book: %w", err)
		}

		if book.HasSummary() {
			return nil
		}

		book.Summary = &summary
		book.Touch()

		data, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("book summary stored", "id", id, "chars", len(summary))
	}
	return nil
}

// CompareAndSwapConsensus commits a regenerated review consensus only if
// the stored consensus_version still equals expectedVersion. Returns
// false without error when the version advanced meanwhile; the caller
// treats that as a normal coalescing signal, not a failure.
func (s *Store) CompareAndSwapConsensus(_ context.Context, id string, expectedVersion int, consensus string) (bool, error) {
	key := []byte(bookPrefix + id)
	swapped := false

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		var book domain.Book
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		}); err != nil {
			return fmt.Errorf("unmarshal book: %w", err)
		}

		if book.ConsensusVersion != expectedVersion {
			return nil
		}

		book.ReviewConsensus = &consensus
		book.ConsensusVersion++
		book.Touch()

		data, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if s.logger != nil {
		if swapped {
			s.logger.Info("book consensus committed",
				"id", id, "version", expectedVersion+1)
		} else {
			s.logger.Debug("book consensus CAS lost",
				"id", id, "expected_version", expectedVersion)
		}
	}
	return swapped, nil
}

// ListBooks returns a page of books ordered by ID.
func (s *Store) ListBooks(_ context.Context, params PaginationParams) (*PaginatedResult[*domain.Book], error) {
	params.Validate()

	var books []*domain.Book
	var hasMore bool

	prefix := []byte(bookPrefix)

	// Decode cursor to get starting key
	startKey, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = params.Limit + 1 // We fetch one extra to check if there's more items.

		it := txn.NewIterator(opts)
		defer it.Close()

		// Start from cursor or beginning
		if startKey != "" {
			it.Seek([]byte(startKey))
			// Skip the cursor key itself (we've already returned it)
			if it.Valid() && string(it.Item().Key()) == startKey {
				it.Next()
			}
		} else {
			it.Seek(prefix)
		}

		// Collect items up to limit + 1
		count := 0
		for ; it.ValidForPrefix(prefix) && count <= params.Limit; it.Next() {
			// If we've hit limit + 1, we know there are more items
			if count == params.Limit {
				hasMore = true
				break
			}

			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}

			count++
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	result := &PaginatedResult[*domain.Book]{
		Items:   books,
		HasMore: hasMore,
	}

	// Set next cursor if there are more results
	if hasMore && len(books) > 0 {
		result.NextCursor = EncodeCursor(bookPrefix + books[len(books)-1].ID)
	}

	return result, nil
}

// ListAllBooks returns all books (non-paginated). The recommender and
// the startup reindex need the full catalog; everything user-facing
// should go through ListBooks instead.
func (s *Store) ListAllBooks(_ context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	prefix := []byte(bookPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}

	return books, nil
}
