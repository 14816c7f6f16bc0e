package domain

import "time"

// Borrow represents a lending record for a book.
// At most one active borrow may exist per (user, book) pair; the store
// enforces this inside a single transaction.
type Borrow struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// IsActive returns true if the book has not been returned yet.
func (b *Borrow) IsActive() bool {
	return b.ReturnedAt == nil
}

// MarkReturned stamps the borrow as returned now.
func (b *Borrow) MarkReturned() {
	now := time.Now()
	b.ReturnedAt = &now
}
