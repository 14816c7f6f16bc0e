// Package search provides full-text catalog search using Bleve.
// Books are indexed on title, author, and genres with fuzzy matching
// for typo tolerance.
package search

import (
	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/normalize"
)

// BookDocument is the document structure for the Bleve index.
type BookDocument struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	ISBN   string   `json:"isbn,omitempty"`
	Genres []string `json:"genres,omitempty"`

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}

	return m
}

// BookToDocument converts a domain Book to a BookDocument.
// Genres are normalized so filter values match regardless of input casing.
func BookToDocument(book *domain.Book) *BookDocument {
	return &BookDocument{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		ISBN:      book.ISBN,
		Genres:    normalize.Tags(book.Genres),
		CreatedAt: book.CreatedAt.UnixMilli(),
		UpdatedAt: book.UpdatedAt.UnixMilli(),
	}
}
