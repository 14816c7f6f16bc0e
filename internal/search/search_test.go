package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminalib/lumina-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*Index, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func sampleDocs() []*BookDocument {
	now := time.Now().UnixMilli()
	return []*BookDocument{
		{ID: "book-001", Title: "The Hobbit", Author: "J.R.R. Tolkien", Genres: []string{"fantasy"}, CreatedAt: now, UpdatedAt: now},
		{ID: "book-002", Title: "The Silmarillion", Author: "J.R.R. Tolkien", Genres: []string{"fantasy"}, CreatedAt: now, UpdatedAt: now},
		{ID: "book-003", Title: "Murder on the Orient Express", Author: "Agatha Christie", Genres: []string{"mystery"}, CreatedAt: now, UpdatedAt: now},
	}
}

func TestNewIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &BookDocument{
		ID:     "book-123",
		Title:  "The Hobbit",
		Author: "J.R.R. Tolkien",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments(sampleDocs()))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearch_TitleMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments(sampleDocs()))

	params := DefaultParams()
	params.Query = "hobbit"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-001", result.Hits[0].ID)
	assert.Equal(t, "The Hobbit", result.Hits[0].Title)
}

func TestSearch_AuthorMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments(sampleDocs()))

	params := DefaultParams()
	params.Query = "christie"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-003", result.Hits[0].ID)
}

func TestSearch_FuzzyMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments(sampleDocs()))

	// One-character typo should still find the book
	params := DefaultParams()
	params.Query = "hobbis"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-001", result.Hits[0].ID)
}

func TestSearch_GenreFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments(sampleDocs()))

	params := DefaultParams()
	params.Genres = []string{"Mystery"} // Normalized before matching

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "book-003", result.Hits[0].ID)
}

func TestSearch_NoMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments(sampleDocs()))

	params := DefaultParams()
	params.Query = "zxqwvutr"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestDeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments(sampleDocs()))
	require.NoError(t, index.DeleteDocument("book-001"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments(sampleDocs()))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestBookToDocument_NormalizesGenres(t *testing.T) {
	book := &domain.Book{
		Title:  "Dune",
		Author: "Frank Herbert",
		Genres: []string{"  Science Fiction ", "ADVENTURE"},
	}
	book.ID = "book-001"
	book.InitTimestamps()

	doc := BookToDocument(book)
	assert.Equal(t, []string{"science fiction", "adventure"}, doc.Genres)
}
