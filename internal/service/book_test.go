package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/luminalib/lumina-server/internal/errors"
	"github.com/luminalib/lumina-server/internal/intelligence"
	"github.com/luminalib/lumina-server/internal/store"
)

const testBookContent = "An unexpected journey begins. The road goes ever on. " +
	"There and back again, as told by one who walked it."

func createTestBook(t *testing.T, env *testEnv, title string) string {
	t.Helper()

	book, err := env.books.CreateBook(context.Background(), CreateBookRequest{
		Title:    title,
		Author:   "Test Author",
		Genres:   "Fiction, Adventure",
		FileName: "book.txt",
		Content:  []byte(testBookContent),
	})
	require.NoError(t, err)
	return book.ID
}

func TestCreateBook_PersistsContentAndMetadata(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	book, err := env.books.CreateBook(ctx, CreateBookRequest{
		Title:    "  The Hobbit  ",
		Author:   "J.R.R. Tolkien",
		ISBN:     "978-0-261-10221-7",
		Genres:   "Fantasy, Adventure, fantasy",
		FileName: "hobbit.txt",
		Content:  []byte(testBookContent),
	})
	require.NoError(t, err)

	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, []string{"fantasy", "adventure"}, book.Genres)
	assert.Equal(t, "txt", book.FileType)
	assert.True(t, env.storage.Exists(book.ID, "txt"))

	stored, err := env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, stored.Title)
}

func TestCreateBook_TriggersSummaryGeneration(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	bookID := createTestBook(t, env, "Summarized")
	env.coordinator.Wait()

	book, err := env.store.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.True(t, book.HasSummary())
	assert.Equal(t, intelligence.StateReady, env.coordinator.State(bookID, intelligence.KindSummary))
}

func TestCreateBook_RequiresContent(t *testing.T) {
	env := setupServices(t)

	_, err := env.books.CreateBook(context.Background(), CreateBookRequest{
		Title:    "Empty",
		Author:   "Nobody",
		FileName: "empty.txt",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus())
}

func TestUpdateBook_PatchesMetadataOnly(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	bookID := createTestBook(t, env, "Original Title")

	newTitle := "Renamed"
	updated, err := env.books.UpdateBook(ctx, bookID, UpdateBookRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Test Author", updated.Author)
}

func TestDeleteBook_RemovesContent(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	bookID := createTestBook(t, env, "Doomed")
	require.True(t, env.storage.Exists(bookID, "txt"))

	require.NoError(t, env.books.DeleteBook(ctx, bookID))
	assert.False(t, env.storage.Exists(bookID, "txt"))

	_, err := env.store.GetBook(ctx, bookID)
	assert.ErrorIs(t, err, store.ErrBookNotFound)
}

func TestGetBook_NotFound(t *testing.T) {
	env := setupServices(t)

	_, err := env.books.GetBook(context.Background(), "book-missing")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus())
}

func TestListBooks_Paginates(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		createTestBook(t, env, title)
	}

	page, err := env.books.ListBooks(ctx, store.PaginationParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	rest, err := env.books.ListBooks(ctx, store.PaginationParams{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.False(t, rest.HasMore)
}
