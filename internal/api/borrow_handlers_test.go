package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowBook_CreatesActiveBorrow(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")
	bookID := ts.seedTestBook(t, "Dune", "Frank Herbert", "science fiction")

	resp := ts.api.Post("/api/v1/books/"+bookID+"/borrow",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body BorrowResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, bookID, body.BookID)
	assert.True(t, body.Active)
	assert.Nil(t, body.ReturnedAt)
}

func TestBorrowBook_DoubleBorrowConflicts(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")
	bookID := ts.seedTestBook(t, "Dune", "Frank Herbert", "")

	resp := ts.api.Post("/api/v1/books/"+bookID+"/borrow",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/books/"+bookID+"/borrow",
		"Authorization: Bearer "+signup.AccessToken)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestBorrowBook_UnknownBook(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")

	resp := ts.api.Post("/api/v1/books/book_missing/borrow",
		"Authorization: Bearer "+signup.AccessToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReturnBook_ClosesBorrow(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")
	bookID := ts.seedTestBook(t, "Dune", "Frank Herbert", "")

	resp := ts.api.Post("/api/v1/books/"+bookID+"/borrow",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/books/"+bookID+"/return",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body BorrowResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.Active)
	assert.NotNil(t, body.ReturnedAt)
}

func TestReturnBook_NoActiveBorrow(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")
	bookID := ts.seedTestBook(t, "Dune", "Frank Herbert", "")

	resp := ts.api.Post("/api/v1/books/"+bookID+"/return",
		"Authorization: Bearer "+signup.AccessToken)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestListBorrows_FiltersActive(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")
	first := ts.seedTestBook(t, "First", "Author A", "")
	second := ts.seedTestBook(t, "Second", "Author B", "")

	for _, bookID := range []string{first, second} {
		resp := ts.api.Post("/api/v1/books/"+bookID+"/borrow",
			"Authorization: Bearer "+signup.AccessToken)
		require.Equal(t, http.StatusOK, resp.Code)
	}
	resp := ts.api.Post("/api/v1/books/"+first+"/return",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/borrows", "Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)
	var all BorrowListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &all))
	assert.Len(t, all.Items, 2)

	resp = ts.api.Get("/api/v1/borrows?active_only=true", "Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)
	var active BorrowListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &active))
	require.Len(t, active.Items, 1)
	assert.Equal(t, second, active.Items[0].BookID)
}
