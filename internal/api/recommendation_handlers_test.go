package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRecommendations_ColdStartUsesPopularity(t *testing.T) {
	ts := setupTestServer(t)
	newcomer := ts.signupTestUser(t, "new@example.com", "newcomer")
	regular := ts.signupTestUser(t, "regular@example.com", "regular")

	hot := ts.seedTestBook(t, "Popular Pick", "Author A", "fiction")
	ts.seedTestBook(t, "Quiet Release", "Author B", "fiction")

	// Give the hot book some circulation.
	ts.borrowBook(t, regular.AccessToken, hot)

	resp := ts.api.Get("/api/v1/recommendations",
		"Authorization: Bearer "+newcomer.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body RecommendationListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Items)
	assert.Equal(t, hot, body.Items[0].BookID)
	assert.Equal(t, "Popular Pick", body.Items[0].Title)
}

func TestGetRecommendations_MatchesPreferences(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")

	match := ts.seedTestBook(t, "Space Opera", "Author A", "science fiction")
	ts.seedTestBook(t, "Baking Basics", "Author B", "cooking")

	resp := ts.api.Put("/api/v1/users/me/preferences",
		"Authorization: Bearer "+signup.AccessToken,
		map[string]any{"favorite_genres": []string{"science fiction"}})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/recommendations",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body RecommendationListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Items)
	assert.Equal(t, match, body.Items[0].BookID)
	assert.NotEmpty(t, body.Items[0].Reason)
}

func TestGetRecommendations_RespectsLimit(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")

	for _, title := range []string{"One", "Two", "Three"} {
		ts.seedTestBook(t, title, "Author", "fiction")
	}

	resp := ts.api.Get("/api/v1/recommendations?limit=2",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body RecommendationListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.LessOrEqual(t, len(body.Items), 2)
}

func TestGetRecommendations_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/recommendations")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
