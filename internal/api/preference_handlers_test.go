package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPreferences_NormalizesGenres(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")

	resp := ts.api.Put("/api/v1/users/me/preferences",
		"Authorization: Bearer "+signup.AccessToken,
		map[string]any{
			"favorite_genres":  []string{"  Science Fiction ", "FANTASY", "fantasy"},
			"favorite_authors": []string{"Ursula K. Le Guin"},
		})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body PreferenceResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{"science fiction", "fantasy"}, body.FavoriteGenres)
	assert.Equal(t, []string{"Ursula K. Le Guin"}, body.FavoriteAuthors)
}

func TestGetPreferences_EmptyWhenNeverSet(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")

	resp := ts.api.Get("/api/v1/users/me/preferences",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body PreferenceResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Empty(t, body.FavoriteGenres)
	assert.Empty(t, body.FavoriteAuthors)
}

func TestPreferences_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signupTestUser(t, "reader@example.com", "reader")

	resp := ts.api.Put("/api/v1/users/me/preferences",
		"Authorization: Bearer "+signup.AccessToken,
		map[string]any{"favorite_genres": []string{"mystery"}})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/users/me/preferences",
		"Authorization: Bearer "+signup.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var body PreferenceResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{"mystery"}, body.FavoriteGenres)
}
