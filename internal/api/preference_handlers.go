package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/service"
)

func (s *Server) registerPreferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/preferences",
		Summary:     "Get reading preferences",
		Description: "Returns the authenticated user's taste profile. Empty if never set.",
		Tags:        []string{"Preferences"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPreferences",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me/preferences",
		Summary:     "Set reading preferences",
		Description: "Replaces the authenticated user's taste profile",
		Tags:        []string{"Preferences"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPreferences)
}

// === DTOs ===

// PreferenceRequest is the request body for setting preferences.
type PreferenceRequest struct {
	FavoriteGenres  []string `json:"favorite_genres,omitempty" doc:"Preferred genres, normalized on save"`
	FavoriteAuthors []string `json:"favorite_authors,omitempty" doc:"Preferred authors"`
}

// SetPreferencesInput wraps the preference request for Huma.
type SetPreferencesInput struct {
	Authorization string `header:"Authorization"`
	Body          PreferenceRequest
}

// PreferenceResponse contains a user's taste profile.
type PreferenceResponse struct {
	FavoriteGenres  []string `json:"favorite_genres,omitempty" doc:"Preferred genres"`
	FavoriteAuthors []string `json:"favorite_authors,omitempty" doc:"Preferred authors"`
}

// PreferenceOutput wraps the preference response for Huma.
type PreferenceOutput struct {
	Body PreferenceResponse
}

// === Handlers ===

func (s *Server) handleGetPreferences(ctx context.Context, _ *ProfileInput) (*PreferenceOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	pref, err := s.services.Preference.GetPreference(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PreferenceOutput{Body: mapPreferenceResponse(pref)}, nil
}

func (s *Server) handleSetPreferences(ctx context.Context, input *SetPreferencesInput) (*PreferenceOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	pref, err := s.services.Preference.SetPreference(ctx, userID, service.SetPreferenceRequest{
		FavoriteGenres:  input.Body.FavoriteGenres,
		FavoriteAuthors: input.Body.FavoriteAuthors,
	})
	if err != nil {
		return nil, err
	}

	return &PreferenceOutput{Body: mapPreferenceResponse(pref)}, nil
}

// === Helpers ===

func mapPreferenceResponse(pref *domain.UserPreference) PreferenceResponse {
	return PreferenceResponse{
		FavoriteGenres:  pref.FavoriteGenres,
		FavoriteAuthors: pref.FavoriteAuthors,
	}
}
