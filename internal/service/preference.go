package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/normalize"
	"github.com/luminalib/lumina-server/internal/store"
)

// PreferenceService manages each user's stated taste profile, the
// content side of the recommender.
type PreferenceService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(store *store.Store, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{
		store:  store,
		logger: logger,
	}
}

// SetPreferenceRequest contains a user's taste profile.
type SetPreferenceRequest struct {
	FavoriteGenres  []string `json:"favorite_genres" validate:"max=50,dive,max=128"`
	FavoriteAuthors []string `json:"favorite_authors" validate:"max=50,dive,max=512"`
}

// SetPreference upserts the user's taste profile. Genres are normalized
// so the recommender compares like with like.
func (s *PreferenceService) SetPreference(ctx context.Context, userID string, req SetPreferenceRequest) (*domain.UserPreference, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	pref := &domain.UserPreference{
		UserID:          userID,
		FavoriteGenres:  normalize.Tags(req.FavoriteGenres),
		FavoriteAuthors: req.FavoriteAuthors,
	}

	if err := s.store.SetUserPreference(ctx, pref); err != nil {
		return nil, fmt.Errorf("set preference: %w", err)
	}

	return pref, nil
}

// GetPreference returns the user's taste profile, or an empty profile
// if they never set one.
func (s *PreferenceService) GetPreference(ctx context.Context, userID string) (*domain.UserPreference, error) {
	pref, err := s.store.GetUserPreference(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrPreferenceNotFound) {
			return &domain.UserPreference{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return pref, nil
}
